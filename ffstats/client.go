// Package ffstats содержит клиент стороннего API статистики Free Fire.
package ffstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	ErrPlayerNotFound   = errors.New("player not found in stats API")
	ErrStatsUnavailable = errors.New("stats API unavailable")
)

// ModeStats - статистика одного режима (solo/duo/squad).
type ModeStats struct {
	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
	Kills       int `json:"kills"`
	Headshots   int `json:"headshots"`
	Damage      int `json:"damage"`
	TopTen      int `json:"top_ten"`
}

// PlayerStats - агрегат по всем режимам для одного игрового аккаунта.
type PlayerStats struct {
	AccountID string    `json:"account_id"`
	Region    string    `json:"region"`
	Solo      ModeStats `json:"solo"`
	Duo       ModeStats `json:"duo"`
	Squad     ModeStats `json:"squad"`
}

type StatsProvider interface {
	GetPlayerStats(ctx context.Context, accountID, region string) (*PlayerStats, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetPlayerStats запрашивает три режима параллельно: API отдаёт их
// отдельными эндпоинтами, а суммарная задержка важна для страницы профиля.
func (c *Client) GetPlayerStats(ctx context.Context, accountID, region string) (*PlayerStats, error) {
	stats := &PlayerStats{
		AccountID: accountID,
		Region:    region,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range []struct {
		mode string
		dst  *ModeStats
	}{
		{"solo", &stats.Solo},
		{"duo", &stats.Duo},
		{"squad", &stats.Squad},
	} {
		m := m
		g.Go(func() error {
			return c.fetchModeStats(gctx, accountID, region, m.mode, m.dst)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Client) fetchModeStats(ctx context.Context, accountID, region, mode string, dst *ModeStats) error {
	endpoint := fmt.Sprintf("%s/stats/%s?region=%s&mode=%s",
		c.baseURL, url.PathEscape(accountID), url.QueryEscape(region), url.QueryEscape(mode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build stats request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrPlayerNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d for mode %s", ErrStatsUnavailable, resp.StatusCode, mode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read stats response: %w", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode stats response for mode %s: %w", mode, err)
	}
	return nil
}
