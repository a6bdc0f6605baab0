package services

import (
	"context"
	"errors"

	"github.com/Dosada05/ff-arena/ffstats"
)

var (
	ErrPlayerStatsNotFound    = errors.New("player stats not found")
	ErrPlayerStatsUnavailable = errors.New("player stats are temporarily unavailable")
)

type StatsService interface {
	PlayerStats(ctx context.Context, accountID, region string) (*ffstats.PlayerStats, error)
}

type statsService struct {
	provider ffstats.StatsProvider
}

func NewStatsService(provider ffstats.StatsProvider) StatsService {
	return &statsService{provider: provider}
}

func (s *statsService) PlayerStats(ctx context.Context, accountID, region string) (*ffstats.PlayerStats, error) {
	if accountID == "" {
		return nil, ErrValidationFailed
	}
	if region == "" {
		region = "ind"
	}

	stats, err := s.provider.GetPlayerStats(ctx, accountID, region)
	if err != nil {
		switch {
		case errors.Is(err, ffstats.ErrPlayerNotFound):
			return nil, ErrPlayerStatsNotFound
		case errors.Is(err, ffstats.ErrStatsUnavailable):
			return nil, ErrPlayerStatsUnavailable
		}
		return nil, err
	}
	return stats, nil
}
