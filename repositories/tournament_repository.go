package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/ff-arena/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentFull           = errors.New("tournament is full")
	ErrTournamentNotJoinable    = errors.New("tournament is not open for registration")
	ErrTournamentInvalidCreator = errors.New("invalid tournament creator reference")
)

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Mode   *models.TournamentMode
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerUserID int) error
	UpdateRoomCredentials(ctx context.Context, id int, roomID, roomPassword *string) error
	UpdateBannerKey(ctx context.Context, id int, bannerKey *string) error
	// IncrementPlayersIfJoinable атомарно занимает слот: строка не обновится,
	// если турнир заполнен или уже не в статусе upcoming.
	IncrementPlayersIfJoinable(ctx context.Context, exec SQLExecutor, id int) error
	DecrementPlayers(ctx context.Context, exec SQLExecutor, id int) error
	ListDueForStart(ctx context.Context, exec SQLExecutor, currentTime time.Time) ([]*models.Tournament, error)
	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.TournamentStatus) (int, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, title, description, mode, entry_fee, prize_pool, per_kill_reward,
	max_players, current_players, room_id, room_password, start_time, status,
	winner_user_id, banner_key, created_by, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			title, description, mode, entry_fee, prize_pool, per_kill_reward,
			max_players, start_time, status, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, current_players, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.Description, t.Mode, t.EntryFee, t.PrizePool, t.PerKillReward,
		t.MaxPlayers, t.StartTime, t.Status, t.CreatedBy,
	).Scan(&t.ID, &t.CurrentPlayers, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Mode, &t.EntryFee, &t.PrizePool, &t.PerKillReward,
		&t.MaxPlayers, &t.CurrentPlayers, &t.RoomID, &t.RoomPassword, &t.StartTime, &t.Status,
		&t.WinnerUserID, &t.BannerKey, &t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Mode != nil {
		query += fmt.Sprintf(" AND mode = $%d", argID)
		args = append(args, *filter.Mode)
		argID++
	}

	query += " ORDER BY start_time DESC, created_at DESC"
	query, args = appendLimitOffset(query, args, argID, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Mode, &t.EntryFee, &t.PrizePool, &t.PerKillReward,
			&t.MaxPlayers, &t.CurrentPlayers, &t.RoomID, &t.RoomPassword, &t.StartTime, &t.Status,
			&t.WinnerUserID, &t.BannerKey, &t.CreatedBy, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			title = $1,
			description = $2,
			mode = $3,
			entry_fee = $4,
			prize_pool = $5,
			per_kill_reward = $6,
			max_players = $7,
			start_time = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		t.Title, t.Description, t.Mode, t.EntryFee, t.PrizePool, t.PerKillReward,
		t.MaxPlayers, t.StartTime,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerUserID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET winner_user_id = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, winnerUserID, id)
	if err != nil {
		return fmt.Errorf("failed to set tournament winner for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateRoomCredentials(ctx context.Context, id int, roomID, roomPassword *string) error {
	query := `UPDATE tournaments SET room_id = $1, room_password = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, roomID, roomPassword, id)
	if err != nil {
		return fmt.Errorf("failed to update room credentials: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateBannerKey(ctx context.Context, id int, bannerKey *string) error {
	query := `UPDATE tournaments SET banner_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, bannerKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament banner key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) IncrementPlayersIfJoinable(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET current_players = current_players + 1
		WHERE id = $1 AND status = $2 AND current_players < max_players`
	result, err := executor.ExecContext(ctx, query, id, models.StatusUpcoming)
	if err != nil {
		return fmt.Errorf("failed to take tournament slot: %w", err)
	}

	rowsAffected, raErr := result.RowsAffected()
	if raErr != nil {
		return fmt.Errorf("failed to check affected rows: %w", raErr)
	}
	if rowsAffected == 0 {
		// Различаем причины отдельным чтением в той же транзакции.
		var status models.TournamentStatus
		var current, max int
		err := executor.QueryRowContext(ctx,
			`SELECT status, current_players, max_players FROM tournaments WHERE id = $1`, id,
		).Scan(&status, &current, &max)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTournamentNotFound
			}
			return err
		}
		if status != models.StatusUpcoming {
			return ErrTournamentNotJoinable
		}
		return ErrTournamentFull
	}
	return nil
}

func (r *postgresTournamentRepository) DecrementPlayers(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET current_players = current_players - 1
		WHERE id = $1 AND current_players > 0`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to release tournament slot: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListDueForStart(ctx context.Context, exec SQLExecutor, currentTime time.Time) ([]*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1 AND start_time <= $2`

	rows, err := executor.QueryContext(ctx, query, models.StatusUpcoming, currentTime)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments due for start: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Mode, &t.EntryFee, &t.PrizePool, &t.PerKillReward,
			&t.MaxPlayers, &t.CurrentPlayers, &t.RoomID, &t.RoomPassword, &t.StartTime, &t.Status,
			&t.WinnerUserID, &t.BannerKey, &t.CreatedBy, &t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament due for start: %w", scanErr)
		}
		tournaments = append(tournaments, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tournaments: %w", err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) CountByStatus(ctx context.Context, status models.TournamentStatus) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tournaments by status: %w", err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503":
			if pqErr.Constraint == "tournaments_created_by_fkey" {
				return ErrTournamentInvalidCreator
			}
		case "23514": // check_violation на current_players
			return ErrTournamentFull
		}
	}
	return err
}
