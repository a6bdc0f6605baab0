package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/ff-arena/models"
	"github.com/lib/pq"
)

var (
	ErrAlreadyRegistered       = errors.New("user is already registered for this tournament")
	ErrRegistrationNotFound    = errors.New("tournament registration not found")
	ErrRegistrationRefsInvalid = errors.New("registration references invalid tournament or user")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.TournamentRegistration) error
	Delete(ctx context.Context, exec SQLExecutor, tournamentID, userID int) error
	GetByTournamentAndUser(ctx context.Context, tournamentID, userID int) (*models.TournamentRegistration, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentRegistration, error)
	ListByUserID(ctx context.Context, userID int) ([]models.TournamentRegistration, error)
	UpdateKills(ctx context.Context, exec SQLExecutor, tournamentID, userID, kills int) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.TournamentRegistration) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_registrations (tournament_id, user_id, game_uid)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		reg.TournamentID,
		reg.UserID,
		reg.GameUID,
	).Scan(&reg.ID, &reg.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "tournament_registrations_tournament_id_user_id_key" {
					return ErrAlreadyRegistered
				}
			case "23503":
				return ErrRegistrationRefsInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, exec SQLExecutor, tournamentID, userID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournament_registrations WHERE tournament_id = $1 AND user_id = $2`
	result, err := executor.ExecContext(ctx, query, tournamentID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) GetByTournamentAndUser(ctx context.Context, tournamentID, userID int) (*models.TournamentRegistration, error) {
	query := `
		SELECT id, tournament_id, user_id, game_uid, kills, created_at
		FROM tournament_registrations
		WHERE tournament_id = $1 AND user_id = $2`

	reg := &models.TournamentRegistration{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, userID).Scan(
		&reg.ID, &reg.TournamentID, &reg.UserID, &reg.GameUID, &reg.Kills, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

// ListByTournament возвращает регистрации вместе с базовыми полями пользователя
// для списка участников.
func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentRegistration, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT
			tr.id, tr.tournament_id, tr.user_id, tr.game_uid, tr.kills, tr.created_at,
			u.first_name, u.nickname, u.avatar_key
		FROM tournament_registrations tr
		JOIN users u ON u.id = tr.user_id
		WHERE tr.tournament_id = $1
		ORDER BY tr.created_at ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]models.TournamentRegistration, 0)
	for rows.Next() {
		var reg models.TournamentRegistration
		var user models.User
		if scanErr := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.UserID, &reg.GameUID, &reg.Kills, &reg.CreatedAt,
			&user.FirstName, &user.Nickname, &user.AvatarKey,
		); scanErr != nil {
			return nil, scanErr
		}
		user.ID = reg.UserID
		reg.User = &user
		registrations = append(registrations, reg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *postgresRegistrationRepository) ListByUserID(ctx context.Context, userID int) ([]models.TournamentRegistration, error) {
	query := `
		SELECT id, tournament_id, user_id, game_uid, kills, created_at
		FROM tournament_registrations
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]models.TournamentRegistration, 0)
	for rows.Next() {
		var reg models.TournamentRegistration
		if scanErr := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.UserID, &reg.GameUID, &reg.Kills, &reg.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		registrations = append(registrations, reg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *postgresRegistrationRepository) UpdateKills(ctx context.Context, exec SQLExecutor, tournamentID, userID, kills int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournament_registrations SET kills = $1 WHERE tournament_id = $2 AND user_id = $3`
	result, err := executor.ExecContext(ctx, query, kills, tournamentID, userID)
	if err != nil {
		return fmt.Errorf("failed to update kills: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
