package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/ff-arena/models"
)

var ErrWithdrawalNotFound = errors.New("withdrawal request not found")

type WithdrawalRepository interface {
	Create(ctx context.Context, exec SQLExecutor, req *models.WithdrawalRequest) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.WithdrawalRequest, error)
	MarkProcessed(ctx context.Context, exec SQLExecutor, id int, status models.RequestStatus, processedBy int, notes *string) error
	ListByUserID(ctx context.Context, userID int, filter ListRequestsFilter) ([]models.WithdrawalRequest, error)
	List(ctx context.Context, filter ListRequestsFilter) ([]models.WithdrawalRequest, error)
	CountByStatus(ctx context.Context, status models.RequestStatus) (int, error)
}

type postgresWithdrawalRepository struct {
	db *sql.DB
}

func NewPostgresWithdrawalRepository(db *sql.DB) WithdrawalRepository {
	return &postgresWithdrawalRepository{db: db}
}

func (r *postgresWithdrawalRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const withdrawalColumns = `
	id, user_id, amount, upi_id, status, processed_by, processed_at, notes, created_at`

func (r *postgresWithdrawalRepository) Create(ctx context.Context, exec SQLExecutor, req *models.WithdrawalRequest) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO withdrawal_requests (user_id, amount, upi_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		req.UserID,
		req.Amount,
		req.UPIID,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert withdrawal request: %w", err)
	}
	return nil
}

func (r *postgresWithdrawalRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.WithdrawalRequest, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1`

	req := &models.WithdrawalRequest{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.UserID, &req.Amount, &req.UPIID, &req.Status,
		&req.ProcessedBy, &req.ProcessedAt, &req.Notes, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *postgresWithdrawalRepository) MarkProcessed(ctx context.Context, exec SQLExecutor, id int, status models.RequestStatus, processedBy int, notes *string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE withdrawal_requests
		SET status = $1, processed_by = $2, processed_at = $3, notes = $4
		WHERE id = $5 AND status = $6`

	result, err := executor.ExecContext(ctx, query, status, processedBy, time.Now(), notes, id, models.RequestPending)
	if err != nil {
		return fmt.Errorf("failed to mark withdrawal request %d processed: %w", id, err)
	}

	rowsAffected, raErr := result.RowsAffected()
	if raErr != nil {
		return fmt.Errorf("failed to check affected rows: %w", raErr)
	}
	if rowsAffected == 0 {
		var exists bool
		if checkErr := executor.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM withdrawal_requests WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
			return fmt.Errorf("failed to check withdrawal request existence: %w", checkErr)
		}
		if !exists {
			return ErrWithdrawalNotFound
		}
		return ErrRequestAlreadyProcessed
	}
	return nil
}

func (r *postgresWithdrawalRepository) ListByUserID(ctx context.Context, userID int, filter ListRequestsFilter) ([]models.WithdrawalRequest, error) {
	query := `SELECT` + withdrawalColumns + ` FROM withdrawal_requests WHERE user_id = $1`
	args := []interface{}{userID}
	argID := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY created_at DESC, id DESC"
	query, args = appendLimitOffset(query, args, argID, filter.Limit, filter.Offset)

	return r.queryRequests(ctx, query, args...)
}

func (r *postgresWithdrawalRepository) List(ctx context.Context, filter ListRequestsFilter) ([]models.WithdrawalRequest, error) {
	query := `SELECT` + withdrawalColumns + ` FROM withdrawal_requests WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY created_at DESC, id DESC"
	query, args = appendLimitOffset(query, args, argID, filter.Limit, filter.Offset)

	return r.queryRequests(ctx, query, args...)
}

func (r *postgresWithdrawalRepository) CountByStatus(ctx context.Context, status models.RequestStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM withdrawal_requests WHERE status = $1`
	if err := r.db.QueryRowContext(ctx, query, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count withdrawal requests: %w", err)
	}
	return count, nil
}

func (r *postgresWithdrawalRepository) queryRequests(ctx context.Context, query string, args ...interface{}) ([]models.WithdrawalRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.WithdrawalRequest, 0)
	for rows.Next() {
		var req models.WithdrawalRequest
		if scanErr := rows.Scan(
			&req.ID, &req.UserID, &req.Amount, &req.UPIID, &req.Status,
			&req.ProcessedBy, &req.ProcessedAt, &req.Notes, &req.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}
