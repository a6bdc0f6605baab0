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
	ErrDepositNotFound          = errors.New("deposit request not found")
	ErrDepositReferenceConflict = errors.New("deposit with this transaction id already exists")
	ErrRequestAlreadyProcessed  = errors.New("request has already been processed")
)

type ListRequestsFilter struct {
	Status *models.RequestStatus
	Limit  int
	Offset int
}

type DepositRepository interface {
	Create(ctx context.Context, exec SQLExecutor, req *models.DepositRequest) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.DepositRequest, error)
	// MarkProcessed переводит заявку из pending в конечный статус.
	// Guard по статусу в WHERE исключает двойную обработку заявки двумя админами.
	MarkProcessed(ctx context.Context, exec SQLExecutor, id int, status models.RequestStatus, processedBy int, notes *string) error
	ListByUserID(ctx context.Context, userID int, filter ListRequestsFilter) ([]models.DepositRequest, error)
	List(ctx context.Context, filter ListRequestsFilter) ([]models.DepositRequest, error)
	CountByStatus(ctx context.Context, status models.RequestStatus) (int, error)
}

type postgresDepositRepository struct {
	db *sql.DB
}

func NewPostgresDepositRepository(db *sql.DB) DepositRepository {
	return &postgresDepositRepository{db: db}
}

func (r *postgresDepositRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const depositColumns = `
	id, user_id, amount, upi_transaction_id, status, processed_by, processed_at, notes, created_at`

func (r *postgresDepositRepository) Create(ctx context.Context, exec SQLExecutor, req *models.DepositRequest) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO deposit_requests (user_id, amount, upi_transaction_id, status, processed_by, processed_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		req.UserID,
		req.Amount,
		req.UPITransactionID,
		req.Status,
		req.ProcessedBy,
		req.ProcessedAt,
		req.Notes,
	).Scan(&req.ID, &req.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "deposit_requests_upi_transaction_id_key" {
				return ErrDepositReferenceConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresDepositRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.DepositRequest, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + depositColumns + ` FROM deposit_requests WHERE id = $1`

	req := &models.DepositRequest{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.UserID, &req.Amount, &req.UPITransactionID, &req.Status,
		&req.ProcessedBy, &req.ProcessedAt, &req.Notes, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *postgresDepositRepository) MarkProcessed(ctx context.Context, exec SQLExecutor, id int, status models.RequestStatus, processedBy int, notes *string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE deposit_requests
		SET status = $1, processed_by = $2, processed_at = $3, notes = $4
		WHERE id = $5 AND status = $6`

	result, err := executor.ExecContext(ctx, query, status, processedBy, time.Now(), notes, id, models.RequestPending)
	if err != nil {
		return fmt.Errorf("failed to mark deposit request %d processed: %w", id, err)
	}

	rowsAffected, raErr := result.RowsAffected()
	if raErr != nil {
		return fmt.Errorf("failed to check affected rows: %w", raErr)
	}
	if rowsAffected == 0 {
		var exists bool
		if checkErr := executor.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM deposit_requests WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
			return fmt.Errorf("failed to check deposit request existence: %w", checkErr)
		}
		if !exists {
			return ErrDepositNotFound
		}
		return ErrRequestAlreadyProcessed
	}
	return nil
}

func (r *postgresDepositRepository) ListByUserID(ctx context.Context, userID int, filter ListRequestsFilter) ([]models.DepositRequest, error) {
	query := `SELECT` + depositColumns + ` FROM deposit_requests WHERE user_id = $1`
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

func (r *postgresDepositRepository) List(ctx context.Context, filter ListRequestsFilter) ([]models.DepositRequest, error) {
	query := `SELECT` + depositColumns + ` FROM deposit_requests WHERE 1=1`
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

func (r *postgresDepositRepository) CountByStatus(ctx context.Context, status models.RequestStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM deposit_requests WHERE status = $1`
	if err := r.db.QueryRowContext(ctx, query, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count deposit requests: %w", err)
	}
	return count, nil
}

func (r *postgresDepositRepository) queryRequests(ctx context.Context, query string, args ...interface{}) ([]models.DepositRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.DepositRequest, 0)
	for rows.Next() {
		var req models.DepositRequest
		if scanErr := rows.Scan(
			&req.ID, &req.UserID, &req.Amount, &req.UPITransactionID, &req.Status,
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

func appendLimitOffset(query string, args []interface{}, argID, limit, offset int) (string, []interface{}) {
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, limit)
		argID++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, offset)
	}
	return query, args
}
