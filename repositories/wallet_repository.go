package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/ff-arena/models"
)

var ErrWalletTransactionNotFound = errors.New("wallet transaction not found")

type ListTransactionsFilter struct {
	Type   *models.TransactionType
	Limit  int
	Offset int
}

// WalletTransactionRepository пишет append-only журнал кошелька.
// Записи не обновляются и не удаляются.
type WalletTransactionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, txn *models.WalletTransaction) error
	ListByUserID(ctx context.Context, userID int, filter ListTransactionsFilter) ([]models.WalletTransaction, error)
	SumByUserID(ctx context.Context, userID int) (int, error)
	SumByType(ctx context.Context, txnType models.TransactionType) (int, error)
}

type postgresWalletTransactionRepository struct {
	db *sql.DB
}

func NewPostgresWalletTransactionRepository(db *sql.DB) WalletTransactionRepository {
	return &postgresWalletTransactionRepository{db: db}
}

func (r *postgresWalletTransactionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresWalletTransactionRepository) Create(ctx context.Context, exec SQLExecutor, txn *models.WalletTransaction) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO wallet_transactions (user_id, type, amount, tournament_id, reference, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		txn.UserID,
		txn.Type,
		txn.Amount,
		txn.TournamentID,
		txn.Reference,
		txn.Note,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert wallet transaction: %w", err)
	}
	return nil
}

func (r *postgresWalletTransactionRepository) ListByUserID(ctx context.Context, userID int, filter ListTransactionsFilter) ([]models.WalletTransaction, error) {
	query := `
		SELECT id, user_id, type, amount, tournament_id, reference, note, created_at
		FROM wallet_transactions
		WHERE user_id = $1`

	args := []interface{}{userID}
	argID := 2

	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argID)
		args = append(args, *filter.Type)
		argID++
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.WalletTransaction, 0)
	for rows.Next() {
		var txn models.WalletTransaction
		if scanErr := rows.Scan(
			&txn.ID, &txn.UserID, &txn.Type, &txn.Amount,
			&txn.TournamentID, &txn.Reference, &txn.Note, &txn.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, txn)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

// SumByUserID считает сумму журнала пользователя. Используется для сверки
// с wallet_balance в админке.
func (r *postgresWalletTransactionRepository) SumByUserID(ctx context.Context, userID int) (int, error) {
	var sum int
	query := `SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum wallet transactions: %w", err)
	}
	return sum, nil
}

func (r *postgresWalletTransactionRepository) SumByType(ctx context.Context, txnType models.TransactionType) (int, error) {
	var sum int
	query := `SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions WHERE type = $1`
	if err := r.db.QueryRowContext(ctx, query, txnType).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum wallet transactions by type: %w", err)
	}
	return sum, nil
}
