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
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("user email conflict")
	ErrUserNicknameConflict = errors.New("user nickname conflict")
	ErrInsufficientBalance  = errors.New("insufficient wallet balance")
)

type ListUsersFilter struct {
	Search string
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateUPIID(ctx context.Context, userID int, upiID *string) error
	UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error
	ConfirmEmail(ctx context.Context, userID int) error
	UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error
	List(ctx context.Context, filter ListUsersFilter) ([]models.User, error)
	CountAll(ctx context.Context) (int, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)

	// Изменения баланса. Всегда вызываются внутри транзакции вместе
	// с записью в wallet_transactions.
	CreditBalance(ctx context.Context, exec SQLExecutor, userID int, amount int) error
	DebitBalanceIfSufficient(ctx context.Context, exec SQLExecutor, userID int, amount int) error
	AddWinnings(ctx context.Context, exec SQLExecutor, userID int, prize int, winInc int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, nickname, email, password_hash, email_confirmed, upi_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, wallet_balance, total_wins, total_earnings, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Nickname,
		user.Email,
		user.PasswordHash,
		user.EmailConfirmed,
		user.UPIID,
	).Scan(&user.ID, &user.WalletBalance, &user.TotalWins, &user.TotalEarnings, &user.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "users_email_key":
				return ErrUserEmailConflict
			case "users_nickname_key":
				return ErrUserNicknameConflict
			}
		}
		return err
	}
	return nil
}

const userColumns = `
	id, first_name, last_name, nickname, email, password_hash, email_confirmed,
	wallet_balance, total_wins, total_earnings, upi_id, avatar_key, created_at`

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			first_name = $1,
			last_name = $2,
			nickname = $3,
			email = $4,
			password_hash = $5,
			email_confirmed = $6,
			upi_id = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Nickname,
		user.Email,
		user.PasswordHash,
		user.EmailConfirmed,
		user.UPIID,
		user.ID,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "users_email_key":
				return ErrUserEmailConflict
			case "users_nickname_key":
				return ErrUserNicknameConflict
			}
		}
		return err
	}

	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateUPIID(ctx context.Context, userID int, upiID *string) error {
	query := `UPDATE users SET upi_id = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, upiID, userID)
	if err != nil {
		return fmt.Errorf("failed to update upi id: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error {
	query := `UPDATE users SET avatar_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, avatarKey, userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar key: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) ConfirmEmail(ctx context.Context, userID int) error {
	query := `UPDATE users SET email_confirmed = TRUE WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) List(ctx context.Context, filter ListUsersFilter) ([]models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (email ILIKE $%d OR nickname ILIKE $%d OR first_name ILIKE $%d)", argID, argID, argID)
		args = append(args, "%"+filter.Search+"%")
		argID++
	}

	query += " ORDER BY created_at DESC"

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

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if scanErr := rows.Scan(
			&user.ID, &user.FirstName, &user.LastName, &user.Nickname, &user.Email,
			&user.PasswordHash, &user.EmailConfirmed, &user.WalletBalance,
			&user.TotalWins, &user.TotalEarnings, &user.UPIID, &user.AvatarKey, &user.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *postgresUserRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *postgresUserRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT id, nickname, first_name, avatar_key, total_wins, total_earnings
		FROM users
		WHERE total_earnings > 0 OR total_wins > 0
		ORDER BY total_earnings DESC, total_wins DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		var e models.LeaderboardEntry
		var avatarKey sql.NullString
		if scanErr := rows.Scan(&e.UserID, &e.Nickname, &e.FirstName, &avatarKey, &e.TotalWins, &e.TotalEarnings); scanErr != nil {
			return nil, scanErr
		}
		if avatarKey.Valid {
			key := avatarKey.String
			e.AvatarURL = &key // ключ, публичный URL подставляет сервис
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *postgresUserRepository) CreditBalance(ctx context.Context, exec SQLExecutor, userID int, amount int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE users SET wallet_balance = wallet_balance + $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to credit balance for user %d: %w", userID, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

// DebitBalanceIfSufficient списывает amount только если баланс не уйдёт в минус.
// Условие в WHERE закрывает гонку read-then-write: конкурирующее списание
// просто не затронет ни одной строки.
func (r *postgresUserRepository) DebitBalanceIfSufficient(ctx context.Context, exec SQLExecutor, userID int, amount int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE users SET wallet_balance = wallet_balance - $1
		WHERE id = $2 AND wallet_balance >= $1`
	result, err := executor.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to debit balance for user %d: %w", userID, err)
	}

	rowsAffected, raErr := result.RowsAffected()
	if raErr != nil {
		return fmt.Errorf("failed to check affected rows: %w", raErr)
	}
	if rowsAffected == 0 {
		// Либо пользователя нет, либо не хватает средств; различаем отдельным чтением.
		var exists bool
		if checkErr := executor.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); checkErr != nil {
			return fmt.Errorf("failed to check user existence: %w", checkErr)
		}
		if !exists {
			return ErrUserNotFound
		}
		return ErrInsufficientBalance
	}
	return nil
}

func (r *postgresUserRepository) AddWinnings(ctx context.Context, exec SQLExecutor, userID int, prize int, winInc int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE users SET
			wallet_balance = wallet_balance + $1,
			total_earnings = total_earnings + $1,
			total_wins = total_wins + $2
		WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, prize, winInc, userID)
	if err != nil {
		return fmt.Errorf("failed to add winnings for user %d: %w", userID, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Nickname,
		&user.Email,
		&user.PasswordHash,
		&user.EmailConfirmed,
		&user.WalletBalance,
		&user.TotalWins,
		&user.TotalEarnings,
		&user.UPIID,
		&user.AvatarKey,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
