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
	ErrRoleAlreadyAssigned = errors.New("role already assigned to user")
	ErrRoleNotAssigned     = errors.New("role not assigned to user")
	ErrRoleUserInvalid     = errors.New("role user reference invalid")
)

type RoleRepository interface {
	Add(ctx context.Context, userID int, role models.UserRole) error
	Remove(ctx context.Context, userID int, role models.UserRole) error
	ListByUserID(ctx context.Context, userID int) ([]models.UserRole, error)
	ListUserIDsByRole(ctx context.Context, role models.UserRole) ([]int, error)
}

type postgresRoleRepository struct {
	db *sql.DB
}

func NewPostgresRoleRepository(db *sql.DB) RoleRepository {
	return &postgresRoleRepository{db: db}
}

func (r *postgresRoleRepository) Add(ctx context.Context, userID int, role models.UserRole) error {
	query := `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, userID, role)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "user_roles_user_id_role_key" {
					return ErrRoleAlreadyAssigned
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "user_roles_user_id_fkey" {
					return ErrRoleUserInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresRoleRepository) Remove(ctx context.Context, userID int, role models.UserRole) error {
	query := `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`
	result, err := r.db.ExecContext(ctx, query, userID, role)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoleNotAssigned)
}

func (r *postgresRoleRepository) ListByUserID(ctx context.Context, userID int) ([]models.UserRole, error) {
	query := `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]models.UserRole, 0)
	for rows.Next() {
		var role models.UserRole
		if scanErr := rows.Scan(&role); scanErr != nil {
			return nil, scanErr
		}
		roles = append(roles, role)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return roles, nil
}

func (r *postgresRoleRepository) ListUserIDsByRole(ctx context.Context, role models.UserRole) ([]int, error) {
	query := `SELECT user_id FROM user_roles WHERE role = $1`
	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
