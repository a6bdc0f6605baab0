package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/repositories"
)

type AdminService interface {
	AddRole(ctx context.Context, userID int, role models.UserRole) error
	RemoveRole(ctx context.Context, actorID, userID int, role models.UserRole) error
	ListUsers(ctx context.Context, filter repositories.ListUsersFilter) ([]models.User, error)
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

type adminService struct {
	userRepo       repositories.UserRepository
	roleRepo       repositories.RoleRepository
	tournamentRepo repositories.TournamentRepository
	depositRepo    repositories.DepositRepository
	withdrawalRepo repositories.WithdrawalRepository
	walletRepo     repositories.WalletTransactionRepository
}

func NewAdminService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	tournamentRepo repositories.TournamentRepository,
	depositRepo repositories.DepositRepository,
	withdrawalRepo repositories.WithdrawalRepository,
	walletRepo repositories.WalletTransactionRepository,
) AdminService {
	return &adminService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		tournamentRepo: tournamentRepo,
		depositRepo:    depositRepo,
		withdrawalRepo: withdrawalRepo,
		walletRepo:     walletRepo,
	}
}

func validUserRole(role models.UserRole) bool {
	switch role {
	case models.RoleAdmin, models.RoleModerator, models.RoleUser:
		return true
	}
	return false
}

func (s *adminService) AddRole(ctx context.Context, userID int, role models.UserRole) error {
	if !validUserRole(role) {
		return fmt.Errorf("%w: unknown role %q", ErrValidationFailed, role)
	}
	if err := s.roleRepo.Add(ctx, userID, role); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoleAlreadyAssigned):
			return ErrRoleAlreadyAssigned
		case errors.Is(err, repositories.ErrRoleUserInvalid):
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// RemoveRole снимает роль. Админ не может снять admin с самого себя,
// иначе платформа может остаться без администраторов.
func (s *adminService) RemoveRole(ctx context.Context, actorID, userID int, role models.UserRole) error {
	if role == models.RoleAdmin && actorID == userID {
		return ErrCannotRemoveOwnAdmin
	}
	if err := s.roleRepo.Remove(ctx, userID, role); err != nil {
		if errors.Is(err, repositories.ErrRoleNotAssigned) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *adminService) ListUsers(ctx context.Context, filter repositories.ListUsersFilter) ([]models.User, error) {
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range users {
		roles, err := s.roleRepo.ListByUserID(ctx, users[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load roles for user %d: %w", users[i].ID, err)
		}
		users[i].Roles = roles
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *adminService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	var err error
	if stats.UsersTotal, err = s.userRepo.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.TournamentsTotal, err = s.tournamentRepo.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.LiveTournaments, err = s.tournamentRepo.CountByStatus(ctx, models.StatusLive); err != nil {
		return nil, err
	}
	if stats.PendingDeposits, err = s.depositRepo.CountByStatus(ctx, models.RequestPending); err != nil {
		return nil, err
	}
	if stats.PendingWithdrawals, err = s.withdrawalRepo.CountByStatus(ctx, models.RequestPending); err != nil {
		return nil, err
	}
	if stats.TotalDepositVolume, err = s.walletRepo.SumByType(ctx, models.TransactionDeposit); err != nil {
		return nil, err
	}

	withdrawn, err := s.walletRepo.SumByType(ctx, models.TransactionWithdrawal)
	if err != nil {
		return nil, err
	}
	// Записи withdrawal отрицательные; на дашборде показываем объём.
	stats.TotalWithdrawVolume = -withdrawn

	return stats, nil
}
