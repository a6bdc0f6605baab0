package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/realtime"
	"github.com/Dosada05/ff-arena/repositories"
)

// Минимальная сумма вывода в рупиях.
const MinWithdrawalAmount = 100

type WithdrawalService interface {
	CreateRequest(ctx context.Context, userID int, amount int) (*models.WithdrawalRequest, error)
	Approve(ctx context.Context, adminID, requestID int, notes *string) (*models.WithdrawalRequest, error)
	Reject(ctx context.Context, adminID, requestID int, notes *string) (*models.WithdrawalRequest, error)
	ListByUser(ctx context.Context, userID int, filter repositories.ListRequestsFilter) ([]models.WithdrawalRequest, error)
	List(ctx context.Context, filter repositories.ListRequestsFilter) ([]models.WithdrawalRequest, error)
}

type withdrawalService struct {
	tx             repositories.TxManager
	withdrawalRepo repositories.WithdrawalRepository
	userRepo       repositories.UserRepository
	walletRepo     repositories.WalletTransactionRepository
	notifier       realtime.Notifier
	email          EmailSender
	logger         *slog.Logger
}

func NewWithdrawalService(
	tx repositories.TxManager,
	withdrawalRepo repositories.WithdrawalRepository,
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletTransactionRepository,
	notifier realtime.Notifier,
	email EmailSender,
	logger *slog.Logger,
) WithdrawalService {
	return &withdrawalService{
		tx:             tx,
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		notifier:       notifier,
		email:          email,
		logger:         logger,
	}
}

// CreateRequest списывает средства сразу (эскроу) в одной транзакции со
// вставкой заявки: окно "баланс списан, заявки нет" исключено.
func (s *withdrawalService) CreateRequest(ctx context.Context, userID int, amount int) (*models.WithdrawalRequest, error) {
	if amount < MinWithdrawalAmount {
		return nil, ErrWithdrawalTooSmall
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.UPIID == nil || *user.UPIID == "" {
		return nil, ErrUPIIDRequired
	}

	req := &models.WithdrawalRequest{
		UserID: userID,
		Amount: amount,
		UPIID:  *user.UPIID,
		Status: models.RequestPending,
	}

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.userRepo.DebitBalanceIfSufficient(ctx, exec, userID, amount); err != nil {
			if errors.Is(err, repositories.ErrInsufficientBalance) {
				return ErrInsufficientBalance
			}
			return err
		}
		if err := s.withdrawalRepo.Create(ctx, exec, req); err != nil {
			return err
		}
		ledger := &models.WalletTransaction{
			UserID: userID,
			Type:   models.TransactionWithdrawal,
			Amount: -amount,
		}
		return s.walletRepo.Create(ctx, exec, ledger)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifier.NotifyAdmins(realtime.Event{Type: realtime.EventNewWithdrawal, Payload: req})
	return req, nil
}

// Approve только фиксирует статус: баланс уже был списан при создании заявки.
func (s *withdrawalService) Approve(ctx context.Context, adminID, requestID int, notes *string) (*models.WithdrawalRequest, error) {
	if err := s.withdrawalRepo.MarkProcessed(ctx, nil, requestID, models.RequestApproved, adminID, notes); err != nil {
		return nil, mapWithdrawalRepoError(err)
	}

	req, err := s.withdrawalRepo.GetByID(ctx, nil, requestID)
	if err != nil {
		return nil, mapWithdrawalRepoError(err)
	}

	s.notifier.NotifyUser(req.UserID, realtime.Event{Type: realtime.EventWithdrawalStatus, Payload: req})
	s.sendStatusEmail(ctx, req.UserID, req.Amount, true)
	return req, nil
}

func (s *withdrawalService) Reject(ctx context.Context, adminID, requestID int, notes *string) (*models.WithdrawalRequest, error) {
	var req *models.WithdrawalRequest

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		req, err = s.withdrawalRepo.GetByID(ctx, exec, requestID)
		if err != nil {
			return mapWithdrawalRepoError(err)
		}

		if err := s.withdrawalRepo.MarkProcessed(ctx, exec, requestID, models.RequestRejected, adminID, notes); err != nil {
			return mapWithdrawalRepoError(err)
		}
		if err := s.userRepo.CreditBalance(ctx, exec, req.UserID, req.Amount); err != nil {
			return err
		}
		ledger := &models.WalletTransaction{
			UserID: req.UserID,
			Type:   models.TransactionRefund,
			Amount: req.Amount,
		}
		return s.walletRepo.Create(ctx, exec, ledger)
	})
	if txErr != nil {
		return nil, txErr
	}

	req.Status = models.RequestRejected
	req.ProcessedBy = &adminID

	s.notifier.NotifyUser(req.UserID, realtime.Event{Type: realtime.EventWithdrawalStatus, Payload: req})
	s.sendStatusEmail(ctx, req.UserID, req.Amount, false)
	return req, nil
}

func (s *withdrawalService) ListByUser(ctx context.Context, userID int, filter repositories.ListRequestsFilter) ([]models.WithdrawalRequest, error) {
	return s.withdrawalRepo.ListByUserID(ctx, userID, filter)
}

func (s *withdrawalService) List(ctx context.Context, filter repositories.ListRequestsFilter) ([]models.WithdrawalRequest, error) {
	return s.withdrawalRepo.List(ctx, filter)
}

func (s *withdrawalService) sendStatusEmail(ctx context.Context, userID, amount int, approved bool) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load user for status email", slog.Int("user_id", userID), slog.Any("error", err))
		return
	}
	if err := s.email.SendWithdrawalStatusEmail(user.Email, amount, approved); err != nil {
		s.logger.Error("failed to send withdrawal status email", slog.String("email", user.Email), slog.Any("error", err))
	}
}

func mapWithdrawalRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrWithdrawalNotFound):
		return ErrWithdrawalNotFound
	case errors.Is(err, repositories.ErrRequestAlreadyProcessed):
		return ErrRequestAlreadyHandled
	}
	return err
}
