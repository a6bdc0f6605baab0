package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/payment"
	"github.com/Dosada05/ff-arena/realtime"
	"github.com/Dosada05/ff-arena/repositories"
	"github.com/Dosada05/ff-arena/utils"
)

// Минимальная сумма пополнения в рупиях.
const MinDepositAmount = 10

type CreateDepositInput struct {
	Amount           int    `json:"amount"`
	UPITransactionID string `json:"upi_transaction_id"`
}

type DepositService interface {
	CreateRequest(ctx context.Context, userID int, input CreateDepositInput) (*models.DepositRequest, error)
	InitiateGatewayOrder() string
	VerifyGatewayPayment(ctx context.Context, userID int, orderRef string, claimedAmount int) (*models.DepositRequest, error)
	Approve(ctx context.Context, adminID, requestID int, notes *string) (*models.DepositRequest, error)
	Reject(ctx context.Context, adminID, requestID int, notes *string) (*models.DepositRequest, error)
	ListByUser(ctx context.Context, userID int, filter repositories.ListRequestsFilter) ([]models.DepositRequest, error)
	List(ctx context.Context, filter repositories.ListRequestsFilter) ([]models.DepositRequest, error)
}

type depositService struct {
	tx          repositories.TxManager
	depositRepo repositories.DepositRepository
	userRepo    repositories.UserRepository
	walletRepo  repositories.WalletTransactionRepository
	gateway     payment.StatusChecker
	notifier    realtime.Notifier
	email       EmailSender
	logger      *slog.Logger
}

func NewDepositService(
	tx repositories.TxManager,
	depositRepo repositories.DepositRepository,
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletTransactionRepository,
	gateway payment.StatusChecker,
	notifier realtime.Notifier,
	email EmailSender,
	logger *slog.Logger,
) DepositService {
	return &depositService{
		tx:          tx,
		depositRepo: depositRepo,
		userRepo:    userRepo,
		walletRepo:  walletRepo,
		gateway:     gateway,
		notifier:    notifier,
		email:       email,
		logger:      logger,
	}
}

func (s *depositService) CreateRequest(ctx context.Context, userID int, input CreateDepositInput) (*models.DepositRequest, error) {
	if input.Amount < MinDepositAmount {
		return nil, ErrDepositTooSmall
	}
	if input.UPITransactionID == "" {
		return nil, fmt.Errorf("%w: upi transaction id is required", ErrValidationFailed)
	}

	req := &models.DepositRequest{
		UserID:           userID,
		Amount:           input.Amount,
		UPITransactionID: input.UPITransactionID,
		Status:           models.RequestPending,
	}

	if err := s.depositRepo.Create(ctx, nil, req); err != nil {
		if errors.Is(err, repositories.ErrDepositReferenceConflict) {
			return nil, ErrDepositDuplicateRef
		}
		return nil, fmt.Errorf("failed to create deposit request: %w", err)
	}

	s.notifier.NotifyAdmins(realtime.Event{Type: realtime.EventNewDepositRequest, Payload: req})
	return req, nil
}

// InitiateGatewayOrder выдаёт серверную ссылку заказа для оплаты через шлюз.
// Клиент платит по ней в UPI-приложении и затем вызывает VerifyGatewayPayment.
func (s *depositService) InitiateGatewayOrder() string {
	return utils.NewOrderReference()
}

// VerifyGatewayPayment - быстрый путь пополнения без ручной модерации.
// Сумму берём из ответа шлюза, а не от клиента: самовольно "подтвердить"
// произвольную сумму по чужой ссылке нельзя. Если клиент передал свою сумму
// (claimedAmount > 0), она обязана совпасть с суммой шлюза.
func (s *depositService) VerifyGatewayPayment(ctx context.Context, userID int, orderRef string, claimedAmount int) (*models.DepositRequest, error) {
	if orderRef == "" {
		return nil, fmt.Errorf("%w: order reference is required", ErrValidationFailed)
	}

	confirmed, err := s.gateway.CheckStatus(ctx, orderRef)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrTransactionPending),
			errors.Is(err, payment.ErrTransactionFailed):
			return nil, fmt.Errorf("%w: %v", ErrPaymentNotConfirmed, err)
		}
		return nil, err
	}
	if claimedAmount > 0 && claimedAmount != confirmed.Amount {
		return nil, ErrPaymentAmountMismatch
	}
	if confirmed.Amount < MinDepositAmount {
		return nil, ErrDepositTooSmall
	}

	now := time.Now()
	notes := fmt.Sprintf("auto-verified via gateway, bank txn %s", confirmed.BankTxnID)
	req := &models.DepositRequest{
		UserID:           userID,
		Amount:           confirmed.Amount,
		UPITransactionID: orderRef,
		Status:           models.RequestApproved,
		ProcessedAt:      &now,
		Notes:            &notes,
	}

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.depositRepo.Create(ctx, exec, req); err != nil {
			if errors.Is(err, repositories.ErrDepositReferenceConflict) {
				return ErrDepositDuplicateRef
			}
			return fmt.Errorf("failed to create verified deposit: %w", err)
		}
		if err := s.userRepo.CreditBalance(ctx, exec, userID, confirmed.Amount); err != nil {
			return err
		}
		ledger := &models.WalletTransaction{
			UserID:    userID,
			Type:      models.TransactionDeposit,
			Amount:    confirmed.Amount,
			Reference: &orderRef,
		}
		return s.walletRepo.Create(ctx, exec, ledger)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifier.NotifyUser(userID, realtime.Event{Type: realtime.EventDepositStatus, Payload: req})
	return req, nil
}

func (s *depositService) Approve(ctx context.Context, adminID, requestID int, notes *string) (*models.DepositRequest, error) {
	var req *models.DepositRequest

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		req, err = s.depositRepo.GetByID(ctx, exec, requestID)
		if err != nil {
			return mapDepositRepoError(err)
		}

		if err := s.depositRepo.MarkProcessed(ctx, exec, requestID, models.RequestApproved, adminID, notes); err != nil {
			return mapDepositRepoError(err)
		}
		if err := s.userRepo.CreditBalance(ctx, exec, req.UserID, req.Amount); err != nil {
			return err
		}
		ledger := &models.WalletTransaction{
			UserID:    req.UserID,
			Type:      models.TransactionDeposit,
			Amount:    req.Amount,
			Reference: &req.UPITransactionID,
		}
		return s.walletRepo.Create(ctx, exec, ledger)
	})
	if txErr != nil {
		return nil, txErr
	}

	req.Status = models.RequestApproved
	req.ProcessedBy = &adminID

	s.notifier.NotifyUser(req.UserID, realtime.Event{Type: realtime.EventDepositStatus, Payload: req})
	s.sendStatusEmail(ctx, req.UserID, req.Amount, true)
	return req, nil
}

func (s *depositService) Reject(ctx context.Context, adminID, requestID int, notes *string) (*models.DepositRequest, error) {
	// Баланс при создании заявки не менялся, поэтому отклонение - одиночное обновление.
	if err := s.depositRepo.MarkProcessed(ctx, nil, requestID, models.RequestRejected, adminID, notes); err != nil {
		return nil, mapDepositRepoError(err)
	}

	req, err := s.depositRepo.GetByID(ctx, nil, requestID)
	if err != nil {
		return nil, mapDepositRepoError(err)
	}

	s.notifier.NotifyUser(req.UserID, realtime.Event{Type: realtime.EventDepositStatus, Payload: req})
	s.sendStatusEmail(ctx, req.UserID, req.Amount, false)
	return req, nil
}

func (s *depositService) ListByUser(ctx context.Context, userID int, filter repositories.ListRequestsFilter) ([]models.DepositRequest, error) {
	return s.depositRepo.ListByUserID(ctx, userID, filter)
}

func (s *depositService) List(ctx context.Context, filter repositories.ListRequestsFilter) ([]models.DepositRequest, error) {
	return s.depositRepo.List(ctx, filter)
}

func (s *depositService) sendStatusEmail(ctx context.Context, userID, amount int, approved bool) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load user for status email", slog.Int("user_id", userID), slog.Any("error", err))
		return
	}
	if err := s.email.SendDepositStatusEmail(user.Email, amount, approved); err != nil {
		s.logger.Error("failed to send deposit status email", slog.String("email", user.Email), slog.Any("error", err))
	}
}

func mapDepositRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrDepositNotFound):
		return ErrDepositNotFound
	case errors.Is(err, repositories.ErrRequestAlreadyProcessed):
		return ErrRequestAlreadyHandled
	}
	return err
}
