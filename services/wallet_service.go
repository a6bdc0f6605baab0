package services

import (
	"context"
	"errors"

	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/realtime"
	"github.com/Dosada05/ff-arena/repositories"
)

type AdjustBalanceInput struct {
	UserID int    `json:"user_id"`
	Amount int    `json:"amount"` // со знаком: >0 кредит, <0 дебет
	Note   string `json:"note"`
}

// WalletReconciliation - результат сверки журнала с балансом.
type WalletReconciliation struct {
	UserID     int  `json:"user_id"`
	Balance    int  `json:"balance"`
	LedgerSum  int  `json:"ledger_sum"`
	Consistent bool `json:"consistent"`
}

type WalletService interface {
	Balance(ctx context.Context, userID int) (int, error)
	ListTransactions(ctx context.Context, userID int, filter repositories.ListTransactionsFilter) ([]models.WalletTransaction, error)
	Adjust(ctx context.Context, adminID int, input AdjustBalanceInput) (*models.WalletTransaction, error)
	Reconcile(ctx context.Context, userID int) (*WalletReconciliation, error)
}

type walletService struct {
	tx         repositories.TxManager
	userRepo   repositories.UserRepository
	walletRepo repositories.WalletTransactionRepository
	notifier   realtime.Notifier
}

func NewWalletService(
	tx repositories.TxManager,
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletTransactionRepository,
	notifier realtime.Notifier,
) WalletService {
	return &walletService{
		tx:         tx,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		notifier:   notifier,
	}
}

func (s *walletService) Balance(ctx context.Context, userID int) (int, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.WalletBalance, nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID int, filter repositories.ListTransactionsFilter) ([]models.WalletTransaction, error) {
	return s.walletRepo.ListByUserID(ctx, userID, filter)
}

// Adjust - ручная корректировка баланса администратором. Дебет проходит
// через тот же условный UPDATE, что и остальные списания: уйти в минус нельзя.
func (s *walletService) Adjust(ctx context.Context, adminID int, input AdjustBalanceInput) (*models.WalletTransaction, error) {
	if input.Amount == 0 {
		return nil, ErrAmountMustBePositive
	}
	if input.Note == "" {
		return nil, ErrValidationFailed
	}

	note := input.Note
	ledger := &models.WalletTransaction{
		UserID: input.UserID,
		Type:   models.TransactionAdjustment,
		Amount: input.Amount,
		Note:   &note,
	}

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if input.Amount > 0 {
			if err := s.userRepo.CreditBalance(ctx, exec, input.UserID, input.Amount); err != nil {
				if errors.Is(err, repositories.ErrUserNotFound) {
					return ErrUserNotFound
				}
				return err
			}
		} else {
			if err := s.userRepo.DebitBalanceIfSufficient(ctx, exec, input.UserID, -input.Amount); err != nil {
				switch {
				case errors.Is(err, repositories.ErrUserNotFound):
					return ErrUserNotFound
				case errors.Is(err, repositories.ErrInsufficientBalance):
					return ErrBalanceWouldGoNegative
				}
				return err
			}
		}
		return s.walletRepo.Create(ctx, exec, ledger)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifier.NotifyUser(input.UserID, realtime.Event{Type: realtime.EventWalletTransaction, Payload: ledger})
	return ledger, nil
}

// Reconcile сверяет сумму журнала с wallet_balance. Расхождение означает
// изменение баланса в обход журнала и требует ручного разбирательства.
func (s *walletService) Reconcile(ctx context.Context, userID int) (*WalletReconciliation, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	sum, err := s.walletRepo.SumByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &WalletReconciliation{
		UserID:     userID,
		Balance:    user.WalletBalance,
		LedgerSum:  sum,
		Consistent: user.WalletBalance == sum,
	}, nil
}
