package services

import (
	"context"
	"errors"

	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/realtime"
	"github.com/Dosada05/ff-arena/repositories"
)

type RegistrationService interface {
	Join(ctx context.Context, userID, tournamentID int, gameUID string) (*models.TournamentRegistration, error)
	Leave(ctx context.Context, userID, tournamentID int) error
	ListByUser(ctx context.Context, userID int) ([]models.TournamentRegistration, error)
}

type registrationService struct {
	tx             repositories.TxManager
	regRepo        repositories.RegistrationRepository
	tournamentRepo repositories.TournamentRepository
	userRepo       repositories.UserRepository
	walletRepo     repositories.WalletTransactionRepository
	notifier       realtime.Notifier
}

func NewRegistrationService(
	tx repositories.TxManager,
	regRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletTransactionRepository,
	notifier realtime.Notifier,
) RegistrationService {
	return &registrationService{
		tx:             tx,
		regRepo:        regRepo,
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		notifier:       notifier,
	}
}

// Join занимает слот, списывает entry fee и создаёт регистрацию одной
// транзакцией. Слот занимается условным UPDATE, так что два конкурирующих
// запроса на последний слот не пройдут оба.
func (s *registrationService) Join(ctx context.Context, userID, tournamentID int, gameUID string) (*models.TournamentRegistration, error) {
	if gameUID == "" {
		return nil, ErrGameUIDRequired
	}

	reg := &models.TournamentRegistration{
		TournamentID: tournamentID,
		UserID:       userID,
		GameUID:      gameUID,
	}

	var ledger *models.WalletTransaction

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return mapTournamentRepoError(err)
		}

		if err := s.tournamentRepo.IncrementPlayersIfJoinable(ctx, exec, tournamentID); err != nil {
			return mapTournamentRepoError(err)
		}

		if tournament.EntryFee > 0 {
			if err := s.userRepo.DebitBalanceIfSufficient(ctx, exec, userID, tournament.EntryFee); err != nil {
				if errors.Is(err, repositories.ErrInsufficientBalance) {
					return ErrInsufficientBalance
				}
				return err
			}
			ledger = &models.WalletTransaction{
				UserID:       userID,
				Type:         models.TransactionEntryFee,
				Amount:       -tournament.EntryFee,
				TournamentID: &tournamentID,
			}
			if err := s.walletRepo.Create(ctx, exec, ledger); err != nil {
				return err
			}
		}

		if err := s.regRepo.Create(ctx, exec, reg); err != nil {
			if errors.Is(err, repositories.ErrAlreadyRegistered) {
				return ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if ledger != nil {
		s.notifier.NotifyUser(userID, realtime.Event{Type: realtime.EventWalletTransaction, Payload: ledger})
	}
	return reg, nil
}

// Leave симметричен Join: удаление регистрации, освобождение слота и возврат
// entry fee происходят в одной транзакции.
func (s *registrationService) Leave(ctx context.Context, userID, tournamentID int) error {
	var ledger *models.WalletTransaction

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return mapTournamentRepoError(err)
		}
		if tournament.Status != models.StatusUpcoming {
			return ErrTournamentNotUpcoming
		}

		if err := s.regRepo.Delete(ctx, exec, tournamentID, userID); err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}
		if err := s.tournamentRepo.DecrementPlayers(ctx, exec, tournamentID); err != nil {
			return err
		}

		if tournament.EntryFee > 0 {
			if err := s.userRepo.CreditBalance(ctx, exec, userID, tournament.EntryFee); err != nil {
				return err
			}
			ledger = &models.WalletTransaction{
				UserID:       userID,
				Type:         models.TransactionRefund,
				Amount:       tournament.EntryFee,
				TournamentID: &tournamentID,
			}
			if err := s.walletRepo.Create(ctx, exec, ledger); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	if ledger != nil {
		s.notifier.NotifyUser(userID, realtime.Event{Type: realtime.EventWalletTransaction, Payload: ledger})
	}
	return nil
}

func (s *registrationService) ListByUser(ctx context.Context, userID int) ([]models.TournamentRegistration, error) {
	return s.regRepo.ListByUserID(ctx, userID)
}

func mapTournamentRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentFull):
		return ErrTournamentFull
	case errors.Is(err, repositories.ErrTournamentNotJoinable):
		return ErrRegistrationClosed
	}
	return err
}
