package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/realtime"
	"github.com/Dosada05/ff-arena/repositories"
	"github.com/Dosada05/ff-arena/storage"
	"github.com/google/uuid"
)

type CreateTournamentInput struct {
	Title         string                `json:"title"`
	Description   *string               `json:"description,omitempty"`
	Mode          models.TournamentMode `json:"mode"`
	EntryFee      int                   `json:"entry_fee"`
	PrizePool     int                   `json:"prize_pool"`
	PerKillReward int                   `json:"per_kill_reward"`
	MaxPlayers    int                   `json:"max_players"`
	StartTime     time.Time             `json:"start_time"`
}

type UpdateTournamentInput struct {
	Title         *string                `json:"title,omitempty"`
	Description   *string                `json:"description,omitempty"`
	Mode          *models.TournamentMode `json:"mode,omitempty"`
	EntryFee      *int                   `json:"entry_fee,omitempty"`
	PrizePool     *int                   `json:"prize_pool,omitempty"`
	PerKillReward *int                   `json:"per_kill_reward,omitempty"`
	MaxPlayers    *int                   `json:"max_players,omitempty"`
	StartTime     *time.Time             `json:"start_time,omitempty"`
}

type KillCount struct {
	UserID int `json:"user_id"`
	Kills  int `json:"kills"`
}

type DeclareResultsInput struct {
	WinnerUserID int         `json:"winner_user_id"`
	Kills        []KillCount `json:"kills,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, creatorID int, input CreateTournamentInput) (*models.Tournament, error)
	Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int, viewerID int, viewerIsStaff bool) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	SetRoomCredentials(ctx context.Context, id int, roomID, roomPassword *string) error
	UploadBanner(ctx context.Context, id int, contentType string, banner io.Reader) (*models.Tournament, error)
	Cancel(ctx context.Context, id int) error
	DeclareResults(ctx context.Context, id int, input DeclareResultsInput) (*models.Tournament, error)
	StartDueTournaments(ctx context.Context) error
}

type tournamentService struct {
	tx             repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	regRepo        repositories.RegistrationRepository
	userRepo       repositories.UserRepository
	walletRepo     repositories.WalletTransactionRepository
	uploader       storage.FileUploader
	notifier       realtime.Notifier
	logger         *slog.Logger
}

func NewTournamentService(
	tx repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	regRepo repositories.RegistrationRepository,
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletTransactionRepository,
	uploader storage.FileUploader,
	notifier realtime.Notifier,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		regRepo:        regRepo,
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		uploader:       uploader,
		notifier:       notifier,
		logger:         logger,
	}
}

func validTournamentMode(mode models.TournamentMode) bool {
	switch mode {
	case models.ModeSolo, models.ModeDuo, models.ModeSquad:
		return true
	}
	return false
}

func (s *tournamentService) Create(ctx context.Context, creatorID int, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Title == "" {
		return nil, ErrTournamentTitleRequired
	}
	if !validTournamentMode(input.Mode) {
		return nil, ErrTournamentInvalidMode
	}
	if input.EntryFee < 0 {
		return nil, ErrTournamentInvalidEntryFee
	}
	if input.MaxPlayers <= 0 {
		return nil, ErrTournamentInvalidCapacity
	}
	if !input.StartTime.After(time.Now()) {
		return nil, ErrTournamentInvalidStartTime
	}

	t := &models.Tournament{
		Title:         input.Title,
		Description:   input.Description,
		Mode:          input.Mode,
		EntryFee:      input.EntryFee,
		PrizePool:     input.PrizePool,
		PerKillReward: input.PerKillReward,
		MaxPlayers:    input.MaxPlayers,
		StartTime:     input.StartTime,
		Status:        models.StatusUpcoming,
		CreatedBy:     creatorID,
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return t, nil
}

func (s *tournamentService) Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if t.Status != models.StatusUpcoming {
		return nil, ErrTournamentNotUpcoming
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTournamentTitleRequired
		}
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Mode != nil {
		if !validTournamentMode(*input.Mode) {
			return nil, ErrTournamentInvalidMode
		}
		t.Mode = *input.Mode
	}
	if input.EntryFee != nil {
		if *input.EntryFee < 0 {
			return nil, ErrTournamentInvalidEntryFee
		}
		t.EntryFee = *input.EntryFee
	}
	if input.PrizePool != nil {
		t.PrizePool = *input.PrizePool
	}
	if input.PerKillReward != nil {
		t.PerKillReward = *input.PerKillReward
	}
	if input.MaxPlayers != nil {
		if *input.MaxPlayers < t.CurrentPlayers || *input.MaxPlayers <= 0 {
			return nil, ErrTournamentInvalidCapacity
		}
		t.MaxPlayers = *input.MaxPlayers
	}
	if input.StartTime != nil {
		t.StartTime = *input.StartTime
	}

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return t, nil
}

// GetByID возвращает турнир со списком участников. Данные комнаты видят
// только зарегистрированные игроки и персонал.
func (s *tournamentService) GetByID(ctx context.Context, id int, viewerID int, viewerIsStaff bool) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	registrations, err := s.regRepo.ListByTournament(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}
	t.Registrations = registrations
	populateRegistrationAvatarURLs(registrations, s.uploader)
	populateTournamentBannerURL(t, s.uploader)

	if !viewerIsStaff && !isRegistered(registrations, viewerID) {
		t.RoomID = nil
		t.RoomPassword = nil
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		// В списках данные комнаты не отдаём никому.
		tournaments[i].RoomID = nil
		tournaments[i].RoomPassword = nil
		populateTournamentBannerURL(&tournaments[i], s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) SetRoomCredentials(ctx context.Context, id int, roomID, roomPassword *string) error {
	if err := s.tournamentRepo.UpdateRoomCredentials(ctx, id, roomID, roomPassword); err != nil {
		return mapTournamentRepoError(err)
	}
	s.notifyRegistrants(ctx, id, realtime.Event{
		Type:    realtime.EventTournamentStatus,
		Payload: map[string]interface{}{"tournament_id": id, "room_updated": true},
	})
	return nil
}

func (s *tournamentService) UploadBanner(ctx context.Context, id int, contentType string, banner io.Reader) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	key := fmt.Sprintf("tournaments/%d/banner-%s", id, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, banner)
	if err != nil {
		return nil, fmt.Errorf("failed to upload banner: %w", err)
	}

	oldKey := t.BannerKey
	if err := s.tournamentRepo.UpdateBannerKey(ctx, id, &result.Key); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if oldKey != nil && *oldKey != "" {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete old banner", slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	t.BannerKey = &result.Key
	populateTournamentBannerURL(t, s.uploader)
	return t, nil
}

// Cancel переводит турнир в cancelled и возвращает entry fee каждому
// зарегистрированному игроку в одной транзакции.
func (s *tournamentService) Cancel(ctx context.Context, id int) error {
	var refunded []models.TournamentRegistration
	var entryFee int

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapTournamentRepoError(err)
		}
		if t.Status == models.StatusCompleted || t.Status == models.StatusCancelled {
			return ErrTournamentNotUpcoming
		}
		entryFee = t.EntryFee

		if err := s.tournamentRepo.UpdateStatus(ctx, exec, id, models.StatusCancelled); err != nil {
			return mapTournamentRepoError(err)
		}

		registrations, err := s.regRepo.ListByTournament(ctx, exec, id)
		if err != nil {
			return fmt.Errorf("failed to load registrations for refund: %w", err)
		}
		if entryFee > 0 {
			for _, reg := range registrations {
				if err := s.userRepo.CreditBalance(ctx, exec, reg.UserID, entryFee); err != nil {
					return err
				}
				ledger := &models.WalletTransaction{
					UserID:       reg.UserID,
					Type:         models.TransactionRefund,
					Amount:       entryFee,
					TournamentID: &id,
				}
				if err := s.walletRepo.Create(ctx, exec, ledger); err != nil {
					return err
				}
			}
		}
		refunded = registrations
		return nil
	})
	if txErr != nil {
		return txErr
	}

	event := realtime.Event{
		Type:    realtime.EventTournamentStatus,
		Payload: map[string]interface{}{"tournament_id": id, "status": models.StatusCancelled},
	}
	for _, reg := range refunded {
		s.notifier.NotifyUser(reg.UserID, event)
	}
	return nil
}

// DeclareResults завершает live-турнир: фиксирует киллы, начисляет призовой
// фонд победителю и покилловые награды всем участникам.
func (s *tournamentService) DeclareResults(ctx context.Context, id int, input DeclareResultsInput) (*models.Tournament, error) {
	var t *models.Tournament
	var registrations []models.TournamentRegistration

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		t, err = s.tournamentRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapTournamentRepoError(err)
		}
		if t.Status != models.StatusLive {
			return ErrTournamentNotLive
		}

		registrations, err = s.regRepo.ListByTournament(ctx, exec, id)
		if err != nil {
			return fmt.Errorf("failed to load registrations: %w", err)
		}
		if !isRegistered(registrations, input.WinnerUserID) {
			return ErrWinnerNotRegistered
		}

		kills := make(map[int]int, len(input.Kills))
		for _, kc := range input.Kills {
			if !isRegistered(registrations, kc.UserID) {
				return fmt.Errorf("%w: user %d has kills but no registration", ErrValidationFailed, kc.UserID)
			}
			kills[kc.UserID] = kc.Kills
			if err := s.regRepo.UpdateKills(ctx, exec, id, kc.UserID, kc.Kills); err != nil {
				return err
			}
		}

		if t.PrizePool > 0 {
			if err := s.userRepo.AddWinnings(ctx, exec, input.WinnerUserID, t.PrizePool, 1); err != nil {
				return err
			}
			note := fmt.Sprintf("prize pool: %s", t.Title)
			ledger := &models.WalletTransaction{
				UserID:       input.WinnerUserID,
				Type:         models.TransactionPrize,
				Amount:       t.PrizePool,
				TournamentID: &id,
				Note:         &note,
			}
			if err := s.walletRepo.Create(ctx, exec, ledger); err != nil {
				return err
			}
		}

		if t.PerKillReward > 0 {
			for userID, killCount := range kills {
				reward := killCount * t.PerKillReward
				if reward == 0 {
					continue
				}
				if err := s.userRepo.AddWinnings(ctx, exec, userID, reward, 0); err != nil {
					return err
				}
				note := fmt.Sprintf("%d kills x %d", killCount, t.PerKillReward)
				ledger := &models.WalletTransaction{
					UserID:       userID,
					Type:         models.TransactionPrize,
					Amount:       reward,
					TournamentID: &id,
					Note:         &note,
				}
				if err := s.walletRepo.Create(ctx, exec, ledger); err != nil {
					return err
				}
			}
		}

		if err := s.tournamentRepo.SetWinner(ctx, exec, id, input.WinnerUserID); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateStatus(ctx, exec, id, models.StatusCompleted)
	})
	if txErr != nil {
		return nil, txErr
	}

	t.Status = models.StatusCompleted
	t.WinnerUserID = &input.WinnerUserID

	event := realtime.Event{
		Type:    realtime.EventTournamentStatus,
		Payload: map[string]interface{}{"tournament_id": id, "status": models.StatusCompleted, "winner_user_id": input.WinnerUserID},
	}
	for _, reg := range registrations {
		s.notifier.NotifyUser(reg.UserID, event)
	}
	return t, nil
}

// StartDueTournaments переводит upcoming-турниры в live по наступлению
// start_time. Вызывается планировщиком.
func (s *tournamentService) StartDueTournaments(ctx context.Context) error {
	due, err := s.tournamentRepo.ListDueForStart(ctx, nil, time.Now())
	if err != nil {
		return err
	}

	for _, t := range due {
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, models.StatusLive); err != nil {
			s.logger.Error("failed to start tournament", slog.Int("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		s.logger.Info("tournament started", slog.Int("tournament_id", t.ID), slog.String("title", t.Title))
		s.notifyRegistrants(ctx, t.ID, realtime.Event{
			Type:    realtime.EventTournamentStatus,
			Payload: map[string]interface{}{"tournament_id": t.ID, "status": models.StatusLive},
		})
	}
	return nil
}

func (s *tournamentService) notifyRegistrants(ctx context.Context, tournamentID int, event realtime.Event) {
	registrations, err := s.regRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		s.logger.Error("failed to load registrations for notification", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	for _, reg := range registrations {
		s.notifier.NotifyUser(reg.UserID, event)
	}
}

func isRegistered(registrations []models.TournamentRegistration, userID int) bool {
	for _, reg := range registrations {
		if reg.UserID == userID {
			return true
		}
	}
	return false
}
