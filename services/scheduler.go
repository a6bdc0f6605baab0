package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const tournamentStartInterval = time.Minute

// Scheduler запускает фоновые задачи платформы. Пока единственная задача -
// перевод турниров в live по наступлению start_time.
type Scheduler struct {
	scheduler   gocron.Scheduler
	tournaments TournamentService
	logger      *slog.Logger
}

func NewScheduler(tournaments TournamentService, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		scheduler:   s,
		tournaments: tournaments,
		logger:      logger,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(tournamentStartInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.tournaments.StartDueTournaments(ctx); err != nil {
				s.logger.Error("scheduled tournament start failed", slog.Any("error", err))
			}
		}),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	s.logger.Info("scheduler started", slog.Duration("tournament_start_interval", tournamentStartInterval))
	return nil
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
