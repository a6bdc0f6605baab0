package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/ff-arena/config"
	"github.com/Dosada05/ff-arena/db"
	"github.com/Dosada05/ff-arena/ffstats"
	"github.com/Dosada05/ff-arena/handlers"
	"github.com/Dosada05/ff-arena/middleware"
	"github.com/Dosada05/ff-arena/payment"
	"github.com/Dosada05/ff-arena/realtime"
	"github.com/Dosada05/ff-arena/repositories"
	api "github.com/Dosada05/ff-arena/routes"
	"github.com/Dosada05/ff-arena/services"
	"github.com/Dosada05/ff-arena/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Redis хранит OTP и одноразовые токены подтверждения
	redisClient, err := db.ConnectRedis(context.Background(), cfg.RedisURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("redis connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// WebSocket Hub для пуш-уведомлений
	wsHub := realtime.NewHub()
	go wsHub.Run()

	// Внешние клиенты
	gatewayClient := payment.NewClient(cfg.GatewayBaseURL, cfg.GatewayMerchantID)
	statsClient := ffstats.NewClient(cfg.FFStatsBaseURL)

	// Репозитории
	txManager := repositories.NewSQLTxManager(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	roleRepo := repositories.NewPostgresRoleRepository(dbConn)
	walletRepo := repositories.NewPostgresWalletTransactionRepository(dbConn)
	depositRepo := repositories.NewPostgresDepositRepository(dbConn)
	withdrawalRepo := repositories.NewPostgresWithdrawalRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	logger.Info("repositories initialized")

	// Сервисы
	tokenStore := services.NewRedisTokenStore(redisClient)
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(userRepo, roleRepo, tokenStore, emailService, cfg.FrontendBaseURL, logger)
	userService := services.NewUserService(userRepo, roleRepo, uploader, logger)
	walletService := services.NewWalletService(txManager, userRepo, walletRepo, wsHub)
	depositService := services.NewDepositService(txManager, depositRepo, userRepo, walletRepo, gatewayClient, wsHub, emailService, logger)
	withdrawalService := services.NewWithdrawalService(txManager, withdrawalRepo, userRepo, walletRepo, wsHub, emailService, logger)
	registrationService := services.NewRegistrationService(txManager, registrationRepo, tournamentRepo, userRepo, walletRepo, wsHub)
	tournamentService := services.NewTournamentService(txManager, tournamentRepo, registrationRepo, userRepo, walletRepo, uploader, wsHub, logger)
	adminService := services.NewAdminService(userRepo, roleRepo, tournamentRepo, depositRepo, withdrawalRepo, walletRepo)
	statsService := services.NewStatsService(statsClient)
	logger.Info("services initialized")

	// Планировщик перевода турниров в live
	scheduler, err := services.NewScheduler(tournamentService, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Error("failed to stop scheduler", slog.Any("error", err))
		}
	}()

	// HTTP-обработчики
	authenticator := middleware.NewAuthenticator([]byte(cfg.JWTSecretKey))
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	walletHandler := handlers.NewWalletHandler(walletService)
	depositHandler := handlers.NewDepositHandler(depositService)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, registrationService)
	adminHandler := handlers.NewAdminHandler(adminService)
	statsHandler := handlers.NewStatsHandler(statsService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, authenticator)

	// Маршрутизатор
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		userHandler,
		walletHandler,
		depositHandler,
		withdrawalHandler,
		tournamentHandler,
		adminHandler,
		statsHandler,
		wsHandler,
	)
	logger.Info("routes configured")

	// HTTP-сервер
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
