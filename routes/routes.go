package routes

import (
	"github.com/Dosada05/ff-arena/handlers"
	"github.com/Dosada05/ff-arena/middleware"
	"github.com/Dosada05/ff-arena/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	walletHandler *handlers.WalletHandler,
	depositHandler *handlers.DepositHandler,
	withdrawalHandler *handlers.WithdrawalHandler,
	tournamentHandler *handlers.TournamentHandler,
	adminHandler *handlers.AdminHandler,
	statsHandler *handlers.StatsHandler,
	wsHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Аутентификация
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/verify-otp", authHandler.VerifyOTP)
		r.Post("/resend-verification", authHandler.ResendVerification)
		r.Get("/verify-email", authHandler.VerifyEmailToken)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
	})

	// Публичные данные
	router.Get("/leaderboard", userHandler.Leaderboard)
	router.Get("/players/{accountID}/stats", statsHandler.PlayerStats)

	// Турниры
	router.Route("/tournaments", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.AuthenticateOptional)
			r.Get("/", tournamentHandler.List)
			r.Get("/{tournamentID}", tournamentHandler.GetByID)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/{tournamentID}/join", tournamentHandler.Join)
			r.Delete("/{tournamentID}/leave", tournamentHandler.Leave)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleModerator))
			r.Post("/", tournamentHandler.Create)
			r.Put("/{tournamentID}", tournamentHandler.Update)
			r.Put("/{tournamentID}/room", tournamentHandler.SetRoomCredentials)
			r.Post("/{tournamentID}/banner", tournamentHandler.UploadBanner)
			r.Post("/{tournamentID}/cancel", tournamentHandler.Cancel)
			r.Post("/{tournamentID}/results", tournamentHandler.DeclareResults)
		})
	})

	// Личный кабинет
	router.Route("/me", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/", userHandler.GetProfile)
		r.Put("/", userHandler.UpdateProfile)
		r.Put("/upi", userHandler.SetUPIID)
		r.Post("/avatar", userHandler.UploadAvatar)
		r.Get("/registrations", tournamentHandler.MyRegistrations)

		r.Get("/wallet", walletHandler.Balance)
		r.Get("/wallet/transactions", walletHandler.ListTransactions)

		r.Post("/deposits", depositHandler.Create)
		r.Post("/deposits/order", depositHandler.InitiateOrder)
		r.Post("/deposits/verify", depositHandler.Verify)
		r.Get("/deposits", depositHandler.ListMine)

		r.Post("/withdrawals", withdrawalHandler.Create)
		r.Get("/withdrawals", withdrawalHandler.ListMine)
	})

	// Админка: модерация заявок доступна и модераторам,
	// управление ролями и балансами - только админам.
	router.Route("/admin", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleModerator))
			r.Get("/deposits", depositHandler.List)
			r.Post("/deposits/{requestID}/approve", depositHandler.Approve)
			r.Post("/deposits/{requestID}/reject", depositHandler.Reject)
			r.Get("/withdrawals", withdrawalHandler.List)
			r.Post("/withdrawals/{requestID}/approve", withdrawalHandler.Approve)
			r.Post("/withdrawals/{requestID}/reject", withdrawalHandler.Reject)
			r.Get("/dashboard", adminHandler.Dashboard)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Get("/users", adminHandler.ListUsers)
			r.Post("/users/{userID}/roles", adminHandler.AddRole)
			r.Delete("/users/{userID}/roles", adminHandler.RemoveRole)
			r.Post("/wallet/adjust", walletHandler.Adjust)
			r.Get("/wallet/{userID}/transactions", walletHandler.ListUserTransactions)
			r.Get("/wallet/{userID}/reconcile", walletHandler.Reconcile)
		})
	})

	// WebSocket-уведомления
	router.Get("/ws", wsHandler.ServeWs)
}
