package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrDepositTooSmall        = errors.New("deposit amount must be at least 10")
	ErrWithdrawalTooSmall     = errors.New("withdrawal amount must be at least 100")
	ErrUPIIDRequired          = errors.New("payout UPI id is not set on the profile")
	ErrGameUIDRequired        = errors.New("game uid is required to join a tournament")
	ErrInsufficientBalance    = errors.New("insufficient wallet balance")
	ErrAmountMustBePositive   = errors.New("amount must be positive")
	ErrBalanceWouldGoNegative = errors.New("adjustment would make the balance negative")
	ErrRegistrationClosed     = errors.New("tournament is not open for registration")
	ErrTournamentFull         = errors.New("tournament registration is full")
	ErrTournamentNotUpcoming  = errors.New("operation allowed only for upcoming tournaments")
	ErrTournamentNotLive      = errors.New("operation allowed only for live tournaments")
	ErrWinnerNotRegistered    = errors.New("winner must be a registered participant")
	ErrOTPInvalid             = errors.New("otp is invalid or expired")
	ErrVerifyTokenInvalid     = errors.New("verification token is invalid or expired")
	ErrEmailAlreadyConfirmed  = errors.New("email already confirmed")
	ErrEmailNotConfirmed      = errors.New("email is not confirmed")
	ErrPaymentNotConfirmed    = errors.New("payment is not confirmed by the gateway")
	ErrPaymentAmountMismatch  = errors.New("claimed amount does not match the gateway amount")

	// Ошибки конфликтов
	ErrUserEmailConflict     = errors.New("email address is already in use")
	ErrUserNicknameConflict  = errors.New("nickname is already in use")
	ErrAlreadyRegistered     = errors.New("already registered for this tournament")
	ErrRoleAlreadyAssigned   = errors.New("user already has this role")
	ErrDepositDuplicateRef   = errors.New("deposit with this transaction id already submitted")
	ErrRequestAlreadyHandled = errors.New("request has already been processed")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrCannotRemoveOwnAdmin   = errors.New("cannot remove your own admin role")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound         = errors.New("user not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("tournament registration not found")
	ErrDepositNotFound      = errors.New("deposit request not found")
	ErrWithdrawalNotFound   = errors.New("withdrawal request not found")

	// Ошибки турниров
	ErrTournamentInvalidEntryFee  = errors.New("tournament entry fee must not be negative")
	ErrTournamentInvalidCapacity  = errors.New("tournament max players must be positive")
	ErrTournamentInvalidStartTime = errors.New("tournament start time must be in the future")
	ErrTournamentTitleRequired    = errors.New("tournament title is required")
	ErrTournamentInvalidMode      = errors.New("invalid tournament mode")
)
