package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"strconv"
	"time"

	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/repositories"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpTTL         = 10 * time.Minute
	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = 1 * time.Hour

	minPasswordLength = 8
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	VerifyOTP(ctx context.Context, email, code string) error
	SendVerificationLink(ctx context.Context, email string) error
	VerifyEmailToken(ctx context.Context, email, token string) error
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	GeneratePasswordResetToken(ctx context.Context, email string) (string, error)
	ResetPasswordByToken(ctx context.Context, token string, newPassword string) error
}

type RegisterInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Nickname  *string `json:"nickname,omitempty"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	userRepo        repositories.UserRepository
	roleRepo        repositories.RoleRepository
	tokens          TokenStore
	email           EmailSender
	frontendBaseURL string
	logger          *slog.Logger
}

func NewAuthService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	tokens TokenStore,
	email EmailSender,
	frontendBaseURL string,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:        userRepo,
		roleRepo:        roleRepo,
		tokens:          tokens,
		email:           email,
		frontendBaseURL: frontendBaseURL,
		logger:          logger,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Nickname:     input.Nickname,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		case errors.Is(err, repositories.ErrUserNicknameConflict):
			return nil, ErrUserNicknameConflict
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	code := generateOTP()
	if err := s.tokens.Set(ctx, otpKey(user.Email), code, otpTTL); err != nil {
		return nil, err
	}
	if err := s.email.SendOTPEmail(user.Email, code); err != nil {
		// Регистрацию не откатываем: код можно запросить повторно.
		s.logger.Error("failed to send otp email", slog.String("email", user.Email), slog.Any("error", err))
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) VerifyOTP(ctx context.Context, email, code string) error {
	stored, err := s.tokens.Get(ctx, otpKey(email))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return ErrOTPInvalid
		}
		return err
	}
	if stored != code {
		return ErrOTPInvalid
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrOTPInvalid // не раскрываем, зарегистрирован ли email
		}
		return err
	}
	if user.EmailConfirmed {
		return ErrEmailAlreadyConfirmed
	}

	if err := s.userRepo.ConfirmEmail(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	// Код одноразовый: удаляем только после успешного подтверждения.
	_ = s.tokens.Delete(ctx, otpKey(email))
	return nil
}

func (s *authService) SendVerificationLink(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Не раскрываем, зарегистрирован ли email.
			return nil
		}
		return err
	}
	if user.EmailConfirmed {
		return ErrEmailAlreadyConfirmed
	}

	token := generateHexToken(32)
	if err := s.tokens.Set(ctx, verifyKey(token), email, verifyTokenTTL); err != nil {
		return err
	}

	verifyURL := fmt.Sprintf("%s/verify-email?token=%s&email=%s",
		s.frontendBaseURL, token, url.QueryEscape(email))
	if err := s.email.SendVerificationEmail(email, verifyURL); err != nil {
		return fmt.Errorf("ошибка отправки письма подтверждения: %w", err)
	}
	return nil
}

func (s *authService) VerifyEmailToken(ctx context.Context, email, token string) error {
	storedEmail, err := s.tokens.GetAndDelete(ctx, verifyKey(token))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return ErrVerifyTokenInvalid
		}
		return err
	}
	if storedEmail != email {
		return ErrVerifyTokenInvalid
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrVerifyTokenInvalid
		}
		return err
	}
	if user.EmailConfirmed {
		return ErrEmailAlreadyConfirmed
	}

	if err := s.userRepo.ConfirmEmail(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	if !user.EmailConfirmed {
		return nil, ErrEmailNotConfirmed
	}

	// Роли резолвятся один раз на сессию и попадают в JWT claims.
	roles, err := s.roleRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user roles: %w", err)
	}
	user.Roles = roles

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) GeneratePasswordResetToken(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Не раскрываем, зарегистрирован ли email
		return "", nil
	}
	resetToken := generateHexToken(32)
	if err := s.tokens.Set(ctx, resetKey(resetToken), strconv.Itoa(user.ID), resetTokenTTL); err != nil {
		return "", err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendBaseURL, resetToken)
	if err := s.email.SendPasswordResetEmail(email, resetURL); err != nil {
		s.logger.Error("failed to send password reset email", slog.String("email", email), slog.Any("error", err))
	}
	return resetToken, nil
}

func (s *authService) ResetPasswordByToken(ctx context.Context, token string, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	userIDStr, err := s.tokens.GetAndDelete(ctx, resetKey(token))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return ErrVerifyTokenInvalid
		}
		return err
	}
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		return ErrVerifyTokenInvalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, string(hashedPassword)); err != nil {
		return fmt.Errorf("ошибка обновления пароля: %w", err)
	}
	return nil
}

func otpKey(email string) string    { return "otp:" + email }
func verifyKey(token string) string { return "verify:" + token }
func resetKey(token string) string  { return "pwreset:" + token }

func generateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand практически не падает; fallback на время не используем.
		panic(fmt.Sprintf("crypto/rand failure: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64())
}

func generateHexToken(byteLen int) string {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failure: %v", err))
	}
	return hex.EncodeToString(b)
}
