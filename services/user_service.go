package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/repositories"
	"github.com/Dosada05/ff-arena/storage"
	"github.com/google/uuid"
)

const defaultLeaderboardLimit = 50

type UpdateProfileInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Nickname  *string `json:"nickname,omitempty"`
}

type UserService interface {
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
	SetUPIID(ctx context.Context, userID int, upiID string) error
	UploadAvatar(ctx context.Context, userID int, contentType string, avatar io.Reader) (*models.User, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type userService struct {
	userRepo repositories.UserRepository
	roleRepo repositories.RoleRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewUserService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	roles, err := s.roleRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user roles: %w", err)
	}
	user.Roles = roles

	user.PasswordHash = ""
	populateUserAvatarURL(user, s.uploader)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, fmt.Errorf("%w: first name cannot be empty", ErrValidationFailed)
		}
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Nickname != nil {
		if *input.Nickname == "" {
			user.Nickname = nil
		} else {
			user.Nickname = input.Nickname
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserNicknameConflict) {
			return nil, ErrUserNicknameConflict
		}
		return nil, err
	}

	user.PasswordHash = ""
	populateUserAvatarURL(user, s.uploader)
	return user, nil
}

// SetUPIID сохраняет UPI-адрес для выплат. Пустая строка очищает его.
func (s *userService) SetUPIID(ctx context.Context, userID int, upiID string) error {
	upiID = strings.TrimSpace(upiID)
	if upiID == "" {
		if err := s.userRepo.UpdateUPIID(ctx, userID, nil); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	}

	// Формат vpa: "name@bank". Глубже не валидируем, финальную проверку
	// делает банк при выплате.
	if !strings.Contains(upiID, "@") || strings.HasPrefix(upiID, "@") || strings.HasSuffix(upiID, "@") {
		return fmt.Errorf("%w: invalid upi id format", ErrValidationFailed)
	}

	if err := s.userRepo.UpdateUPIID(ctx, userID, &upiID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, contentType string, avatar io.Reader) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("avatars/%d/%s", userID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, avatar)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.AvatarKey
	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &result.Key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != "" {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete old avatar", slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	user.AvatarKey = &result.Key
	user.PasswordHash = ""
	populateUserAvatarURL(user, s.uploader)
	return user, nil
}

func (s *userService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > defaultLeaderboardLimit {
		limit = defaultLeaderboardLimit
	}

	entries, err := s.userRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].AvatarURL != nil && *entries[i].AvatarURL != "" {
			// Репозиторий кладёт в поле ключ объекта; превращаем его в URL.
			url := s.uploader.GetPublicURL(*entries[i].AvatarURL)
			entries[i].AvatarURL = &url
		}
	}
	return entries, nil
}
