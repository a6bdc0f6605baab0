package utils

import (
	"regexp"
	"time"

	"github.com/Dosada05/ff-arena/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const TokenTTL = 24 * time.Hour

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// GenerateJWT выпускает HS256-токен с user_id и ролями. Роль user добавляется
// всегда: отсутствие записей в user_roles означает обычного пользователя.
func GenerateJWT(secret []byte, user *models.User) (string, error) {
	roles := make([]string, 0, len(user.Roles)+1)
	hasUserRole := false
	for _, role := range user.Roles {
		if role == models.RoleUser {
			hasUserRole = true
		}
		roles = append(roles, string(role))
	}
	if !hasUserRole {
		roles = append(roles, string(models.RoleUser))
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"roles":   roles,
		"iat":     now.Unix(),
		"exp":     now.Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// NewOrderReference генерирует уникальную ссылку заказа для платёжного шлюза.
func NewOrderReference() string {
	return "FFA-" + uuid.NewString()
}
