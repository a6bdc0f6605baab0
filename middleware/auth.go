package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dosada05/ff-arena/models"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userContextKey contextKey = "user"

const (
	jwtClaimUserID = "user_id"
	jwtClaimRoles  = "roles"
)

// Authenticator проверяет Bearer-токены и кладёт claims в контекст запроса.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := a.ParseToken(tokenString)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthenticateOptional кладёт claims в контекст, если токен передан и валиден,
// но пропускает и анонимные запросы. Нужен публичным страницам, которые
// показывают больше данных залогиненным пользователям.
func (a *Authenticator) AuthenticateOptional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.ParseToken(tokenString)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ParseToken валидирует подпись и срок действия токена.
func (a *Authenticator) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Authorize пропускает запрос, если у пользователя есть хотя бы одна из ролей.
// Роли резолвятся при логине и приходят из JWT claims, без обращения к БД.
func Authorize(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRoles, err := GetUserRolesFromContext(r.Context())
			if err != nil {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			for _, required := range roles {
				for _, have := range userRoles {
					if have == required {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("user claims not found in context")
	}

	userIDClaim, ok := claims[jwtClaimUserID]
	if !ok {
		return 0, fmt.Errorf("missing %q claim in token", jwtClaimUserID)
	}

	// encoding/json декодирует числа в float64.
	userIDFloat, ok := userIDClaim.(float64)
	if !ok {
		return 0, fmt.Errorf("invalid type for %q claim: %T", jwtClaimUserID, userIDClaim)
	}

	userID := int(userIDFloat)
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id value in %q claim: %d", jwtClaimUserID, userID)
	}
	return userID, nil
}

func GetUserRolesFromContext(ctx context.Context) ([]models.UserRole, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errors.New("user claims not found in context")
	}

	rolesClaim, ok := claims[jwtClaimRoles]
	if !ok {
		// Токены без явных ролей принадлежат обычным пользователям.
		return []models.UserRole{models.RoleUser}, nil
	}

	rawRoles, ok := rolesClaim.([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid type for %q claim: %T", jwtClaimRoles, rolesClaim)
	}

	roles := make([]models.UserRole, 0, len(rawRoles))
	for _, raw := range rawRoles {
		roleStr, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("invalid role entry in %q claim: %T", jwtClaimRoles, raw)
		}
		roles = append(roles, models.UserRole(roleStr))
	}
	return roles, nil
}
