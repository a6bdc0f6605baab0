package models

import "time"

// UserRole соответствует ENUM user_role в БД.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
	RoleUser      UserRole = "user"
)

// User представляет профиль игрока вместе с его кошельком.
type User struct {
	ID             int       `json:"id" db:"id"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	Nickname       *string   `json:"nickname,omitempty" db:"nickname"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	EmailConfirmed bool      `json:"email_confirmed" db:"email_confirmed"`
	WalletBalance  int       `json:"wallet_balance" db:"wallet_balance"`
	TotalWins      int       `json:"total_wins" db:"total_wins"`
	TotalEarnings  int       `json:"total_earnings" db:"total_earnings"`
	UPIID          *string   `json:"upi_id,omitempty" db:"upi_id"`
	AvatarKey      *string   `json:"-" db:"avatar_key"`
	AvatarURL      *string   `json:"avatar_url,omitempty" db:"-"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	// Роли не мапятся напрямую, подгружаются из user_roles.
	Roles []UserRole `json:"roles,omitempty" db:"-"`
}

// HasRole проверяет явную роль; отсутствие записей означает обычного пользователя.
func (u *User) HasRole(role UserRole) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
