package models

import "time"

// TournamentRegistration - участие пользователя в турнире.
// Уникально по (tournament_id, user_id); существование записи означает,
// что entry fee уже списан.
type TournamentRegistration struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	GameUID      string    `json:"game_uid" db:"game_uid"`
	Kills        int       `json:"kills" db:"kills"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
