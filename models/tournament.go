package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusLive      TournamentStatus = "live"
	StatusCompleted TournamentStatus = "completed"
	StatusCancelled TournamentStatus = "cancelled"
)

// TournamentMode представляет режим игры.
type TournamentMode string

const (
	ModeSolo  TournamentMode = "solo"
	ModeDuo   TournamentMode = "duo"
	ModeSquad TournamentMode = "squad"
)

// Tournament представляет турнир Free Fire.
type Tournament struct {
	ID             int              `json:"id" db:"id"`
	Title          string           `json:"title" db:"title"`
	Description    *string          `json:"description,omitempty" db:"description"`
	Mode           TournamentMode   `json:"mode" db:"mode"`
	EntryFee       int              `json:"entry_fee" db:"entry_fee"`
	PrizePool      int              `json:"prize_pool" db:"prize_pool"`
	PerKillReward  int              `json:"per_kill_reward" db:"per_kill_reward"`
	MaxPlayers     int              `json:"max_players" db:"max_players"`
	CurrentPlayers int              `json:"current_players" db:"current_players"`
	RoomID         *string          `json:"room_id,omitempty" db:"room_id"`
	RoomPassword   *string          `json:"room_password,omitempty" db:"room_password"`
	StartTime      time.Time        `json:"start_time" db:"start_time"`
	Status         TournamentStatus `json:"status" db:"status"`
	WinnerUserID   *int             `json:"winner_user_id,omitempty" db:"winner_user_id"`
	BannerKey      *string          `json:"-" db:"banner_key"`
	BannerURL      *string          `json:"banner_url,omitempty" db:"-"`
	CreatedBy      int              `json:"created_by" db:"created_by"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Registrations []TournamentRegistration `json:"registrations,omitempty" db:"-"`
}
