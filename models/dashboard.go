package models

type DashboardStats struct {
	UsersTotal          int `json:"users_total"`
	TournamentsTotal    int `json:"tournaments_total"`
	LiveTournaments     int `json:"live_tournaments"`
	PendingDeposits     int `json:"pending_deposits"`
	PendingWithdrawals  int `json:"pending_withdrawals"`
	TotalDepositVolume  int `json:"total_deposit_volume"`
	TotalWithdrawVolume int `json:"total_withdraw_volume"`
}

// LeaderboardEntry - строка публичного лидерборда по выигрышам.
type LeaderboardEntry struct {
	UserID        int     `json:"user_id"`
	Nickname      *string `json:"nickname,omitempty"`
	FirstName     string  `json:"first_name"`
	AvatarURL     *string `json:"avatar_url,omitempty"`
	TotalWins     int     `json:"total_wins"`
	TotalEarnings int     `json:"total_earnings"`
}
