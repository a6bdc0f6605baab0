package models

import "time"

// WithdrawalRequest - заявка на вывод средств.
// Баланс дебетуется при создании (эскроу) и возвращается только при отклонении.
type WithdrawalRequest struct {
	ID          int           `json:"id" db:"id"`
	UserID      int           `json:"user_id" db:"user_id"`
	Amount      int           `json:"amount" db:"amount"`
	UPIID       string        `json:"upi_id" db:"upi_id"`
	Status      RequestStatus `json:"status" db:"status"`
	ProcessedBy *int          `json:"processed_by,omitempty" db:"processed_by"`
	ProcessedAt *time.Time    `json:"processed_at,omitempty" db:"processed_at"`
	Notes       *string       `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
