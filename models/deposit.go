package models

import "time"

// RequestStatus представляет статусы заявок на пополнение и вывод.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// DepositRequest - заявка пользователя на пополнение кошелька через UPI.
// Баланс кредитуется только при переходе pending -> approved.
type DepositRequest struct {
	ID               int           `json:"id" db:"id"`
	UserID           int           `json:"user_id" db:"user_id"`
	Amount           int           `json:"amount" db:"amount"`
	UPITransactionID string        `json:"upi_transaction_id" db:"upi_transaction_id"`
	Status           RequestStatus `json:"status" db:"status"`
	ProcessedBy      *int          `json:"processed_by,omitempty" db:"processed_by"`
	ProcessedAt      *time.Time    `json:"processed_at,omitempty" db:"processed_at"`
	Notes            *string       `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
