package models

import "time"

// TransactionType представляет типы записей журнала кошелька, соответствующие ENUM в БД.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionEntryFee   TransactionType = "entry_fee"
	TransactionPrize      TransactionType = "prize"
	TransactionRefund     TransactionType = "refund"
	TransactionAdjustment TransactionType = "adjustment"
)

// WalletTransaction - одна запись append-only журнала кошелька.
// Amount хранится со знаком: кредиты положительные, дебеты отрицательные.
// Запись всегда создаётся в той же транзакции, что и изменение wallet_balance,
// поэтому сумма записей пользователя равна его балансу.
type WalletTransaction struct {
	ID           int             `json:"id" db:"id"`
	UserID       int             `json:"user_id" db:"user_id"`
	Type         TransactionType `json:"type" db:"type"`
	Amount       int             `json:"amount" db:"amount"`
	TournamentID *int            `json:"tournament_id,omitempty" db:"tournament_id"`
	Reference    *string         `json:"reference,omitempty" db:"reference"`
	Note         *string         `json:"note,omitempty" db:"note"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
