package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Balance   float64   `json:"balance"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Transaction struct {
	ID          int64     `json:"id"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Date        string    `json:"date,omitempty"`
	AccountID   int64     `json:"accountId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Transaction types
const (
	TransactionDeposit    = "deposit"
	TransactionWithdrawal = "withdrawal"
)
