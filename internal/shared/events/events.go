package events

import "time"

// Event types
const (
	UserRegistered     = "user.registered"
	AccountCreated     = "account.created"
	TransactionCreated = "transaction.created"
	BalanceUpdated     = "balance.updated"
)

// Stream names
const (
	UserEventsStream        = "user.events"
	AccountEventsStream     = "account.events"
	TransactionEventsStream = "transaction.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type UserRegisteredEvent struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type AccountCreatedEvent struct {
	AccountID int64  `json:"accountId"`
	UserID    int64  `json:"userId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
}

type TransactionCreatedEvent struct {
	TransactionID int64   `json:"transactionId"`
	AccountID     int64   `json:"accountId"`
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
}

type BalanceUpdatedEvent struct {
	AccountID  int64   `json:"accountId"`
	NewBalance float64 `json:"newBalance"`
	Change     float64 `json:"change"`
}
