package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mahsa-meymari/FinancialTracker/internal/account/repository"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/events"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/models"
)

// AccountStore is the persistence surface AccountService depends on.
type AccountStore interface {
	Create(account *models.Account) error
	GetByID(id int64) (*models.Account, error)
	ListByUserID(userID int64) ([]models.Account, error)
	UpdateBalance(id int64, newBalance float64) error
}

// UserChecker validates the acting user against the identity service.
// A nil return means the user exists; ownership.ErrUserNotFound and
// *ownership.DependencyError pass through unchanged.
type UserChecker interface {
	UserExists(ctx context.Context, userID int64) error
}

// EventPublisher publishes domain events to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// ProcessedMarker deduplicates transaction events across redeliveries.
// IsProcessed is consulted before a balance write; MarkProcessed is called
// only after the write succeeds.
type ProcessedMarker interface {
	IsProcessed(ctx context.Context, transactionID int64) bool
	MarkProcessed(ctx context.Context, transactionID int64) error
}

// AccountService owns accounts: creation (gated on the acting user existing),
// listing, the ownership check other services delegate to, and the balance
// projection driven by transaction events.
type AccountService struct {
	accounts  AccountStore
	users     UserChecker
	publisher EventPublisher
	processed ProcessedMarker
}

func NewAccountService(accounts AccountStore, users UserChecker, publisher EventPublisher, processed ProcessedMarker) *AccountService {
	return &AccountService{accounts: accounts, users: users, publisher: publisher, processed: processed}
}

// CreateAccount validates the acting user through the identity service
// before any write. The validation error passes through so the handler can
// distinguish a missing user from an unreachable dependency.
func (s *AccountService) CreateAccount(ctx context.Context, userID int64, name, accountType string, balance float64) (*models.Account, error) {
	if err := s.users.UserExists(ctx, userID); err != nil {
		return nil, err
	}

	account := &models.Account{
		Name:      name,
		Type:      accountType,
		Balance:   balance,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountCreated, events.AccountCreatedEvent{
		AccountID: account.ID,
		UserID:    account.UserID,
		Name:      account.Name,
		Type:      account.Type,
	}); err != nil {
		log.Printf("Failed to publish account.created event: %v", err)
	}
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, userID int64) ([]models.Account, error) {
	return s.accounts.ListByUserID(userID)
}

// ValidateOwnership reports whether the account exists and belongs to the
// user. A missing account and an account owned by someone else both yield
// false with no other signal, so existence is not leaked to non-owners.
func (s *AccountService) ValidateOwnership(ctx context.Context, accountID, userID int64) (bool, error) {
	account, err := s.accounts.GetByID(accountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if account.UserID != userID {
		return false, nil
	}
	return true, nil
}

// HandleTransactionEvent reacts to transaction.created events by updating the
// account balance. Idempotent: duplicate delivery of the same transaction id
// is detected and skipped without modifying the balance.
func (s *AccountService) HandleTransactionEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.TransactionCreated {
		return nil
	}
	dataBytes, _ := json.Marshal(event.Data)
	var data events.TransactionCreatedEvent
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return fmt.Errorf("failed to unmarshal transaction.created event: %w", err)
	}
	if s.processed.IsProcessed(ctx, data.TransactionID) {
		log.Printf("Transaction %d already processed, skipping duplicate event", data.TransactionID)
		return nil
	}
	account, err := s.accounts.GetByID(data.AccountID)
	if err != nil {
		return fmt.Errorf("failed to get account for balance update: %w", err)
	}
	var newBalance float64
	if data.Type == models.TransactionDeposit {
		newBalance = account.Balance + data.Amount
	} else {
		newBalance = account.Balance - data.Amount
	}
	if err := s.accounts.UpdateBalance(data.AccountID, newBalance); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	// Mark only after the balance write: a failure above leaves the message
	// un-acked and unmarked, so redelivery re-applies the delta instead of
	// skipping it.
	if err := s.processed.MarkProcessed(ctx, data.TransactionID); err != nil {
		log.Printf("Failed to mark transaction %d as processed: %v", data.TransactionID, err)
	}
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.BalanceUpdated, events.BalanceUpdatedEvent{
		AccountID:  data.AccountID,
		NewBalance: newBalance,
		Change:     data.Amount,
	}); err != nil {
		log.Printf("Failed to publish balance.updated event: %v", err)
	}
	log.Printf("Balance updated for account %d: %.2f -> %.2f", data.AccountID, account.Balance, newBalance)
	return nil
}
