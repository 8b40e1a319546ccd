package service

import (
	"context"
	"log"
	"time"

	"github.com/mahsa-meymari/FinancialTracker/internal/shared/events"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/models"
)

// TransactionStore is the persistence surface TransactionService depends on.
type TransactionStore interface {
	Create(transaction *models.Transaction) error
	ListByAccountID(accountID int64) ([]models.Transaction, error)
}

// Authorizer runs the ownership validation chain against the owning
// services. Errors pass through unchanged: ownership.ErrUserNotFound,
// ownership.ErrAccountDenied or *ownership.DependencyError.
type Authorizer interface {
	AuthorizeTransaction(ctx context.Context, userID, accountID int64) error
	AccountOwnedBy(ctx context.Context, accountID, userID int64) error
}

// EventPublisher publishes domain events to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// RecordTransactionInput carries the validated request fields.
type RecordTransactionInput struct {
	Description string
	Amount      float64
	Type        string
	Date        string
}

// TransactionService owns transaction rows. Every mutation is authorized
// through the full chain (user exists, account owned by user) before any
// write; a failed check aborts with nothing persisted.
type TransactionService struct {
	transactions TransactionStore
	authorizer   Authorizer
	publisher    EventPublisher
}

func NewTransactionService(transactions TransactionStore, authorizer Authorizer, publisher EventPublisher) *TransactionService {
	return &TransactionService{transactions: transactions, authorizer: authorizer, publisher: publisher}
}

func (s *TransactionService) RecordTransaction(ctx context.Context, userID, accountID int64, input RecordTransactionInput) (*models.Transaction, error) {
	if err := s.authorizer.AuthorizeTransaction(ctx, userID, accountID); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		Description: input.Description,
		Amount:      input.Amount,
		Type:        input.Type,
		Date:        input.Date,
		AccountID:   accountID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.transactions.Create(transaction); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionCreated, events.TransactionCreatedEvent{
		TransactionID: transaction.ID,
		AccountID:     transaction.AccountID,
		Amount:        transaction.Amount,
		Type:          transaction.Type,
	}); err != nil {
		log.Printf("Failed to publish transaction.created event: %v", err)
	}
	return transaction, nil
}

// ListTransactions checks account ownership before reading. The user
// existence hop is skipped here: a read discloses nothing unless the account
// check passes, which already binds the account to the user.
func (s *TransactionService) ListTransactions(ctx context.Context, userID, accountID int64) ([]models.Transaction, error) {
	if err := s.authorizer.AccountOwnedBy(ctx, accountID, userID); err != nil {
		return nil, err
	}
	return s.transactions.ListByAccountID(accountID)
}
