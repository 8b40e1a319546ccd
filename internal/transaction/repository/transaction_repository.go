package repository

import (
	"database/sql"
	"fmt"

	"github.com/mahsa-meymari/FinancialTracker/internal/shared/models"
)

// TransactionRepository persists transaction rows in PostgreSQL.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (description, amount, type, date, account_id, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING id
	`
	err := r.db.QueryRow(query,
		transaction.Description, transaction.Amount, transaction.Type,
		transaction.Date, transaction.AccountID, transaction.CreatedAt,
	).Scan(&transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) ListByAccountID(accountID int64) ([]models.Transaction, error) {
	query := `
		SELECT id, COALESCE(description, ''), amount, type, COALESCE(date::text, ''), account_id, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var transaction models.Transaction
		if err := rows.Scan(
			&transaction.ID, &transaction.Description, &transaction.Amount,
			&transaction.Type, &transaction.Date, &transaction.AccountID,
			&transaction.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}
