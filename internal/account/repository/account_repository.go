package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mahsa-meymari/FinancialTracker/internal/shared/models"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountRepository persists accounts in PostgreSQL.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(account *models.Account) error {
	query := `
		INSERT INTO accounts (name, type, balance, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRow(query,
		account.Name, account.Type, account.Balance, account.UserID, account.CreatedAt,
	).Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID fetches the full row including UserID for ownership checks.
func (r *AccountRepository) GetByID(id int64) (*models.Account, error) {
	query := `
		SELECT id, name, type, balance, user_id, created_at
		FROM accounts
		WHERE id = $1
	`
	var account models.Account
	err := r.db.QueryRow(query, id).Scan(
		&account.ID, &account.Name, &account.Type, &account.Balance,
		&account.UserID, &account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *AccountRepository) ListByUserID(userID int64) ([]models.Account, error) {
	query := `
		SELECT id, name, type, balance, user_id, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.ID, &account.Name, &account.Type, &account.Balance,
			&account.UserID, &account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) UpdateBalance(id int64, newBalance float64) error {
	query := `UPDATE accounts SET balance = $2 WHERE id = $1`
	result, err := r.db.Exec(query, id, newBalance)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}
