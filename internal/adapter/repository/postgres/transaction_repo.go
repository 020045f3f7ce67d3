package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

// Create persists a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, title, amount, type, category, date, payment_method, receipt_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.Title,
		tx.Amount.String(),
		string(tx.Type),
		tx.Category,
		tx.Date,
		nullableString(tx.PaymentMethod),
		nullableString(tx.ReceiptRef),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// List retrieves transactions ordered newest-first
func (r *transactionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, title, amount, type, category, date, payment_method, receipt_ref
		FROM transactions
		ORDER BY date DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var amountStr string
		var paymentMethod, receiptRef sql.NullString

		if err := rows.Scan(
			&tx.ID,
			&tx.Title,
			&amountStr,
			&tx.Type,
			&tx.Category,
			&tx.Date,
			&paymentMethod,
			&receiptRef,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction amount: %w", err)
		}
		tx.Amount = amount
		tx.PaymentMethod = paymentMethod.String
		tx.ReceiptRef = receiptRef.String

		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// Delete removes a transaction by its ID
func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s not found", id)
	}

	return nil
}

// nullableString maps an empty string to NULL
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
