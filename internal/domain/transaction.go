package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the cash-flow direction of a transaction
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

// Transaction represents a single money movement owned by one user.
// Amount is always an absolute value; the cash-flow sign is carried by Type.
type Transaction struct {
	ID            uuid.UUID
	Title         string
	Amount        decimal.Decimal // ABSOLUTE VALUE (Always >= 0)
	Type          TransactionType
	Category      string
	Date          time.Time
	PaymentMethod string // Optional
	ReceiptRef    string // Optional opaque reference (e.g. storage URI)
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.Title == "" {
		return errors.New("transaction title cannot be empty")
	}

	if t.Amount.IsNegative() {
		return errors.New("transaction amount must not be negative")
	}

	if t.Type != TransactionTypeExpense && t.Type != TransactionTypeIncome {
		return errors.New("transaction type must be expense or income")
	}

	if t.Date.IsZero() {
		return errors.New("transaction date cannot be zero")
	}

	return nil
}

// OccursIn reports whether the transaction is dated in the given month/year.
func (t *Transaction) OccursIn(year int, month time.Month) bool {
	return t.Date.Year() == year && t.Date.Month() == month
}

// OccursOn reports whether the transaction is dated on the given calendar day.
func (t *Transaction) OccursOn(day time.Time) bool {
	return t.Date.Year() == day.Year() &&
		t.Date.Month() == day.Month() &&
		t.Date.Day() == day.Day()
}
