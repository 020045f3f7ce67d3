package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryType classifies how a category's spend counts against the budget
type CategoryType string

const (
	CategoryTypeIncome   CategoryType = "income"
	CategoryTypeFixed    CategoryType = "fixed"
	CategoryTypeVariable CategoryType = "variable"
)

// Category groups transactions for display and classifies whether an expense
// counts as fixed or variable spend when deriving metrics.
type Category struct {
	ID             uuid.UUID
	Name           string // Unique per user
	Type           CategoryType
	Color          string
	Icon           string
	BudgetedAmount *decimal.Decimal // Optional monthly limit
}

// Validate ensures the category adheres to domain rules
func (c *Category) Validate() error {
	if c.Name == "" {
		return errors.New("category name cannot be empty")
	}

	switch c.Type {
	case CategoryTypeIncome, CategoryTypeFixed, CategoryTypeVariable:
	default:
		return errors.New("category type must be income, fixed or variable")
	}

	if c.BudgetedAmount != nil && c.BudgetedAmount.IsNegative() {
		return errors.New("category budgeted amount must not be negative")
	}

	return nil
}

// CategoryTypeByName builds a name -> type lookup from a category list.
// Transactions whose category is unknown fall back to variable spend.
func CategoryTypeByName(categories []*Category) map[string]CategoryType {
	lookup := make(map[string]CategoryType, len(categories))
	for _, c := range categories {
		lookup[c.Name] = c.Type
	}
	return lookup
}
