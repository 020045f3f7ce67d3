package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

// categoryRepository implements domain.CategoryRepository
type categoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) domain.CategoryRepository {
	return &categoryRepository{db: db}
}

// Create persists a new category
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, type, color, icon, budgeted_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		category.ID,
		category.Name,
		string(category.Type),
		category.Color,
		category.Icon,
		nullableAmount(category.BudgetedAmount),
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetByName retrieves a category by its unique name
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `
		SELECT id, name, type, color, icon, budgeted_amount
		FROM categories
		WHERE name = $1
	`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}

	return category, nil
}

// List retrieves all categories for the user
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT id, name, type, color, icon, budgeted_amount
		FROM categories
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCategory(row scanner) (*domain.Category, error) {
	var category domain.Category
	var budgetedStr sql.NullString

	if err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Type,
		&category.Color,
		&category.Icon,
		&budgetedStr,
	); err != nil {
		return nil, err
	}

	if budgetedStr.Valid {
		amount, err := decimal.NewFromString(budgetedStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse budgeted_amount: %w", err)
		}
		category.BudgetedAmount = &amount
	}

	return &category, nil
}
