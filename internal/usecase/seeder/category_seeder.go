package seeder

import (
	"context"

	"github.com/google/uuid"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

// defaultCategory defines the structure for a category to be seeded
type defaultCategory struct {
	Name  string
	Type  domain.CategoryType
	Color string
	Icon  string
}

// Categories every fresh account starts with. Users can add their own on
// top; seeding never overwrites existing names.
var defaultCategories = []defaultCategory{
	{Name: "Salary", Type: domain.CategoryTypeIncome, Color: "#4CAF50", Icon: "wallet"},
	{Name: "Housing", Type: domain.CategoryTypeFixed, Color: "#2196F3", Icon: "home"},
	{Name: "Utilities", Type: domain.CategoryTypeFixed, Color: "#00BCD4", Icon: "bolt"},
	{Name: "Subscriptions", Type: domain.CategoryTypeFixed, Color: "#9C27B0", Icon: "repeat"},
	{Name: "Food", Type: domain.CategoryTypeVariable, Color: "#FF9800", Icon: "utensils"},
	{Name: "Transport", Type: domain.CategoryTypeVariable, Color: "#795548", Icon: "bus"},
	{Name: "Entertainment", Type: domain.CategoryTypeVariable, Color: "#E91E63", Icon: "film"},
	{Name: "Shopping", Type: domain.CategoryTypeVariable, Color: "#607D8B", Icon: "bag"},
}

// CategorySeeder handles seeding of the default category set
type CategorySeeder struct {
	repo domain.CategoryRepository
}

// NewCategorySeeder creates a new CategorySeeder instance
func NewCategorySeeder(repo domain.CategoryRepository) *CategorySeeder {
	return &CategorySeeder{
		repo: repo,
	}
}

// Seed ensures all default categories exist in the store
// If a category doesn't exist, it creates it
func (s *CategorySeeder) Seed(ctx context.Context) error {
	for _, def := range defaultCategories {
		// Try to get the category by name
		_, err := s.repo.GetByName(ctx, def.Name)
		if err != nil {
			// Category doesn't exist, create it
			category := &domain.Category{
				ID:    uuid.New(),
				Name:  def.Name,
				Type:  def.Type,
				Color: def.Color,
				Icon:  def.Icon,
			}

			// Validate before creating
			if err := category.Validate(); err != nil {
				return err
			}

			if err := s.repo.Create(ctx, category); err != nil {
				return err
			}
		}
		// If category exists, no action needed
	}

	return nil
}
