// Package receipt turns a photographed receipt into a draft transaction.
// Analysis is best-effort: whatever fields the analyzer could not read leave
// the corresponding draft fields untouched.
package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/ledger"
)

// ErrUnreadable is returned when the image could not be analyzed at all;
// the caller should ask the user to enter the transaction manually.
var ErrUnreadable = errors.New("could not analyze receipt, enter manually")

// Fields holds whatever the analyzer managed to extract. Nil/empty fields
// mean "not found"; they never overwrite existing draft values.
type Fields struct {
	MerchantName string
	Amount       *decimal.Decimal
	Date         *time.Time
	Category     string
	Type         string
}

// Analyzer is the external image analysis collaborator
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (*Fields, error)
}

// Service merges receipt analysis results onto draft transactions
type Service struct {
	analyzer Analyzer
}

// NewService creates a new receipt Service instance
func NewService(analyzer Analyzer) *Service {
	return &Service{analyzer: analyzer}
}

// Scan analyzes the image and fills in the draft's missing fields. On
// analysis failure the draft is returned unchanged alongside ErrUnreadable.
func (s *Service) Scan(ctx context.Context, image []byte, draft ledger.AddTransactionInput) (ledger.AddTransactionInput, error) {
	if len(image) == 0 {
		return draft, fmt.Errorf("%w: empty image", ErrUnreadable)
	}

	fields, err := s.analyzer.Analyze(ctx, image)
	if err != nil {
		return draft, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	if fields.MerchantName != "" && draft.Title == "" {
		draft.Title = fields.MerchantName
	}
	if fields.Amount != nil && draft.Amount.IsZero() {
		draft.Amount = *fields.Amount
	}
	if fields.Date != nil && draft.Date.IsZero() {
		draft.Date = *fields.Date
	}
	if fields.Category != "" && draft.Category == "" {
		draft.Category = fields.Category
	}
	if draft.Type == "" {
		txType := domain.TransactionType(fields.Type)
		if txType == domain.TransactionTypeExpense || txType == domain.TransactionTypeIncome {
			draft.Type = txType
		}
	}

	return draft, nil
}
