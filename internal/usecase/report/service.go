// Package report computes the aggregate views screens render: monthly
// totals, category distribution, the daily spending trend and text insights.
// Everything is derived locally from the raw records snapshot so the UI gets
// instant numbers without waiting on (or assuming) server-side aggregates.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

// SnapshotReader provides read access to the records snapshot
type SnapshotReader interface {
	Transactions() []*domain.Transaction
	Categories() []*domain.Category
	Settings() *domain.BudgetSettings
}

// MonthlyMetrics summarizes one month's cash flow
type MonthlyMetrics struct {
	Year             int
	Month            time.Month
	Income           decimal.Decimal
	Expenses         decimal.Decimal
	Net              decimal.Decimal
	TransactionCount int
}

// CategoryShare is one category's slice of the month's expenses
type CategoryShare struct {
	Name    string
	Amount  decimal.Decimal
	Percent decimal.Decimal
}

// DayTotal is the expense total for one calendar day
type DayTotal struct {
	Day    int
	Amount decimal.Decimal
}

// Service computes report aggregates from the snapshot
type Service struct {
	snap SnapshotReader
}

// NewService creates a new report Service instance
func NewService(snap SnapshotReader) *Service {
	return &Service{snap: snap}
}

// Monthly computes the income/expense totals for the given month
func (s *Service) Monthly(year int, month time.Month) MonthlyMetrics {
	m := MonthlyMetrics{Year: year, Month: month, Income: decimal.Zero, Expenses: decimal.Zero}

	for _, tx := range s.snap.Transactions() {
		if !tx.OccursIn(year, month) {
			continue
		}
		m.TransactionCount++
		switch tx.Type {
		case domain.TransactionTypeIncome:
			m.Income = m.Income.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			m.Expenses = m.Expenses.Add(tx.Amount)
		}
	}

	m.Net = m.Income.Sub(m.Expenses)
	return m
}

// CategoryDistribution returns the month's expenses grouped by category,
// sorted descending by amount, with each share as a percentage of the total
func (s *Service) CategoryDistribution(year int, month time.Month) []CategoryShare {
	totals := make(map[string]decimal.Decimal)
	grand := decimal.Zero

	for _, tx := range s.snap.Transactions() {
		if tx.Type != domain.TransactionTypeExpense || !tx.OccursIn(year, month) {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
		grand = grand.Add(tx.Amount)
	}

	shares := make([]CategoryShare, 0, len(totals))
	for name, amount := range totals {
		percent := decimal.Zero
		if grand.IsPositive() {
			percent = amount.Mul(decimal.NewFromInt(100)).Div(grand)
		}
		shares = append(shares, CategoryShare{Name: name, Amount: amount, Percent: percent})
	}

	sort.Slice(shares, func(i, j int) bool {
		if !shares[i].Amount.Equal(shares[j].Amount) {
			return shares[i].Amount.GreaterThan(shares[j].Amount)
		}
		return shares[i].Name < shares[j].Name
	})

	return shares
}

// SpendingTrend returns per-day expense totals for every day of the month,
// zero-filled so charts can render gaps
func (s *Service) SpendingTrend(year int, month time.Month) []DayTotal {
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	perDay := make(map[int]decimal.Decimal)
	for _, tx := range s.snap.Transactions() {
		if tx.Type == domain.TransactionTypeExpense && tx.OccursIn(year, month) {
			perDay[tx.Date.Day()] = perDay[tx.Date.Day()].Add(tx.Amount)
		}
	}

	trend := make([]DayTotal, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		amount := perDay[day]
		if amount.IsZero() {
			amount = decimal.Zero
		}
		trend[day-1] = DayTotal{Day: day, Amount: amount}
	}
	return trend
}

// SmartInsights generates short behavioral observations for the month
func (s *Service) SmartInsights(today time.Time) []string {
	var insights []string
	year, month := today.Year(), today.Month()

	monthly := s.Monthly(year, month)
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, today.Location()).Day()
	daysPassed := today.Day()

	// 1. Pace: projected month-end spend vs income.
	if daysPassed > 0 && monthly.Expenses.IsPositive() {
		projected := monthly.Expenses.Div(decimal.NewFromInt(int64(daysPassed))).Mul(decimal.NewFromInt(int64(daysInMonth)))
		if monthly.Income.IsPositive() && projected.GreaterThan(monthly.Income) {
			insights = append(insights, fmt.Sprintf(
				"At this pace you'll spend $%s by month end, more than your $%s income.",
				projected.StringFixed(2), monthly.Income.StringFixed(2)))
		} else {
			insights = append(insights, fmt.Sprintf(
				"Projected month-end spend is $%s.", projected.StringFixed(2)))
		}
	}

	// 2. Top category and whether it blew its configured limit.
	if shares := s.CategoryDistribution(year, month); len(shares) > 0 {
		top := shares[0]
		line := fmt.Sprintf("%s is your biggest expense this month at $%s (%s%%).",
			top.Name, top.Amount.StringFixed(2), top.Percent.StringFixed(0))
		for _, c := range s.snap.Categories() {
			if c.Name == top.Name && c.BudgetedAmount != nil && top.Amount.GreaterThan(*c.BudgetedAmount) {
				line = fmt.Sprintf("%s is over its $%s limit: $%s spent so far.",
					top.Name, c.BudgetedAmount.StringFixed(2), top.Amount.StringFixed(2))
				break
			}
		}
		insights = append(insights, line)
	}

	// 3. Zero-spend streak ending today.
	if streak := s.zeroSpendStreak(today); streak >= 2 {
		insights = append(insights, fmt.Sprintf("%d days in a row without spending. Keep it up!", streak))
	}

	return insights
}

// zeroSpendStreak counts consecutive days up to and including today with no
// expenses
func (s *Service) zeroSpendStreak(today time.Time) int {
	spentOn := make(map[string]bool)
	for _, tx := range s.snap.Transactions() {
		if tx.Type == domain.TransactionTypeExpense {
			spentOn[tx.Date.Format("2006-01-02")] = true
		}
	}

	streak := 0
	for day := today; ; day = day.AddDate(0, 0, -1) {
		if spentOn[day.Format("2006-01-02")] {
			break
		}
		streak++
		if streak >= 30 {
			break
		}
	}
	return streak
}
