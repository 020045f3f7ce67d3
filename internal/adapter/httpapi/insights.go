package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/metrics"
)

// metricsResponse is the wire shape of the derived financial metrics
type metricsResponse struct {
	TotalIncome           decimal.Decimal `json:"totalIncome"`
	TotalFixedExpenses    decimal.Decimal `json:"totalFixedExpenses"`
	TotalVariableExpenses decimal.Decimal `json:"totalVariableExpenses"`
	TotalSavings          decimal.Decimal `json:"totalSavings"`
	PocketMoneyPool       decimal.Decimal `json:"pocketMoneyPool"`
	RemainingPocketMoney  decimal.Decimal `json:"remainingPocketMoney"`
	DailyLimit            decimal.Decimal `json:"dailyLimit"`
	SpentToday            decimal.Decimal `json:"spentToday"`
	RemainingToday        decimal.Decimal `json:"remainingToday"`
	DaysRemaining         int             `json:"daysRemaining"`
	BudgetHealth          string          `json:"budgetHealth"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	store := s.ledger.Store()
	m := metrics.Compute(
		s.ledger.GetBudgetSettings(r.Context()),
		store.Transactions(),
		store.Categories(),
		time.Now(),
	)

	writeJSON(w, http.StatusOK, metricsResponse{
		TotalIncome:           m.TotalIncome,
		TotalFixedExpenses:    m.TotalFixedExpenses,
		TotalVariableExpenses: m.TotalVariableExpenses,
		TotalSavings:          m.TotalSavings,
		PocketMoneyPool:       m.PocketMoneyPool,
		RemainingPocketMoney:  m.RemainingPocketMoney,
		DailyLimit:            m.DailyLimit,
		SpentToday:            m.SpentToday,
		RemainingToday:        m.RemainingToday,
		DaysRemaining:         m.DaysRemaining,
		BudgetHealth:          string(m.BudgetHealth),
	})
}

// monthFromQuery parses optional year/month query parameters, defaulting to
// the current month
func monthFromQuery(r *http.Request) (int, time.Month, bool) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2000 || y > 2100 {
			return 0, 0, false
		}
		year = y
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, false
		}
		month = time.Month(m)
	}

	return year, month, true
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthFromQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	m := s.reports.Monthly(year, month)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":             m.Year,
		"month":            int(m.Month),
		"income":           m.Income,
		"expenses":         m.Expenses,
		"net":              m.Net,
		"transactionCount": m.TransactionCount,
	})
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthFromQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	shares := s.reports.CategoryDistribution(year, month)
	out := make([]map[string]interface{}, 0, len(shares))
	for _, share := range shares {
		out = append(out, map[string]interface{}{
			"name":    share.Name,
			"amount":  share.Amount,
			"percent": share.Percent,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthFromQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	trend := s.reports.SpendingTrend(year, month)
	out := make([]map[string]interface{}, 0, len(trend))
	for _, day := range trend {
		out = append(out, map[string]interface{}{
			"day":    day.Day,
			"amount": day.Amount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights := s.reports.SmartInsights(time.Now())
	if insights == nil {
		insights = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"insights": insights})
}
