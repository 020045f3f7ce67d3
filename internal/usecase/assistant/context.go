package assistant

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

// Hard caps keep the context block inside the model's token budget no matter
// how large the underlying collections grow.
const (
	maxContextTasks        = 5
	maxRecurringCandidates = 5
	maxContextTransactions = 10
)

// recurringMinOccurrences is the exact-match threshold for flagging a
// (title, amount) pair as a recurring-bill candidate. Two occurrences
// anywhere in history qualify; the window is deliberately unbounded.
const recurringMinOccurrences = 2

// SnapshotReader provides read access to the in-memory records snapshot.
// Transactions are expected newest-first.
type SnapshotReader interface {
	Transactions() []*domain.Transaction
	Tasks() []*domain.Task
	Settings() *domain.BudgetSettings
	Categories() []*domain.Category
}

// BuildContext serializes the financial snapshot into the bounded text block
// sent alongside every user message. Pure function of the snapshot and today.
func BuildContext(snap SnapshotReader, today time.Time) string {
	txs := snap.Transactions()
	categories := snap.Categories()

	var b strings.Builder

	writeSpendingSummary(&b, txs, today)
	writeCategoryBreakdown(&b, txs, categories, today)
	writeRecurringCandidates(&b, txs)
	writePendingTasks(&b, snap.Tasks())
	writeRecentTransactions(&b, txs)

	b.WriteString("INSTRUCTIONS: Use the spending summary and category breakdown to answer budget questions. " +
		"Recurring candidates are heuristic guesses, confirm with the user before treating them as bills. " +
		"Use addTransaction or createTask when the user asks to record something; otherwise answer in plain text.\n")

	return b.String()
}

func writeSpendingSummary(b *strings.Builder, txs []*domain.Transaction, today time.Time) {
	year, month := today.Year(), today.Month()
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, today.Location()).Day()
	daysPassed := today.Day()

	spent := decimal.Zero
	for _, tx := range txs {
		if tx.Type == domain.TransactionTypeExpense && tx.OccursIn(year, month) {
			spent = spent.Add(tx.Amount)
		}
	}

	avgDaily := decimal.Zero
	if daysPassed > 0 {
		avgDaily = spent.Div(decimal.NewFromInt(int64(daysPassed)))
	}
	projected := avgDaily.Mul(decimal.NewFromInt(int64(daysInMonth)))

	b.WriteString("=== SPENDING SUMMARY ===\n")
	fmt.Fprintf(b, "Spent this month: $%s over %d days\n", spent.StringFixed(2), daysPassed)
	fmt.Fprintf(b, "Average daily spend: $%s\n", avgDaily.StringFixed(2))
	fmt.Fprintf(b, "Projected month-end spend: $%s\n\n", projected.StringFixed(2))
}

func writeCategoryBreakdown(b *strings.Builder, txs []*domain.Transaction, categories []*domain.Category, today time.Time) {
	year, month := today.Year(), today.Month()

	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type == domain.TransactionTypeExpense && tx.OccursIn(year, month) {
			totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
		}
	}

	limits := make(map[string]decimal.Decimal)
	for _, c := range categories {
		if c.BudgetedAmount != nil {
			limits[c.Name] = *c.BudgetedAmount
		}
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, c := totals[names[i]], totals[names[j]]
		if !a.Equal(c) {
			return a.GreaterThan(c)
		}
		return names[i] < names[j]
	})

	b.WriteString("=== CATEGORY BREAKDOWN (this month) ===\n")
	if len(names) == 0 {
		b.WriteString("No expenses recorded this month.\n")
	}
	for _, name := range names {
		if limit, ok := limits[name]; ok {
			fmt.Fprintf(b, "%s: $%s (limit $%s)\n", name, totals[name].StringFixed(2), limit.StringFixed(2))
		} else {
			fmt.Fprintf(b, "%s: $%s\n", name, totals[name].StringFixed(2))
		}
	}
	b.WriteString("\n")
}

func writeRecurringCandidates(b *strings.Builder, txs []*domain.Transaction) {
	type key struct {
		title  string
		amount string
	}

	counts := make(map[key]int)
	for _, tx := range txs {
		counts[key{tx.Title, tx.Amount.String()}]++
	}

	b.WriteString("=== POSSIBLE RECURRING BILLS ===\n")

	emitted := 0
	seen := make(map[key]bool)
	for _, tx := range txs {
		k := key{tx.Title, tx.Amount.String()}
		if seen[k] || counts[k] < recurringMinOccurrences {
			continue
		}
		seen[k] = true
		fmt.Fprintf(b, "%s ($%s) seen %dx\n", tx.Title, tx.Amount.StringFixed(2), counts[k])
		emitted++
		if emitted >= maxRecurringCandidates {
			break
		}
	}
	if emitted == 0 {
		b.WriteString("None detected.\n")
	}
	b.WriteString("\n")
}

func writePendingTasks(b *strings.Builder, tasks []*domain.Task) {
	b.WriteString("=== PENDING TASKS ===\n")

	emitted := 0
	for _, task := range tasks {
		if !task.IsPending() {
			continue
		}
		line := task.Title
		if task.DueDate != nil {
			line += " (due " + task.DueDate.Format("2006-01-02") + ")"
		}
		if task.Amount != nil {
			line += " [$" + task.Amount.StringFixed(2) + "]"
		}
		b.WriteString(line + "\n")
		emitted++
		if emitted >= maxContextTasks {
			break
		}
	}
	if emitted == 0 {
		b.WriteString("None.\n")
	}
	b.WriteString("\n")
}

func writeRecentTransactions(b *strings.Builder, txs []*domain.Transaction) {
	b.WriteString("=== RECENT TRANSACTIONS ===\n")

	limit := len(txs)
	if limit > maxContextTransactions {
		limit = maxContextTransactions
	}
	for _, tx := range txs[:limit] {
		fmt.Fprintf(b, "%s | %s | %s | $%s | %s\n",
			tx.Date.Format("2006-01-02"), tx.Title, tx.Category, tx.Amount.StringFixed(2), tx.Type)
	}
	if limit == 0 {
		b.WriteString("None.\n")
	}
	b.WriteString("\n")
}
