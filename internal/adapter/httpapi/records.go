package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/ledger"
)

// transactionResponse is the wire shape of a transaction
type transactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Date          time.Time       `json:"date"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	ReceiptRef    string          `json:"receiptRef,omitempty"`
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		Title:         tx.Title,
		Amount:        tx.Amount,
		Type:          string(tx.Type),
		Category:      tx.Category,
		Date:          tx.Date,
		PaymentMethod: tx.PaymentMethod,
		ReceiptRef:    tx.ReceiptRef,
	}
}

type addTransactionRequest struct {
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Date          *time.Time      `json:"date,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	ReceiptRef    string          `json:"receiptRef,omitempty"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions := s.ledger.Store().Transactions()

	limit := len(transactions)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if n < limit {
			limit = n
		}
	}

	out := make([]transactionResponse, 0, limit)
	for _, tx := range transactions[:limit] {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	input := ledger.AddTransactionInput{
		Title:         req.Title,
		Amount:        req.Amount,
		Type:          domain.TransactionType(req.Type),
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		ReceiptRef:    req.ReceiptRef,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}

	tx, err := s.ledger.AddTransaction(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// taskResponse is the wire shape of a task
type taskResponse struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status"`
	Priority    string           `json:"priority"`
	DueDate     *time.Time       `json:"dueDate,omitempty"`
	Recurring   bool             `json:"recurring"`
	Tags        []string         `json:"tags"`
	Category    string           `json:"category"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

func toTaskResponse(task *domain.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		Recurring:   task.Recurring,
		Tags:        task.Tags,
		Category:    task.Category,
		Amount:      task.Amount,
	}
}

type createTaskRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Priority    string           `json:"priority,omitempty"`
	DueDate     *time.Time       `json:"dueDate,omitempty"`
	Recurring   bool             `json:"recurring,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Category    string           `json:"category,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.ledger.Store().Tasks()
	out := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	task, err := s.ledger.CreateTask(r.Context(), ledger.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		Recurring:   req.Recurring,
		Tags:        req.Tags,
		Category:    req.Category,
		Amount:      req.Amount,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	task, err := s.ledger.UpdateTaskStatus(r.Context(), id, domain.TaskStatus(req.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := s.ledger.DeleteTask(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// budgetLinePayload mirrors domain.BudgetLine on the wire
type budgetLinePayload struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type budgetResponse struct {
	MonthlySalary        decimal.Decimal     `json:"monthlySalary"`
	SavingsTargetPercent decimal.Decimal     `json:"savingsTargetPercent"`
	FixedExpenses        []budgetLinePayload `json:"fixedExpenses"`
	VariableExpenses     []budgetLinePayload `json:"variableExpenses"`
	EmergencyFund        decimal.Decimal     `json:"emergencyFund"`
}

func toBudgetResponse(settings *domain.BudgetSettings) budgetResponse {
	return budgetResponse{
		MonthlySalary:        settings.MonthlySalary,
		SavingsTargetPercent: settings.SavingsTargetPercent,
		FixedExpenses:        toLinePayloads(settings.FixedExpenses),
		VariableExpenses:     toLinePayloads(settings.VariableExpenses),
		EmergencyFund:        settings.EmergencyFund,
	}
}

func toLinePayloads(lines []domain.BudgetLine) []budgetLinePayload {
	out := make([]budgetLinePayload, 0, len(lines))
	for _, line := range lines {
		out = append(out, budgetLinePayload{Label: line.Label, Amount: line.Amount})
	}
	return out
}

func toDomainLines(payloads []budgetLinePayload) []domain.BudgetLine {
	out := make([]domain.BudgetLine, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, domain.BudgetLine{Label: p.Label, Amount: p.Amount})
	}
	return out
}

type updateBudgetRequest struct {
	MonthlySalary        *decimal.Decimal     `json:"monthlySalary,omitempty"`
	SavingsTargetPercent *decimal.Decimal     `json:"savingsTargetPercent,omitempty"`
	FixedExpenses        *[]budgetLinePayload `json:"fixedExpenses,omitempty"`
	VariableExpenses     *[]budgetLinePayload `json:"variableExpenses,omitempty"`
	EmergencyFund        *decimal.Decimal     `json:"emergencyFund,omitempty"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	settings := s.ledger.GetBudgetSettings(r.Context())
	writeJSON(w, http.StatusOK, toBudgetResponse(settings))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req updateBudgetRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	patch := ledger.BudgetPatch{
		MonthlySalary:        req.MonthlySalary,
		SavingsTargetPercent: req.SavingsTargetPercent,
		EmergencyFund:        req.EmergencyFund,
	}
	if req.FixedExpenses != nil {
		lines := toDomainLines(*req.FixedExpenses)
		patch.FixedExpenses = &lines
	}
	if req.VariableExpenses != nil {
		lines := toDomainLines(*req.VariableExpenses)
		patch.VariableExpenses = &lines
	}

	settings, err := s.ledger.UpdateBudgetSettings(r.Context(), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetResponse(settings))
}

// categoryResponse is the wire shape of a category
type categoryResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Type           string           `json:"type"`
	Color          string           `json:"color,omitempty"`
	Icon           string           `json:"icon,omitempty"`
	BudgetedAmount *decimal.Decimal `json:"budgetedAmount,omitempty"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.ledger.Store().Categories()
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{
			ID:             c.ID,
			Name:           c.Name,
			Type:           string(c.Type),
			Color:          c.Color,
			Icon:           c.Icon,
			BudgetedAmount: c.BudgetedAmount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string           `json:"name"`
		Type           string           `json:"type"`
		Color          string           `json:"color,omitempty"`
		Icon           string           `json:"icon,omitempty"`
		BudgetedAmount *decimal.Decimal `json:"budgetedAmount,omitempty"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	category := &domain.Category{
		Name:           req.Name,
		Type:           domain.CategoryType(req.Type),
		Color:          req.Color,
		Icon:           req.Icon,
		BudgetedAmount: req.BudgetedAmount,
	}

	if err := s.ledger.CreateCategory(r.Context(), category); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, categoryResponse{
		ID:             category.ID,
		Name:           category.Name,
		Type:           string(category.Type),
		Color:          category.Color,
		Icon:           category.Icon,
		BudgetedAmount: category.BudgetedAmount,
	})
}
