// Package httpapi exposes the application over a JSON HTTP API.
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/ledger"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/receipt"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/report"
)

// Server wires the use case services to HTTP handlers
type Server struct {
	ledger   *ledger.Service
	reports  *report.Service
	receipts *receipt.Service
	chats    *ChatManager
	apiToken string
}

// NewServer creates a new API server. chats may be nil when no chat model is
// configured; the assistant endpoints then return 503.
func NewServer(
	ledgerSvc *ledger.Service,
	reportSvc *report.Service,
	receiptSvc *receipt.Service,
	chats *ChatManager,
	apiToken string,
) *Server {
	return &Server{
		ledger:   ledgerSvc,
		reports:  reportSvc,
		receipts: receiptSvc,
		chats:    chats,
		apiToken: apiToken,
	}
}

// Routes builds the HTTP handler with all endpoints registered
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /v1/transactions", s.auth(s.handleListTransactions))
	mux.HandleFunc("POST /v1/transactions", s.auth(s.handleAddTransaction))
	mux.HandleFunc("DELETE /v1/transactions/{id}", s.auth(s.handleDeleteTransaction))

	mux.HandleFunc("GET /v1/tasks", s.auth(s.handleListTasks))
	mux.HandleFunc("POST /v1/tasks", s.auth(s.handleCreateTask))
	mux.HandleFunc("PATCH /v1/tasks/{id}/status", s.auth(s.handleUpdateTaskStatus))
	mux.HandleFunc("DELETE /v1/tasks/{id}", s.auth(s.handleDeleteTask))

	mux.HandleFunc("GET /v1/budget", s.auth(s.handleGetBudget))
	mux.HandleFunc("PATCH /v1/budget", s.auth(s.handleUpdateBudget))

	mux.HandleFunc("GET /v1/categories", s.auth(s.handleListCategories))
	mux.HandleFunc("POST /v1/categories", s.auth(s.handleCreateCategory))

	mux.HandleFunc("GET /v1/metrics", s.auth(s.handleMetrics))
	mux.HandleFunc("GET /v1/reports/monthly", s.auth(s.handleMonthlyReport))
	mux.HandleFunc("GET /v1/reports/distribution", s.auth(s.handleDistribution))
	mux.HandleFunc("GET /v1/reports/trend", s.auth(s.handleTrend))
	mux.HandleFunc("GET /v1/reports/insights", s.auth(s.handleInsights))

	mux.HandleFunc("POST /v1/assistant/chat", s.auth(s.handleChat))
	mux.HandleFunc("POST /v1/receipts/analyze", s.auth(s.handleAnalyzeReceipt))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth checks the bearer token on every API route. An empty configured token
// disables authentication (local development).
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiToken == "" {
			next(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}

		next(w, r)
	}
}

// readJSON decodes the request body, rejecting unknown fields
func readJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps use case errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
