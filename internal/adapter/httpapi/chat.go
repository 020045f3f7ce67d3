package httpapi

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/assistant"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/ledger"
)

// conversation is one chat session's accumulated history plus a busy flag so
// a second request cannot interleave with a running action loop.
type conversation struct {
	history []assistant.Message
	busy    bool
}

// ChatManager owns conversations and drives the assistant loop for them
type ChatManager struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*conversation
	model         assistant.ChatModel
	executor      *assistant.Executor
	snap          assistant.SnapshotReader
}

// NewChatManager creates the conversation registry backing the chat endpoint
func NewChatManager(model assistant.ChatModel, executor *assistant.Executor, snap assistant.SnapshotReader) *ChatManager {
	return &ChatManager{
		conversations: make(map[uuid.UUID]*conversation),
		model:         model,
		executor:      executor,
		snap:          snap,
	}
}

// errBusy is returned when a conversation already has a turn in flight
var errBusy = errors.New("conversation is already processing a message")

// run executes one user turn for the conversation, creating it on first use.
// Status lines emitted while actions execute are collected and returned with
// the final reply.
func (m *ChatManager) run(ctx context.Context, id uuid.UUID, userText string) (uuid.UUID, string, []string, error) {
	m.mu.Lock()
	if id == uuid.Nil {
		id = uuid.New()
	}
	conv, ok := m.conversations[id]
	if !ok {
		conv = &conversation{}
		m.conversations[id] = conv
	}
	if conv.busy {
		m.mu.Unlock()
		return id, "", nil, errBusy
	}
	conv.busy = true
	history := conv.history
	m.mu.Unlock()

	var statuses []string
	loop := assistant.NewLoop(m.model, m.executor, func(status string) {
		statuses = append(statuses, status)
	})

	contextBlock := assistant.BuildContext(m.snap, time.Now())
	reply, updated, err := loop.Run(ctx, contextBlock, history, userText)

	m.mu.Lock()
	conv.history = updated
	conv.busy = false
	m.mu.Unlock()

	return id, reply, statuses, err
}

type chatRequest struct {
	ConversationID *uuid.UUID `json:"conversationId,omitempty"`
	Message        string     `json:"message"`
}

type chatResponse struct {
	ConversationID uuid.UUID `json:"conversationId"`
	Reply          string    `json:"reply"`
	Statuses       []string  `json:"statuses"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chats == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	var req chatRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	id := uuid.Nil
	if req.ConversationID != nil {
		id = *req.ConversationID
	}

	id, reply, statuses, err := s.chats.run(r.Context(), id, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, errBusy):
			writeError(w, http.StatusConflict, err.Error())
			return
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// Client went away; nothing useful to write.
			return
		}
		// Model failures and the round cap still produce a user-facing
		// reply; committed actions stay committed.
	}

	if statuses == nil {
		statuses = []string{}
	}
	writeJSON(w, http.StatusOK, chatResponse{
		ConversationID: id,
		Reply:          reply,
		Statuses:       statuses,
	})
}

type analyzeReceiptRequest struct {
	// Image is the receipt photo, base64-encoded
	Image string `json:"image"`

	// Optional draft fields the user already filled in
	Title    string           `json:"title,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Category string           `json:"category,omitempty"`
	Type     string           `json:"type,omitempty"`
	Date     *time.Time       `json:"date,omitempty"`
}

type analyzeReceiptResponse struct {
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category,omitempty"`
	Type     string          `json:"type"`
	Date     *time.Time      `json:"date,omitempty"`
}

func (s *Server) handleAnalyzeReceipt(w http.ResponseWriter, r *http.Request) {
	if s.receipts == nil {
		writeError(w, http.StatusServiceUnavailable, "receipt analysis is not configured")
		return
	}

	var req analyzeReceiptRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image must be base64-encoded")
		return
	}

	draft := ledger.AddTransactionInput{
		Title:    req.Title,
		Category: req.Category,
	}
	if req.Amount != nil {
		draft.Amount = *req.Amount
	}
	if req.Type != "" {
		draft.Type = domain.TransactionType(req.Type)
	}
	if req.Date != nil {
		draft.Date = *req.Date
	}

	filled, err := s.receipts.Scan(r.Context(), image, draft)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := analyzeReceiptResponse{
		Title:    filled.Title,
		Amount:   filled.Amount,
		Category: filled.Category,
		Type:     string(filled.Type),
	}
	if !filled.Date.IsZero() {
		date := filled.Date
		resp.Date = &date
	}
	writeJSON(w, http.StatusOK, resp)
}
