package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Role identifies who produced a conversation message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn in the conversation history. Assistant turns that
// requested an action carry the request; tool turns carry the JSON-encoded
// ActionResult for the matching request.
type Message struct {
	Role       Role
	Content    string
	Action     *ActionRequest // Set on assistant turns that requested an action
	ToolCallID string         // Set on tool turns, matches Action.ID
	ToolName   string         // Set on tool turns
}

// ModelResponse is one model turn: either displayable text or a requested
// action, never both.
type ModelResponse struct {
	Text   string
	Action *ActionRequest
}

// ChatModel is the external conversational model collaborator. The context
// block is passed on every call; history carries the full turn sequence
// including action requests and their results.
type ChatModel interface {
	Send(ctx context.Context, contextBlock string, history []Message) (*ModelResponse, error)
}

// ErrActionLimit is returned when the model keeps requesting actions past
// the round cap. Distinct from a network failure: side effects already
// executed remain committed.
var ErrActionLimit = errors.New("assistant action loop exceeded round limit")

// FallbackReply is the single user-visible message for model/network
// failures mid-loop.
const FallbackReply = "I'm having trouble connecting right now. Please try again in a moment."

// DefaultMaxActionRounds caps model round-trips that request an action
const DefaultMaxActionRounds = 5

// Loop drives one user turn against the model, executing requested actions
// until the model yields text. Inherently sequential: each round-trip's
// output determines the next input.
type Loop struct {
	model     ChatModel
	executor  *Executor
	maxRounds int
	emit      func(status string) // Intermediate, non-final status lines
}

// NewLoop creates a new Loop instance. emit may be nil if the caller does
// not surface intermediate status lines.
func NewLoop(model ChatModel, executor *Executor, emit func(string)) *Loop {
	if emit == nil {
		emit = func(string) {}
	}
	return &Loop{
		model:     model,
		executor:  executor,
		maxRounds: DefaultMaxActionRounds,
		emit:      emit,
	}
}

// SetMaxRounds overrides the action round cap
func (l *Loop) SetMaxRounds(n int) {
	if n > 0 {
		l.maxRounds = n
	}
}

// Run executes one user turn. It returns the final assistant text and the
// updated history. On failure the history still contains every turn up to
// the failure point; committed side effects are never rolled back.
func (l *Loop) Run(ctx context.Context, contextBlock string, history []Message, userText string) (string, []Message, error) {
	history = append(history, Message{Role: RoleUser, Content: userText})

	rounds := 0
	for {
		// Cancellation is checked between iterations so navigating away
		// mid-loop never applies a stale result.
		if err := ctx.Err(); err != nil {
			return "", history, err
		}

		resp, err := l.model.Send(ctx, contextBlock, history)
		if err != nil {
			return FallbackReply, history, fmt.Errorf("model send failed: %w", err)
		}

		if resp.Action == nil {
			history = append(history, Message{Role: RoleAssistant, Content: resp.Text})
			return resp.Text, history, nil
		}

		rounds++
		if rounds > l.maxRounds {
			return FallbackReply, history, ErrActionLimit
		}

		result := l.executor.Execute(ctx, *resp.Action)
		l.emit(statusLine(result))

		history = append(history,
			Message{Role: RoleAssistant, Action: resp.Action},
			Message{
				Role:       RoleTool,
				ToolCallID: resp.Action.ID,
				ToolName:   resp.Action.Name,
				Content:    encodeResult(result),
			},
		)
	}
}

func statusLine(result ActionResult) string {
	if result.Success {
		return "✅ " + result.Message
	}
	return "❌ " + result.Message
}

func encodeResult(result ActionResult) string {
	encoded, err := json.Marshal(result)
	if err != nil {
		// ActionResult is two plain fields; this cannot fail in practice.
		return `{"success":false,"message":"Error: could not encode result"}`
	}
	return string(encoded)
}
