package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/assistant"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"

	// maxResponseBytes caps how much of the response body is read
	maxResponseBytes = 256 * 1024
)

// systemPrompt frames the assistant's role; the per-request financial
// context block is appended below it.
const systemPrompt = `You are a personal finance assistant. You help the user understand their
spending and manage their budget and tasks. Answer concisely. When the user
asks you to record an expense, income or task, use the provided tools. Never
invent amounts or dates the user did not state.`

// Config contains the chat client configuration
type Config struct {
	// BaseURL is the API base, e.g. "https://api.openai.com/v1"
	BaseURL string

	// APIKey is the bearer token (from environment variable)
	APIKey string

	// Model is the chat model name
	Model string
}

// Client implements assistant.ChatModel against a chat completions endpoint.
// Single request per call, no retries; the loop handles failures.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewClient creates a new chat client
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{},
	}, nil
}

// Send performs one chat round-trip. The context block travels in the system
// message; tool calls in the response become action requests.
func (c *Client) Send(ctx context.Context, contextBlock string, history []assistant.Message) (*assistant.ModelResponse, error) {
	messages := make([]chatMessage, 0, len(history)+1)
	messages = append(messages, chatMessage{
		Role:    "system",
		Content: systemPrompt + "\n\n" + contextBlock,
	})

	for _, msg := range history {
		wire, err := toWireMessage(msg)
		if err != nil {
			return nil, err
		}
		messages = append(messages, wire)
	}

	resp, err := c.complete(ctx, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Tools:       assistantTools(),
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: response contained no choices")
	}

	choice := resp.Choices[0].Message
	if len(choice.ToolCalls) > 0 {
		call := choice.ToolCalls[0]
		return &assistant.ModelResponse{
			Action: &assistant.ActionRequest{
				ID:   call.ID,
				Name: call.Function.Name,
				Args: json.RawMessage(call.Function.Arguments),
			},
		}, nil
	}

	return &assistant.ModelResponse{Text: choice.Content}, nil
}

// complete performs the HTTP round-trip shared by chat and vision
func (c *Client) complete(ctx context.Context, request chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("openai: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("openai: failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		// Response bodies for errors may carry sensitive detail; report
		// only the status.
		return nil, fmt.Errorf("openai: unexpected status %d", httpResp.StatusCode)
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("openai: failed to decode response: %w", err)
	}

	return &resp, nil
}

// toWireMessage converts a loop message to the wire format. Assistant turns
// that requested an action become tool_calls messages; tool turns carry the
// result keyed by the call id.
func toWireMessage(msg assistant.Message) (chatMessage, error) {
	switch msg.Role {
	case assistant.RoleUser:
		return chatMessage{Role: "user", Content: msg.Content}, nil
	case assistant.RoleAssistant:
		if msg.Action != nil {
			return chatMessage{
				Role:    "assistant",
				Content: "",
				ToolCalls: []toolCall{{
					ID:   msg.Action.ID,
					Type: "function",
					Function: toolCallFunction{
						Name:      msg.Action.Name,
						Arguments: string(msg.Action.Args),
					},
				}},
			}, nil
		}
		return chatMessage{Role: "assistant", Content: msg.Content}, nil
	case assistant.RoleTool:
		return chatMessage{
			Role:       "tool",
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.ToolName,
		}, nil
	default:
		return chatMessage{}, fmt.Errorf("openai: unknown message role %q", msg.Role)
	}
}

// assistantTools declares the closed action set to the model
func assistantTools() []toolDefinition {
	return []toolDefinition{
		{
			Type: "function",
			Function: toolFunction{
				Name:        assistant.ActionAddTransaction,
				Description: "Record an expense or income transaction for the user",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"title": {"type": "string", "description": "Short label, e.g. the merchant or purpose"},
						"amount": {"type": "number", "description": "Positive amount in the user's currency"},
						"category": {"type": "string", "description": "Spending category name"},
						"type": {"type": "string", "enum": ["expense", "income"]},
						"date": {"type": "string", "description": "Date as YYYY-MM-DD; omit for today"}
					},
					"required": ["title", "amount", "category", "type"]
				}`),
			},
		},
		{
			Type: "function",
			Function: toolFunction{
				Name:        assistant.ActionCreateTask,
				Description: "Create a to-do task, optionally with a due date and money amount",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"title": {"type": "string"},
						"amount": {"type": "number", "description": "Money amount tied to the task, if any"},
						"dueDate": {"type": "string", "description": "Due date as YYYY-MM-DD"},
						"priority": {"type": "string", "enum": ["low", "medium", "high"]}
					},
					"required": ["title"]
				}`),
			},
		},
	}
}
