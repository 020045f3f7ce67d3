package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/assistant"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return client
}

func TestClient_Send_TextReply(t *testing.T) {
	var captured chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(chatResponse{Choices: []chatChoice{{
			Message: responseMessage{Role: "assistant", Content: "You spent $42 today."},
		}}})
	})

	resp, err := client.Send(context.Background(), "=== SPENDING SUMMARY ===", []assistant.Message{
		{Role: assistant.RoleUser, Content: "how much did I spend?"},
	})
	require.NoError(t, err)
	require.Nil(t, resp.Action)
	assert.Equal(t, "You spent $42 today.", resp.Text)

	// System message carries the context block; both tools are declared.
	require.NotEmpty(t, captured.Messages)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "=== SPENDING SUMMARY ===")
	require.Len(t, captured.Tools, 2)
	assert.Equal(t, "addTransaction", captured.Tools[0].Function.Name)
	assert.Equal(t, "createTask", captured.Tools[1].Function.Name)
}

func TestClient_Send_ToolCallBecomesAction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{Choices: []chatChoice{{
			Message: responseMessage{
				Role: "assistant",
				ToolCalls: []toolCall{{
					ID:   "call_1",
					Type: "function",
					Function: toolCallFunction{
						Name:      "addTransaction",
						Arguments: `{"title":"Lunch","amount":12.5,"category":"Food","type":"expense"}`,
					},
				}},
			},
		}}})
	})

	resp, err := client.Send(context.Background(), "ctx", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "call_1", resp.Action.ID)
	assert.Equal(t, "addTransaction", resp.Action.Name)
	assert.JSONEq(t, `{"title":"Lunch","amount":12.5,"category":"Food","type":"expense"}`, string(resp.Action.Args))
}

func TestClient_Send_HistoryRoundTrips(t *testing.T) {
	var captured chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(chatResponse{Choices: []chatChoice{{
			Message: responseMessage{Role: "assistant", Content: "Done."},
		}}})
	})

	history := []assistant.Message{
		{Role: assistant.RoleUser, Content: "add lunch for 12.50"},
		{Role: assistant.RoleAssistant, Action: &assistant.ActionRequest{
			ID:   "call_1",
			Name: "addTransaction",
			Args: json.RawMessage(`{"title":"Lunch"}`),
		}},
		{Role: assistant.RoleTool, ToolCallID: "call_1", ToolName: "addTransaction",
			Content: `{"success":true,"message":"Transaction added: Lunch"}`},
	}

	_, err := client.Send(context.Background(), "ctx", history)
	require.NoError(t, err)

	// system + the three history turns
	require.Len(t, captured.Messages, 4)

	assistantTurn := captured.Messages[2]
	require.Len(t, assistantTurn.ToolCalls, 1)
	assert.Equal(t, "call_1", assistantTurn.ToolCalls[0].ID)

	toolTurn := captured.Messages[3]
	assert.Equal(t, "tool", toolTurn.Role)
	assert.Equal(t, "call_1", toolTurn.ToolCallID)
	assert.Equal(t, "addTransaction", toolTurn.Name)
}

func TestClient_Send_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := client.Send(context.Background(), "ctx", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	// The error body never leaks into the error message.
	assert.NotContains(t, err.Error(), "rate limited")
}

func TestClient_Send_NoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	})

	_, err := client.Send(context.Background(), "ctx", nil)
	assert.Error(t, err)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestVisionAnalyzer_ParsesFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		json.NewEncoder(w).Encode(chatResponse{Choices: []chatChoice{{
			Message: responseMessage{
				Role:    "assistant",
				Content: `{"merchantName":"Lidl","amount":23.99,"date":"2026-03-14","category":"Food","type":"expense"}`,
			},
		}}})
	})

	analyzer := NewVisionAnalyzer(client, "")
	fields, err := analyzer.Analyze(context.Background(), []byte("fake-jpeg"))
	require.NoError(t, err)

	assert.Equal(t, "Lidl", fields.MerchantName)
	require.NotNil(t, fields.Amount)
	assert.Equal(t, "23.99", fields.Amount.String())
	require.NotNil(t, fields.Date)
	assert.Equal(t, "2026-03-14", fields.Date.Format("2006-01-02"))
	assert.Equal(t, "Food", fields.Category)
	assert.Equal(t, "expense", fields.Type)
}

func TestVisionAnalyzer_NullFieldsStayEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{Choices: []chatChoice{{
			Message: responseMessage{
				Role:    "assistant",
				Content: `{"merchantName":null,"amount":null,"date":null,"category":null,"type":null}`,
			},
		}}})
	})

	analyzer := NewVisionAnalyzer(client, "")
	fields, err := analyzer.Analyze(context.Background(), []byte("fake-jpeg"))
	require.NoError(t, err)

	assert.Empty(t, fields.MerchantName)
	assert.Nil(t, fields.Amount)
	assert.Nil(t, fields.Date)
	assert.Empty(t, fields.Category)
}
