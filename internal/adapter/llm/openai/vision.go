package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/receipt"
)

// visionPrompt asks for strict JSON so the response parses without cleanup
const visionPrompt = `Extract the purchase details from this receipt photo. Respond with a JSON
object with these keys: "merchantName" (string), "amount" (number, the final
total), "date" (string, YYYY-MM-DD), "category" (string, one of: Food,
Transport, Entertainment, Shopping, Utilities, Subscriptions, Housing),
"type" ("expense" or "income"). Use null for anything you cannot read.`

// VisionAnalyzer implements receipt.Analyzer over the same chat endpoint,
// sending the image inline as a data URI.
type VisionAnalyzer struct {
	client *Client
	model  string
}

// NewVisionAnalyzer creates a receipt analyzer. model may be empty to reuse
// the client's chat model.
func NewVisionAnalyzer(client *Client, model string) *VisionAnalyzer {
	if model == "" {
		model = client.model
	}
	return &VisionAnalyzer{client: client, model: model}
}

// receiptPayload is the JSON shape the vision prompt requests
type receiptPayload struct {
	MerchantName *string  `json:"merchantName"`
	Amount       *float64 `json:"amount"`
	Date         *string  `json:"date"`
	Category     *string  `json:"category"`
	Type         *string  `json:"type"`
}

// Analyze sends the receipt image and parses the extracted fields
func (a *VisionAnalyzer) Analyze(ctx context.Context, image []byte) (*receipt.Fields, error) {
	dataURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := a.client.complete(ctx, chatRequest{
		Model: a.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: visionPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURI}},
			},
		}},
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: vision response contained no choices")
	}

	var payload receiptPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("openai: failed to decode receipt fields: %w", err)
	}

	fields := &receipt.Fields{}
	if payload.MerchantName != nil {
		fields.MerchantName = strings.TrimSpace(*payload.MerchantName)
	}
	if payload.Amount != nil && *payload.Amount > 0 {
		amount := decimal.NewFromFloat(*payload.Amount)
		fields.Amount = &amount
	}
	if payload.Date != nil {
		if parsed, err := time.Parse("2006-01-02", *payload.Date); err == nil {
			fields.Date = &parsed
		}
	}
	if payload.Category != nil {
		fields.Category = strings.TrimSpace(*payload.Category)
	}
	if payload.Type != nil {
		fields.Type = strings.TrimSpace(*payload.Type)
	}

	return fields, nil
}
