// Package assist talks to an external OpenAI-compatible chat completion
// service. Its output is untrusted: anything destined for the store must
// still pass validation.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable is returned when no assist service is configured.
var ErrUnavailable = errors.New("assist service is not configured")

// Client calls the external language-generation service.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates an assist client for the given OpenAI-compatible endpoint.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Suggestion is the model's best-effort guess at product fields for a
// free-form description. Price is in cents.
type Suggestion struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
}

const suggestPrompt = `You are an inventory assistant. Given a product description, respond with only a JSON object of the form {"name": string, "category": one of "electronics", "books", "clothing", "food", "other", "price": integer price guess in cents}. No prose, no code fences.`

// Suggest asks the service to guess product fields from a description.
func (c *Client) Suggest(ctx context.Context, description string) (*Suggestion, error) {
	content, err := c.chatCompletion(ctx, suggestPrompt, description)
	if err != nil {
		return nil, err
	}

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion %q: %w", content, err)
	}
	return &suggestion, nil
}

const chatPrompt = `You are an inventory assistant. Answer the user's question using only the inventory summary provided. Be concise.`

// Chat answers a free-form question about the inventory summary.
func (c *Client) Chat(ctx context.Context, question, inventorySummary string) (string, error) {
	user := fmt.Sprintf("Inventory summary:\n%s\n\nQuestion: %s", inventorySummary, question)
	return c.chatCompletion(ctx, chatPrompt, user)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) chatCompletion(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assist request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("assist service returned status %d: %s", resp.StatusCode, string(payload))
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("assist service returned no choices")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// stripCodeFence removes a markdown code fence the model sometimes wraps
// around JSON output despite instructions.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
