// Package brief turns an aggregated post payload into an intel brief via
// an OpenAI-compatible chat-completion API.
package brief

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultEndpoint = "https://nano-gpt.com/api/v1/chat/completions"
	httpTimeout     = 120 * time.Second
)

// Generator calls the chat-completion API. Unlike the data sources, a
// generator failure is fatal: the brief is the pipeline's output, so
// there is no degraded fallback.
type Generator struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewGenerator creates a brief generator. The API key is required.
func NewGenerator(apiKey, model string, maxTokens int) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("brief: API key is required (set NANOGPT_API_KEY)")
	}
	return &Generator{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		endpoint:  defaultEndpoint,
		client:    &http.Client{Timeout: httpTimeout},
	}, nil
}

// Generate sends the system prompt and payload JSON and returns the
// brief text.
func (g *Generator) Generate(ctx context.Context, systemPrompt, payloadJSON string) (string, error) {
	reqBody := chatRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Brief me.\n\n" + payloadJSON},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm api returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("empty choices in response")
	}

	return chatResp.Choices[0].Message.Content, nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
