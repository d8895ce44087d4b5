// Package llm is the text-generation gateway client. The gateway speaks the
// usual chat-completions shape; callers get back the model's raw text and do
// their own parsing. Calls are single-shot: a failed generation degrades the
// caller's result instead of being retried, which keeps per-call latency
// bounded.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"call-audit-go/internal/logger"
)

// Generator is what pipeline components depend on; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string, p Params) (string, error)
}

// Params are the per-request generation knobs.
type Params struct {
	MaxTokens   int
	Temperature float64
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        logger.New(),
	}
}

// Generate sends one prompt and returns the model's text. No retry, no
// backoff; transport and status errors come back to the caller as-is.
func (c *Client) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return "", fmt.Errorf("llm gateway not configured")
	}

	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": p.Temperature,
	}
	if p.MaxTokens > 0 {
		reqBody["max_tokens"] = p.MaxTokens
	}
	data, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("llm request failed")
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		c.log.WithField("http_status", resp.StatusCode).Warn("llm gateway error")
		return "", fmt.Errorf("llm gateway status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm response decode: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
