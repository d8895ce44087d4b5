// Package embedding is the client for the embedding service. The same model
// embeds knowledge chunks at ingestion time and queries at lookup time;
// cosine similarity across mismatched embedding spaces is meaningless, so
// the model identifier travels with the client, never per call.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Embedder produces a fixed-dimension vector for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Embed returns the vector for text. Single-shot like the generation client;
// callers treat an error as "no embedding available".
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("embedding service not configured")
	}

	reqBody := map[string]any{
		"model": c.model,
		"input": text,
	}
	data, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("embedding service status %d", resp.StatusCode)
	}

	var parsed struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("embedding response decode: %w", err)
	}
	if len(parsed.Data) > 0 && len(parsed.Data[0].Embedding) > 0 {
		return parsed.Data[0].Embedding, nil
	}
	if len(parsed.Embedding) > 0 {
		return parsed.Embedding, nil
	}
	return nil, fmt.Errorf("embedding response empty")
}
