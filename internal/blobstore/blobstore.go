// Package blobstore is a thin client for the object storage service that
// holds call recordings and the knowledge-base workbook. Objects live under
// a single bucket addressed as {base}/{bucket}/{key}.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"call-audit-go/internal/logger"
)

type Client struct {
	baseURL    string
	bucket     string
	httpClient *http.Client
	log        *logger.Logger
}

func NewClient(baseURL, bucket string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        logger.New(),
	}
}

func (c *Client) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.bucket, key)
}

// Put uploads an object and returns its URI.
func (c *Client) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("object storage not configured")
	}
	url := c.objectURL(key)
	req, err := http.NewRequestWithContext(ctx, "PUT", url, body)
	if err != nil {
		return "", err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("put %s: status %d: %s", key, resp.StatusCode, string(b))
	}
	c.log.WithField("key", key).Debug("object stored")
	return url, nil
}

// Get fetches an object. The caller owns the returned reader.
func (c *Client) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("object storage not configured")
	}
	req, err := http.NewRequestWithContext(ctx, "GET", c.objectURL(key), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get %s: status %d: %s", key, resp.StatusCode, string(b))
	}
	return resp.Body, nil
}
