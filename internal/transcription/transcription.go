// Package transcription drives the external transcription service: submit a
// job for an audio object, poll until it settles, download the text. The
// service is treated as opaque; all this package promises is a transcript
// string or an explicit failure.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"call-audit-go/internal/logger"
)

// Transcriber converts a stored audio object into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, sourceURI, mediaFormat string) (string, error)
}

type Client struct {
	baseURL     string
	maxPollTime time.Duration
	httpClient  *http.Client
	log         *logger.Logger
}

func NewClient(baseURL string, maxPollTime time.Duration) *Client {
	if maxPollTime <= 0 {
		maxPollTime = 3 * time.Minute
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxPollTime: maxPollTime,
		httpClient:  &http.Client{Timeout: 12 * time.Second},
		log:         logger.New(),
	}
}

type jobStatus struct {
	JobName       string `json:"job_name"`
	Status        string `json:"status"` // QUEUED, IN_PROGRESS, COMPLETED, FAILED
	TranscriptURI string `json:"transcript_uri"`
	Reason        string `json:"reason,omitempty"`
}

// Transcribe runs one job end to end. Polling backs off exponentially up to
// the configured limit; a FAILED job or exhausted poll window is an error,
// and the caller decides how to degrade.
func (c *Client) Transcribe(ctx context.Context, sourceURI, mediaFormat string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("transcription service not configured")
	}
	jobName := "transcribe_" + uuid.New().String()
	log := c.log.WithField("module", "transcription").WithField("job_name", jobName)

	if err := c.startJob(ctx, jobName, sourceURI, mediaFormat); err != nil {
		return "", err
	}
	log.WithField("source_uri", sourceURI).Info("transcription job started")

	transcriptURI, err := c.pollJob(ctx, jobName)
	if err != nil {
		return "", err
	}
	log.WithField("transcript_uri", transcriptURI).Info("transcription completed, downloading text")
	return c.download(ctx, transcriptURI)
}

func (c *Client) startJob(ctx context.Context, jobName, sourceURI, mediaFormat string) error {
	payload, _ := json.Marshal(map[string]string{
		"job_name":      jobName,
		"media_uri":     sourceURI,
		"media_format":  strings.ToLower(mediaFormat),
		"language_code": "en-US",
	})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/jobs", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("start transcription job: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("start transcription job: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// pollJob waits for the job to settle. Still-running statuses are temporary
// errors for the backoff loop; FAILED is permanent.
func (c *Client) pollJob(ctx context.Context, jobName string) (string, error) {
	var transcriptURI string

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/jobs/"+jobName, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		var s jobStatus
		if err := json.Unmarshal(body, &s); err != nil {
			return fmt.Errorf("poll decode: %v body=%s", err, string(body))
		}
		switch s.Status {
		case "COMPLETED":
			transcriptURI = s.TranscriptURI
			return nil
		case "FAILED":
			return backoff.Permanent(fmt.Errorf("transcription failed: %s", s.Reason))
		default:
			return fmt.Errorf("job %s still %s", jobName, s.Status)
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 15 * time.Second
	bo.MaxElapsedTime = c.maxPollTime
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	if transcriptURI == "" {
		return "", fmt.Errorf("transcription job %s completed without transcript", jobName)
	}
	return transcriptURI, nil
}

func (c *Client) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("download transcript: %s", string(b))
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
