// Package webhook posts check run summaries to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lendwise/landing/models"
)

// Event types.
const (
	EventRunPassed = "pagecheck.passed"
	EventRunFailed = "pagecheck.failed"
)

// SignatureHeader carries the HMAC-SHA256 of the body as "sha256=<hex>".
const SignatureHeader = "X-Pagecheck-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string      `json:"type"`
	RunID     string      `json:"run_id"`
	Timestamp int64       `json:"timestamp"`
	Data      *RunSummary `json:"data"`
}

// RunSummary is the outcome of one pagecheck invocation.
type RunSummary struct {
	Passed  int                   `json:"passed"`
	Total   int                   `json:"total"`
	Reports []*models.CheckReport `json:"reports"`
}

// NewRunEvent wraps a summary, typing it by whether every check passed.
func NewRunEvent(summary *RunSummary) *Event {
	typ := EventRunPassed
	if summary.Passed < summary.Total {
		typ = EventRunFailed
	}
	return &Event{
		Type:      typ,
		RunID:     "run-" + randomID(),
		Timestamp: time.Now().Unix(),
		Data:      summary,
	}
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Deliver sends a webhook event synchronously.
// The request body is signed with HMAC-SHA256 if secret is non-empty.
func Deliver(ctx context.Context, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Pagecheck-Webhook/1.0")

	if secret != "" {
		req.Header.Set(SignatureHeader, Sign(secret, body))
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DefaultDelays are the waits before each attempt: immediately, then 1s and 5s.
var DefaultDelays = []time.Duration{0, 1 * time.Second, 5 * time.Second}

// DeliverWithRetry tries each delay in turn until one delivery succeeds. It
// blocks; a command-line run must not exit before the report is out.
func DeliverWithRetry(ctx context.Context, url, secret string, event *Event, delays []time.Duration) error {
	var lastErr error
	for attempt, delay := range delays {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err := Deliver(ctx, url, secret, event)
		if err == nil {
			slog.Info("webhook delivered",
				"url", url,
				"event", event.Type,
				"run_id", event.RunID,
				"attempt", attempt+1,
			)
			return nil
		}
		slog.Warn("webhook delivery failed",
			"url", url,
			"event", event.Type,
			"run_id", event.RunID,
			"attempt", attempt+1,
			"error", err,
		)
		lastErr = err
	}
	return fmt.Errorf("webhook: all %d attempts failed: %w", len(delays), lastErr)
}

// randomID generates a short random hex string for run IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
