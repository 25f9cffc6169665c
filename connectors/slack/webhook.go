// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package slack delivers security-escalation notifications to a chat-ops
// webhook. Delivery is best-effort: a failed post is reported as an outcome
// string, never as a hard error to the pipeline.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"novapay/assistant/shared/logger"
)

// DefaultTimeout bounds each webhook post.
const DefaultTimeout = 10 * time.Second

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Webhook posts alerts to an incoming-webhook URL.
type Webhook struct {
	url    string
	client HTTPClient
	log    *logger.Logger
}

// NewWebhook creates a webhook notifier. An empty URL yields a notifier that
// reports "not configured" on every call.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: DefaultTimeout},
		log:    logger.New("slack"),
	}
}

type webhookPayload struct {
	Text string `json:"text"`
}

// Notify posts a suspicious-activity alert for userID. The returned string is
// the delivery outcome recorded in the audit trail.
func (w *Webhook) Notify(ctx context.Context, userID, message string) string {
	if w.url == "" {
		return "Slack webhook URL not configured"
	}

	payload := webhookPayload{
		Text: fmt.Sprintf(":rotating_light: *Suspicious Activity Detected* :rotating_light:\n\n*User:* %s\n*Message:* %s", userID, message),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("Slack notification failed: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Sprintf("Slack notification failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.log.WithError(userID, "", "slack webhook post failed", err, nil)
		return fmt.Sprintf("Slack notification failed: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		w.log.Error(userID, "", "slack webhook rejected", map[string]interface{}{
			"status": resp.StatusCode, "body": string(raw),
		})
		return fmt.Sprintf("Slack notification failed: status %d", resp.StatusCode)
	}

	return "Slack alert sent successfully"
}
