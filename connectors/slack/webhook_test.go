// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_Success(t *testing.T) {
	var payload webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL)
	outcome := wh.Notify(context.Background(), "client123", "bypass security checks")

	assert.Equal(t, "Slack alert sent successfully", outcome)
	assert.Contains(t, payload.Text, "Suspicious Activity Detected")
	assert.Contains(t, payload.Text, "client123")
	assert.Contains(t, payload.Text, "bypass security checks")
}

func TestNotify_NotConfigured(t *testing.T) {
	wh := NewWebhook("")
	outcome := wh.Notify(context.Background(), "client123", "anything")

	assert.Equal(t, "Slack webhook URL not configured", outcome)
}

func TestNotify_ServerErrorIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL)
	outcome := wh.Notify(context.Background(), "client123", "anything")

	assert.Contains(t, outcome, "Slack notification failed")
}
