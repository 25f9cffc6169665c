// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package knowledge is the thin client for the retrieval service: the
// vector-index lookup and the web-search fallback the knowledge responder
// uses. Both calls are opaque and best-effort; ingestion and indexing live in
// the retrieval service itself.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds each retrieval call.
	DefaultTimeout = 10 * time.Second

	retrievePath = "/api/v1/retrieve"
	searchPath   = "/api/v1/search"
)

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Retriever answers questions from the knowledge index and, separately, from
// a general web search.
type Retriever interface {
	Retrieve(ctx context.Context, question string) (string, error)
	WebSearch(ctx context.Context, query string) (string, error)
}

// Client talks to the retrieval service over HTTP.
type Client struct {
	baseURL string
	client  HTTPClient
}

// Config contains configuration for the retrieval client.
type Config struct {
	BaseURL string        // Required: retrieval service endpoint
	Timeout time.Duration // Optional: per-call timeout (default: 10s)
}

// NewClient creates a retrieval client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("knowledge: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Unavailable is the Retriever installed when no retrieval service is
// configured. Every call errs, which the responder treats as an empty
// result.
type Unavailable struct{}

func (Unavailable) Retrieve(context.Context, string) (string, error) {
	return "", fmt.Errorf("knowledge: retrieval service not configured")
}

func (Unavailable) WebSearch(context.Context, string) (string, error) {
	return "", fmt.Errorf("knowledge: retrieval service not configured")
}

type queryPayload struct {
	Query string `json:"query"`
}

type textResult struct {
	Text string `json:"text"`
}

// Retrieve asks the knowledge index for passages relevant to question.
func (c *Client) Retrieve(ctx context.Context, question string) (string, error) {
	return c.post(ctx, retrievePath, question)
}

// WebSearch runs a general web search and returns result snippets.
func (c *Client) WebSearch(ctx context.Context, query string) (string, error) {
	return c.post(ctx, searchPath, query)
}

func (c *Client) post(ctx context.Context, path, query string) (string, error) {
	body, err := json.Marshal(queryPayload{Query: query})
	if err != nil {
		return "", fmt.Errorf("knowledge: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("knowledge: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("knowledge: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("knowledge: service returned %d: %s", resp.StatusCode, string(raw))
	}

	var result textResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("knowledge: decode response: %w", err)
	}
	return result.Text, nil
}
