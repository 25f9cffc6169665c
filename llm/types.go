// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package llm defines the unified completion-service contract consumed by the
// router, the responder pipelines, the security screener and the personality
// layer. Providers are pluggable; one request carries a full message sequence
// and an optional tool set, one response carries an assistant message that may
// request tool invocations.
package llm

import (
	"fmt"
	"time"
)

// Role of a chat message as seen by a provider.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool-invocation request emitted by the model. ID correlates
// the eventual tool-result message back to this call.
type ToolCall struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// Message is one entry of the provider-facing conversation.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// ToolSpec declares a tool the model may call: name, purpose and a JSON
// schema for its arguments.
type ToolSpec struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// ChatRequest encapsulates one completion call.
type ChatRequest struct {
	// System is the system instruction. May be empty.
	System string `json:"system,omitempty"`

	// Messages is the ordered conversation, oldest first.
	Messages []Message `json:"messages"`

	// Tools the model is allowed to request. Empty means text-only.
	Tools []ToolSpec `json:"tools,omitempty"`

	// Model overrides the provider default.
	Model string `json:"model,omitempty"`

	// MaxTokens limits the response length. 0 uses the provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness. Negative values use the default.
	Temperature float64 `json:"temperature,omitempty"`
}

// ChatResponse is the assistant entry a provider returns.
type ChatResponse struct {
	// Message carries the generated text and any tool-call requests, in the
	// order the model issued them.
	Message Message `json:"message"`

	// Model is the model that actually served the request.
	Model string `json:"model"`

	// Usage contains token accounting.
	Usage UsageStats `json:"usage"`

	// Latency is the wall time of the call.
	Latency time.Duration `json:"latency"`
}

// UsageStats tracks token usage for monitoring.
type UsageStats struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// HasToolCalls reports whether the response requests tool invocations.
func (r *ChatResponse) HasToolCalls() bool {
	return r != nil && len(r.Message.ToolCalls) > 0
}

// ProviderError represents an error from a completion provider.
type ProviderError struct {
	Provider   string `json:"provider"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	Retryable  bool   `json:"retryable"`
	Cause      error  `json:"-"`
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Common error codes.
const (
	ErrCodeRateLimit      = "rate_limit"
	ErrCodeAuth           = "authentication_error"
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeServerError    = "server_error"
	ErrCodeTimeout        = "timeout"
	ErrCodeUnavailable    = "unavailable"
)

// NewProviderError creates a ProviderError with the retryable flag derived
// from the code.
func NewProviderError(provider, code, message string) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Retryable: isRetryableCode(code),
	}
}

func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeRateLimit, ErrCodeServerError, ErrCodeTimeout, ErrCodeUnavailable:
		return true
	default:
		return false
	}
}
