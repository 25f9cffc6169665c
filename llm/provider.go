// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package llm

import "context"

// Provider is the completion-service interface. Implementations must be safe
// for concurrent use and must bound each call with their configured timeout.
type Provider interface {
	// Name returns the provider identifier used for logging and metrics.
	Name() string

	// Complete generates one assistant entry for the given request. When the
	// request declares tools, the returned message may carry tool-call
	// requests instead of (or alongside) text.
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// IsHealthy reports whether the provider considers itself operational.
	IsHealthy() bool
}
