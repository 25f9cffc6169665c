// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package agents implements the specialized responder pipelines: customer
// support, balance inquiry, knowledge retrieval and the security screener.
// Each pipeline guards its input, drives the completion service and writes
// its result back into the turn state.
package agents

import (
	"context"

	"novapay/assistant/conversation"
)

// Responder handles one routed query end to end. Respond mutates the turn
// state (messages, raw output, flags) and returns the tool-output map
// recorded in the workflow trace.
type Responder interface {
	Name() string
	Respond(ctx context.Context, st *conversation.State) (map[string]interface{}, error)
}
