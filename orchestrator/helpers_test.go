// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"novapay/assistant/conversation"
	"novapay/assistant/llm"
)

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

type scriptedProvider struct {
	script   []*llm.ChatResponse
	err      error
	requests []llm.ChatRequest
}

func (p *scriptedProvider) Name() string    { return "scripted" }
func (p *scriptedProvider) IsHealthy() bool { return true }

func (p *scriptedProvider) Complete(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	idx := len(p.requests) - 1
	if idx >= len(p.script) {
		idx = len(p.script) - 1
	}
	return p.script[idx], nil
}

func text(content string) *llm.ChatResponse {
	return &llm.ChatResponse{Message: llm.Message{Role: llm.RoleAssistant, Content: content}}
}

// fakeResponder scripts a responder outcome for state-machine tests.
type fakeResponder struct {
	name   string
	output string
	trace  map[string]interface{}
	err    error
	calls  int
}

func (f *fakeResponder) Name() string { return f.name }

func (f *fakeResponder) Respond(_ context.Context, st *conversation.State) (map[string]interface{}, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	st.RawOutput = f.output
	st.Append(conversation.Assistant(f.output))
	return f.trace, nil
}
