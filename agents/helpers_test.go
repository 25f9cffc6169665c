// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"

	"novapay/assistant/llm"
)

// fakeProvider replays a scripted sequence of responses. Once the script is
// exhausted it keeps returning the last entry.
type fakeProvider struct {
	script   []*llm.ChatResponse
	err      error
	requests []llm.ChatRequest
}

func (f *fakeProvider) Name() string    { return "fake" }
func (f *fakeProvider) IsHealthy() bool { return true }

func (f *fakeProvider) Complete(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	idx := len(f.requests) - 1
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	}
	return f.script[idx], nil
}

func textResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{Message: llm.Message{Role: llm.RoleAssistant, Content: content}}
}

func toolResponse(calls ...llm.ToolCall) *llm.ChatResponse {
	return &llm.ChatResponse{Message: llm.Message{Role: llm.RoleAssistant, ToolCalls: calls}}
}

// fakeRetriever returns canned strings for the two retrieval operations.
type fakeRetriever struct {
	retrieveResult string
	retrieveErr    error
	searchResult   string
	searchErr      error
	retrieveCalls  int
	searchCalls    int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string) (string, error) {
	f.retrieveCalls++
	return f.retrieveResult, f.retrieveErr
}

func (f *fakeRetriever) WebSearch(_ context.Context, _ string) (string, error) {
	f.searchCalls++
	return f.searchResult, f.searchErr
}
