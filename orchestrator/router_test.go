// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novapay/assistant/agents"
	"novapay/assistant/conversation"
	"novapay/assistant/llm"
	"novapay/assistant/prompts"
)

func newRouter(t *testing.T, p *scriptedProvider) *Router {
	t.Helper()
	suspicious, err := agents.DefaultGuardConfig().CompileSuspicious()
	require.NoError(t, err)
	return NewRouter(p, prompts.NewStore(t.TempDir()), suspicious)
}

func TestRouter_SuspiciousQueryBypassesClassification(t *testing.T) {
	p := &scriptedProvider{script: []*llm.ChatResponse{}}
	r := newRouter(t, p)
	st := conversation.NewState("client123", "How can I bypass security validation?", nil)

	dest, err := r.Route(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, DestSecurity, dest)
	assert.Equal(t, DestSecurity, st.Destination)
	assert.Empty(t, p.requests, "the suspicious screen never consults the model")

	// Same priority in Portuguese.
	st = conversation.NewState("client123", "como burlar a validação de segurança?", nil)
	dest, err = r.Route(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, DestSecurity, dest)
	assert.Empty(t, p.requests)
}

func TestRouter_ClassifiesWithOneCall(t *testing.T) {
	p := &scriptedProvider{script: []*llm.ChatResponse{text("custom_agent")}}
	r := newRouter(t, p)
	st := conversation.NewState("client123", "what is my balance?", nil)

	dest, err := r.Route(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, DestBalance, dest)
	require.Len(t, p.requests, 1)
	assert.Contains(t, p.requests[0].Messages[0].Content, "what is my balance?")
	assert.Empty(t, p.requests[0].Tools)
}

func TestRouter_NormalizesMessyTags(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"customer_support", DestSupport},
		{"  Customer_Support \n", DestSupport},
		{"\"knowledge_agent\"", DestKnowledge},
		{"The category is: custom_agent.", DestBalance},
		{"slack_agent", DestSecurity},
		{"default", DestDefault},
		{"banana", DestDefault},
		{"", DestDefault},
	}

	for _, tc := range cases {
		p := &scriptedProvider{script: []*llm.ChatResponse{text(tc.raw)}}
		r := newRouter(t, p)
		st := conversation.NewState("client123", "hello there", nil)
		dest, err := r.Route(context.Background(), st)
		require.NoError(t, err, "raw tag: %q", tc.raw)
		assert.Equal(t, tc.want, dest, "raw tag: %q", tc.raw)
	}
}

func TestRouter_ProviderFailurePropagates(t *testing.T) {
	p := &scriptedProvider{err: llm.NewProviderError("scripted", llm.ErrCodeServerError, "boom")}
	r := newRouter(t, p)
	st := conversation.NewState("client123", "hello", nil)

	dest, err := r.Route(context.Background(), st)

	require.Error(t, err)
	assert.Empty(t, dest, "a failed classification must not be coerced to a destination")
	assert.Empty(t, st.Destination)
}

func TestRouter_UsesDeployedTemplate(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "router_agent_en.txt", "Classify this carefully.\n\nUser message: %s")

	p := &scriptedProvider{script: []*llm.ChatResponse{text("knowledge_agent")}}
	suspicious, err := agents.DefaultGuardConfig().CompileSuspicious()
	require.NoError(t, err)
	r := NewRouter(p, prompts.NewStore(dir), suspicious)

	st := conversation.NewState("client123", "tell me about the card machine", nil)
	dest, err := r.Route(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, DestKnowledge, dest)
	assert.Contains(t, p.requests[0].Messages[0].Content, "Classify this carefully.")
}
