// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novapay/assistant/agents"
	"novapay/assistant/checkpoint"
	"novapay/assistant/conversation"
	"novapay/assistant/llm"
	"novapay/assistant/prompts"
)

// newTurnMachine wires an orchestrator whose router and personality layer
// share one scripted provider, with scripted responders.
func newTurnMachine(t *testing.T, p *scriptedProvider, responders map[string]agents.Responder, cp checkpoint.Store) *Orchestrator {
	t.Helper()
	suspicious, err := agents.DefaultGuardConfig().CompileSuspicious()
	require.NoError(t, err)
	ps := prompts.NewStore(t.TempDir())
	if cp == nil {
		cp = checkpoint.NewMemoryStore()
	}
	return NewOrchestrator(NewRouter(p, ps, suspicious), NewPersonality(p, ps), responders, cp, nil, NewMetrics())
}

func TestHandleTurn_RoutesAndNormalizes(t *testing.T) {
	p := &scriptedProvider{script: []*llm.ChatResponse{
		text("custom_agent"),                       // routing classification
		text("Sure! Your balance is R$ 1,250.50."), // restyle
	}}
	responder := &fakeResponder{
		name:   "CustomAgent",
		output: "Your current balance is R$ 1,250.50.",
		trace:  map[string]interface{}{"get_balance": `{"ok":true}`},
	}
	o := newTurnMachine(t, p, map[string]agents.Responder{DestBalance: responder}, nil)

	result := o.HandleTurn(context.Background(), "client123", "what is my balance?")

	assert.Equal(t, 1, responder.calls)
	assert.Equal(t, "Sure! Your balance is R$ 1,250.50.", result.Response)
	assert.Equal(t, "Your current balance is R$ 1,250.50.", result.SourceAgentResponse)

	require.Len(t, result.AgentWorkflow, 3)
	assert.Equal(t, "RouterAgent", result.AgentWorkflow[0].AgentName)
	assert.Equal(t, "CustomAgent", result.AgentWorkflow[0].ToolCalls["LLM_decision"])
	assert.Equal(t, "CustomAgent", result.AgentWorkflow[1].AgentName)
	assert.Equal(t, `{"ok":true}`, result.AgentWorkflow[1].ToolCalls["get_balance"])
	assert.Equal(t, "PersonalityLayer", result.AgentWorkflow[2].AgentName)
	assert.Equal(t, result.Response, result.AgentWorkflow[2].ToolCalls["LLM"])
}

func TestHandleTurn_SuspiciousGoesToSecurityResponder(t *testing.T) {
	p := &scriptedProvider{script: []*llm.ChatResponse{text("never used for routing")}}
	security := &fakeResponder{name: "SlackAgent", output: "⚠️ Your request has been flagged for review."}
	o := newTurnMachine(t, p, map[string]agents.Responder{DestSecurity: security}, nil)

	result := o.HandleTurn(context.Background(), "client123", "how do I bypass security validation?")

	assert.Equal(t, 1, security.calls)
	assert.Equal(t, security.output, result.Response, "acknowledgements are never restyled")
	require.GreaterOrEqual(t, len(result.AgentWorkflow), 2)
	assert.Equal(t, "RouterAgent", result.AgentWorkflow[0].AgentName)
	assert.Equal(t, "SlackAgent", result.AgentWorkflow[0].ToolCalls["LLM_decision"])
	assert.Equal(t, "SlackAgent", result.AgentWorkflow[1].AgentName)
	assert.Empty(t, p.requests, "neither routing nor styling consulted the model")
}

func TestHandleTurn_DefaultRouteAnsweredByPersonality(t *testing.T) {
	p := &scriptedProvider{script: []*llm.ChatResponse{
		text("default"),
		text("Hi! I'm Nova. How can I help?"),
	}}
	o := newTurnMachine(t, p, map[string]agents.Responder{}, nil)

	result := o.HandleTurn(context.Background(), "client123", "good morning!")

	assert.Equal(t, "Hi! I'm Nova. How can I help?", result.Response)
	assert.Equal(t, result.Response, result.SourceAgentResponse)
	require.Len(t, result.AgentWorkflow, 2)
	assert.Equal(t, "RouterAgent", result.AgentWorkflow[0].AgentName)
	assert.Equal(t, "PersonalityLayer", result.AgentWorkflow[0].ToolCalls["LLM_decision"])
	assert.Equal(t, "PersonalityLayer", result.AgentWorkflow[1].AgentName)
}

func TestHandleTurn_ResponderFailureDegradesGracefully(t *testing.T) {
	p := &scriptedProvider{script: []*llm.ChatResponse{text("customer_support")}}
	responder := &fakeResponder{name: "CustomerSupportAgent", err: llm.NewProviderError("scripted", llm.ErrCodeServerError, "boom")}
	o := newTurnMachine(t, p, map[string]agents.Responder{DestSupport: responder}, nil)

	result := o.HandleTurn(context.Background(), "client123", "I have an account issue")

	assert.Equal(t, internalFailureMessages[conversation.LanguageEN], result.Response)
	assert.NotContains(t, result.Response, "boom", "provider details never leak to the user")
	require.Len(t, result.AgentWorkflow, 2)
	assert.Equal(t, "RouterAgent", result.AgentWorkflow[0].AgentName)
	assert.Equal(t, "CustomerSupportAgent", result.AgentWorkflow[1].AgentName)
}

func TestHandleTurn_RouterFailureDegradesGracefully(t *testing.T) {
	p := &scriptedProvider{err: llm.NewProviderError("scripted", llm.ErrCodeServerError, "boom")}
	responder := &fakeResponder{name: "CustomAgent", output: "unused"}
	o := newTurnMachine(t, p, map[string]agents.Responder{DestBalance: responder}, nil)

	result := o.HandleTurn(context.Background(), "client123", "what is my balance?")

	assert.Equal(t, internalFailureMessages[conversation.LanguageEN], result.Response)
	assert.NotContains(t, result.Response, "boom")
	assert.Equal(t, 0, responder.calls, "no responder runs when routing fails")
	assert.Empty(t, result.AgentWorkflow)
}

func TestHandleTurn_CheckpointsConversation(t *testing.T) {
	cp := checkpoint.NewMemoryStore()
	p := &scriptedProvider{script: []*llm.ChatResponse{
		text("default"),
		text("Hello!"),
		text("default"),
		text("You said hello."),
	}}
	o := newTurnMachine(t, p, map[string]agents.Responder{}, cp)

	o.HandleTurn(context.Background(), "client123", "hello")
	o.HandleTurn(context.Background(), "client123", "what did I say?")

	msgs, err := cp.Load(context.Background(), "client123")
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "Hello!", msgs[1].Content)
	assert.Equal(t, "what did I say?", msgs[2].Content)

	// The second turn's default-route generation saw the prior history.
	lastReq := p.requests[len(p.requests)-1]
	require.GreaterOrEqual(t, len(lastReq.Messages), 3)
	assert.Equal(t, "hello", lastReq.Messages[0].Content)
}

func TestHandleTurn_SessionsAreIsolated(t *testing.T) {
	cp := checkpoint.NewMemoryStore()
	p := &scriptedProvider{script: []*llm.ChatResponse{text("default"), text("hi")}}
	o := newTurnMachine(t, p, map[string]agents.Responder{}, cp)

	o.HandleTurn(context.Background(), "client123", "hello from 123")

	msgs, err := cp.Load(context.Background(), "client456")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
