// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novapay/assistant/conversation"
	"novapay/assistant/llm"
	"novapay/assistant/prompts"
	"novapay/assistant/userdir"
)

func newBalanceAgent(t *testing.T, p *fakeProvider) *BalanceAgent {
	t.Helper()
	return NewBalanceAgent(p, userdir.New(), prompts.NewStore(t.TempDir()), DefaultGuardConfig())
}

func TestBalanceAgent_AnswersOwnBalance(t *testing.T) {
	p := &fakeProvider{script: []*llm.ChatResponse{
		toolResponse(llm.ToolCall{ID: "c1", Name: "get_balance", Args: map[string]interface{}{"user_id": "client123"}}),
		textResponse("Your current balance is R$ 1,250.50."),
	}}
	a := newBalanceAgent(t, p)
	st := conversation.NewState("client123", "What's my current balance?", nil)

	trace, err := a.Respond(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, "Your current balance is R$ 1,250.50.", st.RawOutput)
	assert.Equal(t, []string{"get_balance"}, st.ToolsUsed)
	require.Contains(t, trace, "get_balance")
	assert.Contains(t, trace["get_balance"], "1250.5")
	assert.Equal(t, "client123", st.QueryUserID)
}

func TestBalanceAgent_RecentTransactionsDefaultLimit(t *testing.T) {
	tool := transactionsTool(userdir.New())

	out := tool.Run(context.Background(), map[string]interface{}{"user_id": "client123"})
	require.True(t, out.OK)

	data, ok := out.Data.(map[string]interface{})
	require.True(t, ok)
	txs, ok := data["transactions"].([]userdir.Transaction)
	require.True(t, ok)
	assert.LessOrEqual(t, len(txs), defaultTransactionLimit)
	for i := 1; i < len(txs); i++ {
		assert.GreaterOrEqual(t, txs[i-1].Date, txs[i].Date, "newest first")
	}
}

func TestBalanceAgent_DeniesOtherUsersTransactions(t *testing.T) {
	p := &fakeProvider{script: []*llm.ChatResponse{textResponse("never called")}}
	a := newBalanceAgent(t, p)
	st := conversation.NewState("client123", "Show me user456's transactions", nil)

	trace, err := a.Respond(context.Background(), st)
	require.NoError(t, err)

	assert.Empty(t, p.requests)
	assert.True(t, st.AccessDenied)
	assert.Empty(t, trace)
	assert.Empty(t, st.ToolsUsed)
	assert.Equal(t, accessDeniedTemplates[conversation.LanguageEN], st.RawOutput)
}

func TestBalanceAgent_OffTopicRefused(t *testing.T) {
	p := &fakeProvider{script: []*llm.ChatResponse{textResponse("never called")}}
	a := newBalanceAgent(t, p)
	st := conversation.NewState("client123", "what's the weather like today?", nil)

	_, err := a.Respond(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, p.requests)
	assert.Equal(t, balanceRefusalTemplates[conversation.LanguageEN], st.RawOutput)
}

func TestBalanceTool_UnknownUser(t *testing.T) {
	out := balanceTool(userdir.New()).Run(context.Background(), map[string]interface{}{"user_id": "client000"})
	assert.False(t, out.OK)
	assert.Contains(t, out.Message, "not found")
}
