// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"novapay/assistant/conversation"
)

func TestEncodeOutcome(t *testing.T) {
	out := encodeOutcome(ToolOutcome{OK: true, Data: map[string]interface{}{"balance": 12.5}})
	assert.JSONEq(t, `{"ok":true,"data":{"balance":12.5}}`, out)

	out = encodeOutcome(failure("user not found: client999"))
	assert.JSONEq(t, `{"ok":false,"message":"user not found: client999"}`, out)
}

func TestArgHelpers(t *testing.T) {
	args := map[string]interface{}{"user_id": "client123", "limit": float64(3)}

	assert.Equal(t, "client123", stringArg(args, "user_id"))
	assert.Equal(t, "", stringArg(args, "missing"))
	assert.Equal(t, 3, intArg(args, "limit", 5))
	assert.Equal(t, 5, intArg(args, "missing", 5))
}

func TestExtractToolCalls_CorrelatesLastRound(t *testing.T) {
	msgs := []conversation.Message{
		conversation.Human("balance please"),
		{Role: conversation.RoleAssistant, ToolCalls: []conversation.ToolCall{{ID: "c1", Name: "get_user_info"}}},
		conversation.ToolResult("c1", "get_user_info", `{"ok":true}`),
		{Role: conversation.RoleAssistant, ToolCalls: []conversation.ToolCall{
			{ID: "c2", Name: "get_balance"},
			{ID: "c3", Name: "get_recent_transactions"},
		}},
		conversation.ToolResult("c2", "get_balance", `{"ok":true,"data":{"balance":1250.5}}`),
		conversation.ToolResult("c3", "get_recent_transactions", `{"ok":true}`),
		conversation.Assistant("done"),
	}

	got := ExtractToolCalls(msgs)

	assert.Len(t, got, 2)
	assert.Contains(t, got["get_balance"], "1250.5")
	assert.Equal(t, `{"ok":true}`, got["get_recent_transactions"])
	assert.NotContains(t, got, "get_user_info", "only the final tool round is traced")
}

func TestExtractToolCalls_NoToolRounds(t *testing.T) {
	msgs := []conversation.Message{
		conversation.Human("hi"),
		conversation.Assistant("hello"),
	}
	assert.Empty(t, ExtractToolCalls(msgs))
}
