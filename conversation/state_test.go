// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState_AppendsQueryAfterHistory(t *testing.T) {
	prior := []Message{
		Human("What's my balance?"),
		Assistant("Your balance is 1250.50."),
	}

	st := NewState("client123", "And my last transactions?", prior)

	require.Len(t, st.Messages, 3)
	assert.Equal(t, RoleHuman, st.Messages[2].Role)
	assert.Equal(t, "And my last transactions?", st.Messages[2].Content)
	assert.Equal(t, "client123", st.SessionUserID)
	assert.Empty(t, st.QueryUserID)
	assert.Equal(t, GateProceed, st.GateOutcome)
}

func TestReplaceLastAssistant(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     bool
	}{
		{
			name:     "replaces assistant tail",
			messages: []Message{Human("hi"), Assistant("raw output")},
			want:     true,
		},
		{
			name:     "refuses when tail is human",
			messages: []Message{Assistant("raw output"), Human("hi")},
			want:     false,
		},
		{
			name:     "refuses when empty",
			messages: nil,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &State{Messages: tt.messages}
			before := len(st.Messages)

			ok := st.ReplaceLastAssistant("styled output")

			assert.Equal(t, tt.want, ok)
			assert.Len(t, st.Messages, before, "replace must never change sequence length")
			if tt.want {
				assert.Equal(t, "styled output", st.LastMessage().Content)
			}
		})
	}
}

func TestMarkToolUsed_SuppressesDuplicates(t *testing.T) {
	st := &State{}
	st.MarkToolUsed("get_balance")
	st.MarkToolUsed("get_recent_transactions")
	st.MarkToolUsed("get_balance")

	assert.Equal(t, []string{"get_balance", "get_recent_transactions"}, st.ToolsUsed)
}

func TestAddTrace_OrderedAndAppendOnly(t *testing.T) {
	st := &State{}
	st.AddTrace("RouterAgent", map[string]interface{}{"LLM_decision": "CustomAgent"})
	st.AddTrace("CustomAgent", nil)

	require.Len(t, st.Trace, 2)
	assert.Equal(t, "RouterAgent", st.Trace[0].AgentName)
	assert.Equal(t, "CustomAgent", st.Trace[1].AgentName)
	assert.NotNil(t, st.Trace[1].ToolCalls)
}

func TestLastAssistantContent_SkipsToolEntries(t *testing.T) {
	st := &State{Messages: []Message{
		Human("hi"),
		Assistant("answer"),
		ToolResult("call-1", "get_balance", `{"ok":true}`),
	}}

	assert.Equal(t, "answer", st.LastAssistantContent())
}
