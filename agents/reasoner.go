// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"

	"novapay/assistant/conversation"
	"novapay/assistant/llm"
	"novapay/assistant/shared/logger"
)

// maxToolRounds bounds the reason/act loop. The model normally converges in
// one or two rounds; the cap keeps a misbehaving model from looping forever.
const maxToolRounds = 8

// Reasoner drives the reason/act cycle for one responder: it asks the model
// for the next step, executes any requested tools, feeds the results back
// and repeats until the model answers in plain text.
type Reasoner struct {
	provider llm.Provider
	tools    []Tool
	log      *logger.Logger
}

// NewReasoner builds a reasoner over the given provider and tool set.
func NewReasoner(provider llm.Provider, tools []Tool, component string) *Reasoner {
	return &Reasoner{provider: provider, tools: tools, log: logger.New(component)}
}

// Run executes the loop against the turn state, appending every assistant
// and tool entry it produces. On success st.RawOutput holds the final text.
// A refusal already recorded by the guard terminates immediately.
func (r *Reasoner) Run(ctx context.Context, st *conversation.State, system string) error {
	if st.GateOutcome == conversation.GateRefused {
		return nil
	}

	for round := 0; round < maxToolRounds; round++ {
		req := llm.ChatRequest{
			System:   system,
			Messages: r.providerMessages(st),
			Tools:    toolSpecs(r.tools),
		}

		resp, err := r.provider.Complete(ctx, req)
		if err != nil {
			return fmt.Errorf("completion failed: %w", err)
		}

		st.Append(assistantFromResponse(resp))

		if !resp.HasToolCalls() {
			st.RawOutput = resp.Message.Content
			return nil
		}

		for _, tc := range resp.Message.ToolCalls {
			st.MarkToolUsed(tc.Name)
			result := r.execute(ctx, tc)
			st.Append(conversation.ToolResult(tc.ID, tc.Name, result))
			r.log.Info(st.SessionUserID, "", "tool executed", map[string]interface{}{
				"tool":  tc.Name,
				"round": round,
			})
		}
	}

	// The cap was hit without a plain-text answer. Surface whatever the
	// model said last rather than failing the whole turn.
	st.RawOutput = st.LastAssistantContent()
	r.log.Warn(st.SessionUserID, "", "tool round limit reached", map[string]interface{}{
		"max_rounds": maxToolRounds,
	})
	return nil
}

func (r *Reasoner) execute(ctx context.Context, tc llm.ToolCall) string {
	tool, ok := findTool(r.tools, tc.Name)
	if !ok {
		return encodeOutcome(failure(fmt.Sprintf("unknown tool %q", tc.Name)))
	}
	return encodeOutcome(tool.Run(ctx, tc.Args))
}

// providerMessages converts the turn state into the provider-facing message
// sequence. When an authorized target is known a context line is appended so
// the model scopes tool arguments to that account.
func (r *Reasoner) providerMessages(st *conversation.State) []llm.Message {
	msgs := toProviderMessages(st.Messages)
	if st.QueryUserID != "" {
		msgs = append(msgs, llm.Message{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("[System Context: Authorized User ID for this query: %s]", st.QueryUserID),
		})
	}
	return msgs
}

func toProviderMessages(msgs []conversation.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		pm := llm.Message{Content: m.Content, ToolCallID: m.ToolCallID, ToolName: m.ToolName}
		switch m.Role {
		case conversation.RoleHuman:
			pm.Role = llm.RoleUser
		case conversation.RoleAssistant:
			pm.Role = llm.RoleAssistant
			for _, tc := range m.ToolCalls {
				pm.ToolCalls = append(pm.ToolCalls, llm.ToolCall{ID: tc.ID, Name: tc.Name, Args: tc.Args})
			}
		case conversation.RoleTool:
			pm.Role = llm.RoleTool
		default:
			continue
		}
		out = append(out, pm)
	}
	return out
}

func assistantFromResponse(resp *llm.ChatResponse) conversation.Message {
	msg := conversation.Assistant(resp.Message.Content)
	for _, tc := range resp.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, conversation.ToolCall{ID: tc.ID, Name: tc.Name, Args: tc.Args})
	}
	return msg
}
