// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package conversation defines the per-turn state record threaded through the
// router, the responder pipelines and the personality layer, plus the message
// and audit-trail types that make up that record.
package conversation

import "time"

// Role tags a message entry in the conversation sequence.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Language is the closed set of languages the assistant answers in.
type Language string

const (
	LanguagePT Language = "pt"
	LanguageEN Language = "en"
)

// GateOutcome is the explicit state set once by the topic gate and read by
// downstream routing. Pipelines branch on this tag, not on response phrasing.
type GateOutcome string

const (
	GateProceed GateOutcome = "proceed"
	GateRefused GateOutcome = "refused"
)

// ToolCall is a single tool-invocation request carried by an assistant entry.
type ToolCall struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// Message is one entry in the conversation sequence. Tool entries carry the
// correlation id of the originating tool call in ToolCallID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// Human builds a human message entry.
func Human(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// Assistant builds an assistant message entry.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolResult builds a tool-result entry correlated back to callID.
func ToolResult(callID, name, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, ToolName: name}
}

// TraceStep is one append-only audit-trail record: the component that ran and
// a map of tool name to the output it produced during that step.
type TraceStep struct {
	AgentName string                 `json:"agent_name"`
	ToolCalls map[string]interface{} `json:"tool_calls"`
}

// State is the versioned per-turn record. It is created fresh for every
// incoming query, flows through exactly one responder pipeline and is
// discarded once the response is returned. SessionUserID never changes after
// construction; QueryUserID is recomputed every turn.
type State struct {
	Messages      []Message
	SessionUserID string
	QueryUserID   string // authorized target for this turn, empty if none
	Language      Language
	ToolsUsed     []string
	Escalation    bool
	AccessDenied  bool
	GateOutcome   GateOutcome
	Destination   string
	CurrentQuery  string
	RawOutput     string
	FinalOutput   string
	Trace         []TraceStep
	StartedAt     time.Time
}

// NewState constructs the turn state for a query. Prior holds checkpointed
// history for the session; the new human entry is appended after it.
func NewState(sessionUserID, query string, prior []Message) *State {
	msgs := make([]Message, 0, len(prior)+1)
	msgs = append(msgs, prior...)
	msgs = append(msgs, Human(query))
	return &State{
		Messages:      msgs,
		SessionUserID: sessionUserID,
		CurrentQuery:  query,
		Language:      LanguageEN,
		GateOutcome:   GateProceed,
		StartedAt:     time.Now().UTC(),
	}
}

// Append adds entries to the message sequence. Entries are never removed;
// ReplaceLastAssistant is the single documented exception.
func (s *State) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// LastMessage returns the most recent entry, or a zero Message when empty.
func (s *State) LastMessage() Message {
	if len(s.Messages) == 0 {
		return Message{}
	}
	return s.Messages[len(s.Messages)-1]
}

// LastAssistantContent returns the content of the most recent assistant entry.
func (s *State) LastAssistantContent() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Content
		}
	}
	return ""
}

// ReplaceLastAssistant swaps the content of the final entry when, and only
// when, that entry is an assistant message. Used by the personality layer to
// substitute the styled response for the raw one.
func (s *State) ReplaceLastAssistant(content string) bool {
	if len(s.Messages) == 0 {
		return false
	}
	last := &s.Messages[len(s.Messages)-1]
	if last.Role != RoleAssistant {
		return false
	}
	s.Messages[len(s.Messages)-1] = Assistant(content)
	return true
}

// MarkToolUsed records a tool name in the used set, suppressing duplicates.
func (s *State) MarkToolUsed(name string) {
	for _, used := range s.ToolsUsed {
		if used == name {
			return
		}
	}
	s.ToolsUsed = append(s.ToolsUsed, name)
}

// AddTrace appends one audit-trail step.
func (s *State) AddTrace(agentName string, toolCalls map[string]interface{}) {
	if toolCalls == nil {
		toolCalls = map[string]interface{}{}
	}
	s.Trace = append(s.Trace, TraceStep{AgentName: agentName, ToolCalls: toolCalls})
}
