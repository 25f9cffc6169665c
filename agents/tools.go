// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"encoding/json"

	"novapay/assistant/conversation"
	"novapay/assistant/llm"
)

// ToolOutcome is the structured result every tool returns. It is serialized
// to JSON and fed back to the model as the tool message content.
type ToolOutcome struct {
	OK      bool        `json:"ok"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Tool pairs a model-facing declaration with its executor. Executors never
// return a Go error to the loop; failures are encoded in the outcome so the
// model can react to them.
type Tool struct {
	Spec llm.ToolSpec
	Run  func(ctx context.Context, args map[string]interface{}) ToolOutcome
}

func toolSpecs(tools []Tool) []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(tools))
	for _, t := range tools {
		specs = append(specs, t.Spec)
	}
	return specs
}

func findTool(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Spec.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

func encodeOutcome(out ToolOutcome) string {
	b, err := json.Marshal(out)
	if err != nil {
		return `{"ok":false,"message":"tool result encoding failed"}`
	}
	return string(b)
}

// failure is shorthand for an unsuccessful outcome carrying only a message.
func failure(msg string) ToolOutcome {
	return ToolOutcome{OK: false, Message: msg}
}

// stringArg pulls a string argument out of a decoded tool-call payload.
func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg pulls an integer argument, tolerating the float64 JSON decoding
// produces for numbers.
func intArg(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// ExtractToolCalls correlates the last assistant message that requested
// tools with the tool results that followed it, producing the name-to-output
// map recorded in the workflow trace.
func ExtractToolCalls(msgs []conversation.Message) map[string]interface{} {
	out := map[string]interface{}{}

	last := -1
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == conversation.RoleAssistant && len(msgs[i].ToolCalls) > 0 {
			last = i
			break
		}
	}
	if last < 0 {
		return out
	}

	results := map[string]string{}
	for _, m := range msgs[last+1:] {
		if m.Role == conversation.RoleTool {
			results[m.ToolCallID] = m.Content
		}
	}
	for _, tc := range msgs[last].ToolCalls {
		if res, ok := results[tc.ID]; ok {
			out[tc.Name] = res
		} else {
			out[tc.Name] = "no output recorded"
		}
	}
	return out
}
