// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"novapay/assistant/conversation"
	"novapay/assistant/llm"
	"novapay/assistant/prompts"
	"novapay/assistant/shared/logger"
)

// metaSentinels mark responses that quote the user's own words back at them.
// Restyling those would corrupt the quote, so they pass through verbatim.
var metaSentinels = []string{
	"last question was:",
	"sua última pergunta foi:",
}

// defaultPersonalityPrompt backs the layer when no template file is
// deployed.
const defaultPersonalityPrompt = "You are Nova, NovaPay's friendly assistant. You are warm, clear and concise, and you always answer in the user's language. Keep the factual content of what you are given exactly as it is; only adjust tone and phrasing."

// Personality is the final stage of every turn. It restyles the raw
// responder output into the assistant's voice, or answers directly when the
// router sent the query nowhere else.
type Personality struct {
	provider llm.Provider
	prompts  *prompts.Store
	log      *logger.Logger
}

// NewPersonality builds the personality layer.
func NewPersonality(provider llm.Provider, ps *prompts.Store) *Personality {
	return &Personality{provider: provider, prompts: ps, log: logger.New("personality")}
}

// Finalize sets st.FinalOutput. Fixed responses (denials, refusals,
// security acknowledgements) and meta answers pass through untouched; a
// styling failure falls back to the raw output rather than failing the turn.
func (p *Personality) Finalize(ctx context.Context, st *conversation.State) {
	if p.passthrough(st) {
		st.FinalOutput = st.RawOutput
		return
	}

	system := p.prompts.Load("personality_agent", st.Language)
	if system == "" {
		system = defaultPersonalityPrompt
	}

	if st.RawOutput == "" {
		p.answer(ctx, st, system)
		return
	}
	p.restyle(ctx, st, system)
}

// passthrough reports whether the raw output must be delivered verbatim.
func (p *Personality) passthrough(st *conversation.State) bool {
	if st.AccessDenied || st.GateOutcome == conversation.GateRefused {
		return true
	}
	if st.Destination == DestSecurity {
		return true
	}
	lower := strings.ToLower(st.RawOutput)
	for _, sentinel := range metaSentinels {
		if strings.Contains(lower, sentinel) {
			return true
		}
	}
	return false
}

// answer handles the default route: no responder ran, so the personality
// layer produces the response itself from the conversation.
func (p *Personality) answer(ctx context.Context, st *conversation.State, system string) {
	resp, err := p.provider.Complete(ctx, llm.ChatRequest{
		System:   system,
		Messages: historyMessages(st),
	})
	if err != nil {
		p.log.WithError(st.SessionUserID, "", "default response generation failed", err, nil)
		st.FinalOutput = internalFailureMessages[st.Language]
		st.Append(conversation.Assistant(st.FinalOutput))
		return
	}
	st.FinalOutput = resp.Message.Content
	st.Append(conversation.Assistant(st.FinalOutput))
}

// restyle rewrites the raw responder output in the assistant's voice and
// substitutes it for the final assistant entry.
func (p *Personality) restyle(ctx context.Context, st *conversation.State, system string) {
	var instruction string
	if st.Language == conversation.LanguagePT {
		instruction = fmt.Sprintf("Reescreva a resposta a seguir no seu próprio tom, mantendo todos os fatos, valores e identificadores exatamente como estão:\n\n%s", st.RawOutput)
	} else {
		instruction = fmt.Sprintf("Rewrite the following response in your own voice, keeping every fact, amount and identifier exactly as it is:\n\n%s", st.RawOutput)
	}

	resp, err := p.provider.Complete(ctx, llm.ChatRequest{
		System:   system,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: instruction}},
	})
	if err != nil {
		p.log.WithError(st.SessionUserID, "", "restyling failed, delivering raw output", err, nil)
		st.FinalOutput = st.RawOutput
		return
	}

	styled := strings.TrimSpace(resp.Message.Content)
	if styled == "" {
		st.FinalOutput = st.RawOutput
		return
	}
	st.FinalOutput = styled
	if !st.ReplaceLastAssistant(styled) {
		st.Append(conversation.Assistant(styled))
	}
}

func historyMessages(st *conversation.State) []llm.Message {
	out := make([]llm.Message, 0, len(st.Messages))
	for _, m := range st.Messages {
		switch m.Role {
		case conversation.RoleHuman:
			out = append(out, llm.Message{Role: llm.RoleUser, Content: m.Content})
		case conversation.RoleAssistant:
			if m.Content != "" {
				out = append(out, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
			}
		}
	}
	return out
}
