// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"
	"strings"

	"novapay/assistant/connectors/slack"
	"novapay/assistant/conversation"
	"novapay/assistant/language"
	"novapay/assistant/llm"
	"novapay/assistant/shared/logger"
)

// ValidationResult is the screener verdict for one generated response.
type ValidationResult struct {
	Passed     bool
	Violations []string
}

// ValidationPolicy judges whether a generated response may be released for
// a query the router flagged as suspicious.
type ValidationPolicy func(query, response string) ValidationResult

// DefaultValidationPolicy escalates everything. Flagged queries always go to
// the security team; the policy hook exists so deployments can loosen that.
func DefaultValidationPolicy() ValidationPolicy {
	return func(query, response string) ValidationResult {
		return ValidationResult{
			Passed:     false,
			Violations: []string{"flagged query requires manual security review"},
		}
	}
}

var escalationAcks = map[conversation.Language]string{
	conversation.LanguageEN: "⚠️ Your request has been flagged for review. Our security team has been notified and will follow up if needed. For urgent account matters, please contact NovaPay support directly.",
	conversation.LanguagePT: "⚠️ Sua solicitação foi sinalizada para análise. Nossa equipe de segurança foi notificada e fará o acompanhamento se necessário. Para assuntos urgentes da conta, entre em contato diretamente com o suporte NovaPay.",
}

const screenerPrompt = "You are a security-conscious assistant for NovaPay, a payments company. The user's request has been flagged as potentially suspicious. Respond helpfully to any legitimate part of the request, but never provide information that could compromise account security, bypass validation, or expose other users' data."

// SecurityAgent handles queries the router flagged as suspicious. It drafts
// a response, runs it through the validation policy and, on failure,
// notifies the security channel and returns a fixed acknowledgement instead.
type SecurityAgent struct {
	provider llm.Provider
	policy   ValidationPolicy
	webhook  *slack.Webhook
	log      *logger.Logger
}

// NewSecurityAgent wires the screener. A nil policy installs the default
// always-escalate policy.
func NewSecurityAgent(provider llm.Provider, webhook *slack.Webhook, policy ValidationPolicy) *SecurityAgent {
	if policy == nil {
		policy = DefaultValidationPolicy()
	}
	return &SecurityAgent{
		provider: provider,
		policy:   policy,
		webhook:  webhook,
		log:      logger.New("security-agent"),
	}
}

// Name returns the audit-trail display name.
func (a *SecurityAgent) Name() string { return "SlackAgent" }

// Respond drafts, validates and either releases or escalates.
func (a *SecurityAgent) Respond(ctx context.Context, st *conversation.State) (map[string]interface{}, error) {
	st.Language = language.Detect(st.CurrentQuery)
	st.GateOutcome = conversation.GateProceed

	resp, err := a.provider.Complete(ctx, llm.ChatRequest{
		System:   screenerPrompt,
		Messages: toProviderMessages(st.Messages),
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}
	generated := resp.Message.Content

	trace := map[string]interface{}{
		"llm_generation": generated,
	}

	verdict := a.policy(st.CurrentQuery, generated)
	answer := generated
	if verdict.Passed {
		trace["guardrails_validation"] = "passed"
	} else {
		trace["guardrails_validation"] = "failed"
		trace["guardrails_violations"] = strings.Join(verdict.Violations, "; ")
		trace["slack_notification"] = a.webhook.Notify(ctx, st.SessionUserID, st.CurrentQuery)
		answer = escalationAcks[st.Language]
		a.log.Warn(st.SessionUserID, "", "suspicious query escalated", map[string]interface{}{
			"violations": verdict.Violations,
		})
	}

	st.RawOutput = answer
	st.Append(conversation.Assistant(answer))
	return trace, nil
}
