// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"strings"

	"novapay/assistant/conversation"
	"novapay/assistant/llm"
	"novapay/assistant/notify"
	"novapay/assistant/prompts"
	"novapay/assistant/shared/logger"
	"novapay/assistant/tickets"
	"novapay/assistant/userdir"
)

// SupportAgent answers account and service questions. It can look up the
// redacted profile of the authorized user and open support tickets, and it
// flags turns that need human escalation.
type SupportAgent struct {
	guard      *Guard
	reasoner   *Reasoner
	prompts    *prompts.Store
	escalation []string
	log        *logger.Logger
}

// NewSupportAgent wires the support pipeline. The notifier is invoked best
// effort after ticket creation; its failure never fails the tool.
func NewSupportAgent(provider llm.Provider, dir *userdir.Directory, store *tickets.Store, notifier notify.Notifier, ps *prompts.Store, cfg GuardConfig) *SupportAgent {
	log := logger.New("support-agent")
	tools := []Tool{
		userInfoTool(dir),
		createTicketTool(store, dir, notifier, log),
	}
	return &SupportAgent{
		guard:      NewSupportGuard(cfg),
		reasoner:   NewReasoner(provider, tools, "support-agent"),
		prompts:    ps,
		escalation: cfg.EscalationKeywords,
		log:        log,
	}
}

// Name returns the audit-trail display name.
func (a *SupportAgent) Name() string { return "CustomerSupportAgent" }

// Respond runs the guard, the reason/act loop and the escalation check.
func (a *SupportAgent) Respond(ctx context.Context, st *conversation.State) (map[string]interface{}, error) {
	if !a.guard.Apply(st) {
		return map[string]interface{}{}, nil
	}

	system := a.prompts.Load("customer_support", st.Language)
	if err := a.reasoner.Run(ctx, st, system); err != nil {
		return nil, err
	}

	a.checkEscalation(st)
	return ExtractToolCalls(st.Messages), nil
}

// checkEscalation flags the turn when the query carries an escalation
// keyword or a ticket was opened during it.
func (a *SupportAgent) checkEscalation(st *conversation.State) {
	q := strings.ToLower(st.CurrentQuery)
	for _, kw := range a.escalation {
		if strings.Contains(q, kw) {
			st.Escalation = true
			return
		}
	}
	for _, used := range st.ToolsUsed {
		if used == "create_support_ticket" {
			st.Escalation = true
			return
		}
	}
}

func userInfoTool(dir *userdir.Directory) Tool {
	return Tool{
		Spec: llm.ToolSpec{
			Name:        "get_user_info",
			Description: "Look up profile information (name, email, account status, creation date) for a user. Never returns balances or transactions.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"user_id": map[string]interface{}{
						"type":        "string",
						"description": "The account identifier to look up",
					},
				},
				"required": []string{"user_id"},
			},
		},
		Run: func(_ context.Context, args map[string]interface{}) ToolOutcome {
			id := stringArg(args, "user_id")
			if id == "" {
				return failure("user_id is required")
			}
			profile, ok := dir.ProfileFor(id)
			if !ok {
				return failure("user not found: " + id)
			}
			return ToolOutcome{OK: true, Data: profile}
		},
	}
}

func createTicketTool(store *tickets.Store, dir *userdir.Directory, notifier notify.Notifier, log *logger.Logger) Tool {
	return Tool{
		Spec: llm.ToolSpec{
			Name:        "create_support_ticket",
			Description: "Open a support ticket for an issue the assistant cannot resolve directly. Returns the new ticket id and status.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"user_id": map[string]interface{}{
						"type":        "string",
						"description": "The account the ticket belongs to",
					},
					"issue_description": map[string]interface{}{
						"type":        "string",
						"description": "Short description of the issue",
					},
					"priority": map[string]interface{}{
						"type":        "string",
						"description": "One of low, medium, high",
					},
				},
				"required": []string{"user_id", "issue_description"},
			},
		},
		Run: func(_ context.Context, args map[string]interface{}) ToolOutcome {
			id := stringArg(args, "user_id")
			desc := stringArg(args, "issue_description")
			prio := tickets.Priority(stringArg(args, "priority"))

			ticket, err := store.Create(id, desc, prio)
			if err != nil {
				return failure(err.Error())
			}

			if notifier != nil {
				user, _ := dir.Lookup(id)
				if err := notifier.TicketCreated(ticket, user); err != nil {
					log.WithError(id, "", "ticket notification failed", err, nil)
				}
			}
			return ToolOutcome{OK: true, Data: ticket, Message: "support ticket created"}
		},
	}
}
