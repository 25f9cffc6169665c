// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"

	"novapay/assistant/conversation"
	"novapay/assistant/llm"
	"novapay/assistant/prompts"
	"novapay/assistant/shared/logger"
	"novapay/assistant/userdir"
)

// defaultTransactionLimit bounds a transaction-history read when the model
// does not ask for a specific count.
const defaultTransactionLimit = 5

// BalanceAgent answers balance and transaction-history questions for the
// authorized user. It is the most tightly gated responder: the query must
// positively match a balance topic keyword.
type BalanceAgent struct {
	guard    *Guard
	reasoner *Reasoner
	prompts  *prompts.Store
	log      *logger.Logger
}

// NewBalanceAgent wires the balance pipeline over the account directory.
func NewBalanceAgent(provider llm.Provider, dir *userdir.Directory, ps *prompts.Store, cfg GuardConfig) *BalanceAgent {
	tools := []Tool{
		balanceTool(dir),
		transactionsTool(dir),
	}
	return &BalanceAgent{
		guard:    NewBalanceGuard(cfg),
		reasoner: NewReasoner(provider, tools, "balance-agent"),
		prompts:  ps,
		log:      logger.New("balance-agent"),
	}
}

// Name returns the audit-trail display name.
func (a *BalanceAgent) Name() string { return "CustomAgent" }

// Respond runs the guard and the reason/act loop.
func (a *BalanceAgent) Respond(ctx context.Context, st *conversation.State) (map[string]interface{}, error) {
	if !a.guard.Apply(st) {
		return map[string]interface{}{}, nil
	}

	system := a.prompts.Load("custom_agent", st.Language)
	if err := a.reasoner.Run(ctx, st, system); err != nil {
		return nil, err
	}
	return ExtractToolCalls(st.Messages), nil
}

func balanceTool(dir *userdir.Directory) Tool {
	return Tool{
		Spec: llm.ToolSpec{
			Name:        "get_balance",
			Description: "Return the current account balance for a user.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"user_id": map[string]interface{}{
						"type":        "string",
						"description": "The account identifier",
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
			user, ok := dir.Lookup(id)
			if !ok {
				return failure("user not found: " + id)
			}
			return ToolOutcome{OK: true, Data: map[string]interface{}{
				"user_id":  user.ID,
				"balance":  user.Balance,
				"currency": "BRL",
			}}
		},
	}
}

func transactionsTool(dir *userdir.Directory) Tool {
	return Tool{
		Spec: llm.ToolSpec{
			Name:        "get_recent_transactions",
			Description: "Return the most recent transactions for a user, newest first.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"user_id": map[string]interface{}{
						"type":        "string",
						"description": "The account identifier",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "How many transactions to return (default 5)",
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
			limit := intArg(args, "limit", defaultTransactionLimit)
			txs, ok := dir.RecentTransactions(id, limit)
			if !ok {
				return failure("user not found: " + id)
			}
			return ToolOutcome{OK: true, Data: map[string]interface{}{
				"user_id":      id,
				"transactions": txs,
			}}
		},
	}
}
