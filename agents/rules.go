// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSet is the per-responder keyword configuration the guard evaluates.
// A responder with OffTopicKeywords set uses the combined check (block only
// when an off-topic keyword matches and no topic keyword does); a responder
// without them uses the positive check (a topic keyword must match).
type RuleSet struct {
	AccessKeywords   []string `yaml:"access_keywords"`
	TopicKeywords    []string `yaml:"topic_keywords"`
	OffTopicKeywords []string `yaml:"off_topic_keywords,omitempty"`
}

// GuardConfig bundles every rule set plus the router's suspicious-intent
// patterns. It can be overridden from a YAML file; the compiled-in defaults
// mirror the production keyword lists.
type GuardConfig struct {
	Support            RuleSet  `yaml:"support"`
	Balance            RuleSet  `yaml:"balance"`
	SuspiciousPatterns []string `yaml:"suspicious_patterns"`
	EscalationKeywords []string `yaml:"escalation_keywords"`
	ProductKeywords    []string `yaml:"product_keywords"`
}

// DefaultGuardConfig returns the built-in rule sets.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		Support: RuleSet{
			AccessKeywords: []string{
				"account", "conta", "statement", "extrato", "payment", "pagamento",
				"transfer", "transferência", "novapay", "nova pay", "bill", "fee", "charge",
				"email", "phone number", "endereço de email", "número de telefone",
				"change", "alterar", "update", "atualizar",
			},
			TopicKeywords: []string{
				"account", "transfer", "payment", "deposit", "withdrawal", "card", "bank",
				"money", "credit", "debit", "loan", "novapay", "nova pay", "statement",
				"bill", "fee", "charge", "email", "phone number", "change", "update",
				"issue", "problem", "complain", "escalate",
				"conta", "transferência", "pagamento", "depósito", "saque", "cartão", "banco",
				"dinheiro", "crédito", "débito", "empréstimo", "extrato", "fatura", "taxa",
				"cobrança", "endereço de email", "número de telefone", "alterar", "atualizar",
				"problema", "reclamação", "escalar",
			},
			OffTopicKeywords: []string{
				"politics", "celebrity", "news", "weather", "sports", "movie",
				"política", "celebridade", "notícias", "tempo", "esporte", "filme",
				"election", "covid", "vaccine", "war",
			},
		},
		Balance: RuleSet{
			AccessKeywords: []string{
				"balance", "saldo", "transaction", "transação", "history", "histórico",
				"extrato", "statement",
			},
			TopicKeywords: []string{
				"balance", "saldo", "transaction", "transação", "history", "histórico",
				"extrato", "current balance", "últimas transações", "movimentação",
			},
		},
		SuspiciousPatterns: []string{
			`(?i)\bbypass\b.*\b(security|validation|check|authentication)\b`,
			`(?i)\b(give|grant)\b.*\b(admin|root|superuser)\b.*\b(access|privileges?)\b`,
			`(?i)\b(steal|dump|leak|exfiltrate)\b.*\b(data|credentials?|passwords?)\b`,
			`(?i)\b(another|other|someone else'?s?)\b.*\b(account|credentials?|password)\b.*\b(access|login|password)\b`,
			`(?i)\bs(?:enha|ecret)s?\b.*\b(todos|all|every)\b`,
			`(?i)\bdisable\b.*\b(guard|filter|safety|limit)s?\b`,
			`(?i)\b(ignore|override)\b.*\b(instructions?|rules?|policy|policies)\b`,
			`(?i)\bsql\s+injection\b`,
			`(?i)\bburlar\b.*\b(segurança|validação|verificação)\b`,
			`(?i)\bacesso\b.*\b(admin|administrador|root)\b`,
		},
		EscalationKeywords: []string{
			"complaint", "angry", "frustrated", "lawsuit", "legal",
			"reclamação", "raiva", "irritado", "processo", "jurídico",
			"need to change", "preciso alterar", "cannot update", "não consigo atualizar",
			"problem with",
		},
		ProductKeywords: []string{
			"phone", "card machine", "maquininha", "celular", "tap to pay", "novapay",
			"payment", "pagamento", "pos", "terminal", "mobile", "app",
		},
	}
}

// LoadGuardConfig reads overrides from a YAML file. A missing path returns
// the defaults; a malformed file is an error.
func LoadGuardConfig(path string) (GuardConfig, error) {
	cfg := DefaultGuardConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("agents: read guard config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("agents: parse guard config: %w", err)
	}
	return cfg, nil
}

// CompileSuspicious compiles the suspicious-intent patterns. Patterns are
// operator-supplied; a bad one fails loudly at startup rather than silently
// weakening the screen.
func (c GuardConfig) CompileSuspicious() ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(c.SuspiciousPatterns))
	for _, p := range c.SuspiciousPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("agents: suspicious pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// userIDPattern extracts an explicit account identifier embedded in a query.
var userIDPattern = regexp.MustCompile(`\b(?:user|client)\d+\b`)

// ExtractUserID returns the first explicit user-identifier token in the
// query, or "" when none is present. Matching is case-insensitive and the
// token is returned lowercased so it compares against session identities.
func ExtractUserID(query string) string {
	return userIDPattern.FindString(strings.ToLower(query))
}
