// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"strings"

	"novapay/assistant/conversation"
	"novapay/assistant/language"
	"novapay/assistant/shared/logger"
)

// Localized fixed responses emitted by the guard. These strings terminate a
// turn verbatim and must stay stable.
var accessDeniedTemplates = map[conversation.Language]string{
	conversation.LanguageEN: "I'm sorry, but I can only provide information about your own account. I cannot share details about other users' accounts for privacy and security reasons.",
	conversation.LanguagePT: "Desculpe, mas só posso fornecer informações sobre a sua própria conta. Não posso compartilhar detalhes sobre contas de outros usuários por motivos de privacidade e segurança.",
}

var supportRefusalTemplates = map[conversation.Language]string{
	conversation.LanguageEN: "I'm a NovaPay customer support assistant. I can only help with questions about your NovaPay account, payments, transfers, and our services. How can I help you with your NovaPay needs today?",
	conversation.LanguagePT: "Sou um assistente de suporte ao cliente da NovaPay. Só posso ajudar com dúvidas sobre sua conta NovaPay, pagamentos, transferências e nossos serviços. Como posso ajudar com suas necessidades NovaPay hoje?",
}

var balanceRefusalTemplates = map[conversation.Language]string{
	conversation.LanguageEN: "I can only help with account balance and transaction questions. For other topics, please ask about your balance or recent transactions.",
	conversation.LanguagePT: "Só posso ajudar com perguntas sobre saldo e transações da conta. Para outros assuntos, pergunte sobre seu saldo ou transações recentes.",
}

// Guard runs the access validator and the topic gate for one responder. It
// is parametrized by a RuleSet and a refusal template so every responder
// shares one implementation.
type Guard struct {
	rules    RuleSet
	refusals map[conversation.Language]string
	log      *logger.Logger
}

// NewSupportGuard builds the guard used by the customer support responder.
func NewSupportGuard(cfg GuardConfig) *Guard {
	return &Guard{rules: cfg.Support, refusals: supportRefusalTemplates, log: logger.New("support-guard")}
}

// NewBalanceGuard builds the guard used by the balance responder.
func NewBalanceGuard(cfg GuardConfig) *Guard {
	return &Guard{rules: cfg.Balance, refusals: balanceRefusalTemplates, log: logger.New("balance-guard")}
}

// Apply runs both checks against the state's current query and mutates the
// state accordingly. On a refusal it appends the localized fixed response
// and tags the state so downstream stages skip LLM work. It returns true
// when the responder may proceed.
func (g *Guard) Apply(st *conversation.State) bool {
	st.Language = language.Detect(st.CurrentQuery)

	if !g.validateAccess(st) {
		msg := accessDeniedTemplates[st.Language]
		st.AccessDenied = true
		st.GateOutcome = conversation.GateRefused
		st.RawOutput = msg
		st.Append(conversation.Assistant(msg))
		g.log.Warn(st.SessionUserID, "", "access denied", map[string]interface{}{
			"query_user_id": st.QueryUserID,
		})
		return false
	}

	if !g.checkTopic(st.CurrentQuery) {
		msg := g.refusals[st.Language]
		st.GateOutcome = conversation.GateRefused
		st.RawOutput = msg
		st.Append(conversation.Assistant(msg))
		g.log.Info(st.SessionUserID, "", "off-topic query refused", nil)
		return false
	}

	st.GateOutcome = conversation.GateProceed
	return true
}

// validateAccess decides whether the query may be answered for the session
// user. Queries that never ask for account data need no authorization and
// set no target. When account access is requested, an explicit identifier
// in the query must match the session identity; without one the query is
// treated as self-access, denied only if there is no session identity.
func (g *Guard) validateAccess(st *conversation.State) bool {
	if !g.mentionsAccountData(st.CurrentQuery) {
		return true
	}

	target := ExtractUserID(st.CurrentQuery)
	if target != "" {
		st.QueryUserID = target
		return st.SessionUserID != "" && target == st.SessionUserID
	}

	st.QueryUserID = st.SessionUserID
	return st.SessionUserID != ""
}

func (g *Guard) mentionsAccountData(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range g.rules.AccessKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// checkTopic applies the responder's topic policy. With off-topic keywords
// configured the query is blocked only when an off-topic keyword matches and
// no topic keyword does; otherwise a topic keyword must be present.
func (g *Guard) checkTopic(query string) bool {
	q := strings.ToLower(query)

	onTopic := false
	for _, kw := range g.rules.TopicKeywords {
		if strings.Contains(q, kw) {
			onTopic = true
			break
		}
	}

	if len(g.rules.OffTopicKeywords) == 0 {
		return onTopic
	}

	for _, kw := range g.rules.OffTopicKeywords {
		if strings.Contains(q, kw) && !onTopic {
			return false
		}
	}
	return true
}
