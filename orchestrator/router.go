// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator wires the router, the responder pipelines and the
// personality layer into one turn state machine and exposes it over HTTP.
package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"novapay/assistant/conversation"
	"novapay/assistant/language"
	"novapay/assistant/llm"
	"novapay/assistant/prompts"
	"novapay/assistant/shared/logger"
)

// Routing destinations.
const (
	DestSupport   = "customer_support"
	DestKnowledge = "knowledge_agent"
	DestBalance   = "custom_agent"
	DestSecurity  = "slack_agent"
	DestDefault   = "default"
)

// displayNames maps destinations to the names recorded in the workflow
// trace. The default destination is answered by the personality layer.
var displayNames = map[string]string{
	DestSupport:   "CustomerSupportAgent",
	DestKnowledge: "KnowledgeAgent",
	DestBalance:   "CustomAgent",
	DestSecurity:  "SlackAgent",
	DestDefault:   "PersonalityLayer",
}

var validDestinations = map[string]bool{
	DestSupport:   true,
	DestKnowledge: true,
	DestBalance:   true,
	DestSecurity:  true,
	DestDefault:   true,
}

// defaultRouterPrompt backs classification when no template file is
// deployed. The %s slot receives the user message.
const defaultRouterPrompt = `You are a routing classifier for NovaPay's customer assistant. Classify the user message into exactly one category and reply with only that category name:

customer_support - account issues, service problems, profile changes, tickets
custom_agent - account balance or transaction history questions
knowledge_agent - questions about NovaPay products, machines and services
slack_agent - suspicious, malicious or security-probing requests
default - greetings, small talk, anything else

User message: %s`

// Router decides which pipeline answers a query. Suspicious queries are
// screened with fixed patterns before any model call; everything else is
// classified with a single completion.
type Router struct {
	provider   llm.Provider
	prompts    *prompts.Store
	suspicious []*regexp.Regexp
	log        *logger.Logger
}

// NewRouter builds the router over the compiled suspicious patterns.
func NewRouter(provider llm.Provider, ps *prompts.Store, suspicious []*regexp.Regexp) *Router {
	return &Router{
		provider:   provider,
		prompts:    ps,
		suspicious: suspicious,
		log:        logger.New("router"),
	}
}

// Route returns the destination for the state's current query and stamps it
// on the state. The suspicious screen is unconditional: a matching query
// goes to the security pipeline no matter what a model would say. A failed
// classification call propagates to the caller; only an unrecognized tag is
// coerced to the default destination.
func (r *Router) Route(ctx context.Context, st *conversation.State) (string, error) {
	if pattern := r.matchSuspicious(st.CurrentQuery); pattern != "" {
		r.log.Warn(st.SessionUserID, "", "suspicious query detected", map[string]interface{}{
			"pattern": pattern,
		})
		st.Destination = DestSecurity
		return DestSecurity, nil
	}

	st.Language = language.Detect(st.CurrentQuery)
	dest, err := r.classify(ctx, st)
	if err != nil {
		return "", err
	}
	st.Destination = dest
	return dest, nil
}

func (r *Router) matchSuspicious(query string) string {
	for _, re := range r.suspicious {
		if re.MatchString(query) {
			return re.String()
		}
	}
	return ""
}

// classify makes one completion call and coerces an unexpected tag to the
// default destination. Call failures are returned, not coerced.
func (r *Router) classify(ctx context.Context, st *conversation.State) (string, error) {
	tpl := r.prompts.Load("router_agent", st.Language)
	if tpl == "" {
		tpl = defaultRouterPrompt
	}

	resp, err := r.provider.Complete(ctx, llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: fmt.Sprintf(tpl, st.CurrentQuery)}},
	})
	if err != nil {
		r.log.WithError(st.SessionUserID, "", "routing classification failed", err, nil)
		return "", fmt.Errorf("orchestrator: routing classification: %w", err)
	}

	dest := normalizeDestination(resp.Message.Content)
	if !validDestinations[dest] {
		r.log.Warn(st.SessionUserID, "", "unrecognized routing tag", map[string]interface{}{
			"tag": resp.Message.Content,
		})
		return DestDefault, nil
	}
	return dest, nil
}

func normalizeDestination(raw string) string {
	dest := strings.ToLower(strings.TrimSpace(raw))
	dest = strings.Trim(dest, "\"'`.")
	// Models occasionally answer in a sentence; take the first token that
	// looks like a destination.
	for _, field := range strings.Fields(dest) {
		field = strings.Trim(field, "\"'`.,:")
		if validDestinations[field] {
			return field
		}
	}
	return dest
}
