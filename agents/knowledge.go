// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"
	"strings"

	"novapay/assistant/conversation"
	"novapay/assistant/knowledge"
	"novapay/assistant/language"
	"novapay/assistant/llm"
	"novapay/assistant/prompts"
	"novapay/assistant/shared/logger"
)

// minUsefulAnswer is the length below which a retrieval result is treated as
// carrying no information.
const minUsefulAnswer = 20

// insufficiencyMarkers flag retrieval or model output that admits it found
// nothing, in either supported language.
var insufficiencyMarkers = []string{
	"no relevant", "not found", "i don't know", "i do not know",
	"couldn't find", "could not find",
	"não sei", "não encontrei", "nenhuma informação", "não foi possível",
}

var knowledgeFallbacks = map[conversation.Language]string{
	conversation.LanguageEN: "I couldn't find relevant information about that. Could you rephrase your question, or ask about NovaPay's products and services?",
	conversation.LanguagePT: "Não encontrei informações relevantes sobre isso. Você poderia reformular sua pergunta, ou perguntar sobre os produtos e serviços da NovaPay?",
}

// defaultKnowledgePrompt backs the pipeline when no template file is
// deployed.
const defaultKnowledgePrompt = "You are a NovaPay product specialist. Answer questions about NovaPay's products, payment machines and services using the retrieval tools available to you. Be accurate and concise; never invent product details."

// KnowledgeAgent answers product and service questions backed by the
// retrieval service, with a single web-search fallback when retrieval comes
// back empty-handed.
type KnowledgeAgent struct {
	provider  llm.Provider
	retriever knowledge.Retriever
	prompts   *prompts.Store
	products  []string
	log       *logger.Logger
}

// NewKnowledgeAgent wires the knowledge pipeline.
func NewKnowledgeAgent(provider llm.Provider, retriever knowledge.Retriever, ps *prompts.Store, cfg GuardConfig) *KnowledgeAgent {
	return &KnowledgeAgent{
		provider:  provider,
		retriever: retriever,
		prompts:   ps,
		products:  cfg.ProductKeywords,
		log:       logger.New("knowledge-agent"),
	}
}

// Name returns the audit-trail display name.
func (a *KnowledgeAgent) Name() string { return "KnowledgeAgent" }

var knowledgeToolSpecs = []llm.ToolSpec{
	{
		Name:        "retrieve_knowledge",
		Description: "Search NovaPay's internal product documentation for information relevant to the question.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The question to search documentation for",
				},
			},
			"required": []string{"query"},
		},
	},
	{
		Name:        "web_search",
		Description: "Search the public web for information not covered by internal documentation.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The search query",
				},
			},
			"required": []string{"query"},
		},
	},
}

// Respond produces an answer grounded in retrieved documentation. The model
// may request the retrieval tools itself; product questions force a
// retrieval pass even when it does not.
func (a *KnowledgeAgent) Respond(ctx context.Context, st *conversation.State) (map[string]interface{}, error) {
	st.Language = language.Detect(st.CurrentQuery)
	st.GateOutcome = conversation.GateProceed

	system := a.prompts.Load("knowledge_agent", st.Language)
	if system == "" {
		system = defaultKnowledgePrompt
	}

	toolOutputs := map[string]interface{}{}

	resp, err := a.provider.Complete(ctx, llm.ChatRequest{
		System:   system,
		Messages: toProviderMessages(st.Messages),
		Tools:    knowledgeToolSpecs,
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	var answer string
	switch {
	case resp.HasToolCalls():
		st.Append(assistantFromResponse(resp))
		for _, tc := range resp.Message.ToolCalls {
			result := a.runRetrieval(ctx, tc.Name, stringArg(tc.Args, "query"))
			st.MarkToolUsed(tc.Name)
			toolOutputs[tc.Name] = result
			st.Append(conversation.ToolResult(tc.ID, tc.Name, result))
		}
		answer, err = a.synthesize(ctx, system, st)
		if err != nil {
			return nil, err
		}
	case a.isProductQuestion(st.CurrentQuery):
		// The model skipped its tools on a product question. Retrieve
		// anyway so the answer is grounded in documentation.
		doc := a.runRetrieval(ctx, "retrieve_knowledge", st.CurrentQuery)
		st.MarkToolUsed("retrieve_knowledge")
		toolOutputs["retrieve_knowledge"] = doc
		answer, err = a.synthesizeFrom(ctx, system, st, doc)
		if err != nil {
			return nil, err
		}
	default:
		answer = resp.Message.Content
	}

	if a.insufficient(answer) && !usedTool(st, "web_search") {
		answer, err = a.webFallback(ctx, system, st, toolOutputs)
		if err != nil {
			return nil, err
		}
	}

	st.RawOutput = answer
	st.Append(conversation.Assistant(answer))
	return toolOutputs, nil
}

// webFallback runs the single web-search pass and synthesizes from its
// result, or returns the localized fallback when the web had nothing either.
func (a *KnowledgeAgent) webFallback(ctx context.Context, system string, st *conversation.State, toolOutputs map[string]interface{}) (string, error) {
	result := a.runRetrieval(ctx, "web_search", st.CurrentQuery)
	st.MarkToolUsed("web_search")
	toolOutputs["web_search"] = result

	if a.insufficient(result) {
		return knowledgeFallbacks[st.Language], nil
	}
	return a.synthesizeFrom(ctx, system, st, result)
}

func (a *KnowledgeAgent) runRetrieval(ctx context.Context, tool, query string) string {
	var (
		result string
		err    error
	)
	switch tool {
	case "web_search":
		result, err = a.retriever.WebSearch(ctx, query)
	default:
		result, err = a.retriever.Retrieve(ctx, query)
	}
	if err != nil {
		a.log.WithError("", "", "retrieval call failed", err, map[string]interface{}{"tool": tool})
		return "retrieval failed: " + err.Error()
	}
	return result
}

// synthesize asks the model for a final answer over the full sequence,
// including the tool results just appended.
func (a *KnowledgeAgent) synthesize(ctx context.Context, system string, st *conversation.State) (string, error) {
	resp, err := a.provider.Complete(ctx, llm.ChatRequest{
		System:   system,
		Messages: toProviderMessages(st.Messages),
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return resp.Message.Content, nil
}

// synthesizeFrom asks the model to answer the current question from one
// retrieved document, phrased in the turn's language.
func (a *KnowledgeAgent) synthesizeFrom(ctx context.Context, system string, st *conversation.State, doc string) (string, error) {
	var instruction string
	if st.Language == conversation.LanguagePT {
		instruction = fmt.Sprintf("Use as informações a seguir para responder à pergunta em português.\n\nInformações:\n%s\n\nPergunta: %s", doc, st.CurrentQuery)
	} else {
		instruction = fmt.Sprintf("Use the following information to answer the question.\n\nInformation:\n%s\n\nQuestion: %s", doc, st.CurrentQuery)
	}

	resp, err := a.provider.Complete(ctx, llm.ChatRequest{
		System:   system,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: instruction}},
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return resp.Message.Content, nil
}

func (a *KnowledgeAgent) isProductQuestion(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range a.products {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func (a *KnowledgeAgent) insufficient(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minUsefulAnswer {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range insufficiencyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func usedTool(st *conversation.State, name string) bool {
	for _, used := range st.ToolsUsed {
		if used == name {
			return true
		}
	}
	return false
}
