// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"time"

	"novapay/assistant/agents"
	"novapay/assistant/checkpoint"
	"novapay/assistant/conversation"
	"novapay/assistant/shared/logger"
)

// internalFailureMessages hide completion-service failures behind a generic
// apology. Details go to the log, never to the user.
var internalFailureMessages = map[conversation.Language]string{
	conversation.LanguageEN: "I'm sorry, something went wrong while processing your request. Please try again in a moment.",
	conversation.LanguagePT: "Desculpe, ocorreu um erro ao processar sua solicitação. Por favor, tente novamente em instantes.",
}

// Result is the API-facing outcome of one turn.
type Result struct {
	Response            string                   `json:"response"`
	SourceAgentResponse string                   `json:"source_agent_response"`
	AgentWorkflow       []conversation.TraceStep `json:"agent_workflow"`
}

// Orchestrator runs the turn state machine: route, respond, normalize,
// checkpoint, audit. One instance serves all sessions.
type Orchestrator struct {
	router      *Router
	personality *Personality
	responders  map[string]agents.Responder
	checkpoints checkpoint.Store
	audit       *AuditLog
	metrics     *Metrics
	log         *logger.Logger
}

// NewOrchestrator assembles the turn state machine. The responders map is
// keyed by routing destination; destinations without a responder fall
// through to the personality layer.
func NewOrchestrator(router *Router, personality *Personality, responders map[string]agents.Responder, cp checkpoint.Store, audit *AuditLog, metrics *Metrics) *Orchestrator {
	return &Orchestrator{
		router:      router,
		personality: personality,
		responders:  responders,
		checkpoints: cp,
		audit:       audit,
		metrics:     metrics,
		log:         logger.New("orchestrator"),
	}
}

// HandleTurn processes one query end to end and returns the API result.
// Pipeline failures degrade to a generic apology; HandleTurn itself only
// errs on an empty query.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionUserID, query string) *Result {
	start := time.Now()

	prior, err := o.checkpoints.Load(ctx, sessionUserID)
	if err != nil {
		o.log.WithError(sessionUserID, "", "checkpoint load failed, starting fresh", err, nil)
		prior = nil
	}

	st := conversation.NewState(sessionUserID, query, prior)
	dest, err := o.router.Route(ctx, st)
	if err != nil {
		o.log.WithError(sessionUserID, "", "routing failed", err, nil)
		return o.failTurn(ctx, st, start)
	}
	o.log.Info(sessionUserID, "", "query routed", map[string]interface{}{
		"destination": dest,
	})
	st.AddTrace("RouterAgent", map[string]interface{}{
		"LLM_decision": displayNames[dest],
	})

	if responder, ok := o.responders[dest]; ok {
		trace, err := responder.Respond(ctx, st)
		if err != nil {
			o.log.WithError(sessionUserID, "", "responder failed", err, map[string]interface{}{
				"destination": dest,
			})
			st.AddTrace(responder.Name(), nil)
			return o.failTurn(ctx, st, start)
		}
		st.AddTrace(responder.Name(), trace)
		o.personality.Finalize(ctx, st)
	} else {
		// Default route: the personality layer answers directly.
		o.personality.Finalize(ctx, st)
	}
	st.AddTrace(displayNames[DestDefault], map[string]interface{}{
		"LLM": st.FinalOutput,
	})

	o.finishTurn(ctx, st, start, true)
	return o.result(st)
}

// failTurn degrades a pipeline failure to the generic localized apology.
func (o *Orchestrator) failTurn(ctx context.Context, st *conversation.State, start time.Time) *Result {
	msg := internalFailureMessages[st.Language]
	st.RawOutput = msg
	st.FinalOutput = msg
	st.Append(conversation.Assistant(msg))
	o.finishTurn(ctx, st, start, false)
	return o.result(st)
}

func (o *Orchestrator) finishTurn(ctx context.Context, st *conversation.State, start time.Time, success bool) {
	if err := o.checkpoints.Save(ctx, st.SessionUserID, st.Messages); err != nil {
		o.log.WithError(st.SessionUserID, "", "checkpoint save failed", err, nil)
	}

	duration := time.Since(start)
	if o.metrics != nil {
		o.metrics.RecordTurn(st.Destination, success, duration, st.ToolsUsed)
	}
	if o.audit != nil {
		o.audit.Record(st, duration)
	}
}

func (o *Orchestrator) result(st *conversation.State) *Result {
	source := st.RawOutput
	if source == "" {
		// Default-route turns have no responder output distinct from the
		// final response.
		source = st.FinalOutput
	}
	return &Result{
		Response:            st.FinalOutput,
		SourceAgentResponse: source,
		AgentWorkflow:       st.Trace,
	}
}
