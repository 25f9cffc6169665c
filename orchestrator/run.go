// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"novapay/assistant/agents"
	"novapay/assistant/checkpoint"
	"novapay/assistant/connectors/slack"
	"novapay/assistant/knowledge"
	"novapay/assistant/llm"
	"novapay/assistant/llm/gemini"
	"novapay/assistant/notify"
	"novapay/assistant/prompts"
	"novapay/assistant/tickets"
	"novapay/assistant/userdir"
)

// Service-wide components, assembled once at startup.
var (
	orchestrator *Orchestrator
	provider     llm.Provider
	auditLog     *AuditLog
	metrics      *Metrics
	jwtSecret    string
)

// Run is the exported entry point for the assistant service. It assembles
// every component, registers the HTTP routes and blocks serving requests.
//
// Environment variables used:
//   - PORT: HTTP server port (default: 8080)
//   - GEMINI_API_KEY: completion provider key (required)
//   - GEMINI_MODEL: model override (optional)
//   - DATABASE_URL: PostgreSQL connection string for audit logging (optional)
//   - REDIS_URL: Redis address for conversation checkpoints (optional,
//     in-memory store without it)
//   - KNOWLEDGE_BASE_URL: retrieval service base URL (optional)
//   - SLACK_WEBHOOK_URL: security alert channel (optional)
//   - PROMPTS_DIR: prompt template directory (default: prompts/templates)
//   - GUARD_RULES_FILE: YAML guard-rule overrides (optional)
//   - JWT_SECRET: HMAC secret for bearer-token session identity (optional)
//   - SMTP_SERVER, SMTP_PORT, SENDER_EMAIL, SENDER_EMAIL_PASSWORD,
//     SUPPORT_TEAM_EMAIL: ticket notification mail (optional)
func Run() {
	log.Println("Starting NovaPay assistant...")

	if err := initializeComponents(); err != nil {
		log.Fatalf("initialization failed: %v", err)
	}
	defer auditLog.Close()

	r := mux.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/metrics", metricsHandler).Methods("GET")
	r.Handle("/prometheus", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/api/v1/query", queryHandler).Methods("POST")

	port := getEnv("PORT", "8080")
	log.Printf("NovaPay assistant listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, c.Handler(r)))
}

func initializeComponents() error {
	var err error

	provider, err = gemini.NewProvider(gemini.Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	})
	if err != nil {
		return err
	}
	log.Println("Gemini provider initialized")

	promptStore := prompts.NewStore(getEnv("PROMPTS_DIR", "prompts/templates"))

	guardCfg, err := agents.LoadGuardConfig(os.Getenv("GUARD_RULES_FILE"))
	if err != nil {
		return err
	}
	suspicious, err := guardCfg.CompileSuspicious()
	if err != nil {
		return err
	}
	log.Printf("Guard rules loaded (%d suspicious patterns)", len(suspicious))

	var retriever knowledge.Retriever
	if base := os.Getenv("KNOWLEDGE_BASE_URL"); base != "" {
		retriever, err = knowledge.NewClient(knowledge.Config{BaseURL: base})
		if err != nil {
			return err
		}
		log.Println("Knowledge retrieval client initialized")
	} else {
		retriever = knowledge.Unavailable{}
		log.Println("KNOWLEDGE_BASE_URL not set, knowledge retrieval disabled")
	}

	var checkpoints checkpoint.Store
	if addr := os.Getenv("REDIS_URL"); addr != "" {
		checkpoints, err = checkpoint.NewRedisStore(context.Background(), checkpoint.RedisConfig{Addr: addr})
		if err != nil {
			return err
		}
		log.Println("Redis checkpoint store connected")
	} else {
		checkpoints = checkpoint.NewMemoryStore()
		log.Println("REDIS_URL not set, using in-memory checkpoint store")
	}

	directory := userdir.New()
	ticketStore := tickets.NewStore()
	notifier := notify.NewEmailSender(notify.EmailConfigFromEnv())
	webhook := slack.NewWebhook(os.Getenv("SLACK_WEBHOOK_URL"))

	responders := map[string]agents.Responder{
		DestSupport:   agents.NewSupportAgent(provider, directory, ticketStore, notifier, promptStore, guardCfg),
		DestBalance:   agents.NewBalanceAgent(provider, directory, promptStore, guardCfg),
		DestKnowledge: agents.NewKnowledgeAgent(provider, retriever, promptStore, guardCfg),
		DestSecurity:  agents.NewSecurityAgent(provider, webhook, nil),
	}

	auditLog = NewAuditLog(os.Getenv("DATABASE_URL"))
	metrics = NewMetrics()
	jwtSecret = os.Getenv("JWT_SECRET")
	if jwtSecret != "" {
		log.Println("JWT session identity enabled")
	}

	orchestrator = NewOrchestrator(
		NewRouter(provider, promptStore, suspicious),
		NewPersonality(provider, promptStore),
		responders,
		checkpoints,
		auditLog,
		metrics,
	)
	log.Println("Orchestrator initialized")
	return nil
}

// queryRequest is the API body for one turn.
type queryRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

func queryHandler(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		sendError(w, "message is required", http.StatusBadRequest)
		return
	}

	sessionUserID := sessionIdentity(r, req.UserID, jwtSecret)
	result := orchestrator.HandleTurn(r.Context(), sessionUserID, req.Message)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"service":   "novapay-assistant",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC(),
		"components": map[string]bool{
			"llm_provider": provider.IsHealthy(),
			"audit_log":    auditLog.IsHealthy(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(metrics.Snapshot()); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
