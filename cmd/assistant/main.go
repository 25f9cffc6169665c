// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the NovaPay assistant service.
//
// The assistant routes each customer message to a specialized pipeline:
// - Customer support (account issues, profile changes, tickets)
// - Balance inquiries (balances and transaction history)
// - Product knowledge (documentation retrieval with web-search fallback)
// - Security screening (suspicious requests, team alerting)
//
// and normalizes every answer through a shared personality layer.
//
// Usage:
//
//	./assistant
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	GEMINI_API_KEY - completion provider key (required)
//	DATABASE_URL - PostgreSQL connection string for audit logging (optional)
//	REDIS_URL - Redis address for conversation checkpoints (optional)
//	KNOWLEDGE_BASE_URL - retrieval service base URL (optional)
//	SLACK_WEBHOOK_URL - security alert channel (optional)
package main

import (
	"novapay/assistant/orchestrator"
)

func main() {
	orchestrator.Run()
}
