// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"novapay/assistant/conversation"
	"novapay/assistant/shared/logger"
)

// AuditLog persists one row per turn to Postgres. Without a reachable
// database it degrades to a no-op so the assistant keeps serving.
type AuditLog struct {
	db           *sql.DB
	queue        chan *auditEntry
	wg           sync.WaitGroup
	shutdownOnce sync.Once
	shutdown     chan struct{}
	log          *logger.Logger
}

type auditEntry struct {
	ID           string
	SessionUser  string
	Query        string
	Destination  string
	Response     string
	ToolsUsed    string
	AccessDenied bool
	Escalation   bool
	Language     string
	DurationMS   int64
	CreatedAt    time.Time
}

const createAuditTable = `
CREATE TABLE IF NOT EXISTS assistant_audit_log (
	id UUID PRIMARY KEY,
	session_user_id TEXT NOT NULL,
	query TEXT NOT NULL,
	destination TEXT NOT NULL,
	response TEXT NOT NULL,
	tools_used TEXT,
	access_denied BOOLEAN NOT NULL DEFAULT FALSE,
	escalation BOOLEAN NOT NULL DEFAULT FALSE,
	language TEXT NOT NULL,
	duration_ms BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

const insertAuditRow = `
INSERT INTO assistant_audit_log
	(id, session_user_id, query, destination, response, tools_used, access_denied, escalation, language, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// NewAuditLog connects to databaseURL and starts the write worker. An empty
// URL or a failed connection yields a no-op logger.
func NewAuditLog(databaseURL string) *AuditLog {
	a := &AuditLog{
		queue:    make(chan *auditEntry, 1000),
		shutdown: make(chan struct{}),
		log:      logger.New("audit"),
	}

	if databaseURL == "" {
		a.log.Warn("", "", "DATABASE_URL not set, audit logging disabled", nil)
		return a
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		a.log.WithError("", "", "audit database unavailable, audit logging disabled", err, nil)
		return a
	}
	if err := db.Ping(); err != nil {
		a.log.WithError("", "", "audit database unreachable, audit logging disabled", err, nil)
		_ = db.Close()
		return a
	}
	if _, err := db.Exec(createAuditTable); err != nil {
		a.log.WithError("", "", "audit table creation failed, audit logging disabled", err, nil)
		_ = db.Close()
		return a
	}

	a.db = db
	a.wg.Add(1)
	go a.worker()
	return a
}

// Record enqueues one turn for persistence. Never blocks the request path:
// when the queue is full the entry is dropped with a warning.
func (a *AuditLog) Record(st *conversation.State, duration time.Duration) {
	if a.db == nil {
		return
	}

	entry := &auditEntry{
		ID:           uuid.NewString(),
		SessionUser:  st.SessionUserID,
		Query:        st.CurrentQuery,
		Destination:  st.Destination,
		Response:     st.FinalOutput,
		ToolsUsed:    strings.Join(st.ToolsUsed, ","),
		AccessDenied: st.AccessDenied,
		Escalation:   st.Escalation,
		Language:     string(st.Language),
		DurationMS:   duration.Milliseconds(),
		CreatedAt:    time.Now().UTC(),
	}

	select {
	case a.queue <- entry:
	default:
		a.log.Warn(st.SessionUserID, "", "audit queue full, entry dropped", nil)
	}
}

func (a *AuditLog) worker() {
	defer a.wg.Done()
	for {
		select {
		case entry := <-a.queue:
			a.write(entry)
		case <-a.shutdown:
			// Drain what is already queued before exiting.
			for {
				select {
				case entry := <-a.queue:
					a.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (a *AuditLog) write(entry *auditEntry) {
	_, err := a.db.Exec(insertAuditRow,
		entry.ID, entry.SessionUser, entry.Query, entry.Destination,
		entry.Response, entry.ToolsUsed, entry.AccessDenied, entry.Escalation,
		entry.Language, entry.DurationMS, entry.CreatedAt,
	)
	if err != nil {
		a.log.WithError(entry.SessionUser, "", "audit write failed", err, nil)
	}
}

// IsHealthy reports whether the audit database is reachable. A no-op logger
// is healthy: auditing is optional.
func (a *AuditLog) IsHealthy() bool {
	if a.db == nil {
		return true
	}
	return a.db.Ping() == nil
}

// Close stops the worker after draining the queue.
func (a *AuditLog) Close() {
	a.shutdownOnce.Do(func() {
		close(a.shutdown)
		a.wg.Wait()
		if a.db != nil {
			_ = a.db.Close()
		}
	})
}
