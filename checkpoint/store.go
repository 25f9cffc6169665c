// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package checkpoint persists conversation history across turns, keyed by
// session identity. The orchestrator treats it as a black box: it loads the
// prior message sequence before a turn and saves the grown sequence after.
// One store never reads another session's key.
package checkpoint

import (
	"context"
	"sync"

	"novapay/assistant/conversation"
)

// Store loads and saves per-session conversation history.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]conversation.Message, error)
	Save(ctx context.Context, sessionID string, msgs []conversation.Message) error
}

// MemoryStore keeps history in process. It is the fallback when no Redis
// address is configured, and the default in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]conversation.Message
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]conversation.Message)}
}

// Load returns the stored history for sessionID, nil when none exists.
func (m *MemoryStore) Load(_ context.Context, sessionID string) ([]conversation.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]conversation.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Save replaces the stored history for sessionID.
func (m *MemoryStore) Save(_ context.Context, sessionID string, msgs []conversation.Message) error {
	stored := make([]conversation.Message, len(msgs))
	copy(stored, msgs)
	m.mu.Lock()
	m.sessions[sessionID] = stored
	m.mu.Unlock()
	return nil
}
