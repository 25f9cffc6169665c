// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package tickets holds the in-process support-ticket table. Durable ticket
// storage lives behind an external system; this table is the scope of the
// assistant itself.
package tickets

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Priority of a support ticket.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Ticket is created once by the support agent's escalation tool and never
// mutated afterwards.
type Ticket struct {
	ID          string    `json:"ticket_id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"issue_description"`
	Priority    Priority  `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is a concurrency-safe in-process ticket table.
type Store struct {
	mu      sync.RWMutex
	tickets map[string]Ticket
}

// NewStore returns an empty ticket table.
func NewStore() *Store {
	return &Store{tickets: make(map[string]Ticket)}
}

// Create registers a new open ticket and returns it. Unknown priorities are
// coerced to medium.
func (s *Store) Create(userID, description string, priority Priority) (Ticket, error) {
	if userID == "" {
		return Ticket{}, fmt.Errorf("tickets: user id is required")
	}

	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		priority = PriorityMedium
	}

	t := Ticket{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: description,
		Priority:    priority,
		Status:      "open",
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.tickets[t.ID] = t
	s.mu.Unlock()

	return t, nil
}

// Get returns a ticket by id.
func (s *Store) Get(id string) (Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	return t, ok
}

// Count returns the number of stored tickets.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}
