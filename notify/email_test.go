// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novapay/assistant/tickets"
	"novapay/assistant/userdir"
)

func sampleTicket() tickets.Ticket {
	return tickets.Ticket{
		ID:          "b33f1f8e-0000-4000-8000-000000000001",
		UserID:      "client123",
		Description: "cannot update email address",
		Priority:    tickets.PriorityHigh,
		Status:      "open",
		CreatedAt:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestTicketCreated_SendsMail(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	s := NewEmailSender(EmailConfig{
		Host: "smtp.example.com", From: "bot@novapay.io",
		Password: "secret", Recipient: "support@novapay.io",
	})
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := s.TicketCreated(sampleTicket(), userdir.User{
		Name: "João Silva", Email: "joao@email.com", Phone: "+55 11 99999-9999",
	})

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@novapay.io", gotFrom)
	assert.Equal(t, []string{"support@novapay.io"}, gotTo)
	assert.Contains(t, string(gotMsg), "New Support Ticket Created")
	assert.Contains(t, string(gotMsg), "João Silva")
	assert.Contains(t, string(gotMsg), "cannot update email address")
}

func TestTicketCreated_SkipsWhenUnconfigured(t *testing.T) {
	s := NewEmailSender(EmailConfig{})
	called := false
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	err := s.TicketCreated(sampleTicket(), userdir.User{})

	assert.NoError(t, err)
	assert.False(t, called)
}

func TestTicketCreated_ReturnsSendError(t *testing.T) {
	s := NewEmailSender(EmailConfig{
		Host: "smtp.example.com", From: "bot@novapay.io",
		Password: "secret", Recipient: "support@novapay.io",
	})
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("tls handshake failed")
	}

	err := s.TicketCreated(sampleTicket(), userdir.User{Name: "João Silva"})
	assert.Error(t, err)
}
