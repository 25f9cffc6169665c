// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package notify delivers best-effort ticket notifications to the support
// team mailbox. A delivery failure is logged and swallowed; it never fails
// the operation that triggered it.
package notify

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"novapay/assistant/shared/logger"
	"novapay/assistant/tickets"
	"novapay/assistant/userdir"
)

// Notifier delivers a notification for a freshly created ticket.
type Notifier interface {
	TicketCreated(t tickets.Ticket, u userdir.User) error
}

// sendMailFunc matches smtp.SendMail, injectable for tests.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender sends ticket notifications over SMTP.
type EmailSender struct {
	host      string
	port      string
	from      string
	password  string
	recipient string
	send      sendMailFunc
	log       *logger.Logger
}

// EmailConfig configures the SMTP sender.
type EmailConfig struct {
	Host      string // SMTP server host
	Port      string // SMTP server port (default: 587)
	From      string // Sender address, also used as the auth user
	Password  string // Sender password
	Recipient string // Support-team mailbox
}

// EmailConfigFromEnv reads the SMTP settings from the environment.
func EmailConfigFromEnv() EmailConfig {
	return EmailConfig{
		Host:      os.Getenv("SMTP_SERVER"),
		Port:      os.Getenv("SMTP_PORT"),
		From:      os.Getenv("SENDER_EMAIL"),
		Password:  os.Getenv("SENDER_EMAIL_PASSWORD"),
		Recipient: os.Getenv("SUPPORT_TEAM_EMAIL"),
	}
}

// NewEmailSender creates the SMTP notifier. Missing configuration produces a
// sender that skips delivery instead of failing.
func NewEmailSender(cfg EmailConfig) *EmailSender {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &EmailSender{
		host:      cfg.Host,
		port:      cfg.Port,
		from:      cfg.From,
		password:  cfg.Password,
		recipient: cfg.Recipient,
		send:      smtp.SendMail,
		log:       logger.New("notify"),
	}
}

func (s *EmailSender) configured() bool {
	return s.host != "" && s.from != "" && s.password != "" && s.recipient != ""
}

// TicketCreated emails the support team about a new ticket.
func (s *EmailSender) TicketCreated(t tickets.Ticket, u userdir.User) error {
	if !s.configured() {
		s.log.Warn(t.UserID, "", "email configuration missing, skipping ticket notification", map[string]interface{}{
			"ticket_id": t.ID,
		})
		return nil
	}

	subject := fmt.Sprintf("New Support Ticket Created: %s - User: %s", t.ID, u.Name)
	body := strings.Join([]string{
		"Dear Support Team,",
		"A new support ticket has been created with the following details:",
		"Ticket ID: " + t.ID,
		"User ID: " + t.UserID,
		"User Name: " + u.Name,
		"User Email: " + u.Email,
		"User Phone: " + u.Phone,
		"Issue Description: " + t.Description,
		"Priority: " + string(t.Priority),
		"Status: " + t.Status,
		"Created At: " + t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"Please investigate this issue and respond to the user as soon as possible.",
	}, "\r\n")

	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + s.recipient + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	if err := s.send(s.host+":"+s.port, auth, s.from, []string{s.recipient}, msg); err != nil {
		s.log.WithError(t.UserID, "", "failed to send ticket email", err, map[string]interface{}{
			"ticket_id": t.ID,
		})
		return err
	}

	s.log.Info(t.UserID, "", "ticket email sent", map[string]interface{}{
		"ticket_id": t.ID, "recipient": s.recipient,
	})
	return nil
}
