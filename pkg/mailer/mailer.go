// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mailer sends contact-form notifications over SMTP. Delivery
// is strictly best effort: a missing configuration or a send failure is
// logged and swallowed, never surfaced to the submitting user.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/model"
)

// Config holds the SMTP relay settings. A zero Host disables sending.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Enabled reports whether the mailer has enough config to send.
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != "" && len(c.To) > 0
}

// Mailer delivers contact notifications to the sales inbox.
type Mailer struct {
	cfg  Config
	log  log.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New creates a mailer. With an empty config every Notify call is a
// logged no-op.
func New(cfg Config, logger log.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: logger, send: smtp.SendMail}
}

// Notify emails the contact submission. Always returns nil.
func (m *Mailer) Notify(contact model.Contact) error {
	if !m.cfg.Enabled() {
		m.log.Debug("mailer not configured, skipping notification")
		return nil
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := buildMessage(m.cfg.From, m.cfg.To, contact)
	if err := m.send(addr, auth, m.cfg.From, m.cfg.To, msg); err != nil {
		m.log.Warn("contact notification failed: " + err.Error())
	}
	return nil
}

func buildMessage(from string, to []string, contact model.Contact) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: New contact request from %s\r\n", contact.Name)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")

	fmt.Fprintf(&b, "Name: %s\r\nEmail: %s\r\n", contact.Name, contact.Email)
	if contact.Company != "" {
		fmt.Fprintf(&b, "Company: %s\r\n", contact.Company)
	}
	if contact.Role != "" {
		fmt.Fprintf(&b, "Role: %s\r\n", contact.Role)
	}
	if contact.Message != "" {
		fmt.Fprintf(&b, "\r\n%s\r\n", contact.Message)
	}
	return []byte(b.String())
}
