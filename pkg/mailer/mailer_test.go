// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mailer

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/model"
)

func TestNotifyUnconfiguredIsNoOp(t *testing.T) {
	require := require.New(t)

	m := New(Config{}, log.NoOp())
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send called without configuration")
		return nil
	}

	require.NoError(m.Notify(model.Contact{Name: "Jane", Email: "jane@example.com"}))
}

func TestNotifySendsConfiguredMessage(t *testing.T) {
	require := require.New(t)

	m := New(Config{
		Host: "smtp.example.com",
		Port: 587,
		From: "noreply@precise.xyz",
		To:   []string{"sales@precise.xyz"},
	}, log.NoOp())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := m.Notify(model.Contact{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Company: "Acme",
		Message: "Tell me more",
	})
	require.NoError(err)
	require.Equal("smtp.example.com:587", gotAddr)
	require.Equal("noreply@precise.xyz", gotFrom)
	require.Equal([]string{"sales@precise.xyz"}, gotTo)
	require.Contains(string(gotMsg), "Subject: New contact request from Jane Doe")
	require.Contains(string(gotMsg), "Company: Acme")
	require.Contains(string(gotMsg), "Tell me more")
}

func TestNotifySwallowsSendErrors(t *testing.T) {
	require := require.New(t)

	m := New(Config{Host: "smtp.example.com", From: "a@b.c", To: []string{"d@e.f"}}, log.NoOp())
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("relay down")
	}

	require.NoError(m.Notify(model.Contact{Name: "Jane", Email: "jane@example.com"}))
}
