// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package notify

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/matt-FFFFFF/mailonfail/internal/config"
	"github.com/matt-FFFFFF/mailonfail/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() report.Message {
	return report.Message{
		From:    "alerts@example.com",
		To:      "ops@example.com",
		Subject: "Command Failed on build-01",
		Body:    "Exit code: 3\n",
	}
}

func TestWriterSender(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewWriterSender(&buf).Send(context.Background(), testMessage()))

	assert.Equal(t,
		"From: alerts@example.com\nTo: ops@example.com\nSubject: Command Failed on build-01\n\nExit code: 3\n",
		buf.String())
}

func TestBuildMessage(t *testing.T) {
	m, err := buildMessage(testMessage())
	require.NoError(t, err)

	var buf bytes.Buffer

	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Command Failed on build-01")
	assert.Contains(t, raw, "alerts@example.com")
	assert.Contains(t, raw, "ops@example.com")
	assert.Contains(t, raw, "Exit code: 3")
	assert.Contains(t, raw, "text/plain")
}

func TestBuildMessage_BadAddress(t *testing.T) {
	tests := []struct {
		name string
		msg  report.Message
	}{
		{
			name: "bad from",
			msg:  report.Message{From: "not an address", To: "ops@example.com"},
		},
		{
			name: "bad to",
			msg:  report.Message{From: "alerts@example.com", To: "@@"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildMessage(tt.msg)
			require.ErrorIs(t, err, ErrBuildMessage)
		})
	}
}

func TestSMTPSender_Options(t *testing.T) {
	cfg := &config.Config{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		User:     "alerts",
		Password: "s3cret",
		From:     "alerts@example.com",
		To:       "ops@example.com",
	}

	s := NewSMTPSender(cfg)
	assert.Equal(t, DefaultTimeout, s.timeout)
	assert.Len(t, s.clientOptions(), 6)

	s = NewSMTPSender(cfg, WithTimeout(time.Second), WithTimeout(0))
	assert.Equal(t, time.Second, s.timeout, "non-positive timeouts are ignored")
}

func TestSMTPSender_UnreachableServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	s := NewSMTPSender(&config.Config{
		SMTPHost: "127.0.0.1",
		SMTPPort: port,
		User:     "alerts",
		Password: "s3cret",
	}, WithTimeout(2*time.Second))

	err = s.Send(context.Background(), testMessage())
	require.ErrorIs(t, err, ErrSend)
}
