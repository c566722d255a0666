// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matt-FFFFFF/mailonfail/internal/config"
	"github.com/matt-FFFFFF/mailonfail/internal/ctxlog"
	"github.com/matt-FFFFFF/mailonfail/internal/report"
	"github.com/wneessen/go-mail"
)

// implicitTLSPort is the submissions port where TLS starts before SMTP.
const implicitTLSPort = 465

// DefaultTimeout bounds connecting and talking to the mail server.
const DefaultTimeout = 30 * time.Second

var (
	// ErrBuildMessage is returned when a message cannot be addressed.
	ErrBuildMessage = errors.New("failed to build mail message")
	// ErrNewClient is returned when the SMTP client cannot be configured.
	ErrNewClient = errors.New("failed to create SMTP client")
	// ErrSend is returned when the mail server rejects or cannot be reached.
	ErrSend = errors.New("failed to send mail")
)

var _ report.Sender = (*SMTPSender)(nil)

// SMTPSender delivers messages through an authenticated SMTP server.
// Port 465 uses implicit TLS, every other port requires STARTTLS.
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	timeout  time.Duration
}

// SMTPOption configures an SMTPSender.
type SMTPOption func(*SMTPSender)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) SMTPOption {
	return func(s *SMTPSender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSMTPSender creates a sender for the server described by cfg.
func NewSMTPSender(cfg *config.Config, opts ...SMTPOption) *SMTPSender {
	s := &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.User,
		password: cfg.Password,
		timeout:  DefaultTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Send implements report.Sender. It does not retry.
func (s *SMTPSender) Send(ctx context.Context, msg report.Message) error {
	m, err := buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.host, s.clientOptions()...)
	if err != nil {
		return errors.Join(ErrNewClient, err)
	}

	ctxlog.Debug(ctx, "connecting to mail server", "host", s.host, "port", s.port)

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return errors.Join(ErrSend, err)
	}

	ctxlog.Debug(ctx, "mail sent", "to", msg.To)

	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.user),
		mail.WithPassword(s.password),
		mail.WithTimeout(s.timeout),
	}

	if s.port == implicitTLSPort {
		return append(opts, mail.WithSSL())
	}

	return append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
}

func buildMessage(msg report.Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	if err := m.From(msg.From); err != nil {
		return nil, errors.Join(ErrBuildMessage, fmt.Errorf("from %q: %w", msg.From, err))
	}

	if err := m.To(msg.To); err != nil {
		return nil, errors.Join(ErrBuildMessage, fmt.Errorf("to %q: %w", msg.To, err))
	}

	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	return m, nil
}
