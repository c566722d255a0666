// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/matt-FFFFFF/mailonfail/internal/ctxlog"
	"github.com/matt-FFFFFF/mailonfail/internal/supervisor"
)

// SubjectLabel is the fixed part of every notification subject.
const SubjectLabel = "Command Failed"

const unknownHost = "unknown host"

var (
	// ErrDelivery is matched by every *DeliveryError.
	ErrDelivery = errors.New("failed to deliver notification")
	// ErrNilOutcome is returned when Report is called without an outcome.
	ErrNilOutcome = errors.New("no outcome to report")
)

// Message is a fully formed notification.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers a message over some notification channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// DeliveryError wraps a Sender failure. It is fatal for the whole run.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDelivery, e.Err)
}

// Unwrap allows errors.Is to match ErrDelivery and the cause.
func (e *DeliveryError) Unwrap() []error {
	return []error{ErrDelivery, e.Err}
}

// Reporter decides whether an outcome warrants a notification and sends it.
type Reporter struct {
	sender   Sender
	from     string
	to       string
	hostname string
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithHostname overrides the host name used in subjects and bodies.
func WithHostname(name string) Option {
	return func(r *Reporter) {
		r.hostname = name
	}
}

// New creates a Reporter addressing messages from one address to another.
func New(sender Sender, from, to string, opts ...Option) *Reporter {
	r := &Reporter{
		sender: sender,
		from:   from,
		to:     to,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.hostname == "" {
		r.hostname = hostname()
	}

	return r
}

// ShouldNotify is true for every non-zero exit code, including negative
// sentinels and signal-derived codes.
func ShouldNotify(o *supervisor.Outcome) bool {
	return o != nil && o.ExitCode() != 0
}

// Report sends one notification for a failed outcome and reports whether it did.
// A delivery failure is returned as a *DeliveryError.
func (r *Reporter) Report(ctx context.Context, o *supervisor.Outcome) (bool, error) {
	if o == nil {
		return false, ErrNilOutcome
	}

	if !ShouldNotify(o) {
		ctxlog.Debug(ctx, "command succeeded, nothing to report")
		return false, nil
	}

	msg := r.Compose(o)

	ctxlog.Warn(ctx, "command failed, sending notification",
		"to", msg.To,
		"exitCode", o.ExitCode(),
		"bodyBytes", len(msg.Body),
	)

	if err := r.sender.Send(ctx, msg); err != nil {
		return false, &DeliveryError{Err: err}
	}

	return true, nil
}

// Compose builds the message for o without sending it.
func (r *Reporter) Compose(o *supervisor.Outcome) Message {
	return Message{
		From:    r.from,
		To:      r.to,
		Subject: SubjectLabel + " on " + r.hostname,
		Body:    r.body(o),
	}
}

func (r *Reporter) body(o *supervisor.Outcome) string {
	var sb strings.Builder

	sb.WriteString("Command: " + shellescape.QuoteCommand(o.Args()) + "\n")
	sb.WriteString("Exit code: " + strconv.Itoa(o.ExitCode()) + "\n")
	sb.WriteString("Host: " + r.hostname + "\n")

	if !o.StartedAt().IsZero() {
		sb.WriteString("Started: " + o.StartedAt().Format(time.RFC3339) + "\n")
		sb.WriteString("Duration: " + o.Duration().Round(time.Millisecond).String() + "\n")
	}

	if err := o.SpawnErr(); err != nil {
		sb.WriteString("Error: " + err.Error() + "\n")
	}

	if o.Cancelled() {
		sb.WriteString("Note: the command was killed before it finished\n")
	}

	if err := o.StreamErr(); err != nil {
		sb.WriteString("Note: output capture stopped early: " + err.Error() + "\n")
	}

	writeSection(&sb, "STDOUT", o.Stdout())
	writeSection(&sb, "STDERR", o.Stderr())

	return sb.String()
}

func writeSection(sb *strings.Builder, title string, b []byte) {
	sb.WriteString("\n==== " + title + " ====\n")

	if len(b) == 0 {
		sb.WriteString("(no output)\n")
		return
	}

	text := Decode(b).Render()
	sb.WriteString(text)

	if !strings.HasSuffix(text, "\n") {
		sb.WriteString("\n")
	}
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return unknownHost
	}

	return name
}
