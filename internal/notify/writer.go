// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/mailonfail/internal/report"
)

var _ report.Sender = (*WriterSender)(nil)

// WriterSender prints messages instead of delivering them.
type WriterSender struct {
	w io.Writer
}

// NewWriterSender returns a sender that writes every message to w.
func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w}
}

// Send implements report.Sender.
func (s *WriterSender) Send(_ context.Context, msg report.Message) error {
	_, err := fmt.Fprintf(s.w, "From: %s\nTo: %s\nSubject: %s\n\n%s", msg.From, msg.To, msg.Subject, msg.Body)
	return err //nolint:wrapcheck
}
