// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker subscribes to the signals that normally terminate the
// process.
//
// A supervised child shares the terminal's process group and receives a
// Ctrl-C itself, so the first signal of a kind is left to the child. Watch
// cancels the context only when the same signal arrives a second time, which
// makes the supervisor kill a child that ignored the first one.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/mailonfail/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// New subscribes to sigs, or to SIGINT, SIGTERM and SIGQUIT if none are given.
// Call Stop with the returned channel to unsubscribe.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "subscribing to signals", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop unsubscribes ch. No more signals are delivered on it afterwards.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
