// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the mailonfail command-line application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/mailonfail"
	"github.com/matt-FFFFFF/mailonfail/cmd/mailonfail/app"
	"github.com/matt-FFFFFF/mailonfail/internal/ctxlog"
	"github.com/matt-FFFFFF/mailonfail/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd := app.New()
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", mailonfail.Version, mailonfail.Commit)

	err := rootCmd.Run(ctx, os.Args)

	signalbroker.Stop(sigCh)
	cancel()

	// A failed child carries no message, its output has already been mirrored.
	if err != nil && err.Error() != "" {
		ctxlog.Error(ctx, err.Error())
	}

	os.Exit(app.ExitCode(err))
}
