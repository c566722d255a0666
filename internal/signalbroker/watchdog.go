// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/mailonfail/internal/ctxlog"
)

// Watch reads sigCh until ctx is done or sigCh is closed. The second signal
// of any one kind calls cancel and ends the watch.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Warn(ctx, "second signal received, stopping the command", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Info(ctx, "signal received, leaving it to the command", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
