// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/gitr/internal/ctxlog"
)

// exitFn allows tests to intercept the forced exit.
var exitFn = os.Exit

// Watch monitors the signal channel.
// The first termination signal cancels the context so in-flight work can
// unwind and the run can report the interrupt exit code. A second signal of
// the same type forcefully terminates the process.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Warn(ctx, "watchdog", "detail", "received second signal of type, forcefully terminating", "signal", sig.String())
			exitFn(2)

			return
		}

		seen[sig] = struct{}{}

		ctxlog.Info(ctx, "watchdog", "detail", "received signal, cancelling run", "signal", sig.String())
		cancel()
	}
}
