// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package supervisor runs a single child command with its stdout and stderr
// connected to pipes, mirrors both streams live through a relay each, and
// returns an Outcome once the process has exited and both relays have
// drained their pipes.
//
// A run moves through NotStarted, Launching, Running, Draining and Completed.
// The only other terminal state is Failed, reached from Launching when the
// command cannot be started. In that case no relay is started and the error
// is a *SpawnError.
package supervisor
