// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"slices"
	"time"
)

// ExitCodeSpawnFailed is the exit code recorded on an Outcome when the command
// could not be started at all. Real processes never report a negative code.
const ExitCodeSpawnFailed = -1

// ExitCodeUnknown is recorded when the child ran but the operating system
// could not report how it ended.
const ExitCodeUnknown = -2

// Outcome is the immutable record of one supervised command.
type Outcome struct {
	args      []string
	exitCode  int
	stdout    []byte
	stderr    []byte
	streamErr error
	spawnErr  error
	cancelled bool
	pid       int
	startedAt time.Time
	duration  time.Duration
}

// NewOutcome builds an Outcome from its parts. The supervisor uses it once per
// run; it is exported so callers can describe runs that did not go through a
// Supervisor, e.g. in tests of a reporter.
func NewOutcome(args []string, exitCode int, stdout, stderr []byte) *Outcome {
	return &Outcome{
		args:     slices.Clone(args),
		exitCode: exitCode,
		stdout:   stdout,
		stderr:   stderr,
	}
}

// Args returns a copy of the command line that was run.
func (o *Outcome) Args() []string {
	return slices.Clone(o.args)
}

// ExitCode is the child's exit status. Signal terminations are reported as
// 128 plus the signal number. ExitCodeSpawnFailed means nothing ran.
func (o *Outcome) ExitCode() int {
	return o.exitCode
}

// Success reports whether the command ran and exited 0.
func (o *Outcome) Success() bool {
	return o.exitCode == 0
}

// Stdout returns everything the child wrote to stdout. It must not be modified.
func (o *Outcome) Stdout() []byte {
	return o.stdout
}

// Stderr returns everything the child wrote to stderr. It must not be modified.
func (o *Outcome) Stderr() []byte {
	return o.stderr
}

// StreamErr returns the relay failures that cut capture short, if any.
// The buffers then hold everything captured before the failure.
func (o *Outcome) StreamErr() error {
	return o.streamErr
}

// SpawnErr returns the *SpawnError when the command could not be started.
func (o *Outcome) SpawnErr() error {
	return o.spawnErr
}

// Cancelled reports whether the child was killed because the supervising
// context ended before it exited on its own.
func (o *Outcome) Cancelled() bool {
	return o.cancelled
}

// Pid is the process id of the child, 0 if it never started.
func (o *Outcome) Pid() int {
	return o.pid
}

// StartedAt is when the child was launched.
func (o *Outcome) StartedAt() time.Time {
	return o.startedAt
}

// Duration is the wall time from launch until both relays had drained.
func (o *Outcome) Duration() time.Duration {
	return o.duration
}
