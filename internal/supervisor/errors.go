// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCommand is returned when Run is called without a command.
	ErrEmptyCommand = errors.New("no command given")
	// ErrCouldNotStartProcess is matched by every *SpawnError.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when an operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrWaitFailed is returned when the operating system could not report the child's exit.
	ErrWaitFailed = errors.New("failed to wait for process")
)

// SpawnError reports that the command never started, so nothing was relayed.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("could not start %q: %v", e.Command, e.Err)
}

// Unwrap allows errors.Is to match both ErrCouldNotStartProcess and the cause.
func (e *SpawnError) Unwrap() []error {
	return []error{ErrCouldNotStartProcess, e.Err}
}
