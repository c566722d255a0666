// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/mailonfail/internal/ctxlog"
	"github.com/matt-FFFFFF/mailonfail/internal/relay"
)

// signalExitBase is added to the signal number of a signal-terminated child,
// matching what POSIX shells report in $?.
const signalExitBase = 128

// Supervisor runs commands. The zero value mirrors to the process's own
// stdout and stderr and inherits stdin and the environment.
type Supervisor struct {
	Stdin         *os.File    // Inherited by the child, defaults to os.Stdin.
	Stdout        io.Writer   // Live mirror of the child's stdout, defaults to os.Stdout.
	Stderr        io.Writer   // Live mirror of the child's stderr, defaults to os.Stderr.
	ChunkSize     int         // Maximum bytes per pipe read, defaults to relay.DefaultChunkSize.
	Env           []string    // Child environment, nil inherits the current one.
	Dir           string      // Child working directory, empty inherits the current one.
	OnStateChange func(State) // Called on the supervising goroutine after every transition.
}

// run tracks the state of one invocation so that a Supervisor holds no
// per-run mutable state and can be reused.
type run struct {
	state    State
	onChange func(State)
	logger   *slog.Logger
}

func (r *run) transition(to State) {
	if !canTransition(r.state, to) {
		// Transitions are driven by Run only; reaching this is a programming error.
		panic(fmt.Sprintf("supervisor: invalid transition %s -> %s", r.state, to))
	}

	r.logger.Debug("state change", "from", r.state.String(), "to", to.String())
	r.state = to

	if r.onChange != nil {
		r.onChange(to)
	}
}

// Run starts argv[0] with the remaining elements as arguments, relays its
// output and blocks until the process has exited and both pipes are drained.
//
// A command that cannot be started yields a *SpawnError together with an
// Outcome carrying ExitCodeSpawnFailed. A command that ran always yields a
// nil error, whatever its exit code; relay failures are reported through
// Outcome.StreamErr.
//
// If ctx ends while the child is running, the child is killed and the run
// completes normally with the resulting exit code.
func (s *Supervisor) Run(ctx context.Context, argv []string) (*Outcome, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, ErrEmptyCommand
	}

	logger := ctxlog.Logger(ctx).With("command", argv[0])
	r := &run{state: StateNotStarted, onChange: s.OnStateChange, logger: logger}
	out := NewOutcome(argv, ExitCodeSpawnFailed, nil, nil)

	r.transition(StateLaunching)

	ps, pipes, err := s.spawn(argv)
	if err != nil {
		r.transition(StateFailed)

		spawnErr := &SpawnError{Command: argv[0], Err: err}
		out.spawnErr = spawnErr

		logger.Debug("spawn failed", "error", err)

		return out, spawnErr
	}

	out.startedAt = time.Now()
	out.pid = ps.Pid

	r.transition(StateRunning)
	logger.Debug("process started", "pid", ps.Pid)

	stdoutRelay := relay.New(pipes.stdout, s.stdout(), relay.WithName("stdout"), relay.WithChunkSize(s.ChunkSize))
	stderrRelay := relay.New(pipes.stderr, s.stderr(), relay.WithName("stderr"), relay.WithChunkSize(s.ChunkSize))

	// Both relays are new, Start cannot report ErrAlreadyStarted here.
	_ = stdoutRelay.Start(ctx)
	_ = stderrRelay.Start(ctx)

	exited := make(chan struct{})
	killed := make(chan bool, 1)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		select {
		case <-ctx.Done():
			logger.Info("context done, killing process", "pid", ps.Pid)
			killed <- killPs(ctx, ps)
		case <-exited:
			killed <- false
		}
	}()

	state, waitErr := ps.Wait()

	close(exited)
	wg.Wait()

	out.cancelled = <-killed

	r.transition(StateDraining)

	if waitErr != nil {
		// Without a process state the pipes may still be held open by the
		// child; make sure it is gone before draining.
		logger.Error("wait failed", "pid", ps.Pid, "error", waitErr)
		_ = killPs(ctx, ps)
	}

	stdout, stdoutErr := stdoutRelay.Wait()
	stderr, stderrErr := stderrRelay.Wait()

	r.transition(StateCompleted)

	out.stdout = stdout
	out.stderr = stderr
	out.duration = time.Since(out.startedAt)
	out.exitCode = exitCode(state)

	var merr *multierror.Error

	if waitErr != nil {
		merr = multierror.Append(merr, errors.Join(ErrWaitFailed, waitErr))
	}

	if stdoutErr != nil {
		merr = multierror.Append(merr, fmt.Errorf("stdout: %w", stdoutErr))
	}

	if stderrErr != nil {
		merr = multierror.Append(merr, fmt.Errorf("stderr: %w", stderrErr))
	}

	out.streamErr = merr.ErrorOrNil()

	logger.Debug("process finished",
		"pid", ps.Pid,
		"exitCode", out.exitCode,
		"stdoutBytes", len(stdout),
		"stderrBytes", len(stderr),
		"duration", out.duration.String(),
	)

	return out, nil
}

type pipePair struct {
	stdout *os.File
	stderr *os.File
}

// spawn resolves the executable, creates the pipes and starts the process.
// On success only the read ends stay open in this process; on failure
// everything it opened has been closed again.
func (s *Supervisor) spawn(argv []string) (*os.Process, *pipePair, error) {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return nil, nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		_ = rOut.Close()
		_ = wOut.Close()

		return nil, nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	ps, err := os.StartProcess(path, argv, &os.ProcAttr{
		Dir:   s.Dir,
		Env:   s.Env,
		Files: []*os.File{s.stdin(), wOut, wErr},
	})

	// The child holds its own copies of the write ends. Ours must be closed or
	// the relays would never see end of data.
	_ = wOut.Close()
	_ = wErr.Close()

	if err != nil {
		_ = rOut.Close()
		_ = rErr.Close()

		return nil, nil, err //nolint:wrapcheck
	}

	return ps, &pipePair{stdout: rOut, stderr: rErr}, nil
}

func (s *Supervisor) stdin() *os.File {
	if s.Stdin != nil {
		return s.Stdin
	}

	return os.Stdin
}

func (s *Supervisor) stdout() io.Writer {
	if s.Stdout != nil {
		return s.Stdout
	}

	return os.Stdout
}

func (s *Supervisor) stderr() io.Writer {
	if s.Stderr != nil {
		return s.Stderr
	}

	return os.Stderr
}

// exitCode maps a process state to a single non-negative code where possible.
func exitCode(state *os.ProcessState) int {
	if state == nil {
		return ExitCodeUnknown
	}

	ws, ok := state.Sys().(interface {
		Signaled() bool
		Signal() syscall.Signal
	})
	if ok && ws.Signaled() {
		return signalExitBase + int(ws.Signal())
	}

	return state.ExitCode()
}

// killPs kills the process and reports whether this call killed it.
// A process that has already exited is not an error.
func killPs(ctx context.Context, ps *os.Process) bool {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return false
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return false
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)

	return true
}
