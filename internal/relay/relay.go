// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/matt-FFFFFF/mailonfail/internal/ctxlog"
)

// DefaultChunkSize is the maximum number of bytes requested from the source per read.
const DefaultChunkSize = 16 * 1024

var (
	// ErrRead is returned when the source stream fails before end of data.
	ErrRead = errors.New("failed to read from source")
	// ErrWrite is returned when a chunk could not be written or flushed to the sink.
	ErrWrite = errors.New("failed to write to sink")
	// ErrAlreadyStarted is returned when Start is called more than once.
	ErrAlreadyStarted = errors.New("relay already started")
)

// Flusher is implemented by sinks that buffer internally, e.g. *bufio.Writer.
// The relay flushes after every chunk so output is visible as it arrives.
type Flusher interface {
	Flush() error
}

// Relay copies one stream to a sink and keeps everything it copied.
type Relay struct {
	name      string
	src       io.Reader
	sink      io.Writer
	chunkSize int

	// buf and err are owned by the relay goroutine until done is closed.
	buf  bytes.Buffer
	err  error
	done chan struct{}

	started atomic.Bool
}

// Option configures a Relay.
type Option func(*Relay)

// WithChunkSize sets the maximum read size. Values < 1 are ignored.
func WithChunkSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

// WithName sets the stream name used in log messages, e.g. "stdout".
func WithName(name string) Option {
	return func(r *Relay) {
		r.name = name
	}
}

// New creates a relay from src to sink. The relay takes ownership of src:
// if it implements io.Closer it is closed when the relay stops.
// A nil sink discards the forwarded bytes but they are still captured.
func New(src io.Reader, sink io.Writer, opts ...Option) *Relay {
	if sink == nil {
		sink = io.Discard
	}

	r := &Relay{
		name:      "stream",
		src:       src,
		sink:      sink,
		chunkSize: DefaultChunkSize,
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start begins draining the source in a new goroutine and returns immediately.
func (r *Relay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	go r.run(ctx)

	return nil
}

// Done is closed once the relay has stopped and its buffer is final.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the relay has stopped, then returns every byte read from
// the source, in order, and the error that stopped it (nil at end of data).
// The returned slice must not be modified.
func (r *Relay) Wait() ([]byte, error) {
	<-r.done
	return r.buf.Bytes(), r.err
}

// Name returns the stream name given with WithName.
func (r *Relay) Name() string {
	return r.name
}

func (r *Relay) run(ctx context.Context) {
	logger := ctxlog.Logger(ctx).With("relay", r.name)

	defer close(r.done)
	defer r.closeSource(ctx)

	chunk := make([]byte, r.chunkSize)

	for {
		n, readErr := r.src.Read(chunk)
		if n > 0 {
			writeErr := r.forward(chunk[:n])
			// The chunk has been consumed from the source either way, keep it.
			r.buf.Write(chunk[:n])

			if writeErr != nil {
				r.err = errors.Join(ErrWrite, writeErr)
				logger.Debug("relay stopped on sink error", "bytes", r.buf.Len(), "error", writeErr)

				return
			}
		}

		if readErr == nil {
			continue
		}

		if !errors.Is(readErr, io.EOF) {
			r.err = errors.Join(ErrRead, readErr)
			logger.Debug("relay stopped on source error", "bytes", r.buf.Len(), "error", readErr)

			return
		}

		logger.Debug("relay reached end of data", "bytes", r.buf.Len())

		return
	}
}

func (r *Relay) forward(p []byte) error {
	n, err := r.sink.Write(p)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if n < len(p) {
		return io.ErrShortWrite
	}

	if f, ok := r.sink.(Flusher); ok {
		return f.Flush() //nolint:wrapcheck
	}

	return nil
}

func (r *Relay) closeSource(ctx context.Context) {
	c, ok := r.src.(io.Closer)
	if !ok {
		return
	}

	if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		ctxlog.Debug(ctx, "failed to close relay source", "relay", r.name, "error", err)
	}
}
