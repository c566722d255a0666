// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package relay

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startAndWait(t *testing.T, r *Relay) ([]byte, error) {
	t.Helper()
	require.NoError(t, r.Start(context.Background()))

	return r.Wait()
}

func TestRelay_CopiesAndCaptures(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name      string
		input     string
		chunkSize int
	}{
		{
			name:      "empty stream",
			input:     "",
			chunkSize: DefaultChunkSize,
		},
		{
			name:      "single line",
			input:     "hello world\n",
			chunkSize: DefaultChunkSize,
		},
		{
			name:      "crlf is not normalised",
			input:     "a\r\nb\rc\n",
			chunkSize: 2,
		},
		{
			name:      "no trailing newline",
			input:     "partial",
			chunkSize: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sink bytes.Buffer

			r := New(strings.NewReader(tt.input), &sink, WithChunkSize(tt.chunkSize))
			require.NoError(t, r.Start(context.Background()))

			got, err := r.Wait()
			require.NoError(t, err)
			assert.Equal(t, tt.input, string(got))
			assert.Equal(t, tt.input, sink.String())
		})
	}
}

func TestRelay_LargeOutputSpansManyChunks(t *testing.T) {
	defer goleak.VerifyNone(t)

	input := make([]byte, 1024*1024)
	_, err := rand.Read(input)
	require.NoError(t, err)

	var sink bytes.Buffer

	// HalfReader forces short reads so chunk boundaries never line up.
	r := New(iotest.HalfReader(bytes.NewReader(input)), &sink, WithChunkSize(DefaultChunkSize))
	got, err := startAndWait(t, r)
	require.NoError(t, err)

	assert.Len(t, got, len(input))
	assert.True(t, bytes.Equal(input, got), "captured bytes differ from input")
	assert.True(t, bytes.Equal(input, sink.Bytes()), "forwarded bytes differ from input")
}

func TestRelay_ForwardsBeforeEndOfData(t *testing.T) {
	defer goleak.VerifyNone(t)

	pr, pw := io.Pipe()
	sink := newNotifyingWriter()

	r := New(pr, sink)
	require.NoError(t, r.Start(context.Background()))

	_, err := pw.Write([]byte("early\n"))
	require.NoError(t, err)

	select {
	case chunk := <-sink.chunks:
		assert.Equal(t, "early\n", chunk)
	case <-time.After(5 * time.Second):
		t.Fatal("chunk was not forwarded before the stream closed")
	}

	select {
	case <-r.Done():
		t.Fatal("relay finished before end of data")
	default:
	}

	require.NoError(t, pw.Close())

	got, err := r.Wait()
	require.NoError(t, err)
	assert.Equal(t, "early\n", string(got))
}

func TestRelay_FlushesBufferedSink(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out bytes.Buffer

	bw := bufio.NewWriterSize(&out, 4096)

	r := New(strings.NewReader("abcdef"), bw, WithChunkSize(2))
	_, err := startAndWait(t, r)
	require.NoError(t, err)

	assert.Equal(t, 0, bw.Buffered(), "buffered sink should be flushed after each chunk")
	assert.Equal(t, "abcdef", out.String())
}

func TestRelay_SinkErrorKeepsCapturedData(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &closeTracker{Reader: strings.NewReader("0123456789")}
	sink := &failingWriter{failAfter: 2}

	r := New(src, sink, WithChunkSize(4))
	got, err := startAndWait(t, r)

	require.ErrorIs(t, err, ErrWrite)
	require.ErrorIs(t, err, assert.AnError)
	// Two chunks forwarded, the third read but refused by the sink.
	assert.Equal(t, "0123456789", string(got))
	assert.Equal(t, "01234567", sink.buf.String())
	assert.True(t, src.closed, "source should be closed when the relay stops")
}

func TestRelay_ReadErrorKeepsCapturedData(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := iotest.TimeoutReader(iotest.OneByteReader(strings.NewReader("xyz")))

	var sink bytes.Buffer

	r := New(src, &sink)
	got, err := startAndWait(t, r)

	require.ErrorIs(t, err, ErrRead)
	require.ErrorIs(t, err, iotest.ErrTimeout)
	assert.Equal(t, "x", string(got))
	assert.Equal(t, "x", sink.String())
}

func TestRelay_DataReturnedWithError(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := iotest.DataErrReader(strings.NewReader("tail"))

	var sink bytes.Buffer

	got, err := startAndWait(t, New(src, &sink))
	require.NoError(t, err)
	assert.Equal(t, "tail", string(got))
	assert.Equal(t, "tail", sink.String())
}

func TestRelay_NilSinkStillCaptures(t *testing.T) {
	got, err := startAndWait(t, New(strings.NewReader("kept"), nil))
	require.NoError(t, err)
	assert.Equal(t, "kept", string(got))
}

func TestRelay_StartTwice(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := New(strings.NewReader("once"), io.Discard, WithName("stdout"))
	require.NoError(t, r.Start(context.Background()))
	require.ErrorIs(t, r.Start(context.Background()), ErrAlreadyStarted)

	_, err := r.Wait()
	require.NoError(t, err)
	assert.Equal(t, "stdout", r.Name())
}

func TestWithChunkSize_IgnoresNonPositive(t *testing.T) {
	r := New(strings.NewReader(""), nil, WithChunkSize(0))
	assert.Equal(t, DefaultChunkSize, r.chunkSize)

	r = New(strings.NewReader(""), nil, WithChunkSize(-5))
	assert.Equal(t, DefaultChunkSize, r.chunkSize)
}

// notifyingWriter publishes every write on a channel.
type notifyingWriter struct {
	chunks chan string
}

func newNotifyingWriter() *notifyingWriter {
	return &notifyingWriter{chunks: make(chan string, 16)}
}

func (w *notifyingWriter) Write(p []byte) (int, error) {
	w.chunks <- string(p)
	return len(p), nil
}

// failingWriter accepts failAfter writes and then returns assert.AnError.
type failingWriter struct {
	buf       bytes.Buffer
	writes    int
	failAfter int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writes >= w.failAfter {
		return 0, assert.AnError
	}

	w.writes++

	return w.buf.Write(p)
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}
