package comm

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

var errTimeout = errors.New("timeout")

// fakeTransport records frames and answers them through respond.
type fakeTransport struct {
	respond func(frame []byte) []byte

	events  []string
	written [][]byte
	pending bytes.Buffer
	closed  bool

	writeErr error
	readErr  error
	clearErr error
	closeErr error
}

func (t *fakeTransport) Write(p []byte) (int, error) {
	t.events = append(t.events, "write")
	if t.writeErr != nil {
		return 0, t.writeErr
	}
	t.written = append(t.written, append([]byte(nil), p...))
	if t.respond != nil {
		t.pending.Write(t.respond(p))
	}
	return len(p), nil
}

func (t *fakeTransport) Read(p []byte) (int, error) {
	t.events = append(t.events, "read")
	if t.readErr != nil {
		return 0, t.readErr
	}
	if t.pending.Len() == 0 {
		return 0, errTimeout
	}
	return t.pending.Read(p)
}

func (t *fakeTransport) ClearBuffers() error {
	t.events = append(t.events, "clear")
	if t.clearErr != nil {
		return t.clearErr
	}
	t.pending.Reset()
	return nil
}

func (t *fakeTransport) Close() error {
	t.closed = true
	return t.closeErr
}

// slowWriter accepts one byte per call.
type slowWriter struct {
	bytes.Buffer
}

func (w *slowWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return w.Buffer.Write(p[:1])
}

type stuckWriter struct{}

func (stuckWriter) Write([]byte) (int, error) { return 0, nil }

func TestWriteAll(t *testing.T) {
	var w slowWriter
	require.NoError(t, writeAll(&w, []byte{1, 2, 3}))
	require.Equal(t, []byte{1, 2, 3}, w.Bytes())
	require.ErrorIs(t, writeAll(stuckWriter{}, []byte{1}), io.ErrShortWrite)
}
