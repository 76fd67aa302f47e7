package ymodem

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/Sab1e-dev/ElenaWatchDevTools/logger"
)

// readChunkSize is the buffer size of the transport read loop. Chunks pushed
// to subscribers are at most this large but carry no alignment guarantee.
const readChunkSize = 4096

// Transport is an abstract bidirectional byte channel to the remote
// receiver.
//
// The engine borrows a Transport for the duration of one transfer; it never
// manages the transport's lifecycle.
type Transport interface {
	// Write sends data over the channel, blocking until the transport has
	// accepted all bytes or failed.
	Write(ctx context.Context, data []byte) error

	// Subscribe registers fn to be called with each incoming byte chunk.
	// Chunks arrive at arbitrary boundaries, never assumed to align with
	// packet or control-byte boundaries. The returned cancel function
	// deregisters the subscription; it is safe to call more than once.
	Subscribe(fn func(chunk []byte)) (cancel func())
}

// StreamTransport adapts any io.ReadWriteCloser (a serial port, a net.Conn,
// a pipe) to the Transport interface.
//
// A single reader goroutine, started by NewStreamTransport, pushes incoming
// chunks to all registered subscribers. Subscriber callbacks run on the
// reader goroutine and must not block.
type StreamTransport struct {
	rw     io.ReadWriteCloser
	logger logger.Logger

	subs      *xsync.MapOf[uint64, func([]byte)]
	nextSubID atomic.Uint64

	closed atomic.Bool
	done   chan struct{}
}

var _ Transport = (*StreamTransport)(nil)

// NewStreamTransport wraps rw and starts its reader loop.
// A nil logger falls back to the package default.
func NewStreamTransport(rw io.ReadWriteCloser, l logger.Logger) *StreamTransport {
	if l == nil {
		l = logger.GetLogger()
	}

	t := &StreamTransport{
		rw:     rw,
		logger: l,
		subs:   xsync.NewMapOf[uint64, func([]byte)](),
		done:   make(chan struct{}),
	}

	go t.readLoop()

	return t
}

// Write sends data over the underlying stream.
// It checks ctx before writing, but an in-flight write is bounded only by
// the underlying stream's own deadline semantics.
func (t *StreamTransport) Write(ctx context.Context, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for written := 0; written < len(data); {
		n, err := t.rw.Write(data[written:])
		written += n

		if err != nil {
			return fmt.Errorf("ymodem: stream write: %w", err)
		}
	}

	return nil
}

// Subscribe registers fn for incoming chunks.
func (t *StreamTransport) Subscribe(fn func(chunk []byte)) (cancel func()) {
	id := t.nextSubID.Add(1)
	t.subs.Store(id, fn)

	return func() {
		t.subs.Delete(id)
	}
}

// Close closes the underlying stream and waits for the reader loop to exit.
func (t *StreamTransport) Close() error {
	t.closed.Store(true)
	err := t.rw.Close()
	<-t.done

	return err
}

// readLoop reads from the stream until it fails or is closed, fanning each
// chunk out to the registered subscribers.
func (t *StreamTransport) readLoop() {
	defer close(t.done)

	buf := make([]byte, readChunkSize)

	for {
		n, err := t.rw.Read(buf)
		if n > 0 {
			// Subscribers may retain the chunk, so hand out a copy.
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			t.subs.Range(func(_ uint64, fn func([]byte)) bool {
				fn(chunk)
				return true
			})
		}

		if err != nil {
			if !t.closed.Load() {
				t.logger.Debug("ymodem: transport read loop ended", "error", err)
			}

			return
		}
	}
}
