package ymodem

import (
	"fmt"
	"sync"
	"time"

	"github.com/Sab1e-dev/ElenaWatchDevTools/internal/pool"
	"github.com/Sab1e-dev/ElenaWatchDevTools/logger"
)

// receiveSync extracts expected control bytes from the transport's incoming
// byte stream.
//
// It owns an append-only buffer fed by a per-wait transport subscription.
// On every append the buffer is scanned left to right for the first byte in
// the accept set; the matched byte and everything before it are discarded.
// Skipped bytes (line noise, echoed characters, partial ANSI sequences) are
// deliberately non-fatal: serial receivers routinely interleave other
// traffic before an expected control byte.
//
// One receiveSync belongs to exactly one transfer session. Calls to
// waitForByte must be strictly sequential, matching the half-duplex
// request/response structure of the protocol.
type receiveSync struct {
	transport Transport
	logger    logger.Logger

	mu      sync.Mutex
	buf     []byte
	pending *byteWait
}

// byteWait is one outstanding waitForByte call.
type byteWait struct {
	accept []byte
	ch     chan byte
}

func newReceiveSync(t Transport, l logger.Logger) *receiveSync {
	return &receiveSync{
		transport: t,
		logger:    l,
	}
}

// waitForByte blocks until a byte in accept arrives or timeout elapses.
//
// Bytes left in the buffer by a previous call are examined before the chunk
// subscription is registered. The subscription and the timer are released on
// both the success and the timeout path. Bytes consumed here, matched or
// skipped as noise, are never re-examined.
func (rs *receiveSync) waitForByte(timeout time.Duration, accept ...byte) (byte, error) {
	rs.mu.Lock()

	// Drain what a prior wait left behind before subscribing.
	if b, ok := rs.scanLocked(accept); ok {
		rs.mu.Unlock()
		return b, nil
	}

	w := &byteWait{
		accept: accept,
		ch:     make(chan byte, 1),
	}
	rs.pending = w
	rs.mu.Unlock()

	cancel := rs.transport.Subscribe(rs.onChunk)
	defer cancel()

	timer := pool.GetTimer(timeout)
	defer pool.PutTimer(timer)

	select {
	case b := <-w.ch:
		return b, nil

	case <-timer.C:
		rs.mu.Lock()
		rs.pending = nil
		rs.mu.Unlock()

		// The chunk handler may have matched between the timer firing and
		// the pending reset; honor the match rather than dropping the byte.
		select {
		case b := <-w.ch:
			return b, nil
		default:
		}

		return 0, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	}
}

// onChunk appends an incoming chunk and resolves the pending wait if the
// buffer now contains an accepted byte.
func (rs *receiveSync) onChunk(chunk []byte) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.buf = append(rs.buf, chunk...)

	if rs.pending == nil {
		return
	}

	if b, ok := rs.scanLocked(rs.pending.accept); ok {
		rs.pending.ch <- b
		rs.pending = nil
	}
}

// scanLocked scans the buffer for the first byte in accept, consuming it and
// the noise prefix before it. Callers must hold rs.mu.
func (rs *receiveSync) scanLocked(accept []byte) (byte, bool) {
	for i, b := range rs.buf {
		if !byteIn(accept, b) {
			continue
		}

		if i > 0 {
			rs.logger.Debug("ymodem: discarded noise before control byte",
				"skipped", i,
				"got", fmt.Sprintf("0x%02X", b),
			)
		}
		rs.buf = rs.buf[i+1:]

		return b, true
	}

	return 0, false
}

func byteIn(set []byte, b byte) bool {
	for _, v := range set {
		if v == b {
			return true
		}
	}

	return false
}
