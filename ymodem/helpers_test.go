package ymodem

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Sab1e-dev/ElenaWatchDevTools/logger"
)

// testTimeout is the response timeout used by sender tests. Long enough for
// scripted replies, short enough to fail a hung test quickly.
const testTimeout = 500 * time.Millisecond

// scriptTransport is an in-memory Transport whose replies are scripted per
// write, for driving the sender without a real serial line.
//
// Reply chunks produced before any subscriber is registered are buffered and
// flushed to the next subscriber, mirroring a receiver whose response is
// already on the wire when the sender starts listening.
type scriptTransport struct {
	mu      sync.Mutex
	writes  [][]byte
	pending [][]byte
	subs    map[uint64]func([]byte)
	nextID  uint64

	// onWrite, if set, returns the receiver's reply chunks for a write.
	onWrite func(write []byte) [][]byte

	// writeErr, if set, fails every Write.
	writeErr error
}

func newScriptTransport(onWrite func(write []byte) [][]byte) *scriptTransport {
	return &scriptTransport{
		subs:    make(map[uint64]func([]byte)),
		onWrite: onWrite,
	}
}

func (t *scriptTransport) Write(_ context.Context, data []byte) error {
	t.mu.Lock()

	if t.writeErr != nil {
		t.mu.Unlock()
		return t.writeErr
	}

	w := make([]byte, len(data))
	copy(w, data)
	t.writes = append(t.writes, w)
	t.mu.Unlock()

	if t.onWrite != nil {
		t.push(t.onWrite(w)...)
	}

	return nil
}

func (t *scriptTransport) Subscribe(fn func(chunk []byte)) (cancel func()) {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.subs[id] = fn
	flush := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, chunk := range flush {
		fn(chunk)
	}

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// push delivers chunks to current subscribers, or buffers them until the
// next Subscribe when there are none.
func (t *scriptTransport) push(chunks ...[]byte) {
	t.mu.Lock()
	fns := make([]func([]byte), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	if len(fns) == 0 {
		t.pending = append(t.pending, chunks...)
	}
	t.mu.Unlock()

	for _, chunk := range chunks {
		for _, fn := range fns {
			fn(chunk)
		}
	}
}

func (t *scriptTransport) subscriberCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.subs)
}

func (t *scriptTransport) writtenPackets() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([][]byte, len(t.writes))
	copy(out, t.writes)

	return out
}

// ymodemReceiverScript returns an onWrite handler emulating a standard
// YMODEM receiver in CRC-16 mode: it ACKs the header and re-arms with 'C',
// ACKs every data packet, answers the first EOT with NAK and the second with
// ACK plus 'C', and ACKs the terminator.
func ymodemReceiverScript() func(write []byte) [][]byte {
	eotSeen := 0

	return func(write []byte) [][]byte {
		if len(write) == 1 && write[0] == EOT {
			eotSeen++
			if eotSeen == 1 {
				return [][]byte{{NAK}}
			}

			return [][]byte{{ACK}, {CRCReq}}
		}

		if len(write) < 3 {
			return nil
		}

		// An SOH block 0 with a non-empty filename is the header; block 0
		// with a leading NUL is the terminator. Everything else is data.
		if write[0] == SOH && write[1] == 0 && write[3] != 0 {
			return [][]byte{{ACK}, {CRCReq}}
		}

		return [][]byte{{ACK}}
	}
}

// newScriptedSender builds a Sender over a fresh scriptTransport running the
// standard receiver script, with the initial 'C' already on the line.
func newScriptedSender(t *testing.T) (*Sender, *scriptTransport) {
	t.Helper()

	st := newScriptTransport(ymodemReceiverScript())
	st.push([]byte{CRCReq})

	sender, err := NewSender(st,
		WithResponseTimeout(testTimeout),
		WithLogger(logger.GetLogger()),
	)
	if err != nil {
		t.Fatalf("newScriptedSender: %v", err)
	}

	return sender, st
}

// waitForSubscriber blocks until the transport has at least one subscriber,
// so tests can push chunks into an in-flight waitForByte call.
func waitForSubscriber(t *testing.T, st *scriptTransport) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for st.subscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no subscriber registered within 1s")
		}
		time.Sleep(time.Millisecond)
	}
}
