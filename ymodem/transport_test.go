package ymodem

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sab1e-dev/ElenaWatchDevTools/logger"
)

// newPipeTransport creates a StreamTransport over the local end of a
// net.Pipe, returning the remote end for test simulation.
func newPipeTransport(t *testing.T) (*StreamTransport, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	tr := NewStreamTransport(local, logger.GetLogger())

	t.Cleanup(func() {
		_ = remote.Close()
		_ = tr.Close()
	})

	return tr, remote
}

func TestStreamTransport_Write(t *testing.T) {
	tr, remote := newPipeTransport(t)

	data := []byte{SOH, 0x01, 0xFE, 0xAA, 0xBB}

	go func() {
		_ = tr.Write(context.Background(), data)
	}()

	got := make([]byte, len(data))
	_, err := io.ReadFull(remote, got)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStreamTransport_Write_CanceledContext(t *testing.T) {
	tr, _ := newPipeTransport(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tr.Write(ctx, []byte{EOT})
	require.ErrorIs(t, err, context.Canceled)
}

func TestStreamTransport_SubscribeReceivesChunks(t *testing.T) {
	tr, remote := newPipeTransport(t)

	chunks := make(chan []byte, 4)
	cancel := tr.Subscribe(func(chunk []byte) {
		chunks <- chunk
	})
	defer cancel()

	_, err := remote.Write([]byte{CRCReq})
	require.NoError(t, err)

	select {
	case chunk := <-chunks:
		assert.Equal(t, []byte{CRCReq}, chunk)
	case <-time.After(time.Second):
		t.Fatal("no chunk delivered within 1s")
	}
}

func TestStreamTransport_UnsubscribeStopsDelivery(t *testing.T) {
	tr, remote := newPipeTransport(t)

	chunks := make(chan []byte, 4)
	cancel := tr.Subscribe(func(chunk []byte) {
		chunks <- chunk
	})

	_, err := remote.Write([]byte{ACK})
	require.NoError(t, err)

	select {
	case <-chunks:
	case <-time.After(time.Second):
		t.Fatal("no chunk delivered within 1s")
	}

	cancel()

	_, err = remote.Write([]byte{NAK})
	require.NoError(t, err)

	select {
	case chunk := <-chunks:
		t.Fatalf("unexpected chunk %v after unsubscribe", chunk)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStreamTransport_CloseStopsReadLoop(t *testing.T) {
	local, remote := net.Pipe()
	tr := NewStreamTransport(local, logger.GetLogger())

	done := make(chan error, 1)
	go func() {
		done <- tr.Close()
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return within 1s")
	}

	_ = remote.Close()
}
