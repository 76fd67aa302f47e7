package ymodem

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sab1e-dev/ElenaWatchDevTools/logger"
)

// Sentinel errors for the YMODEM sender.
var (
	// ErrTimeout indicates that no expected control byte arrived within
	// the response timeout. Always fatal to the transfer.
	ErrTimeout = errors.New("ymodem: timeout waiting for control byte")

	// ErrWriteFailure indicates that the transport rejected or failed a
	// write. Always fatal to the transfer.
	ErrWriteFailure = errors.New("ymodem: transport write failure")

	// ErrInvalidInput indicates a filename or file size that cannot be
	// represented in the header packet. Detected before the handshake
	// starts.
	ErrInvalidInput = errors.New("ymodem: invalid transfer input")
)

// phase identifies a step of the transfer state machine, for error context
// and protocol tracing.
type phase int

const (
	phaseAwaitReady phase = iota
	phaseSendHeader
	phaseAwaitDataReady
	phaseSendData
	phaseFirstEOT
	phaseSecondEOT
	phaseAwaitFinalReady
	phaseSendTerminator
)

func (p phase) String() string {
	switch p {
	case phaseAwaitReady:
		return "await ready"
	case phaseSendHeader:
		return "send header"
	case phaseAwaitDataReady:
		return "await data-ready"
	case phaseSendData:
		return "send data"
	case phaseFirstEOT:
		return "first EOT"
	case phaseSecondEOT:
		return "second EOT"
	case phaseAwaitFinalReady:
		return "await terminator-ready"
	case phaseSendTerminator:
		return "send terminator"
	default:
		return "unknown"
	}
}

// ProgressFunc receives (sent, total) after each acknowledged data packet.
// It is a side-channel notification with no effect on protocol state and
// must not block.
type ProgressFunc func(sent, total int)

// Result summarizes a completed transfer.
type Result struct {
	// Filename is the name announced in the header packet.
	Filename string
	// TotalBytes is the file size announced in the header packet.
	TotalBytes int
	// WrittenBytes is the number of file bytes acknowledged by the
	// receiver, excluding padding. Equals TotalBytes on success.
	WrittenBytes int
}

// Sender drives YMODEM transfer sessions over a Transport.
//
// A Sender may run any number of transfers, but only one at a time: the
// protocol is half-duplex and each session claims the transport's incoming
// byte stream for its own handshake.
type Sender struct {
	transport Transport
	cfg       *Config
	logger    logger.Logger

	metrics TransferMetrics
}

// NewSender creates a Sender for the given transport.
func NewSender(t Transport, opts ...Option) (*Sender, error) {
	if t == nil {
		return nil, errors.New("ymodem: transport is nil")
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Sender{
		transport: t,
		cfg:       cfg,
		logger:    cfg.GetLogger(),
	}, nil
}

// Metrics returns the sender's transfer metrics.
func (s *Sender) Metrics() *TransferMetrics {
	return &s.metrics
}

// Transfer sends a single file to the remote receiver and blocks until the
// session completes or fails.
//
// The session runs the full YMODEM handshake: it waits for the receiver's
// CRC-mode request, sends the header packet, streams the data packets in
// lockstep (each individually acknowledged), terminates with the double EOT
// exchange, and closes the batch with an empty header packet.
//
// onProgress, if non-nil, is invoked after each acknowledged data packet.
// Any timeout or write failure aborts the whole session; there is no retry
// or resynchronization. ctx is checked between protocol steps only — an
// in-flight control-byte wait is bounded solely by the response timeout.
func (s *Sender) Transfer(ctx context.Context, filename string, data []byte, onProgress ProgressFunc) (*Result, error) {
	if err := validateInput(filename, uint64(len(data))); err != nil {
		return nil, err
	}

	chunks := splitPayload(data)
	total := len(chunks)

	sess := &session{
		sender:  s,
		rs:      newReceiveSync(s.transport, s.logger),
		log:     s.logger.With("file", filename, "size", len(data)),
		timeout: s.cfg.ResponseTimeout(),
	}

	sess.log.Info("ymodem: transfer started", "packets", total)
	start := time.Now()

	// Phase 1: the receiver announces CRC mode and readiness with 'C'.
	if _, err := sess.await(ctx, phaseAwaitReady, CRCReq); err != nil {
		return nil, err
	}

	// Phase 2: block-0 header announcing filename and size.
	if err := sess.writePacket(ctx, phaseSendHeader, NewHeaderPacket(filename, uint64(len(data)))); err != nil {
		return nil, err
	}
	if _, err := sess.await(ctx, phaseSendHeader, ACK); err != nil {
		return nil, err
	}
	s.metrics.incHeaderSendCount()

	// Phase 3: the receiver re-arms with 'C' before the first data packet.
	if _, err := sess.await(ctx, phaseAwaitDataReady, CRCReq); err != nil {
		return nil, err
	}

	// Phase 4: lockstep data packets. Block numbers start at 1 and wrap
	// modulo 256; the byte conversion performs the wrap.
	for i, c := range chunks {
		pkt := NewDataPacket(c.data, byte(i+1), c.packetSize)

		if err := sess.writePacket(ctx, phaseSendData, pkt); err != nil {
			return nil, err
		}
		if _, err := sess.await(ctx, phaseSendData, ACK); err != nil {
			return nil, err
		}

		s.metrics.incPacketSendCount()
		s.metrics.addBytesSentCount(uint64(len(c.data)))

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	// Phases 5 and 6: double EOT, answered by NAK then ACK.
	if err := sess.writeControl(ctx, phaseFirstEOT, EOT); err != nil {
		return nil, err
	}
	if _, err := sess.await(ctx, phaseFirstEOT, NAK); err != nil {
		return nil, err
	}
	if err := sess.writeControl(ctx, phaseSecondEOT, EOT); err != nil {
		return nil, err
	}
	if _, err := sess.await(ctx, phaseSecondEOT, ACK); err != nil {
		return nil, err
	}

	// Phases 7 and 8: empty header packet ends the single-file batch.
	if _, err := sess.await(ctx, phaseAwaitFinalReady, CRCReq); err != nil {
		return nil, err
	}
	if err := sess.writePacket(ctx, phaseSendTerminator, NewTerminatorPacket()); err != nil {
		return nil, err
	}
	if _, err := sess.await(ctx, phaseSendTerminator, ACK); err != nil {
		return nil, err
	}
	s.metrics.incHeaderSendCount()
	s.metrics.incTransferCount()

	sess.log.Info("ymodem: transfer complete",
		"packets", total,
		"elapsed", time.Since(start),
	)

	return &Result{
		Filename:     filename,
		TotalBytes:   len(data),
		WrittenBytes: len(data),
	}, nil
}

// session holds the ephemeral state of one Transfer invocation. It is
// created at call time and abandoned on completion or failure; no state
// persists across transfers.
type session struct {
	sender  *Sender
	rs      *receiveSync
	log     logger.Logger
	timeout time.Duration
}

// await blocks until one of the wanted control bytes arrives, wrapping a
// timeout with the phase it occurred in.
func (sess *session) await(ctx context.Context, ph phase, want ...byte) (byte, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	sess.log.Debug("ymodem: waiting for control byte",
		"phase", ph.String(),
		"want", controlNames(want...),
	)

	b, err := sess.rs.waitForByte(sess.timeout, want...)
	if err != nil {
		sess.sender.metrics.incTimeoutCount()

		return 0, fmt.Errorf("%w: phase %s", err, ph)
	}

	sess.log.Debug("ymodem: control byte received",
		"phase", ph.String(),
		"got", controlNames(b),
	)

	return b, nil
}

// writePacket sends a packet's wire bytes over the transport.
func (sess *session) writePacket(ctx context.Context, ph phase, pkt *Packet) error {
	sess.log.Debug("ymodem: sending packet",
		"phase", ph.String(),
		"kind", controlNames(pkt.Kind),
		"block", pkt.BlockNumber,
	)

	if err := sess.sender.transport.Write(ctx, pkt.Pack()); err != nil {
		return fmt.Errorf("%w: phase %s: %w", ErrWriteFailure, ph, err)
	}

	return nil
}

// writeControl sends a single control byte over the transport.
func (sess *session) writeControl(ctx context.Context, ph phase, b byte) error {
	sess.log.Debug("ymodem: sending control byte",
		"phase", ph.String(),
		"byte", controlNames(b),
	)

	if err := sess.sender.transport.Write(ctx, []byte{b}); err != nil {
		return fmt.Errorf("%w: phase %s: %w", ErrWriteFailure, ph, err)
	}

	return nil
}

// validateInput rejects transfers whose metadata cannot be represented in
// the 128-byte header payload, before the handshake starts.
func validateInput(filename string, size uint64) error {
	if filename == "" {
		return fmt.Errorf("%w: empty filename", ErrInvalidInput)
	}

	if strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("%w: filename %q contains a path separator", ErrInvalidInput, filename)
	}

	// filename + NUL separator + ASCII decimal size must fit the payload.
	metaLen := len(filename) + 1 + len(strconv.FormatUint(size, 10))
	if metaLen > ShortPayloadSize {
		return fmt.Errorf("%w: filename and size need %d bytes, header payload holds %d",
			ErrInvalidInput, metaLen, ShortPayloadSize)
	}

	return nil
}

// payloadChunk is one unpadded slice of the file paired with the packet
// size it will be sent in.
type payloadChunk struct {
	data       []byte
	packetSize int
}

// splitPayload splits data left to right into packet chunks covering the
// whole file with no gaps or overlaps.
//
// Interior chunks use 1024-byte packets for throughput. When the remaining
// tail fits in 128 bytes, that final chunk drops to a 128-byte packet to
// minimize padding waste.
func splitPayload(data []byte) []payloadChunk {
	var chunks []payloadChunk

	for pos := 0; pos < len(data); {
		remaining := len(data) - pos

		size := LongPayloadSize
		if remaining <= ShortPayloadSize {
			size = ShortPayloadSize
		}

		n := min(remaining, size)
		chunks = append(chunks, payloadChunk{
			data:       data[pos : pos+n],
			packetSize: size,
		})
		pos += n
	}

	return chunks
}

// controlNames renders control bytes for log and error output.
func controlNames(bytes ...byte) string {
	names := make([]string, len(bytes))
	for i, b := range bytes {
		names[i] = controlName(b)
	}

	return strings.Join(names, "|")
}

func controlName(b byte) string {
	switch b {
	case SOH:
		return "SOH"
	case STX:
		return "STX"
	case EOT:
		return "EOT"
	case ACK:
		return "ACK"
	case NAK:
		return "NAK"
	case CAN:
		return "CAN"
	case CRCReq:
		return "'C'"
	default:
		return fmt.Sprintf("0x%02X", b)
	}
}
