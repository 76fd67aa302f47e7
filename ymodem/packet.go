package ymodem

import (
	"fmt"
	"strconv"
)

// YMODEM control bytes.
// These single-byte characters are exchanged on the wire to drive the
// transfer state machine.
const (
	// SOH introduces a packet with a 128-byte payload.
	SOH byte = 0x01

	// STX introduces a packet with a 1024-byte payload.
	STX byte = 0x02

	// EOT (End of Transmission) is sent twice after the last data packet.
	EOT byte = 0x04

	// ACK (Acknowledge) is sent by the receiver after a valid packet.
	ACK byte = 0x06

	// NAK (Negative Acknowledge) rejects a packet. The receiver also
	// answers the first EOT with NAK to force confirmation.
	NAK byte = 0x15

	// CAN cancels the session. This engine recognizes but never sends it.
	CAN byte = 0x18

	// CRCReq ('C') is sent by the receiver to request CRC-16 mode and to
	// signal readiness for the next packet.
	CRCReq byte = 0x43
)

// Payload sizes selected by the packet kind byte.
const (
	// ShortPayloadSize is the payload length of an SOH packet.
	ShortPayloadSize = 128

	// LongPayloadSize is the payload length of an STX packet.
	LongPayloadSize = 1024
)

// PadByte fills the unused tail of a short final chunk up to the fixed
// packet payload size.
const PadByte byte = 0x1A

// packetOverhead is the number of framing bytes around the payload:
// kind + block number + complement before, 2 CRC bytes after.
const packetOverhead = 3 + crcSize

// crcSize is the size of the trailing big-endian CRC-16.
const crcSize = 2

// HeaderBlockNumber is the block number of header and terminator packets.
const HeaderBlockNumber byte = 0

// Packet represents a single YMODEM packet.
//
// On the wire a packet is:
//
//	[Kind(1)][BlockNumber(1)][0xFF-BlockNumber(1)][Payload(128|1024)][CRC16(2, big-endian)]
//
// Payload is always exactly ShortPayloadSize or LongPayloadSize bytes,
// already padded; the CRC is computed over the full padded payload.
type Packet struct {
	Kind        byte   // SOH or STX
	BlockNumber byte   // 0 for header/terminator, 1.. wrapping mod 256 for data
	Payload     []byte // exactly 128 or 1024 bytes
}

// Complement returns the block-number complement byte (0xFF - BlockNumber)
// carried on the wire for corruption detection.
func (p *Packet) Complement() byte {
	return 0xFF - p.BlockNumber
}

// CRC computes the CRC-16/XMODEM of the padded payload.
func (p *Packet) CRC() uint16 {
	return CRC16(p.Payload)
}

// Pack serializes the packet to its exact wire byte sequence.
// The returned slice has length 3 + len(Payload) + 2.
func (p *Packet) Pack() []byte {
	wireLen := packetOverhead + len(p.Payload)
	buf := make([]byte, wireLen)

	buf[0] = p.Kind
	buf[1] = p.BlockNumber
	buf[2] = p.Complement()
	copy(buf[3:], p.Payload)

	crc := p.CRC()
	buf[wireLen-2] = byte(crc >> 8)
	buf[wireLen-1] = byte(crc)

	return buf
}

// NewDataPacket builds a data packet carrying chunk as its payload, padded
// on the right with PadByte up to packetSize.
//
// packetSize selects the kind: ShortPayloadSize yields SOH, LongPayloadSize
// yields STX. Construction is pure and cannot fail for valid arguments;
// NewDataPacket panics if packetSize is not one of the two legal sizes or if
// chunk exceeds it, since both indicate a caller bug rather than a runtime
// condition.
func NewDataPacket(chunk []byte, blockNumber byte, packetSize int) *Packet {
	var kind byte
	switch packetSize {
	case ShortPayloadSize:
		kind = SOH
	case LongPayloadSize:
		kind = STX
	default:
		panic(fmt.Sprintf("ymodem: invalid packet size %d", packetSize))
	}

	if len(chunk) > packetSize {
		panic(fmt.Sprintf("ymodem: chunk length %d exceeds packet size %d", len(chunk), packetSize))
	}

	payload := make([]byte, packetSize)
	n := copy(payload, chunk)
	for i := n; i < packetSize; i++ {
		payload[i] = PadByte
	}

	return &Packet{
		Kind:        kind,
		BlockNumber: blockNumber,
		Payload:     payload,
	}
}

// NewHeaderPacket builds the block-0 metadata packet announcing the file.
//
// The 128-byte payload is zero-filled, with the filename at offset 0
// followed by a 0x00 separator and the ASCII decimal file size. The caller
// must ensure the filename and size fit the payload (see the Sender's input
// validation); NewHeaderPacket panics on overflow.
func NewHeaderPacket(filename string, fileSize uint64) *Packet {
	payload := make([]byte, ShortPayloadSize)

	meta := make([]byte, 0, len(filename)+21)
	meta = append(meta, filename...)
	meta = append(meta, 0x00)
	meta = strconv.AppendUint(meta, fileSize, 10)

	if len(meta) > ShortPayloadSize {
		panic(fmt.Sprintf("ymodem: header metadata length %d exceeds payload size %d", len(meta), ShortPayloadSize))
	}
	copy(payload, meta)

	return &Packet{
		Kind:        SOH,
		BlockNumber: HeaderBlockNumber,
		Payload:     payload,
	}
}

// NewTerminatorPacket builds the empty header packet that ends the batch.
// This sender transfers a single file per session, so the terminator always
// follows the first file.
func NewTerminatorPacket() *Packet {
	return NewHeaderPacket("", 0)
}
