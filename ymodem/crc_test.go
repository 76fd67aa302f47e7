package ymodem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC16_ReferenceVectors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{
			name: "empty input",
			data: nil,
			want: 0x0000,
		},
		{
			name: "check string 123456789",
			data: []byte("123456789"),
			want: 0x31C3,
		},
		{
			name: "all-zero 128-byte payload",
			data: make([]byte, 128),
			want: 0x0000,
		},
		{
			name: "all-zero 1024-byte payload",
			data: make([]byte, 1024),
			want: 0x0000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CRC16(tt.data))
		})
	}
}

func TestCRC16_AppendedCRCYieldsZero(t *testing.T) {
	// A defining property of CRC-16/XMODEM (init 0, no final XOR): the CRC
	// of a message followed by its own big-endian CRC is zero. This is what
	// the receiver relies on to validate packets.
	data := []byte("the quick brown fox jumps over the lazy dog")
	crc := CRC16(data)

	withCRC := append(append([]byte{}, data...), byte(crc>>8), byte(crc))
	assert.Equal(t, uint16(0), CRC16(withCRC))
}

func TestCRC16_PaddingChangesCRC(t *testing.T) {
	// The CRC is computed over the full padded payload, so padding is not
	// transparent to it.
	raw := []byte("ab")
	padded := make([]byte, ShortPayloadSize)
	copy(padded, raw)
	for i := len(raw); i < len(padded); i++ {
		padded[i] = PadByte
	}

	assert.NotEqual(t, CRC16(raw), CRC16(padded))
}
