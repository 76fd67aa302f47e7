package ymodem

import (
	"sync/atomic"
)

// TransferMetrics contains atomic metrics for a Sender.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type TransferMetrics struct {
	// PacketSendCount indicates the number of data packets sent and ACK'd.
	PacketSendCount atomic.Uint64
	// BytesSentCount indicates the number of payload bytes sent, excluding
	// padding.
	BytesSentCount atomic.Uint64
	// HeaderSendCount indicates the number of header and terminator
	// packets sent and ACK'd.
	HeaderSendCount atomic.Uint64
	// TimeoutCount indicates the number of control-byte waits that timed
	// out. Each timeout aborts its transfer.
	TimeoutCount atomic.Uint64
	// TransferCount indicates the number of completed transfers.
	TransferCount atomic.Uint64
}

func (m *TransferMetrics) incPacketSendCount() {
	m.PacketSendCount.Add(1)
}

func (m *TransferMetrics) addBytesSentCount(n uint64) {
	m.BytesSentCount.Add(n)
}

func (m *TransferMetrics) incHeaderSendCount() {
	m.HeaderSendCount.Add(1)
}

func (m *TransferMetrics) incTimeoutCount() {
	m.TimeoutCount.Add(1)
}

func (m *TransferMetrics) incTransferCount() {
	m.TransferCount.Add(1)
}
