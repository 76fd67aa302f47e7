// Package ymodem implements the sender side of the YMODEM file-transfer
// protocol over a byte-oriented, half-duplex transport such as a serial port.
//
// It is the transfer engine used by the ElenaWatch dev tools to push firmware
// and asset files to a device that runs a standard YMODEM receiver.
//
// # Protocol Overview
//
// YMODEM is a lockstep, block-oriented protocol driven by single-byte control
// characters from the receiver:
//
//   - SOH (0x01) — a 128-byte data packet follows
//   - STX (0x02) — a 1024-byte data packet follows
//   - EOT (0x04) — End of Transmission
//   - ACK (0x06) — packet accepted
//   - NAK (0x15) — packet rejected / first EOT challenge
//   - CAN (0x18) — cancel (recognized, never sent by this engine)
//   - 'C' (0x43) — receiver requests CRC-16 mode and is ready
//
// Each packet carries a block number, its one's complement, a fixed-size
// payload padded with 0x1A, and a big-endian CRC-16/XMODEM over the padded
// payload. Block 0 is the file header (filename, NUL, ASCII decimal size);
// an empty header terminates the batch.
//
// A session runs strictly in sequence: wait for 'C', send the header, wait
// for ACK and 'C', send each data packet and wait for its ACK, send EOT twice
// (answered by NAK then ACK), then wait for 'C' and send the empty
// terminator header.
//
// # Failure Model
//
// Every wait is bounded by the configured response timeout (default 10s).
// Any timeout or transport write failure aborts the whole transfer; the
// engine never retransmits. Errors carry the protocol phase in which they
// occurred to aid interop debugging against third-party receivers.
//
// # Scope
//
// The engine sends a single file per session: batch mode is not implemented
// and the terminator packet always signals "no further files". Receive-side
// logic and checksum-mode negotiation are likewise out of scope; the
// receiver is assumed to request CRC-16 mode.
package ymodem
