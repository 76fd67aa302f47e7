// Package serialport opens and enumerates the serial devices the ElenaWatch
// dev tools talk to.
package serialport

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// DefaultBaudRate is the line speed ElenaWatch devices ship with.
const DefaultBaudRate = 115200

// Config describes the serial line settings.
type Config struct {
	BaudRate int
	DataBits int
	Parity   string // "none", "odd", "even", "mark" or "space"
	StopBits int    // 1 or 2
}

// DefaultConfig returns the 115200 8N1 settings used by ElenaWatch devices.
func DefaultConfig() Config {
	return Config{
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		Parity:   "none",
		StopBits: 1,
	}
}

// Mode converts the Config to the library's port mode, validating the
// parity and stop-bit settings.
func (c Config) Mode() (*serial.Mode, error) {
	if c.BaudRate <= 0 {
		return nil, fmt.Errorf("serialport: invalid baud rate %d", c.BaudRate)
	}

	var parity serial.Parity
	switch c.Parity {
	case "", "none":
		parity = serial.NoParity
	case "odd":
		parity = serial.OddParity
	case "even":
		parity = serial.EvenParity
	case "mark":
		parity = serial.MarkParity
	case "space":
		parity = serial.SpaceParity
	default:
		return nil, fmt.Errorf("serialport: invalid parity %q", c.Parity)
	}

	var stopBits serial.StopBits
	switch c.StopBits {
	case 1:
		stopBits = serial.OneStopBit
	case 2:
		stopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("serialport: invalid stop bits %d", c.StopBits)
	}

	dataBits := c.DataBits
	if dataBits == 0 {
		dataBits = 8
	}

	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: dataBits,
		Parity:   parity,
		StopBits: stopBits,
	}, nil
}

// Open opens the named serial device with the given line settings.
func Open(name string, cfg Config) (io.ReadWriteCloser, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", name, err)
	}

	return port, nil
}

// List returns the names of the serial ports present on the system.
func List() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serialport: list ports: %w", err)
	}

	return ports, nil
}
