package dmm

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
)

// Port is the transport capability a driver needs from a serial link.
// Drivers are written against this interface so tests can substitute an
// in-memory implementation.
type Port interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
}

// PortConfig describes how to open a physical serial port.
type PortConfig struct {
	Device      string
	BaudRate    int
	DataBits    int
	Parity      string // "none", "even" or "odd"
	StopBits    int    // 1 or 2
	AssertDTR   bool
	ReadTimeout time.Duration
}

// OpenPort opens the physical serial port described by cfg. Failures wrap
// ErrConnection.
func OpenPort(cfg PortConfig) (Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
	}
	switch cfg.Parity {
	case "", "none":
		mode.Parity = serial.NoParity
	case "even":
		mode.Parity = serial.EvenParity
	case "odd":
		mode.Parity = serial.OddParity
	default:
		return nil, fmt.Errorf("%w: unknown parity %q", ErrConnection, cfg.Parity)
	}
	switch cfg.StopBits {
	case 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("%w: unsupported stop bits %d", ErrConnection, cfg.StopBits)
	}

	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrConnection, cfg.Device, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("%w: set read timeout: %v", ErrConnection, err)
	}
	if cfg.AssertDTR {
		if err := port.SetDTR(true); err != nil {
			port.Close()
			return nil, fmt.Errorf("%w: assert DTR: %v", ErrConnection, err)
		}
	}
	return port, nil
}

// readLine reads bytes until a newline and returns the line with the
// terminator and surrounding whitespace stripped. The serial library signals
// a read timeout as a zero-byte read with a nil error; that surfaces here as
// ErrCommunication. Byte-at-a-time reads are fine at instrument baud rates.
func readLine(p Port) (string, error) {
	var buf []byte
	b := make([]byte, 1)
	for {
		n, err := p.Read(b)
		if err != nil {
			return "", fmt.Errorf("%w: read: %v", ErrCommunication, err)
		}
		if n == 0 {
			return "", fmt.Errorf("%w: read timeout", ErrCommunication)
		}
		if b[0] == '\n' {
			break
		}
		buf = append(buf, b[0])
	}
	return strings.TrimSpace(string(buf)), nil
}
