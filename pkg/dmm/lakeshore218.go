package dmm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lakeshore218 reads a Lakeshore 218 temperature monitor over RS-232. The
// 218 needs no configuration phase; it answers CRDG? queries directly.
type Lakeshore218 struct {
	port   Port
	closed bool
}

var _ TempMonitor = (*Lakeshore218)(nil)

// DefaultTempPortConfig returns the 218's RS-232 link settings: 9600 baud,
// 7 data bits, even parity, one stop bit.
func DefaultTempPortConfig(device string) PortConfig {
	return PortConfig{
		Device:      device,
		BaudRate:    9600,
		DataBits:    7,
		Parity:      "even",
		StopBits:    1,
		ReadTimeout: 500 * time.Millisecond,
	}
}

// NewLakeshore218 opens the serial port and returns the driver.
func NewLakeshore218(pc PortConfig) (*Lakeshore218, error) {
	port, err := OpenPort(pc)
	if err != nil {
		return nil, err
	}
	return NewLakeshore218FromPort(port), nil
}

// NewLakeshore218FromPort wraps an already open transport.
func NewLakeshore218FromPort(port Port) *Lakeshore218 {
	return &Lakeshore218{port: port}
}

// ReadTempChannel returns the reading for one input channel.
func (l *Lakeshore218) ReadTempChannel(ch int) (float64, error) {
	line, err := l.query(fmt.Sprintf("CRDG? %d", ch))
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrParse, line)
	}
	return v, nil
}

// ReadTempAll queries channel 0, which the 218 answers with a
// comma-separated reading for every input.
func (l *Lakeshore218) ReadTempAll() ([]float64, error) {
	line, err := l.query("CRDG? 0")
	if err != nil {
		return nil, err
	}
	parts := strings.Split(line, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrParse, p)
		}
		out = append(out, v)
	}
	return out, nil
}

// Close releases the serial port. Idempotent.
func (l *Lakeshore218) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.port.ResetInputBuffer()
	return l.port.Close()
}

func (l *Lakeshore218) query(cmd string) (string, error) {
	if l.closed {
		return "", fmt.Errorf("%w: driver closed", ErrNotConnected)
	}
	// The 218 wants CR/LF terminated commands.
	if _, err := l.port.Write([]byte(cmd + "\r\n")); err != nil {
		return "", fmt.Errorf("%w: write %q: %v", ErrCommunication, cmd, err)
	}
	return readLine(l.port)
}
