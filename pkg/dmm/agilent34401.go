package dmm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultRange is the measurement function/range string used when none is
// configured. See the 34401A manual for the accepted syntax; the driver
// passes the string through verbatim.
const DefaultRange = "VOLT:DC 10,DEF"

// overloadValue is what the 34401A returns in place of a reading when the
// input exceeds the selected range (sign stripped).
const overloadValue = "9.90000000E+37"

// MeterConfig holds the measurement settings sent during Configure.
type MeterConfig struct {
	Range string // CONF suffix, e.g. "VOLT:DC 10,DEF"
	NPLC  int    // integration time in power line cycles
}

// Agilent34401 drives an Agilent 34401A multimeter over RS-232.
//
// The driver is blocking and single-owner: one operation at a time, no
// internal locking. Sharing an instance between goroutines is not supported.
type Agilent34401 struct {
	port       Port
	rangeStr   string
	nplc       int
	configured bool
	closed     bool
}

var _ Meter = (*Agilent34401)(nil)

// DefaultPortConfig returns the 34401A's RS-232 link settings: 9600 baud,
// 7 data bits, even parity, two stop bits, DTR asserted.
func DefaultPortConfig(device string) PortConfig {
	return PortConfig{
		Device:      device,
		BaudRate:    9600,
		DataBits:    7,
		Parity:      "even",
		StopBits:    2,
		AssertDTR:   true,
		ReadTimeout: 500 * time.Millisecond,
	}
}

// NewAgilent34401 opens the serial port and returns an unconfigured driver.
func NewAgilent34401(pc PortConfig, mc MeterConfig) (*Agilent34401, error) {
	port, err := OpenPort(pc)
	if err != nil {
		return nil, err
	}
	// Drop any stale bytes left over from a previous session.
	port.ResetInputBuffer()
	return NewAgilent34401FromPort(port, mc), nil
}

// NewAgilent34401FromPort wraps an already open transport. Used by tests and
// by callers that manage the port themselves.
func NewAgilent34401FromPort(port Port, mc MeterConfig) *Agilent34401 {
	d := &Agilent34401{port: port, rangeStr: mc.Range, nplc: mc.NPLC}
	if d.rangeStr == "" {
		d.rangeStr = DefaultRange
	}
	if d.nplc == 0 {
		d.nplc = 10
	}
	return d
}

// Configure puts the meter in remote mode, selects immediate triggering and
// sets the integration time and measurement range. Safe to call more than
// once; each call re-sends the full command sequence.
func (d *Agilent34401) Configure() error {
	if d.closed {
		return fmt.Errorf("%w: driver closed", ErrNotConnected)
	}
	cmds := []string{
		"SYST:REM",
		"TRIG:SOUR IMM",
		"TRIG:DEL 0",
		fmt.Sprintf("VOLT:NPLC %d", d.nplc),
		"CONF:" + d.rangeStr,
	}
	for _, cmd := range cmds {
		if err := d.send(cmd); err != nil {
			return err
		}
	}
	d.configured = true
	return nil
}

// ReadVolts triggers one measurement and returns the parsed value. The
// meter is configured first if this session has not configured it yet, so a
// read never happens in whatever mode the instrument was left in.
func (d *Agilent34401) ReadVolts() (float64, error) {
	if d.closed {
		return 0, fmt.Errorf("%w: driver closed", ErrNotConnected)
	}
	if !d.configured {
		if err := d.Configure(); err != nil {
			return 0, err
		}
	}
	if err := d.send("READ?"); err != nil {
		return 0, err
	}
	line, err := readLine(d.port)
	if err != nil {
		return 0, err
	}
	return parseVolts(line)
}

// ReadVoltsMultiple takes n consecutive readings and reports the wall-clock
// time spent reading. The meter is configured first if this session has not
// configured it yet. Any failed read fails the whole batch; no partial
// results are returned.
func (d *Agilent34401) ReadVoltsMultiple(n int) ([]float64, time.Duration, error) {
	if n < 1 {
		return nil, 0, fmt.Errorf("sample count must be at least 1, got %d", n)
	}
	if d.closed {
		return nil, 0, fmt.Errorf("%w: driver closed", ErrNotConnected)
	}
	if !d.configured {
		if err := d.Configure(); err != nil {
			return nil, 0, err
		}
	}
	out := make([]float64, 0, n)
	start := time.Now()
	for i := 0; i < n; i++ {
		v, err := d.ReadVolts()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, time.Since(start), nil
}

// Close releases the serial port. Closing an already closed driver is a
// no-op.
func (d *Agilent34401) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.port.ResetInputBuffer()
	return d.port.Close()
}

func (d *Agilent34401) send(cmd string) error {
	if _, err := d.port.Write([]byte(cmd + "\n")); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrCommunication, cmd, err)
	}
	return nil
}

func parseVolts(line string) (float64, error) {
	if strings.TrimLeft(line, "+-") == overloadValue {
		return 0, fmt.Errorf("%w: meter returned %s", ErrOverload, line)
	}
	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrParse, line)
	}
	return v, nil
}
