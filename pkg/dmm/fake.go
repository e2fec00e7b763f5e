package dmm

import (
	"fmt"
	"math/rand"
	"time"
)

// FakeMeter produces noisy readings around a fixed level without hardware.
// It implements Meter so the logger can run with meter_type "simulation".
// Like the real drivers it is single-owner and does no internal locking.
type FakeMeter struct {
	level  float64
	noise  float64
	closed bool
}

var _ Meter = (*FakeMeter)(nil)

func NewFakeMeter(level, noise float64) *FakeMeter {
	return &FakeMeter{level: level, noise: noise}
}

func (f *FakeMeter) Configure() error {
	if f.closed {
		return fmt.Errorf("%w: driver closed", ErrNotConnected)
	}
	return nil
}

func (f *FakeMeter) ReadVolts() (float64, error) {
	if f.closed {
		return 0, fmt.Errorf("%w: driver closed", ErrNotConnected)
	}
	return f.level + (rand.Float64()*2-1)*f.noise, nil
}

func (f *FakeMeter) ReadVoltsMultiple(n int) ([]float64, time.Duration, error) {
	if n < 1 {
		return nil, 0, fmt.Errorf("sample count must be at least 1, got %d", n)
	}
	out := make([]float64, 0, n)
	start := time.Now()
	for i := 0; i < n; i++ {
		v, err := f.ReadVolts()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, time.Since(start), nil
}

func (f *FakeMeter) Close() error {
	f.closed = true
	return nil
}
