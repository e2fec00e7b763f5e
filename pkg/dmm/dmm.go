package dmm

import "time"

// Record is one logged acquisition: a batch of voltage samples summarised to
// mean and standard deviation, plus the temperature channels when a monitor
// is attached.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Mean      float64   `json:"mean"`
	Std       float64   `json:"std"`
	NSamples  int       `json:"n_samples"`
	ElapsedS  float64   `json:"elapsed_s"`
	Temps     []float64 `json:"temps,omitempty"`
}

// Meter reads voltages from a digital multimeter.
type Meter interface {
	Configure() error
	ReadVolts() (float64, error)
	ReadVoltsMultiple(n int) ([]float64, time.Duration, error)
	Close() error
}

// TempMonitor reads temperatures from a multi-channel monitor.
type TempMonitor interface {
	ReadTempChannel(ch int) (float64, error)
	ReadTempAll() ([]float64, error)
	Close() error
}
