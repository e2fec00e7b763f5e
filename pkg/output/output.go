package output

import "github.com/jones139/AgilentDMM/pkg/dmm"

// Output consumes acquisition records from the logger.
type Output interface {
	Publish(dmm.Record) error
	Close() error
}

// concrete implementations live in subpackages
