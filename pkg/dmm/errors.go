package dmm

import "errors"

// Error kinds returned by the instrument drivers. Every failure wraps exactly
// one of these, so callers can match with errors.Is.
var (
	// ErrConnection means the serial port could not be opened.
	ErrConnection = errors.New("serial port unavailable")

	// ErrNotConnected means an operation was attempted on a closed driver.
	ErrNotConnected = errors.New("not connected")

	// ErrCommunication covers write failures, read timeouts and missing
	// responses.
	ErrCommunication = errors.New("instrument communication failed")

	// ErrParse means the instrument response was not a numeric literal.
	ErrParse = errors.New("unparseable instrument response")

	// ErrOverload is returned when the meter reports its overload sentinel
	// instead of a measurement.
	ErrOverload = errors.New("meter overload")
)
