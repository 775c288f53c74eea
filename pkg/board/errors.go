package board

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected indicates the board is not connected, or the
	// connection could not be established.
	ErrNotConnected = errors.New("board not connected")
	// ErrWrongFirmware indicates the board answered the reset with an
	// unexpected banner.
	ErrWrongFirmware = errors.New("wrong firmware")
	// ErrNoResponse indicates the board didn't reply before ResponseTimeout.
	ErrNoResponse = errors.New("no response")
)

// HandshakeError is returned by Connect. Kind is either ErrNotConnected
// or ErrWrongFirmware and can be matched with errors.Is.
type HandshakeError struct {
	Port string
	Kind error
	Err  error
}

// Error implements error.
func (e *HandshakeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connect %s: %v", e.Port, e.Kind)
	}
	return fmt.Sprintf("connect %s: %v: %v", e.Port, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// Is matches the error kind.
func (e *HandshakeError) Is(target error) bool {
	return target == e.Kind
}

// TransportError wraps I/O failures of the serial port.
type TransportError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("serial %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// LaserError indicates an invalid laser channel.
type LaserError struct {
	Index int
	Count int
}

// Error implements error.
func (e *LaserError) Error() string {
	return fmt.Sprintf("laser %d out of range [0, %d)", e.Index, e.Count)
}

// BannerError carries the unexpected handshake banner.
type BannerError struct {
	Banner string
}

// Error implements error.
func (e *BannerError) Error() string {
	return fmt.Sprintf("unexpected banner %q", e.Banner)
}
