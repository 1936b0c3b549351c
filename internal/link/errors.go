package link

import "errors"

// Domain-specific errors for serial link operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrPortNotFound is returned when no candidate serial device path
	// can be resolved during auto-detection.
	ErrPortNotFound = errors.New("link: no serial port found")

	// ErrConnectFailed is returned when a resolved device path exists
	// but the port cannot be opened.
	ErrConnectFailed = errors.New("link: connect failed")

	// ErrNotConnected is returned when a command send is attempted with
	// no open link. Sends never queue or block while disconnected.
	ErrNotConnected = errors.New("link: not connected")
)
