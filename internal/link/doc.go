// Package link manages the serial connection to the Marauder device.
//
// It contains the port resolver (auto-detection of USB-serial adapters)
// and the link supervisor, which owns the serial handle, runs the
// blocking read loop, and drives indefinite reconnection after link
// loss. The supervisor's only output path is the event bus; it holds no
// business state.
//
// # Failure model
//
// Transient I/O errors on an open link are never surfaced to callers.
// The supervisor closes the handle, publishes a Disconnected event, and
// retries at a fixed backoff until the device reappears. Connection
// errors from Connect and sends while disconnected are the only errors
// callers see (ErrPortNotFound, ErrConnectFailed, ErrNotConnected).
package link
