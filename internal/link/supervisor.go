package link

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

// Link timing constants.
const (
	// DefaultBaudRate is the Marauder firmware's serial speed.
	DefaultBaudRate = 115200

	// defaultReadTimeout bounds each blocking read so the reader can
	// notice a stop signal between lines.
	defaultReadTimeout = 1 * time.Second

	// defaultReconnectDelay is the fixed backoff between reconnect
	// attempts after the link drops.
	defaultReconnectDelay = 3 * time.Second

	// defaultRawHistorySize bounds the raw-line history buffer.
	defaultRawHistorySize = 500

	// resetPulseHold is how long the DTR/RTS reset pulse is held when a
	// port is first opened, settling the ESP32 into a known state.
	resetPulseHold = 100 * time.Millisecond

	// stopTimeout bounds how long Disconnect waits for the reader to exit.
	stopTimeout = 5 * time.Second

	// readBufferSize is the per-read buffer size.
	readBufferSize = 256
)

// Port is the subset of a serial port the supervisor uses.
// Satisfied by go.bug.st/serial.Port.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	SetDTR(level bool) error
	SetRTS(level bool) error
	Drain() error
}

// Publisher receives every event the supervisor emits.
// Satisfied by bus.Bus.
type Publisher interface {
	Publish(event protocol.Event)
}

// Logger defines the logging interface used by the Supervisor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Config contains serial link settings.
type Config struct {
	// Port is the explicit device path. Empty means auto-detect.
	Port string

	// BaudRate is the serial speed. Zero means DefaultBaudRate.
	BaudRate int

	// ReadTimeout bounds each blocking line read.
	ReadTimeout time.Duration

	// ReconnectDelay is the fixed backoff between reconnect attempts.
	ReconnectDelay time.Duration

	// RawHistorySize bounds the raw-line history buffer.
	RawHistorySize int
}

// withDefaults fills zero fields with package defaults.
func (c Config) withDefaults() Config {
	if c.BaudRate <= 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = defaultReconnectDelay
	}
	if c.RawHistorySize <= 0 {
		c.RawHistorySize = defaultRawHistorySize
	}
	return c
}

// Supervisor owns one serial handle and one reader goroutine.
//
// It reads Marauder output line by line, parses each line, and publishes
// the resulting events. It holds no business state itself: the event bus
// is its only path to the rest of the system.
//
// On an I/O error the supervisor closes the handle, publishes
// Disconnected, and reconnects indefinitely at a fixed backoff until the
// open succeeds or Disconnect is called. The original error never
// reaches a caller; the next parsed line is the observable signal that
// the link is back.
//
// Thread Safety:
//   - All public methods are safe for concurrent use.
//   - Send calls are serialized against each other by a write lock but
//     never block on reads; the link is half-duplex-safe at the protocol
//     level since reads and writes use independent buffers.
type Supervisor struct {
	cfg    Config
	bus    Publisher
	logger Logger

	// open and list are injection points for tests.
	open func(path string, baud int) (Port, error)
	list func() ([]string, error)

	mu       sync.Mutex
	port     Port
	portPath string
	explicit string
	running  bool
	done     chan struct{}
	wg       sync.WaitGroup

	// writeMu serializes Send calls so command writes never interleave.
	writeMu sync.Mutex

	historyMu sync.Mutex
	history   []string
}

// NewSupervisor creates a supervisor publishing to bus.
func NewSupervisor(cfg Config, bus Publisher) *Supervisor {
	return &Supervisor{
		cfg:    cfg.withDefaults(),
		bus:    bus,
		logger: noopLogger{},
		open:   openSerial,
		list:   serial.GetPortsList,
	}
}

// SetLogger sets the logger for the supervisor.
func (s *Supervisor) SetLogger(logger Logger) {
	s.logger = logger
}

// openSerial opens a real serial port at the given baud rate.
func openSerial(path string, baud int) (Port, error) {
	return serial.Open(path, &serial.Mode{BaudRate: baud})
}

// Connect resolves a port, opens it, pulses the control lines, and
// starts the reader goroutine.
//
// Calling Connect while already connected logs a warning and returns
// nil; it never tears down a live link.
//
// Parameters:
//   - explicitPort: device path override; empty falls back to the
//     configured port, then auto-detection.
//
// Returns:
//   - error: ErrPortNotFound if nothing resolves, or ErrConnectFailed
//     (wrapping the cause) if the device cannot be opened.
func (s *Supervisor) Connect(explicitPort string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("already connected, ignoring connect request", "port", s.portPath)
		return nil
	}

	explicit := explicitPort
	if explicit == "" {
		explicit = s.cfg.Port
	}
	path, err := resolveWith(explicit, s.list)
	if err != nil {
		return err
	}
	s.explicit = explicit

	port, err := s.openPort(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnectFailed, path, err)
	}

	s.port = port
	s.portPath = path
	s.running = true
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.readLoop(s.done)

	s.logger.Info("serial link connected", "port", path, "baud", s.cfg.BaudRate)
	return nil
}

// openPort opens and prepares a port: reset pulse, then read timeout.
func (s *Supervisor) openPort(path string) (Port, error) {
	port, err := s.open(path, s.cfg.BaudRate)
	if err != nil {
		return nil, err
	}

	// Brief DTR/RTS pulse; some ESP32 boards hold the chip in reset
	// until the host releases the control lines.
	if err := port.SetDTR(false); err == nil {
		_ = port.SetRTS(false)
		time.Sleep(resetPulseHold)
		_ = port.SetDTR(true)
		_ = port.SetRTS(true)
	}

	if err := port.SetReadTimeout(s.cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("setting read timeout: %w", err)
	}
	return port, nil
}

// Disconnect signals the reader to stop, waits up to a bounded timeout
// for it to exit, then closes the handle. Safe to call when not
// connected, and safe to call concurrently with an in-flight reconnect
// attempt, which terminates within one backoff interval.
func (s *Supervisor) Disconnect() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	done := s.done
	s.mu.Unlock()

	close(done)

	exited := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(exited)
	}()
	select {
	case <-exited:
	case <-time.After(stopTimeout):
		s.logger.Warn("reader did not stop within timeout")
	}

	s.dropPort()
	s.logger.Info("serial link disconnected")
}

// IsConnected reports whether the handle is open and the reader running.
func (s *Supervisor) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && s.port != nil
}

// PortPath returns the device path of the current (or last) connection.
func (s *Supervisor) PortPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portPath
}

// Send writes a command to the device, appending a trailing newline if
// absent, and flushes it.
//
// Fails fast with ErrNotConnected while the link is down or
// reconnecting; commands are never queued.
func (s *Supervisor) Send(command string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	port := s.port
	connected := s.running && port != nil
	s.mu.Unlock()

	if !connected {
		return ErrNotConnected
	}

	if !strings.HasSuffix(command, "\n") {
		command += "\n"
	}
	if _, err := port.Write([]byte(command)); err != nil {
		return fmt.Errorf("writing command: %w", err)
	}
	if err := port.Drain(); err != nil {
		return fmt.Errorf("flushing command: %w", err)
	}

	s.logger.Debug("command sent", "command", strings.TrimRight(command, "\n"))
	return nil
}

// RawHistory returns a copy of the retained raw lines, oldest first.
func (s *Supervisor) RawHistory() []string {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// readLoop is the reader goroutine: accumulate bytes, split lines, parse
// and publish. Runs until done is closed.
func (s *Supervisor) readLoop(done chan struct{}) {
	defer s.wg.Done()

	buf := make([]byte, readBufferSize)
	var pending []byte

	for {
		select {
		case <-done:
			return
		default:
		}

		s.mu.Lock()
		port := s.port
		s.mu.Unlock()

		if port == nil {
			if !s.reconnect(done) {
				return
			}
			pending = pending[:0]
			continue
		}

		n, err := port.Read(buf)
		if err != nil {
			if stopped(done) {
				return
			}
			s.logger.Warn("serial read error", "error", err)
			s.dropPort()
			s.bus.Publish(protocol.Disconnected{Reason: err.Error()})
			if !s.reconnect(done) {
				return
			}
			pending = pending[:0]
			continue
		}
		if n == 0 {
			// Read timeout; loop back to check the stop signal.
			continue
		}

		pending = append(pending, buf[:n]...)
		for {
			i := bytes.IndexByte(pending, '\n')
			if i < 0 {
				break
			}
			line := string(pending[:i])
			pending = pending[i+1:]
			s.handleLine(line)
		}
	}
}

// handleLine records one raw line and publishes its event, if any.
func (s *Supervisor) handleLine(line string) {
	line = protocol.StripPrompt(line)
	s.recordRaw(line)

	if event := protocol.Parse(line); event != nil {
		s.bus.Publish(event)
	}
}

// recordRaw appends a line to the bounded raw history.
func (s *Supervisor) recordRaw(line string) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	s.history = append(s.history, line)
	if len(s.history) > s.cfg.RawHistorySize {
		s.history = s.history[len(s.history)-s.cfg.RawHistorySize:]
	}
}

// reconnect retries opening the port at a fixed backoff until success or
// stop. Returns false if the stop signal arrived.
//
// The explicit configured port is reused when known; otherwise the port
// is re-discovered each attempt, since USB device paths can change
// across replug.
func (s *Supervisor) reconnect(done chan struct{}) bool {
	for {
		select {
		case <-done:
			return false
		case <-time.After(s.cfg.ReconnectDelay):
		}

		s.mu.Lock()
		explicit := s.explicit
		s.mu.Unlock()

		path, err := resolveWith(explicit, s.list)
		if err != nil {
			s.logger.Debug("reconnect: no port found, retrying")
			continue
		}

		port, err := s.openPort(path)
		if err != nil {
			s.logger.Debug("reconnect attempt failed", "port", path, "error", err)
			continue
		}

		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			port.Close()
			return false
		}
		s.port = port
		s.portPath = path
		s.mu.Unlock()

		s.logger.Info("serial link reconnected", "port", path)
		return true
	}
}

// dropPort closes and clears the handle, if any.
func (s *Supervisor) dropPort() {
	s.mu.Lock()
	if s.port != nil {
		s.port.Close()
		s.port = nil
	}
	s.mu.Unlock()
}

// stopped reports whether the stop signal has been raised.
func stopped(done chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
