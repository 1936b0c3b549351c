package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/jlucaswrk/marauder-tui/internal/protocol"
	"github.com/jlucaswrk/marauder-tui/internal/session"
)

// DefaultActivityLogSize bounds the activity feed when no size is
// configured.
const DefaultActivityLogSize = 200

// CommandSender is the slice of the link supervisor the engine uses.
type CommandSender interface {
	Send(command string) error
}

// Logger defines the logging interface used by the Engine.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ActivityEntry is one line of the human-readable activity feed.
type ActivityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// LinkState is the engine's view of the serial link.
type LinkState struct {
	Port        string `json:"port"`
	Connected   bool   `json:"connected"`
	CurrentScan string `json:"current_scan"`
}

// Notification kinds delivered to engine observers.
const (
	NotifyUpdate   = "update"
	NotifyActivity = "activity"
	NotifyRawLine  = "raw_line"
)

// Observer receives engine notifications as an (kind, payload) pair,
// letting the display layer append incrementally instead of redrawing.
type Observer func(kind string, payload any)

// ObserverHandle identifies an observer registration.
type ObserverHandle int

// Config contains engine settings.
type Config struct {
	// SessionsDir is where session recordings are written.
	SessionsDir string

	// ActivityLogSize bounds the activity feed. Zero means
	// DefaultActivityLogSize.
	ActivityLogSize int
}

// Engine is the single consumer that turns device events into durable
// state: deduplicated discovery collections, a bounded activity log,
// link state, and session recording. It also issues outbound commands
// through the link supervisor.
//
// Discovery records are immutable values; a later event for the same
// identity key replaces the stored value wholesale, never merges.
//
// Thread Safety:
//   - All methods are safe for concurrent use. HandleEvent is normally
//     invoked from the link reader goroutine while commands and
//     snapshot reads arrive from the foreground.
type Engine struct {
	link     CommandSender
	recorder *session.Recorder
	logger   Logger

	logSize int

	mu          sync.RWMutex
	aps         []protocol.APFound
	apIndex     map[string]int
	stations    []protocol.StationFound
	staIndex    map[string]int
	bleDevices  []protocol.BLEDeviceFound
	bleIndex    map[string]int
	activity    []ActivityEntry
	port        string
	connected   bool
	currentScan string

	obsMu     sync.Mutex
	observers map[ObserverHandle]Observer
	nextObs   ObserverHandle
}

// New creates an engine issuing commands through link.
func New(link CommandSender, cfg Config) *Engine {
	logSize := cfg.ActivityLogSize
	if logSize <= 0 {
		logSize = DefaultActivityLogSize
	}
	return &Engine{
		link:      link,
		recorder:  session.NewRecorder(cfg.SessionsDir),
		logger:    noopLogger{},
		logSize:   logSize,
		apIndex:   make(map[string]int),
		staIndex:  make(map[string]int),
		bleIndex:  make(map[string]int),
		observers: make(map[ObserverHandle]Observer),
	}
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
}

// Subscribe registers an observer for engine notifications.
func (e *Engine) Subscribe(fn Observer) ObserverHandle {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	h := e.nextObs
	e.nextObs++
	e.observers[h] = fn
	return h
}

// Unsubscribe removes an observer. Unknown handles are ignored.
func (e *Engine) Unsubscribe(h ObserverHandle) {
	e.obsMu.Lock()
	delete(e.observers, h)
	e.obsMu.Unlock()
}

// notify delivers a notification to every observer, outside any state
// lock.
func (e *Engine) notify(kind string, payload any) {
	e.obsMu.Lock()
	snapshot := make([]Observer, 0, len(e.observers))
	for _, fn := range e.observers {
		snapshot = append(snapshot, fn)
	}
	e.obsMu.Unlock()

	for _, fn := range snapshot {
		fn(kind, payload)
	}
}

// HandleEvent consumes one device event. Register it on the event bus.
//
// For every event, in order: update the relevant dedup collection,
// append to the activity log, append to the session recording if one is
// active, then notify observers.
func (e *Engine) HandleEvent(event protocol.Event) {
	switch ev := event.(type) {
	case protocol.APFound:
		e.onAPFound(ev)
	case protocol.StationFound:
		e.onStationFound(ev)
	case protocol.BLEDeviceFound:
		e.onBLEDeviceFound(ev)
	case protocol.ScanStarted:
		e.onScanStarted(ev)
	case protocol.ScanStopped:
		e.onScanStopped()
	case protocol.Disconnected:
		e.onDisconnected(ev)
	case protocol.RawLine:
		e.notify(NotifyRawLine, ev.Text)
	}

	if err := e.recorder.Record(event); err != nil {
		e.logger.Error("session record failed", "error", err)
	}

	e.notify(NotifyUpdate, nil)
}

func (e *Engine) onAPFound(ev protocol.APFound) {
	e.mu.Lock()
	if idx, ok := e.apIndex[ev.BSSID]; ok {
		e.aps[idx] = ev
	} else {
		e.apIndex[ev.BSSID] = len(e.aps)
		e.aps = append(e.aps, ev)
	}
	e.connected = true
	msg := fmt.Sprintf("Found AP: %s ch%d %ddBm", ev.SSID, ev.Channel, ev.RSSI)
	e.appendActivity(msg)
	e.mu.Unlock()

	e.notify(NotifyActivity, [2]string{"WiFi", msg})
}

func (e *Engine) onStationFound(ev protocol.StationFound) {
	e.mu.Lock()
	if idx, ok := e.staIndex[ev.MAC]; ok {
		e.stations[idx] = ev
	} else {
		e.staIndex[ev.MAC] = len(e.stations)
		e.stations = append(e.stations, ev)
	}
	e.connected = true
	msg := fmt.Sprintf("Station: %s %ddBm -> %s", ev.MAC, ev.RSSI, ev.AssociatedBSSID)
	e.appendActivity(msg)
	e.mu.Unlock()

	e.notify(NotifyActivity, [2]string{"WiFi", msg})
}

func (e *Engine) onBLEDeviceFound(ev protocol.BLEDeviceFound) {
	e.mu.Lock()
	// Lines that report a name carry no address, so there is nothing to
	// dedup on: those entries are append-only.
	if ev.MAC != "" {
		if idx, ok := e.bleIndex[ev.MAC]; ok {
			e.bleDevices[idx] = ev
		} else {
			e.bleIndex[ev.MAC] = len(e.bleDevices)
			e.bleDevices = append(e.bleDevices, ev)
		}
	} else {
		e.bleDevices = append(e.bleDevices, ev)
	}
	e.connected = true
	label := ev.Name
	if label == "" {
		label = ev.MAC
	}
	msg := fmt.Sprintf("Device: %s %ddBm", label, ev.RSSI)
	e.appendActivity(msg)
	e.mu.Unlock()

	e.notify(NotifyActivity, [2]string{"BLE", msg})
}

func (e *Engine) onScanStarted(ev protocol.ScanStarted) {
	e.mu.Lock()
	e.currentScan = ev.ScanType
	e.connected = true
	e.appendActivity("Scan started: " + ev.ScanType)
	e.mu.Unlock()
}

func (e *Engine) onScanStopped() {
	e.mu.Lock()
	prev := e.currentScan
	e.currentScan = ""
	e.connected = true
	e.appendActivity(fmt.Sprintf("Scan stopped (was: %s)", prev))
	e.mu.Unlock()
}

func (e *Engine) onDisconnected(ev protocol.Disconnected) {
	e.mu.Lock()
	e.connected = false
	e.currentScan = ""
	e.appendActivity("Device disconnected")
	e.mu.Unlock()

	e.logger.Warn("device disconnected", "reason", ev.Reason)
}

// appendActivity adds a timestamped entry to the bounded activity log.
// Caller must hold e.mu.
func (e *Engine) appendActivity(message string) {
	e.activity = append(e.activity, ActivityEntry{Timestamp: time.Now(), Message: message})
	if len(e.activity) > e.logSize {
		e.activity = e.activity[len(e.activity)-e.logSize:]
	}
}

// logActivity appends an entry while not holding the lock.
func (e *Engine) logActivity(message string) {
	e.mu.Lock()
	e.appendActivity(message)
	e.mu.Unlock()
}

// SetLinkUp records the externally observed link state (initial connect
// and explicit disconnect); events keep it current in between.
func (e *Engine) SetLinkUp(port string, up bool) {
	e.mu.Lock()
	e.port = port
	e.connected = up
	if !up {
		e.currentScan = ""
	}
	e.mu.Unlock()
	e.notify(NotifyUpdate, nil)
}

// LinkState returns the current link state snapshot.
func (e *Engine) LinkState() LinkState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return LinkState{Port: e.port, Connected: e.connected, CurrentScan: e.currentScan}
}

// APs returns a copy of the discovered access points, in first-seen order.
func (e *Engine) APs() []protocol.APFound {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]protocol.APFound, len(e.aps))
	copy(out, e.aps)
	return out
}

// Stations returns a copy of the discovered stations.
func (e *Engine) Stations() []protocol.StationFound {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]protocol.StationFound, len(e.stations))
	copy(out, e.stations)
	return out
}

// BLEDevices returns a copy of the discovered BLE devices.
func (e *Engine) BLEDevices() []protocol.BLEDeviceFound {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]protocol.BLEDeviceFound, len(e.bleDevices))
	copy(out, e.bleDevices)
	return out
}

// Activity returns a copy of the activity log, oldest first.
func (e *Engine) Activity() []ActivityEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]ActivityEntry, len(e.activity))
	copy(out, e.activity)
	return out
}

// ClearResults wipes all collected scan results.
func (e *Engine) ClearResults() {
	e.mu.Lock()
	e.aps = nil
	e.stations = nil
	e.bleDevices = nil
	e.apIndex = make(map[string]int)
	e.staIndex = make(map[string]int)
	e.bleIndex = make(map[string]int)
	e.appendActivity("Results cleared")
	e.mu.Unlock()

	e.notify(NotifyUpdate, nil)
}
