package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

// File and directory permission modes for session data.
const (
	dirPermissions  = 0750
	filePermissions = 0600
)

// filenameStamp is the layout for session file names.
const filenameStamp = "2006-01-02_150405"

// Recorder appends device events to a JSONL session file.
//
// One JSON object is written per event: a timestamp (record time, not
// device time), the event type tag, and the event's fields flattened
// into the same object. Every write is flushed immediately; durability
// is preferred over recording throughput.
//
// At most one session file is open at a time. All methods are safe for
// concurrent use.
type Recorder struct {
	dir string

	mu   sync.Mutex
	file *os.File
	path string
}

// NewRecorder creates a recorder writing into dir.
// The directory is created lazily on the first Start.
func NewRecorder(dir string) *Recorder {
	return &Recorder{dir: dir}
}

// Start opens a new timestamped session file and begins recording.
//
// Returns:
//   - string: Path of the new session file
//   - error: If the directory or file cannot be created, or a session
//     is already open
func (r *Recorder) Start() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		return "", fmt.Errorf("session already recording to %s", r.path)
	}

	if err := os.MkdirAll(r.dir, dirPermissions); err != nil {
		return "", fmt.Errorf("creating sessions directory: %w", err)
	}

	path := filepath.Join(r.dir, time.Now().Format(filenameStamp)+".jsonl")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermissions)
	if err != nil {
		return "", fmt.Errorf("creating session file: %w", err)
	}

	r.file = file
	r.path = path
	return path, nil
}

// Stop flushes and closes the session file. Safe to call when not
// recording.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return
	}
	r.file.Sync()
	r.file.Close()
	r.file = nil
	r.path = ""
}

// IsRecording reports whether a session file is currently open.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file != nil
}

// Path returns the active session file path, or empty when idle.
func (r *Recorder) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Record appends one event to the active session, if any.
//
// Returns:
//   - error: If marshalling or the write fails; nil when not recording
func (r *Recorder) Record(event protocol.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}

	record, err := buildRecord(event, time.Now())
	if err != nil {
		return err
	}
	if _, err := r.file.Write(append(record, '\n')); err != nil {
		return fmt.Errorf("writing session record: %w", err)
	}
	if err := r.file.Sync(); err != nil {
		return fmt.Errorf("flushing session record: %w", err)
	}
	return nil
}

// buildRecord flattens an event into a single JSON object with the
// timestamp and event_type fields prepended.
func buildRecord(event protocol.Event, now time.Time) ([]byte, error) {
	fields, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshalling event: %w", err)
	}

	record := map[string]any{
		"timestamp":  now.Format(time.RFC3339),
		"event_type": event.EventType(),
	}
	if err := json.Unmarshal(fields, &record); err != nil {
		return nil, fmt.Errorf("flattening event fields: %w", err)
	}

	out, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshalling record: %w", err)
	}
	return out, nil
}

// List returns the session JSONL files in dir, newest first.
// A missing directory is not an error; it returns an empty list.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}

	var sessions []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		sessions = append(sessions, filepath.Join(dir, entry.Name()))
	}

	// Names embed the start timestamp, so lexical descending is
	// chronological descending.
	sort.Sort(sort.Reverse(sort.StringSlice(sessions)))
	return sessions, nil
}
