package survey

import (
	"context"
	"fmt"
	"time"

	"github.com/jlucaswrk/marauder-tui/internal/infrastructure/database"
	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

// opTimeout bounds each archive write so a locked database never stalls
// the event path.
const opTimeout = 5 * time.Second

// Logger defines the logging interface used by the Archive.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Sighting is one archived device observation with its sighting history.
type Sighting struct {
	Key           string    `json:"key"`
	SSID          string    `json:"ssid,omitempty"`
	Channel       int       `json:"channel,omitempty"`
	RSSI          int       `json:"rssi"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
	SightingCount int       `json:"sighting_count"`
}

// Archive persists discovery events to SQLite across runs. Unlike the
// in-memory collections, archive rows accumulate first/last seen
// timestamps and a sighting counter per device.
//
// Thread Safety:
//   - All methods are safe for concurrent use; SQLite serialises writes
//     through the single-writer connection pool.
type Archive struct {
	db     *database.DB
	logger Logger
	now    func() time.Time
}

// New creates an archive writing to db. The survey tables must already
// exist (database.EnsureSchema).
func New(db *database.DB) *Archive {
	return &Archive{
		db:     db,
		logger: noopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the logger for the archive.
func (a *Archive) SetLogger(logger Logger) {
	a.logger = logger
}

// HandleEvent archives one discovery event. Non-discovery events are
// ignored. Register it on the event bus; failures are logged, never
// propagated, so a broken database cannot take down the event path.
func (a *Archive) HandleEvent(event protocol.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var err error
	switch ev := event.(type) {
	case protocol.APFound:
		err = a.RecordAP(ctx, ev)
	case protocol.StationFound:
		err = a.RecordStation(ctx, ev)
	case protocol.BLEDeviceFound:
		err = a.RecordBLEDevice(ctx, ev)
	default:
		return
	}

	if err != nil {
		a.logger.Warn("archive write failed", "event", event.EventType(), "error", err)
	}
}

// RecordAP upserts an access point sighting keyed by BSSID.
func (a *Archive) RecordAP(ctx context.Context, ev protocol.APFound) error {
	now := a.now().UTC().Format(time.RFC3339)
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO wifi_aps (bssid, ssid, channel, rssi, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(bssid) DO UPDATE SET
			ssid = excluded.ssid,
			channel = excluded.channel,
			rssi = excluded.rssi,
			last_seen = excluded.last_seen,
			sighting_count = sighting_count + 1
	`, ev.BSSID, ev.SSID, ev.Channel, ev.RSSI, now, now)
	if err != nil {
		return fmt.Errorf("recording AP sighting: %w", err)
	}
	return nil
}

// RecordStation upserts a station sighting keyed by MAC.
func (a *Archive) RecordStation(ctx context.Context, ev protocol.StationFound) error {
	now := a.now().UTC().Format(time.RFC3339)
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO wifi_stations (mac, associated_bssid, rssi, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(mac) DO UPDATE SET
			associated_bssid = excluded.associated_bssid,
			rssi = excluded.rssi,
			last_seen = excluded.last_seen,
			sighting_count = sighting_count + 1
	`, ev.MAC, ev.AssociatedBSSID, ev.RSSI, now, now)
	if err != nil {
		return fmt.Errorf("recording station sighting: %w", err)
	}
	return nil
}

// RecordBLEDevice upserts a BLE sighting. Devices reporting a MAC are
// keyed by it; name-only sightings are keyed by name so repeat
// advertisements from the same product still fold into one row.
func (a *Archive) RecordBLEDevice(ctx context.Context, ev protocol.BLEDeviceFound) error {
	key := ev.MAC
	if key == "" {
		key = ev.Name
	}
	if key == "" {
		return nil
	}

	now := a.now().UTC().Format(time.RFC3339)
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO ble_devices (key, mac, name, rssi, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			mac = excluded.mac,
			name = excluded.name,
			rssi = excluded.rssi,
			last_seen = excluded.last_seen,
			sighting_count = sighting_count + 1
	`, key, ev.MAC, ev.Name, ev.RSSI, now, now)
	if err != nil {
		return fmt.Errorf("recording BLE sighting: %w", err)
	}
	return nil
}

// APSightings returns archived access points, most recently seen first.
func (a *Archive) APSightings(ctx context.Context, limit int) ([]Sighting, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT bssid, ssid, channel, rssi, first_seen, last_seen, sighting_count
		FROM wifi_aps ORDER BY last_seen DESC LIMIT ?
	`, normaliseLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying AP sightings: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var out []Sighting
	for rows.Next() {
		var s Sighting
		var firstSeen, lastSeen string
		if err := rows.Scan(&s.Key, &s.SSID, &s.Channel, &s.RSSI, &firstSeen, &lastSeen, &s.SightingCount); err != nil {
			return nil, fmt.Errorf("scanning AP sighting: %w", err)
		}
		s.FirstSeen, s.LastSeen = parseTimes(firstSeen, lastSeen)
		out = append(out, s)
	}
	return out, rows.Err()
}

// StationSightings returns archived stations, most recently seen first.
func (a *Archive) StationSightings(ctx context.Context, limit int) ([]Sighting, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT mac, rssi, first_seen, last_seen, sighting_count
		FROM wifi_stations ORDER BY last_seen DESC LIMIT ?
	`, normaliseLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying station sightings: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var out []Sighting
	for rows.Next() {
		var s Sighting
		var firstSeen, lastSeen string
		if err := rows.Scan(&s.Key, &s.RSSI, &firstSeen, &lastSeen, &s.SightingCount); err != nil {
			return nil, fmt.Errorf("scanning station sighting: %w", err)
		}
		s.FirstSeen, s.LastSeen = parseTimes(firstSeen, lastSeen)
		out = append(out, s)
	}
	return out, rows.Err()
}

// BLESightings returns archived BLE devices, most recently seen first.
func (a *Archive) BLESightings(ctx context.Context, limit int) ([]Sighting, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT key, rssi, first_seen, last_seen, sighting_count
		FROM ble_devices ORDER BY last_seen DESC LIMIT ?
	`, normaliseLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying BLE sightings: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var out []Sighting
	for rows.Next() {
		var s Sighting
		var firstSeen, lastSeen string
		if err := rows.Scan(&s.Key, &s.RSSI, &firstSeen, &lastSeen, &s.SightingCount); err != nil {
			return nil, fmt.Errorf("scanning BLE sighting: %w", err)
		}
		s.FirstSeen, s.LastSeen = parseTimes(firstSeen, lastSeen)
		out = append(out, s)
	}
	return out, rows.Err()
}

// normaliseLimit maps non-positive limits to a generous default.
func normaliseLimit(limit int) int {
	if limit <= 0 {
		return 1000
	}
	return limit
}

// parseTimes decodes the stored RFC3339 timestamps, tolerating rows
// written by hand.
func parseTimes(first, last string) (time.Time, time.Time) {
	f, _ := time.Parse(time.RFC3339, first)
	l, _ := time.Parse(time.RFC3339, last)
	return f, l
}
