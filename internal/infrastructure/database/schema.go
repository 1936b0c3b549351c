package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the survey archive tables. Additive-only:
// new columns must be NULLABLE or carry a DEFAULT so older database
// files keep working.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS wifi_aps (
		bssid TEXT PRIMARY KEY,
		ssid TEXT NOT NULL DEFAULT '',
		channel INTEGER NOT NULL DEFAULT 0,
		rssi INTEGER NOT NULL DEFAULT 0,
		first_seen TEXT NOT NULL,
		last_seen TEXT NOT NULL,
		sighting_count INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS wifi_stations (
		mac TEXT PRIMARY KEY,
		associated_bssid TEXT NOT NULL DEFAULT '',
		rssi INTEGER NOT NULL DEFAULT 0,
		first_seen TEXT NOT NULL,
		last_seen TEXT NOT NULL,
		sighting_count INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS ble_devices (
		key TEXT PRIMARY KEY,
		mac TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		rssi INTEGER NOT NULL DEFAULT 0,
		first_seen TEXT NOT NULL,
		last_seen TEXT NOT NULL,
		sighting_count INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wifi_stations_bssid
		ON wifi_stations(associated_bssid)`,
	`CREATE INDEX IF NOT EXISTS idx_wifi_aps_last_seen
		ON wifi_aps(last_seen)`,
}

// EnsureSchema creates the survey archive tables if they don't exist.
// Safe to call on every startup.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: If any statement fails
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
