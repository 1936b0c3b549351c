// Package survey archives discovery events to SQLite.
//
// The in-memory collections reset on restart and dedup to the latest
// sighting only; the survey archive is the durable complement. Each AP,
// station and BLE device gets one row carrying first_seen, last_seen
// and a sighting counter, updated on every repeat observation.
package survey
