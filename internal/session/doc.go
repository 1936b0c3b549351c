// Package session persists device events to append-only JSONL session
// files and exports them to CSV.
//
// A session is a recorded, time-bounded sequence of events written to a
// single file named after its start time
// (sessions/2026-01-30_142501.jsonl). While recording is active every
// event is written exactly once, flushed immediately. CSV export is
// on demand, never automatic, and deterministic in its column order so
// exports of the same session are byte-identical.
package session
