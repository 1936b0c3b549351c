// Package protocol defines the typed events of the Marauder serial
// protocol and the line parser that produces them.
//
// The wire format is informal, human-oriented text: one line per
// discovery or status message, whitespace-tolerant, with keywords that
// vary across firmware versions. Parse is therefore deliberately total:
// anything it does not recognise degrades to a RawLine event rather than
// an error, so a firmware update can never break ingestion.
//
// The package also holds the outbound command vocabulary (scan, attack
// and BLE spam command strings) so the command surface and the event
// surface live next to each other.
package protocol
