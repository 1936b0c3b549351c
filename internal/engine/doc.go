// Package engine holds the stateful aggregator between the serial link
// and every consumer of discovery state.
//
// The engine consumes parsed device events and maintains deduplicated
// collections of access points (keyed by BSSID), stations (by MAC) and
// BLE devices (by MAC where the firmware reports one), a bounded
// activity feed, the link state, and session recording. In the other
// direction it translates high-level actions (scans, attacks, BLE spam)
// into Marauder CLI commands.
//
// Entries never expire on their own; they are replaced by newer
// sightings and cleared only by ClearResults.
package engine
