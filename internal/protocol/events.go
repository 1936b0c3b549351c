package protocol

// Event is the closed set of things the Marauder firmware can tell us.
//
// Every parsed line becomes exactly one Event value. Events are immutable
// value types; consumers that want to keep one keep the value, never a
// pointer into shared state.
type Event interface {
	// EventType returns the variant tag used in session records and
	// published payloads (e.g. "APFound").
	EventType() string
}

// APFound is an access point discovered during an AP scan.
type APFound struct {
	SSID    string `json:"ssid"`
	BSSID   string `json:"bssid"`
	Channel int    `json:"channel"`
	RSSI    int    `json:"rssi"`
}

// EventType implements Event.
func (APFound) EventType() string { return "APFound" }

// StationFound is a client station discovered during a station scan.
type StationFound struct {
	MAC             string `json:"mac"`
	RSSI            int    `json:"rssi"`
	AssociatedBSSID string `json:"associated_bssid"`
}

// EventType implements Event.
func (StationFound) EventType() string { return "StationFound" }

// BLEDeviceFound is a Bluetooth LE device seen during a BLE sniff.
//
// The firmware reports either a vendor-tagged name with no address, or a
// bare address with no name, so one of Name/MAC is always empty.
type BLEDeviceFound struct {
	Name string `json:"name"`
	MAC  string `json:"mac"`
	RSSI int    `json:"rssi"`
}

// EventType implements Event.
func (BLEDeviceFound) EventType() string { return "BLEDeviceFound" }

// ScanStarted is emitted when the device acknowledges a scan command.
type ScanStarted struct {
	ScanType string `json:"scan_type"`
}

// EventType implements Event.
func (ScanStarted) EventType() string { return "ScanStarted" }

// ScanStopped is emitted when the device reports a scan has stopped.
type ScanStopped struct{}

// EventType implements Event.
func (ScanStopped) EventType() string { return "ScanStopped" }

// Disconnected is emitted by the link supervisor when the serial
// connection is lost. It is the only event not produced by the parser.
type Disconnected struct {
	Reason string `json:"reason"`
}

// EventType implements Event.
func (Disconnected) EventType() string { return "Disconnected" }

// RawLine is the catch-all for any line that matches no known pattern.
type RawLine struct {
	Text string `json:"text"`
}

// EventType implements Event.
func (RawLine) EventType() string { return "RawLine" }
