package protocol

import (
	"reflect"
	"testing"
)

// TestParseAPBothFieldOrders verifies both observed AP line layouts
// produce the same canonical event.
func TestParseAPBothFieldOrders(t *testing.T) {
	want := APFound{SSID: "TestNet", BSSID: "AA:BB:CC:DD:EE:FF", Channel: 6, RSSI: -42}

	tests := []struct {
		name string
		line string
	}{
		{"bssid first", "-42 Ch: 6 BSSID: aa:bb:cc:dd:ee:ff ESSID: TestNet"},
		{"essid first", "-42 ESSID: TestNet Ch: 6 BSSID: aa:bb:cc:dd:ee:ff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.line)
			ap, ok := got.(APFound)
			if !ok {
				t.Fatalf("Parse(%q) = %T, want APFound", tt.line, got)
			}
			if ap != want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.line, ap, want)
			}
		})
	}
}

// TestParseAPHiddenSSID verifies an empty ESSID field still parses.
func TestParseAPHiddenSSID(t *testing.T) {
	got := Parse("-67 ESSID:  Ch: 11 BSSID: 11:22:33:44:55:66")
	ap, ok := got.(APFound)
	if !ok {
		t.Fatalf("Parse() = %T, want APFound", got)
	}
	if ap.SSID != "" {
		t.Errorf("SSID = %q, want empty", ap.SSID)
	}
	if ap.Channel != 11 {
		t.Errorf("Channel = %d, want 11", ap.Channel)
	}
}

// TestParseStation verifies station lines and MAC canonicalisation.
func TestParseStation(t *testing.T) {
	got := Parse("-55 Station: aa:bb:cc:dd:ee:ff Associated: 11:22:33:44:55:66")
	want := StationFound{
		RSSI:            -55,
		MAC:             "AA:BB:CC:DD:EE:FF",
		AssociatedBSSID: "11:22:33:44:55:66",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

// TestParseBLE verifies both BLE line forms.
func TestParseBLE(t *testing.T) {
	tests := []struct {
		name string
		line string
		want BLEDeviceFound
	}{
		{
			name: "vendor and model",
			line: "-80 Device: [LG] webOS TV UP7550PSF",
			want: BLEDeviceFound{RSSI: -80, Name: "[LG] webOS TV UP7550PSF"},
		},
		{
			name: "vendor only",
			line: "-71 Device: [Apple]",
			want: BLEDeviceFound{RSSI: -71, Name: "[Apple]"},
		},
		{
			name: "bare mac",
			line: "-73 Device: 63:c6:bb:7b:d1:1c",
			want: BLEDeviceFound{RSSI: -73, MAC: "63:C6:BB:7B:D1:1C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.line)
			ble, ok := got.(BLEDeviceFound)
			if !ok {
				t.Fatalf("Parse(%q) = %T, want BLEDeviceFound", tt.line, got)
			}
			if ble != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.line, ble, tt.want)
			}
		})
	}
}

// TestParseScanIndicators verifies start/stop phrase detection.
func TestParseScanIndicators(t *testing.T) {
	tests := []struct {
		line string
		want Event
	}{
		{"Starting WiFi scan now", ScanStarted{ScanType: ScanTypeWifi}},
		{"starting bluetooth scan", ScanStarted{ScanType: ScanTypeBluetooth}},
		{"Started AP Scan with filter", ScanStarted{ScanType: ScanTypeAP}},
		{"Shutting down BLE stack", ScanStopped{}},
		{"Stopping WiFi driver", ScanStopped{}},
		{"#stopscan", ScanStopped{}},
	}

	for _, tt := range tests {
		if got := Parse(tt.line); got != tt.want {
			t.Errorf("Parse(%q) = %#v, want %#v", tt.line, got, tt.want)
		}
	}
}

// TestParseFallthrough verifies unknown and ignored lines degrade safely.
func TestParseFallthrough(t *testing.T) {
	if got := Parse("ESP32 Marauder v0.13.7"); got != (RawLine{Text: "ESP32 Marauder v0.13.7"}) {
		t.Errorf("unknown line = %#v, want RawLine", got)
	}

	// Beacon detail lines are ignored at the protocol level: recorded as
	// raw text, never a discovery.
	if got := Parse("Beacon: aa:bb:cc:dd:ee:ff -92 TestNet"); got != (RawLine{Text: "Beacon: aa:bb:cc:dd:ee:ff -92 TestNet"}) {
		t.Errorf("beacon line = %#v, want RawLine", got)
	}

	if got := Parse("   \t  "); got != nil {
		t.Errorf("whitespace line = %#v, want nil", got)
	}
}

// TestStripPrompt verifies CR/LF and prompt-noise removal.
func TestStripPrompt(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"scanap\r\n", "scanap"},
		{"> -42 ESSID: X Ch: 1 BSSID: AA:BB:CC:DD:EE:FF", "-42 ESSID: X Ch: 1 BSSID: AA:BB:CC:DD:EE:FF"},
		{">> ready", "ready"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := StripPrompt(tt.in); got != tt.want {
			t.Errorf("StripPrompt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestValidBLESpamTarget verifies the fixed target set.
func TestValidBLESpamTarget(t *testing.T) {
	for _, target := range []string{"apple", "samsung", "google", "windows", "flipper", "all"} {
		if !ValidBLESpamTarget(target) {
			t.Errorf("ValidBLESpamTarget(%q) = false, want true", target)
		}
	}
	if ValidBLESpamTarget("bogus") {
		t.Error("ValidBLESpamTarget(\"bogus\") = true, want false")
	}
}
