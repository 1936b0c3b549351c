package protocol

import (
	"regexp"
	"strconv"
	"strings"
)

// Line patterns for Marauder text output.
//
// The AP line exists in two field orders because firmware versions differ:
// older builds print ESSID before the channel/BSSID pair, newer builds
// print it last. Both are accepted; any third ordering falls through to
// RawLine.
var (
	// -42 ESSID: MyNetwork Ch: 6 BSSID: AA:BB:CC:DD:EE:FF
	reAPEssidFirst = regexp.MustCompile(
		`^(-?\d+)\s+ESSID:\s*(.*?)\s+Ch:\s*(\d+)\s+BSSID:\s*` +
			`([0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2}){5})\s*$`)

	// -42 Ch: 6 BSSID: AA:BB:CC:DD:EE:FF ESSID: MyNetwork
	reAPBssidFirst = regexp.MustCompile(
		`^(-?\d+)\s+Ch:\s*(\d+)\s+BSSID:\s*` +
			`([0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2}){5})\s+ESSID:\s*(.*?)\s*$`)

	// -55 Station: AA:BB:CC:DD:EE:FF Associated: 11:22:33:44:55:66
	reStation = regexp.MustCompile(
		`^(-?\d+)\s+Station:\s*([0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2}){5})` +
			`\s+Associated:\s*([0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2}){5})\s*$`)

	// -80 Device: [LG] webOS TV UP7550PSF
	reBLENamed = regexp.MustCompile(`^(-?\d+)\s+Device:\s*\[(.+?)\]\s*(.*?)\s*$`)

	// -73 Device: 63:C6:BB:7B:D1:1C
	reBLEMac = regexp.MustCompile(
		`^(-?\d+)\s+Device:\s*([0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2}){5})\s*$`)

	reScanStartedWifi = regexp.MustCompile(`(?i)Starting WiFi scan`)
	reScanStartedBT   = regexp.MustCompile(`(?i)Starting Bluetooth scan`)
	reScanStartedAP   = regexp.MustCompile(`(?i)Started AP Scan`)

	reScanStopped = regexp.MustCompile(`(?i)(Shutting down BLE|Stopping WiFi|stopscan)`)

	// Beacon detail spam emitted during sniffs. Matched first so it is
	// recorded but never promoted to a discovery.
	reIgnored = regexp.MustCompile(`(?i)^beacon\b`)
)

// Parse turns one raw text line into an Event.
//
// Parse is total: it never fails. Patterns are tried in a fixed priority
// order because some are prefixes of others; an unrecognised line becomes
// RawLine. The only non-event input is a whitespace-only line, for which
// Parse returns nil (the caller records it in raw history and moves on).
//
// MAC addresses are canonicalised to uppercase in every variant.
func Parse(line string) Event {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	if reIgnored.MatchString(line) {
		return RawLine{Text: line}
	}

	if m := reAPEssidFirst.FindStringSubmatch(line); m != nil {
		return APFound{
			RSSI:    atoi(m[1]),
			SSID:    m[2],
			Channel: atoi(m[3]),
			BSSID:   strings.ToUpper(m[4]),
		}
	}
	if m := reAPBssidFirst.FindStringSubmatch(line); m != nil {
		return APFound{
			RSSI:    atoi(m[1]),
			Channel: atoi(m[2]),
			BSSID:   strings.ToUpper(m[3]),
			SSID:    m[4],
		}
	}

	if m := reStation.FindStringSubmatch(line); m != nil {
		return StationFound{
			RSSI:            atoi(m[1]),
			MAC:             strings.ToUpper(m[2]),
			AssociatedBSSID: strings.ToUpper(m[3]),
		}
	}

	// BLE bare-MAC must be tried before the named form would be reached,
	// but the named form requires a bracketed vendor tag so the two cannot
	// overlap; keep the original firmware's order anyway.
	if m := reBLENamed.FindStringSubmatch(line); m != nil {
		vendor := strings.TrimSpace(m[2])
		model := strings.TrimSpace(m[3])
		name := "[" + vendor + "]"
		if model != "" {
			name += " " + model
		}
		return BLEDeviceFound{RSSI: atoi(m[1]), Name: name}
	}
	if m := reBLEMac.FindStringSubmatch(line); m != nil {
		return BLEDeviceFound{RSSI: atoi(m[1]), MAC: strings.ToUpper(m[2])}
	}

	switch {
	case reScanStartedWifi.MatchString(line):
		return ScanStarted{ScanType: ScanTypeWifi}
	case reScanStartedBT.MatchString(line):
		return ScanStarted{ScanType: ScanTypeBluetooth}
	case reScanStartedAP.MatchString(line):
		return ScanStarted{ScanType: ScanTypeAP}
	case reScanStopped.MatchString(line):
		return ScanStopped{}
	}

	return RawLine{Text: line}
}

// StripPrompt removes trailing CR/LF and any leading interactive-prompt
// noise ("> " runs) the firmware echoes before real output.
func StripPrompt(line string) string {
	line = strings.TrimRight(line, "\r\n")
	for strings.HasPrefix(line, ">") {
		line = strings.TrimLeft(strings.TrimPrefix(line, ">"), " ")
	}
	return line
}

// atoi is strconv.Atoi for inputs already validated by a \d+ pattern.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
