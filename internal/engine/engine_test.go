package engine

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

// fakeLink records sent commands and can be forced offline.
type fakeLink struct {
	mu      sync.Mutex
	sent    []string
	offline bool
}

func (l *fakeLink) Send(command string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.offline {
		return errors.New("not connected")
	}
	l.sent = append(l.sent, command)
	return nil
}

func (l *fakeLink) commands() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.sent))
	copy(out, l.sent)
	return out
}

// newTestEngine builds an engine with a temp sessions dir.
func newTestEngine(t *testing.T) (*Engine, *fakeLink) {
	t.Helper()
	link := &fakeLink{}
	e := New(link, Config{SessionsDir: t.TempDir()})
	return e, link
}

// lastActivity returns the most recent activity message.
func lastActivity(t *testing.T, e *Engine) string {
	t.Helper()
	activity := e.Activity()
	if len(activity) == 0 {
		t.Fatal("activity log is empty")
	}
	return activity[len(activity)-1].Message
}

// TestDedupLastWriteWins verifies collections hold one entry per
// identity key and that a later event replaces the stored value.
func TestDedupLastWriteWins(t *testing.T) {
	e, _ := newTestEngine(t)

	first := protocol.APFound{SSID: "Net", BSSID: "AA:BB:CC:DD:EE:FF", Channel: 6, RSSI: -42}
	second := protocol.APFound{SSID: "Net", BSSID: "AA:BB:CC:DD:EE:FF", Channel: 11, RSSI: -51}

	e.HandleEvent(first)
	e.HandleEvent(second)
	e.HandleEvent(protocol.APFound{SSID: "Other", BSSID: "11:22:33:44:55:66", Channel: 1, RSSI: -70})

	aps := e.APs()
	if len(aps) != 2 {
		t.Fatalf("AP count = %d, want 2", len(aps))
	}
	if aps[0] != second {
		t.Errorf("stored AP = %+v, want replacement %+v", aps[0], second)
	}
}

// TestBLEDedupOnlyWithMAC verifies name-only BLE sightings are
// append-only while addressed ones dedup.
func TestBLEDedupOnlyWithMAC(t *testing.T) {
	e, _ := newTestEngine(t)

	e.HandleEvent(protocol.BLEDeviceFound{Name: "[LG] TV", RSSI: -80})
	e.HandleEvent(protocol.BLEDeviceFound{Name: "[LG] TV", RSSI: -81})
	e.HandleEvent(protocol.BLEDeviceFound{MAC: "63:C6:BB:7B:D1:1C", RSSI: -73})
	e.HandleEvent(protocol.BLEDeviceFound{MAC: "63:C6:BB:7B:D1:1C", RSSI: -60})

	devices := e.BLEDevices()
	if len(devices) != 3 {
		t.Fatalf("BLE count = %d, want 3 (two unkeyed + one deduped)", len(devices))
	}
	if devices[2].RSSI != -60 {
		t.Errorf("deduped BLE RSSI = %d, want -60", devices[2].RSSI)
	}
}

// TestActivityLogBounded verifies the 200-entry bound and oldest-first
// eviction.
func TestActivityLogBounded(t *testing.T) {
	e, _ := newTestEngine(t)

	for i := 0; i < DefaultActivityLogSize+1; i++ {
		e.HandleEvent(protocol.APFound{
			SSID:  fmt.Sprintf("net-%d", i),
			BSSID: fmt.Sprintf("AA:BB:CC:DD:%02X:%02X", i/256, i%256),
			RSSI:  -40,
		})
	}

	activity := e.Activity()
	if len(activity) != DefaultActivityLogSize {
		t.Fatalf("activity length = %d, want %d", len(activity), DefaultActivityLogSize)
	}
	if strings.Contains(activity[0].Message, "net-0") {
		t.Error("oldest entry still present after overflow")
	}
	if !strings.Contains(activity[len(activity)-1].Message, fmt.Sprintf("net-%d", DefaultActivityLogSize)) {
		t.Error("newest entry missing")
	}
}

// TestScanLifecycleState verifies currentScan transitions.
func TestScanLifecycleState(t *testing.T) {
	e, link := newTestEngine(t)

	e.StartWifiScan()
	if got := link.commands(); len(got) != 1 || got[0] != "scanap" {
		t.Fatalf("commands = %v, want [scanap]", got)
	}
	if e.LinkState().CurrentScan != "wifi_ap" {
		t.Errorf("CurrentScan = %q, want wifi_ap (optimistic)", e.LinkState().CurrentScan)
	}

	// Device acknowledgment is advisory; it may rename the scan type.
	e.HandleEvent(protocol.ScanStarted{ScanType: protocol.ScanTypeAP})
	if e.LinkState().CurrentScan != protocol.ScanTypeAP {
		t.Errorf("CurrentScan = %q, want %q", e.LinkState().CurrentScan, protocol.ScanTypeAP)
	}

	e.HandleEvent(protocol.ScanStopped{})
	if e.LinkState().CurrentScan != "" {
		t.Errorf("CurrentScan = %q after stop, want empty", e.LinkState().CurrentScan)
	}
}

// TestDisconnectedClearsState verifies link-loss handling.
func TestDisconnectedClearsState(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetLinkUp("/dev/ttyUSB0", true)
	e.StartBleScan()

	e.HandleEvent(protocol.Disconnected{Reason: "unplugged"})

	state := e.LinkState()
	if state.Connected {
		t.Error("Connected = true after Disconnected event")
	}
	if state.CurrentScan != "" {
		t.Errorf("CurrentScan = %q, want empty", state.CurrentScan)
	}

	// The next data event marks the link live again.
	e.HandleEvent(protocol.APFound{SSID: "x", BSSID: "AA:BB:CC:DD:EE:01", RSSI: -40})
	if !e.LinkState().Connected {
		t.Error("Connected = false after post-reconnect discovery")
	}
}

// TestAttackDeauthValidation verifies the index range check.
func TestAttackDeauthValidation(t *testing.T) {
	e, link := newTestEngine(t)

	e.AttackDeauth(0)
	if got := link.commands(); len(got) != 0 {
		t.Fatalf("commands after invalid index = %v, want none", got)
	}
	if !strings.Contains(lastActivity(t, e), "Invalid AP index") {
		t.Errorf("activity = %q, want invalid-index entry", lastActivity(t, e))
	}

	e.HandleEvent(protocol.APFound{SSID: "Net", BSSID: "AA:BB:CC:DD:EE:FF", Channel: 6, RSSI: -42})
	e.AttackDeauth(0)

	got := link.commands()
	if len(got) != 2 || got[0] != "select -a 0" || got[1] != "attack -t deauth" {
		t.Fatalf("commands = %v, want [select -a 0, attack -t deauth]", got)
	}
	if e.LinkState().CurrentScan != "attack_deauth" {
		t.Errorf("CurrentScan = %q, want attack_deauth", e.LinkState().CurrentScan)
	}
}

// TestBleSpamValidation verifies the fixed target set is enforced
// locally, sending nothing and leaving scan state untouched.
func TestBleSpamValidation(t *testing.T) {
	e, link := newTestEngine(t)

	e.BleSpam("bogus")

	if got := link.commands(); len(got) != 0 {
		t.Fatalf("commands = %v, want none", got)
	}
	if e.LinkState().CurrentScan != "" {
		t.Errorf("CurrentScan = %q, want unchanged empty", e.LinkState().CurrentScan)
	}
	if !strings.Contains(lastActivity(t, e), "Invalid BLE spam target") {
		t.Errorf("activity = %q, want invalid-target entry", lastActivity(t, e))
	}

	e.BleSpam("apple")
	if got := link.commands(); len(got) != 1 || got[0] != "blespam -t apple" {
		t.Fatalf("commands = %v, want [blespam -t apple]", got)
	}
	if e.LinkState().CurrentScan != "ble_spam_apple" {
		t.Errorf("CurrentScan = %q, want ble_spam_apple", e.LinkState().CurrentScan)
	}
}

// TestSendFailureSurfacesInActivityLog verifies command failures never
// propagate to the caller.
func TestSendFailureSurfacesInActivityLog(t *testing.T) {
	e, link := newTestEngine(t)
	link.offline = true

	e.StartWifiScan()

	if !strings.Contains(lastActivity(t, e), "Command failed") {
		t.Errorf("activity = %q, want command-failed entry", lastActivity(t, e))
	}
	if e.LinkState().CurrentScan != "" {
		t.Errorf("CurrentScan = %q after failed send, want empty", e.LinkState().CurrentScan)
	}
}

// TestClearResults verifies the wipe operation.
func TestClearResults(t *testing.T) {
	e, _ := newTestEngine(t)

	e.HandleEvent(protocol.APFound{SSID: "x", BSSID: "AA:BB:CC:DD:EE:FF", RSSI: -40})
	e.HandleEvent(protocol.StationFound{MAC: "11:22:33:44:55:66", RSSI: -50, AssociatedBSSID: "AA:BB:CC:DD:EE:FF"})
	e.HandleEvent(protocol.BLEDeviceFound{MAC: "63:C6:BB:7B:D1:1C", RSSI: -73})

	e.ClearResults()

	if len(e.APs())+len(e.Stations())+len(e.BLEDevices()) != 0 {
		t.Error("collections not empty after ClearResults")
	}

	// Dedup indices were reset too: re-adding works from scratch.
	e.HandleEvent(protocol.APFound{SSID: "x", BSSID: "AA:BB:CC:DD:EE:FF", RSSI: -44})
	if len(e.APs()) != 1 {
		t.Errorf("AP count after re-add = %d, want 1", len(e.APs()))
	}
}

// TestObserverNotifications verifies (kind, payload) delivery and
// unsubscription.
func TestObserverNotifications(t *testing.T) {
	e, _ := newTestEngine(t)

	var mu sync.Mutex
	var kinds []string
	h := e.Subscribe(func(kind string, payload any) {
		mu.Lock()
		kinds = append(kinds, kind)
		mu.Unlock()
	})

	e.HandleEvent(protocol.APFound{SSID: "x", BSSID: "AA:BB:CC:DD:EE:FF", RSSI: -40})

	mu.Lock()
	if len(kinds) != 2 || kinds[0] != NotifyActivity || kinds[1] != NotifyUpdate {
		t.Errorf("kinds = %v, want [activity update]", kinds)
	}
	mu.Unlock()

	e.Unsubscribe(h)
	e.HandleEvent(protocol.ScanStopped{})

	mu.Lock()
	if len(kinds) != 2 {
		t.Errorf("notifications after Unsubscribe = %d, want 2", len(kinds))
	}
	mu.Unlock()
}

// TestSessionRecordingViaEngine verifies events flow into the recorder
// exactly while recording is active.
func TestSessionRecordingViaEngine(t *testing.T) {
	e, _ := newTestEngine(t)

	e.HandleEvent(protocol.RawLine{Text: "before"})

	path, err := e.StartSession()
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if !e.IsRecording() {
		t.Fatal("IsRecording() = false after StartSession")
	}

	e.HandleEvent(protocol.APFound{SSID: "x", BSSID: "AA:BB:CC:DD:EE:FF", RSSI: -40})
	e.StopSession()
	e.HandleEvent(protocol.RawLine{Text: "after"})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading session: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("recorded lines = %d, want 1", len(lines))
	}
	if !strings.Contains(lines[0], `"event_type":"APFound"`) {
		t.Errorf("record = %q, want APFound", lines[0])
	}
}
