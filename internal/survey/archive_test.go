package survey

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jlucaswrk/marauder-tui/internal/infrastructure/database"
	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

// newTestArchive opens a temp database with the survey schema applied.
func newTestArchive(t *testing.T) *Archive {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "survey.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensuring schema: %v", err)
	}

	return New(db)
}

func TestRecordAP_UpsertAccumulates(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	// Pin the clock so first/last seen are distinguishable.
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return base }

	ev := protocol.APFound{SSID: "Net", BSSID: "AA:BB:CC:DD:EE:FF", Channel: 6, RSSI: -42}
	if err := a.RecordAP(ctx, ev); err != nil {
		t.Fatalf("RecordAP() error = %v", err)
	}

	a.now = func() time.Time { return base.Add(time.Hour) }
	ev.RSSI = -55
	ev.Channel = 11
	if err := a.RecordAP(ctx, ev); err != nil {
		t.Fatalf("RecordAP() second error = %v", err)
	}

	sightings, err := a.APSightings(ctx, 10)
	if err != nil {
		t.Fatalf("APSightings() error = %v", err)
	}
	if len(sightings) != 1 {
		t.Fatalf("sighting count = %d, want 1 (upsert)", len(sightings))
	}

	s := sightings[0]
	if s.Key != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("Key = %q, want BSSID", s.Key)
	}
	if s.SightingCount != 2 {
		t.Errorf("SightingCount = %d, want 2", s.SightingCount)
	}
	if s.RSSI != -55 || s.Channel != 11 {
		t.Errorf("latest fields = rssi %d ch %d, want -55/11", s.RSSI, s.Channel)
	}
	if !s.FirstSeen.Equal(base) {
		t.Errorf("FirstSeen = %v, want %v", s.FirstSeen, base)
	}
	if !s.LastSeen.Equal(base.Add(time.Hour)) {
		t.Errorf("LastSeen = %v, want %v", s.LastSeen, base.Add(time.Hour))
	}
}

func TestRecordBLEDevice_Keying(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	// Name-only sightings fold by name; addressed ones by MAC.
	events := []protocol.BLEDeviceFound{
		{Name: "[LG] TV", RSSI: -80},
		{Name: "[LG] TV", RSSI: -81},
		{MAC: "63:C6:BB:7B:D1:1C", RSSI: -73},
		{},
	}
	for _, ev := range events {
		if err := a.RecordBLEDevice(ctx, ev); err != nil {
			t.Fatalf("RecordBLEDevice(%+v) error = %v", ev, err)
		}
	}

	sightings, err := a.BLESightings(ctx, 10)
	if err != nil {
		t.Fatalf("BLESightings() error = %v", err)
	}
	if len(sightings) != 2 {
		t.Fatalf("sighting count = %d, want 2 (empty sighting skipped)", len(sightings))
	}
}

func TestHandleEvent_RoutesDiscoveryOnly(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	a.HandleEvent(protocol.APFound{SSID: "Net", BSSID: "AA:BB:CC:DD:EE:FF", Channel: 6, RSSI: -42})
	a.HandleEvent(protocol.StationFound{MAC: "11:22:33:44:55:66", RSSI: -50, AssociatedBSSID: "AA:BB:CC:DD:EE:FF"})
	a.HandleEvent(protocol.ScanStarted{ScanType: protocol.ScanTypeWifi})
	a.HandleEvent(protocol.RawLine{Text: "noise"})

	aps, err := a.APSightings(ctx, 10)
	if err != nil {
		t.Fatalf("APSightings() error = %v", err)
	}
	stations, err := a.StationSightings(ctx, 10)
	if err != nil {
		t.Fatalf("StationSightings() error = %v", err)
	}
	if len(aps) != 1 || len(stations) != 1 {
		t.Errorf("archived counts = %d APs, %d stations, want 1 each", len(aps), len(stations))
	}
}

func TestSightings_OrderAndLimit(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		offset := time.Duration(i) * time.Minute
		a.now = func() time.Time { return base.Add(offset) }
		ev := protocol.StationFound{
			MAC:  []string{"AA:00:00:00:00:01", "AA:00:00:00:00:02", "AA:00:00:00:00:03"}[i],
			RSSI: -50 - i,
		}
		if err := a.RecordStation(ctx, ev); err != nil {
			t.Fatalf("RecordStation() error = %v", err)
		}
	}

	sightings, err := a.StationSightings(ctx, 2)
	if err != nil {
		t.Fatalf("StationSightings() error = %v", err)
	}
	if len(sightings) != 2 {
		t.Fatalf("limited count = %d, want 2", len(sightings))
	}
	if sightings[0].Key != "AA:00:00:00:00:03" {
		t.Errorf("first sighting = %q, want most recent", sightings[0].Key)
	}
}
