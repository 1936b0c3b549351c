package influxdb

import (
	"context"
	"errors"
	"testing"

	"github.com/jlucaswrk/marauder-tui/internal/infrastructure/config"
	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := &Client{}

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestWrites_DisconnectedAreNoOps(t *testing.T) {
	// A zero-value client is never connected; every write path must
	// bail before touching the nil write API.
	c := &Client{}

	c.WriteSignalStrength("wifi_ap", "AA:BB:CC:DD:EE:FF", -42)
	c.WritePoint("signal_strength", map[string]string{"kind": "ble"}, map[string]interface{}{"rssi": -70})
	c.HandleEvent(protocol.APFound{BSSID: "AA:BB:CC:DD:EE:FF", RSSI: -42})
	c.HandleEvent(protocol.StationFound{MAC: "11:22:33:44:55:66", RSSI: -50})
	c.HandleEvent(protocol.BLEDeviceFound{Name: "[LG] TV", RSSI: -80})
	c.HandleEvent(protocol.RawLine{Text: "noise"})
	c.Flush()

	if err := c.Close(); err != nil {
		t.Errorf("Close() on zero-value client error = %v", err)
	}
}
