package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

// WriteSignalStrength writes one RSSI reading to the signal_strength
// measurement.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - kind: Device class tag ("wifi_ap", "wifi_sta", "ble")
//   - id: Device identifier (BSSID, MAC, or BLE name)
//   - rssi: Signal strength in dBm
//
// Example:
//
//	client.WriteSignalStrength("wifi_ap", "AA:BB:CC:DD:EE:FF", -42)
func (c *Client) WriteSignalStrength(kind, id string, rssi int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"signal_strength",
		map[string]string{
			"kind": kind,
			"id":   id,
		},
		map[string]interface{}{
			"rssi": rssi,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// HandleEvent extracts signal telemetry from one device event. Events
// without an RSSI reading are ignored. Register it on the event bus.
func (c *Client) HandleEvent(event protocol.Event) {
	switch ev := event.(type) {
	case protocol.APFound:
		c.WriteSignalStrength("wifi_ap", ev.BSSID, ev.RSSI)
	case protocol.StationFound:
		c.WriteSignalStrength("wifi_sta", ev.MAC, ev.RSSI)
	case protocol.BLEDeviceFound:
		id := ev.MAC
		if id == "" {
			id = ev.Name
		}
		c.WriteSignalStrength("ble", id, ev.RSSI)
	}
}
