// Package mqtt republishes parsed device events to an MQTT broker.
//
// This package wraps paho.mqtt.golang to provide:
//   - Connection management with automatic reconnection
//   - Last Will and Testament for crash detection
//   - Event republishing to marauder/event/<type>
//   - Raw serial lines on marauder/raw
//   - Retained bridge status on marauder/status
//
// The bridge is publish-only: commands reach the device through the
// HTTP API, never through the broker.
//
// # Topic Structure
//
//	marauder/event/APFound       - parsed discovery events (JSON)
//	marauder/event/ScanStarted   - scan lifecycle events
//	marauder/raw                 - raw serial lines (QoS 0)
//	marauder/status              - retained online/offline status + LWT
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	bus.Subscribe(client.HandleEvent)
package mqtt
