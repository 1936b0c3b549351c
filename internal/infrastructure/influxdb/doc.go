// Package influxdb records signal strength telemetry for the bridge.
//
// It wraps the official influxdb-client-go v2 library with the bridge's
// patterns for connection management, metric writing, and health
// monitoring.
//
// # Purpose
//
// Every discovery event carries an RSSI reading. Stored as a time
// series, those readings show how a device's signal moves over a survey
// walk, which the in-memory collections (latest value only) cannot.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	bus.Subscribe(client.HandleEvent)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking; batch errors surface via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb
