// Package bus provides the in-process event fan-out between the serial
// link and its consumers (engine, session recorder, API stream, optional
// MQTT republisher).
//
// It is a plain publish/subscribe registry with handle-based
// unsubscription. Delivery happens on the publisher's goroutine; the bus
// makes no assumption about which context renders or persists an event.
package bus
