package mqtt

import "fmt"

// Topic prefixes for the Marauder bridge.
//
// All topics live under a single flat prefix so other services can
// subscribe with marauder/# and see everything the bridge emits.
const (
	// TopicPrefix is the base for all bridge topics.
	TopicPrefix = "marauder"
)

// Topics provides builders for bridge MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// Event returns the topic for a parsed device event.
//
// Example: marauder/event/APFound
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, eventType)
}

// Status returns the bridge status topic. Retained, also used for the
// Last Will so subscribers see crashes.
//
// Example: marauder/status
func (Topics) Status() string {
	return fmt.Sprintf("%s/status", TopicPrefix)
}

// Raw returns the topic for raw serial lines.
//
// Example: marauder/raw
func (Topics) Raw() string {
	return fmt.Sprintf("%s/raw", TopicPrefix)
}

// AllEvents returns a pattern matching every parsed event.
//
// Pattern: marauder/event/+
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/event/+", TopicPrefix)
}
