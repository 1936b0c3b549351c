package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20 // 1MB

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "marauder/event/APFound")
//   - payload: The message payload (typically JSON, max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// QoS Levels:
//   - 0: At most once (fire and forget)
//   - 1: At least once (guaranteed delivery, may duplicate)
//   - 2: Exactly once (guaranteed, no duplicates, higher overhead)
//
// Retained Messages:
//   - When true, broker stores the last message for each topic
//   - New subscribers immediately receive the retained message
//   - Use for status topics, not event streams
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishEvent publishes a parsed device event to marauder/event/<type>.
//
// The payload is the event's fields wrapped in an envelope carrying the
// event type and a capture timestamp, matching the session record format.
func (c *Client) PublishEvent(event protocol.Event) error {
	payload, err := buildEventPayload(event, time.Now())
	if err != nil {
		return err
	}
	return c.Publish(Topics{}.Event(event.EventType()), payload, byte(c.cfg.QoS), false)
}

// buildEventPayload flattens an event into its JSON fields and adds the
// timestamp / event_type envelope.
func buildEventPayload(event protocol.Event, ts time.Time) ([]byte, error) {
	fields, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding event: %w", ErrPublishFailed, err)
	}

	record := make(map[string]any)
	if err := json.Unmarshal(fields, &record); err != nil {
		return nil, fmt.Errorf("%w: flattening event: %w", ErrPublishFailed, err)
	}
	record["timestamp"] = ts.UTC().Format(time.RFC3339)
	record["event_type"] = event.EventType()

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding payload: %w", ErrPublishFailed, err)
	}
	return payload, nil
}

// HandleEvent republishes one device event, dropping raw lines (they go
// to marauder/raw at QoS 0 instead to keep the event stream clean).
// Register it on the event bus; failures are logged, never propagated.
func (c *Client) HandleEvent(event protocol.Event) {
	var err error
	if raw, ok := event.(protocol.RawLine); ok {
		err = c.Publish(Topics{}.Raw(), []byte(raw.Text), 0, false)
	} else {
		err = c.PublishEvent(event)
	}

	if err != nil {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("MQTT republish failed", "event", event.EventType(), "error", err)
		}
	}
}
