package mqtt

import (
	"fmt"

	"github.com/nerrad567/gray-logic-sensor/internal/telemetry"
)

// PublishReadings publishes one document of sensor readings to the topic.
//
// The connection is checked first; a disconnected client returns
// ErrNotConnected without encoding or sending anything. names and values are
// parallel slices and must have the same length. Each value is rounded to two
// decimal places (see telemetry.Encode). Failed publishes are not retried.
//
// Parameters:
//   - names: Reading names (e.g. "temperature", "humidity")
//   - values: Raw values, one per name
//
// Returns:
//   - error: nil once the broker acknowledged the publish, otherwise
//     ErrNotConnected, telemetry.ErrLengthMismatch, telemetry.ErrEmptyName,
//     ErrPayloadTooLarge or ErrPublishFailed
//
// Example:
//
//	err := client.PublishReadings(
//	    []string{"temperature", "humidity"},
//	    []float64{21.236, 55.004},
//	) // publishes {"temperature":21.24,"humidity":55}
func (c *Client) PublishReadings(names []string, values []float64) error {
	log := c.getLogger()

	if !c.IsConnected() {
		log.Warn("MQTT client not connected, readings dropped", "readings", len(names))
		return ErrNotConnected
	}

	payload, err := telemetry.Encode(names, values)
	if err != nil {
		return fmt.Errorf("encoding readings: %w", err)
	}

	log.Debug("publishing readings", "topic", c.cfg.Topic, "payload", string(payload))

	if err := c.Publish(payload); err != nil {
		log.Warn("publish failed", "topic", c.cfg.Topic, "error", err)
		return err
	}

	log.Debug("message published", "topic", c.cfg.Topic, "bytes", len(payload))
	return nil
}

// Publish sends a pre-built payload to the configured topic.
//
// The configured QoS is passed through unchanged and messages are never
// retained.
//
// Returns:
//   - error: nil on acknowledgment, or ErrNotConnected, ErrPayloadTooLarge,
//     ErrPublishFailed
func (c *Client) Publish(payload []byte) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if len(payload) > c.cfg.MaxPayload {
		return fmt.Errorf("%w: %d bytes exceeds maximum %d", ErrPayloadTooLarge, len(payload), c.cfg.MaxPayload)
	}

	// #nosec G115 -- QoS validated to 0..2 in New
	token := c.client.Publish(c.cfg.Topic, byte(c.cfg.QoS), false, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
