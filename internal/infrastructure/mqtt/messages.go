package mqtt

import (
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// maxLoggedPayload caps how much of an inbound payload is logged.
const maxLoggedPayload = 512

// handleMessage is the default handler for messages the broker delivers on
// this session. The node subscribes to nothing, so anything arriving here is
// logged and otherwise ignored.
//
// Invoked on a paho goroutine; a panic must not take the node down.
func (c *Client) handleMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.getLogger().Error("MQTT message handler panic recovered",
				"topic", msg.Topic(),
				"panic", r,
			)
		}
	}()

	payload := msg.Payload()
	truncated := false
	if len(payload) > maxLoggedPayload {
		payload = payload[:maxLoggedPayload]
		truncated = true
	}

	c.getLogger().Info("message received",
		"topic", msg.Topic(),
		"payload", string(payload),
		"truncated", truncated,
	)
}
