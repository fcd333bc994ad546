// Package mqtt connects a sensor node to an MQTT broker and publishes its
// readings.
//
// This package manages:
//   - A single owned connection to one broker (Client)
//   - A bounded, blocking connect loop: 5 attempts, 2 seconds apart
//   - Publishing readings as a flat JSON object to one fixed topic
//   - Logging of messages the broker delivers on the session
//
// # Connection Model
//
// Client is created disconnected. Connect is the only path to the connected
// state and blocks the caller for at most MaxAttempts × (connect timeout +
// Delay). Paho's automatic reconnect is disabled; after a lost connection
// the caller runs Connect again.
//
//	Node ──Connect──▶ Broker
//	     ──PublishReadings(names, values)──▶ HA/greenhouse
//
// # Security Considerations
//
//   - Set cfg.Broker.TLS=true for brokers outside the local network
//   - Credentials are static; the broker's ACL decides what the node may publish
//   - The password is never logged
//
// # Usage
//
//	client, err := mqtt.New(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	if err := client.Connect(ctx); err != nil {
//	    return err // ErrConnectionFailed after 5 attempts
//	}
//
//	err = client.PublishReadings(
//	    []string{"temperature", "humidity"},
//	    []float64{21.236, 55.004},
//	)
package mqtt
