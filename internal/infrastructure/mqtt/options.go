package mqtt

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout bounds a single connect attempt.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultKeepAlive matches the 15s keepalive of small embedded clients.
	defaultKeepAlive = 15 * time.Second

	// defaultMaxAttempts and defaultRetryDelay apply when the retry section is unset.
	defaultMaxAttempts = 5
	defaultRetryDelay  = 2 * time.Second

	// defaultMaxPayload mirrors the 256-byte packet buffer of embedded clients.
	defaultMaxPayload = 256

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// protocolVersion pins MQTT 3.1.1 so a refused connect is never retried as 3.1.
	protocolVersion = 4

	// clientIDPrefix prefixes generated client identifiers.
	clientIDPrefix = "sensornode-"

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// withDefaults fills unset retry and payload settings.
func withDefaults(cfg config.MQTTConfig) config.MQTTConfig {
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Retry.Delay < 0 {
		cfg.Retry.Delay = defaultRetryDelay
	}
	if cfg.MaxPayload < 1 {
		cfg.MaxPayload = defaultMaxPayload
	}
	return cfg
}

// validateTopic checks the publish topic. Publishing to a wildcard is not
// allowed by the protocol.
func validateTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: topic cannot be empty", ErrInvalidTopic)
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: %q contains wildcards", ErrInvalidTopic, topic)
	}
	return nil
}

// generateClientID returns a unique client identifier. Brokers drop the
// older session when two nodes share an id.
func generateClientID() string {
	return clientIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// buildClientOptions creates paho MQTT options from node config.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID for identification
//   - Authentication credentials (if provided)
//   - Clean session, keepalive and per-attempt connect timeout
//   - TLS configuration (if enabled)
//
// Paho's own reconnect and connect-retry are disabled: the bounded loop in
// Connect is the only retry policy.
func buildClientOptions(cfg config.MQTTConfig, clientID string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	opts.SetClientID(clientID)
	opts.SetProtocolVersion(protocolVersion)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}
