package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/config"
)

// Client is the node's connection to one broker.
//
// It owns the broker address, credentials, publish topic and the underlying
// paho client. It is created disconnected by New, moved to connected only by
// Connect, and released by Close.
//
// Thread Safety:
//   - All methods are safe for concurrent use, although the node drives the
//     client from a single goroutine. Paho delivers callbacks on its own
//     goroutines, hence the locking.
type Client struct {
	client   pahomqtt.Client
	options  *pahomqtt.ClientOptions
	cfg      config.MQTTConfig
	clientID string

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex

	// wait pauses between connect attempts.
	wait func(ctx context.Context, d time.Duration) error
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// nopLogger is used until SetLogger is called.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// New creates a disconnected client for the configured broker.
//
// It validates the publish topic and QoS, fills unset retry settings with
// the defaults (5 attempts, 2s apart) and builds the paho options. No network
// traffic happens until Connect.
//
// Parameters:
//   - cfg: MQTT configuration from sensornode.yaml
//
// Returns:
//   - *Client: Client ready for Connect
//   - error: ErrInvalidTopic or ErrInvalidQoS
func New(cfg config.MQTTConfig) (*Client, error) {
	if err := validateTopic(cfg.Topic); err != nil {
		return nil, err
	}
	if cfg.QoS < 0 || cfg.QoS > maxQoS {
		return nil, ErrInvalidQoS
	}

	cfg = withDefaults(cfg)

	clientID := cfg.Broker.ClientID
	if clientID == "" {
		clientID = generateClientID()
	}

	opts := buildClientOptions(cfg, clientID)

	c := &Client{
		cfg:      cfg,
		options:  opts,
		clientID: clientID,
		logger:   nopLogger{},
		wait:     sleepContext,
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})
	opts.SetDefaultPublishHandler(c.handleMessage)

	c.client = pahomqtt.NewClient(opts)

	return c, nil
}

// Connect opens a session with the broker, retrying a bounded number of times.
//
// The loop makes at most cfg.Retry.MaxAttempts attempts and waits
// cfg.Retry.Delay between two failed attempts. It returns as soon as one
// attempt succeeds. There is no backoff and no wait after the last failure.
// An already connected client returns nil without a new attempt.
//
// Parameters:
//   - ctx: Cancels the wait between attempts
//
// Returns:
//   - error: nil once connected, or ErrConnectionFailed wrapping the last
//     attempt's error (or the context error if cancelled)
func (c *Client) Connect(ctx context.Context) error {
	if c.IsConnected() {
		return nil
	}

	log := c.getLogger()
	maxAttempts := c.cfg.Retry.MaxAttempts

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
		}

		err := c.connectOnce()
		if err == nil {
			c.setConnected(true)
			log.Info("connected to MQTT broker",
				"broker", c.cfg.BrokerAddress(),
				"client_id", c.clientID,
				"attempt", attempt,
			)
			return nil
		}

		lastErr = err
		log.Warn("MQTT connection failed",
			"broker", c.cfg.BrokerAddress(),
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err,
		)

		if attempt == maxAttempts {
			break
		}
		if err := c.wait(ctx, c.cfg.Retry.Delay); err != nil {
			return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrConnectionFailed, maxAttempts, lastErr)
}

// connectOnce makes a single connect attempt bounded by defaultConnectTimeout.
func (c *Client) connectOnce() error {
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("%w: connect after %v", ErrTimeout, defaultConnectTimeout)
	}
	return token.Error()
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// handleConnect is called by paho when the connection is established.
func (c *Client) handleConnect() {
	c.setConnected(true)
}

// handleDisconnect is called by paho when the connection is lost.
func (c *Client) handleDisconnect(err error) {
	c.setConnected(false)
	c.getLogger().Warn("MQTT connection lost",
		"broker", c.cfg.BrokerAddress(),
		"error", err,
	)
}

func (c *Client) setConnected(connected bool) {
	c.connMu.Lock()
	c.connected = connected
	c.connMu.Unlock()
}

// Close disconnects from the broker.
//
// Safe to call on a client that never connected.
//
// Returns:
//   - error: Always nil; kept for symmetry with other closers
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		c.client.Disconnect(defaultDisconnectQuiesce)
	}

	c.setConnected(false)

	return nil
}

// HealthCheck reports whether the connection is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	if c.client == nil {
		return false
	}
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// Topic returns the topic readings are published to.
func (c *Client) Topic() string {
	return c.cfg.Topic
}

// ClientID returns the configured or generated client identifier.
func (c *Client) ClientID() string {
	return c.clientID
}

// SetLogger sets a logger for connection and publish events.
// If not set, events are silently dropped.
func (c *Client) SetLogger(logger Logger) {
	if logger == nil {
		logger = nopLogger{}
	}
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger.
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}
