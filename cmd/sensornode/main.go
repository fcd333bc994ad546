// Gray Logic Sensor Node
//
// This is the main entry point for a Gray Logic sensor node. The node samples
// its configured sensors on a fixed interval and publishes the readings as one
// JSON document to a single MQTT topic, for example:
//
//	HA/greenhouse  {"temperature":21.24,"humidity":55}
//
// The node owns exactly one broker connection and one publisher goroutine.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-sensor/internal/sensor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/sensornode.yaml"

func main() {
	// Cancel on Ctrl+C or SIGTERM so the loop can close the connection cleanly
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic sensor node",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version).With("node_id", cfg.Node.ID)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	sensors, err := sensor.NewSet(cfg.Sensors)
	if err != nil {
		return fmt.Errorf("building sensors: %w", err)
	}
	sensors.SetLogger(log)
	log.Info("sensors initialised", "count", sensors.Len())

	mqttClient, err := mqtt.New(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("creating MQTT client: %w", err)
	}
	mqttClient.SetLogger(log)
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	if err := mqttClient.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			log.Info("shutdown requested before MQTT connected")
			return nil
		}
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	log.Info("MQTT connected",
		"broker", cfg.MQTT.BrokerAddress(),
		"client_id", mqttClient.ClientID(),
		"topic", mqttClient.Topic(),
	)

	publishLoop(ctx, cfg.Node.PublishInterval, sensors, mqttClient, log)

	log.Info("Gray Logic sensor node stopped")
	return nil
}

// sampler yields the current readings.
type sampler interface {
	Sample(ctx context.Context) (names []string, values []float64)
}

// publisher is the part of the MQTT client the loop drives.
type publisher interface {
	Connect(ctx context.Context) error
	PublishReadings(names []string, values []float64) error
}

// publishLoop publishes one sample immediately and then one per interval
// until ctx is cancelled. A lost connection is re-established with the
// bounded connect routine before the next tick.
func publishLoop(ctx context.Context, interval time.Duration, s sampler, pub publisher, log *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		publishOnce(ctx, s, pub, log)

		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
		}
	}
}

func publishOnce(ctx context.Context, s sampler, pub publisher, log *logging.Logger) {
	names, values := s.Sample(ctx)

	err := pub.PublishReadings(names, values)
	switch {
	case err == nil:
		log.Debug("readings published", "count", len(names))
	case errors.Is(err, mqtt.ErrNotConnected):
		log.Warn("MQTT not connected, reconnecting")
		if connErr := pub.Connect(ctx); connErr != nil {
			if ctx.Err() == nil {
				log.Error("MQTT reconnect failed", "error", connErr)
			}
			return
		}
		log.Info("MQTT reconnected")
	default:
		log.Error("publishing readings failed", "error", err)
	}
}

// getConfigPath returns the configuration file path.
// Checks GRAYLOGIC_CONFIG environment variable first, falls back to default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
