package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the sensor node.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Node    NodeConfig     `yaml:"node"`
	MQTT    MQTTConfig     `yaml:"mqtt"`
	Sensors []SensorConfig `yaml:"sensors"`
	Logging LoggingConfig  `yaml:"logging"`
}

// NodeConfig contains node identity and loop settings.
type NodeConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// PublishInterval is the time between two sensor samples.
	// Default: 10s
	PublishInterval time.Duration `yaml:"publish_interval"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`

	// Topic is the single topic readings are published to.
	Topic string `yaml:"topic"`
	QoS   int    `yaml:"qos"`

	Retry MQTTRetryConfig `yaml:"retry"`

	// MaxPayload bounds the size of a published document in bytes.
	MaxPayload int `yaml:"max_payload"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTRetryConfig controls the bounded connect loop.
type MQTTRetryConfig struct {
	// MaxAttempts is the number of connect attempts before giving up.
	// Default: 5
	MaxAttempts int `yaml:"max_attempts"`

	// Delay is the fixed wait between two failed attempts.
	// Default: 2s
	Delay time.Duration `yaml:"delay"`
}

// SensorConfig describes one reading source.
type SensorConfig struct {
	// Name is the key the reading is published under (e.g. "temperature").
	Name string `yaml:"name"`

	// Source is the reading source type: "file" or "static".
	Source string `yaml:"source"`

	// Path is the file holding the raw value (file source only).
	Path string `yaml:"path,omitempty"`

	// Value is the fixed raw value (static source only).
	Value float64 `yaml:"value,omitempty"`

	// Transform is an optional expression over `raw`, e.g. "raw / 1000".
	Transform string `yaml:"transform,omitempty"`
}

// Sensor source types.
const (
	SensorSourceFile   = "file"
	SensorSourceStatic = "static"
)

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLOGIC_SECTION_KEY
// For example: GRAYLOGIC_MQTT_HOST, GRAYLOGIC_MQTT_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with the node's defaults.
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			ID:              "sensornode-001",
			Name:            "Greenhouse",
			PublishInterval: 10 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			Topic: "HA/greenhouse",
			QoS:   0,
			Retry: MQTTRetryConfig{
				MaxAttempts: 5,
				Delay:       2 * time.Second,
			},
			MaxPayload: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYLOGIC_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("GRAYLOGIC_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GRAYLOGIC_MQTT_PORT: %w", err)
		}
		cfg.MQTT.Broker.Port = port
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.Broker.ClientID = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_TOPIC"); v != "" {
		cfg.MQTT.Topic = v
	}
	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Node.PublishInterval <= 0 {
		errs = append(errs, "node.publish_interval must be positive")
	}

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Topic == "" {
		errs = append(errs, "mqtt.topic is required")
	} else if strings.ContainsAny(c.MQTT.Topic, "+#") {
		errs = append(errs, "mqtt.topic must not contain wildcards")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Retry.MaxAttempts < 1 {
		errs = append(errs, "mqtt.retry.max_attempts must be at least 1")
	}
	if c.MQTT.Retry.Delay < 0 {
		errs = append(errs, "mqtt.retry.delay must not be negative")
	}
	if c.MQTT.MaxPayload < 1 {
		errs = append(errs, "mqtt.max_payload must be positive")
	}
	if c.MQTT.Auth.Password != "" && c.MQTT.Auth.Username == "" {
		errs = append(errs, "mqtt.auth.password set without mqtt.auth.username")
	}

	// Sensor validation
	seen := make(map[string]bool, len(c.Sensors))
	for i, s := range c.Sensors {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("sensors[%d].name is required", i))
			continue
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Sprintf("sensors[%d].name %q is duplicated", i, s.Name))
		}
		seen[s.Name] = true

		switch s.Source {
		case SensorSourceFile:
			if s.Path == "" {
				errs = append(errs, fmt.Sprintf("sensors[%d].path is required for file source", i))
			}
		case SensorSourceStatic:
		default:
			errs = append(errs, fmt.Sprintf("sensors[%d].source must be %q or %q", i, SensorSourceFile, SensorSourceStatic))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// BrokerAddress returns the broker as host:port for logging.
func (c MQTTConfig) BrokerAddress() string {
	return fmt.Sprintf("%s:%d", c.Broker.Host, c.Broker.Port)
}
