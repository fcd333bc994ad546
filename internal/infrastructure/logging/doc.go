// Package logging provides structured logging for the sensor node.
//
// This package wraps Go's standard log/slog package so every component
// logs with the same handler, level and default fields.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for bench debugging over a serial console
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("publishing readings", "topic", cfg.MQTT.Topic)
//	logger.Error("failed to connect", "error", err)
//
// # Security
//
// Never log broker passwords. The mqtt package logs the username only.
package logging
