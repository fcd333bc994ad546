package sensor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/config"
)

// rawVar is the variable a transform expression reads the raw value from.
const rawVar = "raw"

// Logger defines the logging interface used by the sensor set.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Source produces one raw value per call.
type Source interface {
	Read(ctx context.Context) (float64, error)
}

// fileSource parses a number from a file on every read.
type fileSource struct {
	path string
}

func (s fileSource) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", s.path, err)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return v, nil
}

// staticSource always returns the same value.
type staticSource struct {
	value float64
}

func (s staticSource) Read(context.Context) (float64, error) {
	return s.value, nil
}

// Sensor is one named reading: a source plus an optional transform.
type Sensor struct {
	name      string
	source    Source
	transform *vm.Program
}

// New builds a sensor from its configuration, compiling the transform if set.
func New(cfg config.SensorConfig) (*Sensor, error) {
	var src Source
	switch cfg.Source {
	case config.SensorSourceFile:
		src = fileSource{path: cfg.Path}
	case config.SensorSourceStatic:
		src = staticSource{value: cfg.Value}
	default:
		return nil, fmt.Errorf("%w: %q for sensor %q", ErrUnknownSource, cfg.Source, cfg.Name)
	}

	s := &Sensor{name: cfg.Name, source: src}

	if cfg.Transform != "" {
		program, err := expr.Compile(cfg.Transform,
			expr.Env(map[string]any{rawVar: 0.0}),
			expr.AsFloat64(),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: sensor %q: %w", ErrInvalidTransform, cfg.Name, err)
		}
		s.transform = program
	}

	return s, nil
}

// NewWithSource builds a sensor around an arbitrary source.
func NewWithSource(name string, src Source) *Sensor {
	return &Sensor{name: name, source: src}
}

// Name returns the key the reading is published under.
func (s *Sensor) Name() string {
	return s.name
}

// Read returns the current reading with the transform applied.
func (s *Sensor) Read(ctx context.Context) (float64, error) {
	raw, err := s.source.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: sensor %q: %w", ErrReadFailed, s.name, err)
	}

	if s.transform == nil {
		return raw, nil
	}

	out, err := expr.Run(s.transform, map[string]any{rawVar: raw})
	if err != nil {
		return 0, fmt.Errorf("%w: sensor %q: transform: %w", ErrReadFailed, s.name, err)
	}

	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: sensor %q: transform returned %T", ErrReadFailed, s.name, out)
	}
	return v, nil
}

// Set is the ordered collection of sensors sampled on every tick.
type Set struct {
	sensors []*Sensor

	logger   Logger
	loggerMu sync.RWMutex
}

// NewSet builds every configured sensor. Names must be unique.
func NewSet(cfgs []config.SensorConfig) (*Set, error) {
	sensors := make([]*Sensor, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := New(c)
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, s)
	}
	return NewSetFrom(sensors...)
}

// NewSetFrom groups already built sensors.
func NewSetFrom(sensors ...*Sensor) (*Set, error) {
	seen := make(map[string]struct{}, len(sensors))
	for _, s := range sensors {
		if _, ok := seen[s.name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, s.name)
		}
		seen[s.name] = struct{}{}
	}
	return &Set{sensors: sensors, logger: nopLogger{}}, nil
}

// SetLogger sets the logger for the set. Nil restores the no-op logger.
func (s *Set) SetLogger(logger Logger) {
	if logger == nil {
		logger = nopLogger{}
	}
	s.loggerMu.Lock()
	s.logger = logger
	s.loggerMu.Unlock()
}

func (s *Set) getLogger() Logger {
	s.loggerMu.RLock()
	defer s.loggerMu.RUnlock()
	return s.logger
}

// Len returns the number of sensors in the set.
func (s *Set) Len() int {
	return len(s.sensors)
}

// Sample reads every sensor in configuration order. A sensor that fails is
// logged and left out, so names and values always have equal length.
func (s *Set) Sample(ctx context.Context) (names []string, values []float64) {
	names = make([]string, 0, len(s.sensors))
	values = make([]float64, 0, len(s.sensors))

	for _, sn := range s.sensors {
		v, err := sn.Read(ctx)
		if err != nil {
			s.getLogger().Warn("sensor read failed",
				"sensor", sn.name,
				"error", err,
			)
			continue
		}
		names = append(names, sn.name)
		values = append(values, v)
	}

	s.getLogger().Debug("sensors sampled",
		"read", len(names),
		"configured", len(s.sensors),
	)
	return names, values
}
