package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// decimalScale keeps two decimal places.
const decimalScale = 100

// exactLimit is the magnitude above which float64 spacing is already
// coarser than a hundredth, so scaling would only add error.
const exactLimit = (1 << 53) / decimalScale

// Round rounds v to two decimal places, halves away from zero.
// Negative zero is returned as zero so it never encodes as "-0".
func Round(v float64) float64 {
	if math.Abs(v) >= exactLimit {
		return v
	}
	r := math.Round(v*decimalScale) / decimalScale
	if r == 0 {
		return 0
	}
	return r
}

// Encode builds the JSON document for a set of readings.
//
// Keys keep the order of names. When a name repeats, the key keeps its first
// position and takes the last value. NaN and infinities encode as null.
//
// Parameters:
//   - names: Reading names, used as object keys
//   - values: Raw values, same length as names
//
// Returns:
//   - []byte: The encoded object, "{}" for no readings
//   - error: ErrLengthMismatch or ErrEmptyName
func Encode(names []string, values []float64) ([]byte, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("%w: %d names, %d values", ErrLengthMismatch, len(names), len(values))
	}

	// Resolve duplicates first so each key is written once.
	order := make([]string, 0, len(names))
	latest := make(map[string]float64, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: index %d", ErrEmptyName, i)
		}
		if _, seen := latest[name]; !seen {
			order = append(order, name)
		}
		latest[name] = values[i]
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		buf.Write(appendValue(nil, latest[name]))
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// writeKey writes name as a JSON string without HTML escaping.
func writeKey(buf *bytes.Buffer, name string) error {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(name); err != nil {
		return fmt.Errorf("encoding key %q: %w", name, err)
	}
	// Encode terminates every value with a newline.
	buf.Write(bytes.TrimSuffix(scratch.Bytes(), []byte{'\n'}))
	return nil
}

// appendValue appends the rounded value using the same number formatting as
// encoding/json.
func appendValue(dst []byte, v float64) []byte {
	r := Round(v)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return append(dst, "null"...)
	}

	format := byte('f')
	if math.Abs(r) >= 1e21 {
		format = 'e'
	}
	return strconv.AppendFloat(dst, r, format, -1, 64)
}
