// Package telemetry builds the JSON documents a sensor node publishes.
//
// A document is a flat object mapping sensor names to values rounded to two
// decimal places:
//
//	{"temperature":21.24,"humidity":55}
//
// Names and values arrive as parallel slices. Slices of different length are
// rejected rather than truncated, so a dropped reading never shifts the
// remaining values onto the wrong names.
package telemetry
