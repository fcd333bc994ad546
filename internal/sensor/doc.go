// Package sensor reads raw values from configured sources and turns them into
// named readings for the MQTT publisher.
//
// Two sources exist:
//   - file: a numeric value read from a file on every sample, such as a
//     sysfs hwmon temp1_input or a 1-wire temperature node
//   - static: a fixed value for bench setups
//
// A sensor may carry a transform expression over the variable raw, for
// example "raw / 1000" for millidegree hwmon files. Transforms are compiled
// once when the sensor is built.
//
// # Usage
//
//	set, err := sensor.NewSet(cfg.Sensors)
//	if err != nil {
//	    return err
//	}
//	names, values := set.Sample(ctx)
//	err = client.PublishReadings(names, values)
package sensor
