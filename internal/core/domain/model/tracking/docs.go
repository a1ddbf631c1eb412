// Package tracking holds driver positions reported over REST or MQTT, or
// emitted by the simulation engine.
package tracking
