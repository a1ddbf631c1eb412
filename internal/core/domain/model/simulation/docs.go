// Package simulation describes a simulated driver run: its key, the
// progress record persisted every tick and the route polyline persisted
// once per start.
package simulation
