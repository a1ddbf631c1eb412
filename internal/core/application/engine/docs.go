// Package engine runs simulated drivers.
//
// Each (tenant, driver) key owns at most one task. A task geocodes the
// pickup and delivery addresses once, resolves a road route and then
// advances one route point per tick, emitting the position as the
// driver's location. Progress is written to the key-value store after
// every tick and the polyline once per start, so Restore can resume a run
// in another process without regressing its step.
//
// Start, Stop, Restore and completion of the same key are serialized by a
// per-key lock. A stopped task never emits again: halt waits for an
// in-flight tick and the tick loop checks the stopped flag under the same
// lock.
package engine
