// Package telemetry holds the process-wide atomic counters surfaced on the
// diagnostics endpoint. Counters are shared by every match loop, so all
// access is atomic.
package telemetry

import (
	"sync/atomic"
	"time"
)

// Counters aggregates cheap hot-path measurements.
type Counters struct {
	bytesSent          atomic.Uint64
	entitiesSent       atomic.Uint64
	broadcasts         atomic.Uint64
	ticks              atomic.Uint64
	tickDurationMillis atomic.Int64
}

// Snapshot is the JSON shape served by /diagnostics.
type Snapshot struct {
	BytesSent          uint64 `json:"bytesSent"`
	EntitiesSent       uint64 `json:"entitiesSent"`
	Broadcasts         uint64 `json:"broadcasts"`
	Ticks              uint64 `json:"ticks"`
	TickDurationMillis int64  `json:"tickDurationMillis"`
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{}
}

// RecordBroadcast accumulates one outbound broadcast.
func (c *Counters) RecordBroadcast(bytes, entities int) {
	if c == nil {
		return
	}
	if bytes < 0 {
		bytes = 0
	}
	if entities < 0 {
		entities = 0
	}
	c.bytesSent.Add(uint64(bytes))
	c.entitiesSent.Add(uint64(entities))
	c.broadcasts.Add(1)
}

// RecordTick stores the most recent tick duration.
func (c *Counters) RecordTick(d time.Duration) {
	if c == nil {
		return
	}
	c.ticks.Add(1)
	c.tickDurationMillis.Store(d.Milliseconds())
}

// Snapshot copies the current values.
func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		BytesSent:          c.bytesSent.Load(),
		EntitiesSent:       c.entitiesSent.Load(),
		Broadcasts:         c.broadcasts.Load(),
		Ticks:              c.ticks.Load(),
		TickDurationMillis: c.tickDurationMillis.Load(),
	}
}
