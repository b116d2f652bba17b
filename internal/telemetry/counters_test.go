package telemetry

import (
	"testing"
	"time"
)

func TestCountersAccumulate(t *testing.T) {
	c := NewCounters()
	c.RecordBroadcast(100, 3)
	c.RecordBroadcast(50, 3)
	c.RecordTick(4 * time.Millisecond)
	c.RecordTick(6 * time.Millisecond)

	snap := c.Snapshot()
	if snap.BytesSent != 150 {
		t.Fatalf("BytesSent = %d, want 150", snap.BytesSent)
	}
	if snap.EntitiesSent != 6 {
		t.Fatalf("EntitiesSent = %d, want 6", snap.EntitiesSent)
	}
	if snap.Broadcasts != 2 {
		t.Fatalf("Broadcasts = %d, want 2", snap.Broadcasts)
	}
	if snap.Ticks != 2 {
		t.Fatalf("Ticks = %d, want 2", snap.Ticks)
	}
	if snap.TickDurationMillis != 6 {
		t.Fatalf("TickDurationMillis = %d, want the most recent value 6", snap.TickDurationMillis)
	}
}

func TestCountersIgnoreNegativeInput(t *testing.T) {
	c := NewCounters()
	c.RecordBroadcast(-10, -1)
	snap := c.Snapshot()
	if snap.BytesSent != 0 || snap.EntitiesSent != 0 {
		t.Fatalf("negative input counted: %+v", snap)
	}
}

func TestNilCountersAreSafe(t *testing.T) {
	var c *Counters
	c.RecordBroadcast(1, 1)
	c.RecordTick(time.Millisecond)
	if snap := c.Snapshot(); snap != (Snapshot{}) {
		t.Fatalf("nil snapshot = %+v, want zero", snap)
	}
}
