package rooms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"marble-soccer/server/internal/directory"
	"marble-soccer/server/internal/sim"
	"marble-soccer/server/internal/telemetry"
)

// recordingDirectory captures every listing call for inspection.
type recordingDirectory struct {
	mu         sync.Mutex
	registered []directory.Summary
	updated    []directory.Summary
	removed    []string
}

func (d *recordingDirectory) Register(_ context.Context, s directory.Summary) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.registered = append(d.registered, s)
	return nil
}

func (d *recordingDirectory) Update(_ context.Context, s directory.Summary) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updated = append(d.updated, s)
	return nil
}

func (d *recordingDirectory) Remove(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removed = append(d.removed, id)
	return nil
}

func (d *recordingDirectory) removedIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.removed...)
}

func (d *recordingDirectory) registerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.registered)
}

func newTestManager(dir directory.Directory) *Manager {
	loopCfg := sim.LoopConfig{TickInterval: time.Millisecond}
	return NewManager(sim.DefaultConfig(), loopCfg, dir, telemetry.NewCounters(), zerolog.Nop())
}

func shutdown(t *testing.T, m *Manager) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.Shutdown(ctx)
}

func TestGetOrCreateReturnsSameRoom(t *testing.T) {
	m := newTestManager(nil)
	defer shutdown(t, m)

	r1 := m.GetOrCreate("alpha")
	r2 := m.GetOrCreate("alpha")
	if r1 != r2 {
		t.Fatal("same id should return the same room")
	}
	if r1.ID != "alpha" {
		t.Fatalf("room id = %s, want alpha", r1.ID)
	}
}

func TestGetOrCreateGeneratesID(t *testing.T) {
	m := newTestManager(nil)
	defer shutdown(t, m)

	r1 := m.GetOrCreate("")
	r2 := m.GetOrCreate("")
	if r1.ID == "" || r2.ID == "" {
		t.Fatal("generated ids must not be empty")
	}
	if r1.ID == r2.ID {
		t.Fatalf("two anonymous rooms share id %s", r1.ID)
	}
}

func TestListReflectsLiveRooms(t *testing.T) {
	m := newTestManager(nil)
	defer shutdown(t, m)

	m.GetOrCreate("a")
	m.GetOrCreate("b")

	summaries := m.List()
	if len(summaries) != 2 {
		t.Fatalf("List returned %d rooms, want 2", len(summaries))
	}
	for _, s := range summaries {
		if s.MaxPlayers != sim.DefaultConfig().Rules.MaxPlayers {
			t.Fatalf("summary max players = %d", s.MaxPlayers)
		}
	}
}

func TestRoomRegisteredWithDirectory(t *testing.T) {
	dir := &recordingDirectory{}
	m := newTestManager(dir)
	defer shutdown(t, m)

	m.GetOrCreate("listed")

	deadline := time.Now().Add(2 * time.Second)
	for dir.registerCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("room was never registered with the directory")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReclaimedRoomRemovedFromDirectory(t *testing.T) {
	dir := &recordingDirectory{}
	m := NewManager(sim.DefaultConfig(), sim.LoopConfig{
		TickInterval: time.Millisecond,
		IdleGrace:    5 * time.Millisecond,
	}, dir, telemetry.NewCounters(), zerolog.Nop())
	defer shutdown(t, m)

	room := m.GetOrCreate("short-lived")

	select {
	case <-room.Loop.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("idle room was never reclaimed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		for _, id := range dir.removedIDs() {
			if id == "short-lived" {
				if len(m.List()) != 0 {
					t.Fatalf("reclaimed room still listed: %v", m.List())
				}
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("reclaimed room was never removed from the directory")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestShutdownStopsAllLoops(t *testing.T) {
	m := newTestManager(nil)
	r1 := m.GetOrCreate("a")
	r2 := m.GetOrCreate("b")

	shutdown(t, m)

	for _, room := range []*Room{r1, r2} {
		select {
		case <-room.Loop.Done():
		default:
			t.Fatalf("room %s loop still running after shutdown", room.ID)
		}
	}
}
