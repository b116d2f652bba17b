// Package rooms tracks every live match on this server. Each room owns one
// match loop goroutine; the manager only creates, lists, and reclaims rooms,
// and relays their public summaries to the external directory.
package rooms

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marble-soccer/server/internal/directory"
	"marble-soccer/server/internal/sim"
	"marble-soccer/server/internal/telemetry"
)

// Room pairs a match loop with its cached public summary.
type Room struct {
	ID   string
	Loop *sim.Loop

	mu      sync.Mutex
	summary directory.Summary
}

// Summary returns the last roster-hook snapshot for this room.
func (r *Room) Summary() directory.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// Manager creates rooms on demand and reclaims them when their loop exits.
type Manager struct {
	mu    sync.Mutex
	rooms map[string]*Room

	simCfg   sim.Config
	loopCfg  sim.LoopConfig
	dir      directory.Directory
	counters *telemetry.Counters
	logger   zerolog.Logger
}

// NewManager wires a manager with its simulation tuning and collaborators.
func NewManager(simCfg sim.Config, loopCfg sim.LoopConfig, dir directory.Directory, counters *telemetry.Counters, logger zerolog.Logger) *Manager {
	if dir == nil {
		dir = directory.Nop{}
	}
	return &Manager{
		rooms:    make(map[string]*Room),
		simCfg:   simCfg,
		loopCfg:  loopCfg,
		dir:      dir,
		counters: counters,
		logger:   logger,
	}
}

// GetOrCreate returns the room with the given id, creating and starting it
// if necessary. An empty id gets a generated one.
func (m *Manager) GetOrCreate(id string) *Room {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if room, ok := m.rooms[id]; ok {
		return room
	}

	logger := m.logger.With().Str("room", id).Logger()
	room := &Room{ID: id}
	room.summary = directory.Summary{
		ID:         id,
		MaxPlayers: m.simCfg.Rules.MaxPlayers,
		Phase:      string(sim.PhaseWaiting),
	}

	match := sim.NewMatch(m.simCfg, logger,
		func(update sim.RosterUpdate) { m.onRoster(room, update) },
		m.counters.RecordBroadcast,
	)
	room.Loop = sim.NewLoop(match, m.loopCfg, logger, m.counters, func() { m.reclaim(room) })
	m.rooms[id] = room

	go room.Loop.Run()
	m.notify(func(ctx context.Context) error {
		return m.dir.Register(ctx, room.Summary())
	})

	logger.Info().Msg("room created")
	return room
}

// List returns the cached summaries for every live room.
func (m *Manager) List() []directory.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]directory.Summary, 0, len(m.rooms))
	for _, room := range m.rooms {
		out = append(out, room.Summary())
	}
	return out
}

// Shutdown stops every loop and waits for them to finish.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.mu.Unlock()

	for _, room := range rooms {
		room.Loop.Stop()
	}
	for _, room := range rooms {
		select {
		case <-room.Loop.Done():
		case <-ctx.Done():
			return
		}
	}
}

// onRoster runs inside the match loop goroutine: cache the summary, then
// push it to the directory without blocking the tick.
func (m *Manager) onRoster(room *Room, update sim.RosterUpdate) {
	room.mu.Lock()
	room.summary.Players = update.Players
	room.summary.Phase = string(update.Phase)
	room.summary.Score1 = update.Score1
	room.summary.Score2 = update.Score2
	summary := room.summary
	room.mu.Unlock()

	m.notify(func(ctx context.Context) error {
		return m.dir.Update(ctx, summary)
	})
}

// reclaim drops a room whose loop has exited.
func (m *Manager) reclaim(room *Room) {
	m.mu.Lock()
	delete(m.rooms, room.ID)
	m.mu.Unlock()

	m.notify(func(ctx context.Context) error {
		return m.dir.Remove(ctx, room.ID)
	})
	m.logger.Info().Str("room", room.ID).Msg("room reclaimed")
}

// notify dispatches one best-effort directory call. Failures are logged at
// debug level and otherwise ignored; the listing reconciles itself.
func (m *Manager) notify(call func(ctx context.Context) error) {
	directory.Go(call, func(err error) {
		m.logger.Debug().Err(err).Msg("directory notification failed")
	})
}
