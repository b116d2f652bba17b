package sim

import (
	"time"

	"github.com/rs/zerolog"
)

// LoopConfig tunes the scheduler that drives one match.
type LoopConfig struct {
	TickInterval  time.Duration // nominal cadence, 1.0 on the time scale
	MaxTickDelta  time.Duration // wall-clock clamp against runaway catch-up
	SnapshotEvery int           // broadcast cadence in ticks
	IdleGrace     time.Duration // empty-match lifetime before reclamation
	FinishedGrace time.Duration // post-game lifetime before reclamation

	CommandCapacity int
}

// DefaultLoopConfig returns the scheduler tuning used when the config file
// does not override it.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		TickInterval:    16 * time.Millisecond,
		MaxTickDelta:    50 * time.Millisecond,
		SnapshotEvery:   3,
		IdleGrace:       45 * time.Second,
		FinishedGrace:   10 * time.Second,
		CommandCapacity: 256,
	}
}

// normalized applies defaults to values a file could leave zeroed.
func (c LoopConfig) normalized() LoopConfig {
	def := DefaultLoopConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.MaxTickDelta < c.TickInterval {
		c.MaxTickDelta = def.MaxTickDelta
	}
	if c.SnapshotEvery < 1 {
		c.SnapshotEvery = def.SnapshotEvery
	}
	if c.IdleGrace <= 0 {
		c.IdleGrace = def.IdleGrace
	}
	if c.FinishedGrace <= 0 {
		c.FinishedGrace = def.FinishedGrace
	}
	if c.CommandCapacity < 1 {
		c.CommandCapacity = def.CommandCapacity
	}
	return c
}

// TickMetrics is the minimal telemetry surface the loop reports into.
type TickMetrics interface {
	RecordTick(d time.Duration)
}

// Loop drives one match at a fixed cadence. It schedules against an absolute
// next-deadline instead of sleeping a fixed duration, so the cadence carries
// no cumulative drift, and it is the single goroutine that ever touches the
// match.
type Loop struct {
	match    *Match
	commands *CommandBuffer
	cfg      LoopConfig

	stop chan struct{}
	done chan struct{}

	logger  zerolog.Logger
	metrics TickMetrics
	onExit  func()
}

// NewLoop wraps a match with its command buffer and scheduler. onExit fires
// exactly once, after the loop has stopped and every connection is closed.
func NewLoop(match *Match, cfg LoopConfig, logger zerolog.Logger, metrics TickMetrics, onExit func()) *Loop {
	cfg = cfg.normalized()
	return &Loop{
		match:    match,
		commands: NewCommandBuffer(cfg.CommandCapacity),
		cfg:      cfg,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger,
		metrics:  metrics,
		onExit:   onExit,
	}
}

// Enqueue stages a command for the next tick. It never blocks; a full buffer
// drops the command and reports false.
func (l *Loop) Enqueue(cmd Command) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	return l.commands.Push(cmd)
}

// Stop asks the loop to exit. Safe to call more than once.
func (l *Loop) Stop() {
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
}

// Done is closed once the loop has fully exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run executes the tick loop until the match is reclaimed. It owns the match
// exclusively: commands, phase transitions, physics, and snapshots all
// happen here, in that order, once per tick.
func (l *Loop) Run() {
	defer func() {
		l.match.Shutdown()
		close(l.done)
		if l.onExit != nil {
			l.onExit()
		}
	}()

	interval := l.cfg.TickInterval
	last := time.Now()
	lastPopulated := last
	next := last.Add(interval)
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		var now time.Time
		select {
		case <-l.stop:
			return
		case now = <-timer.C:
		}
		tickStart := time.Now()

		dt := now.Sub(last)
		if dt <= 0 {
			dt = interval
		}
		if dt > l.cfg.MaxTickDelta {
			dt = l.cfg.MaxTickDelta
		}
		last = now
		scale := float64(dt) / float64(interval)

		for _, cmd := range l.commands.Drain() {
			l.match.apply(cmd, now)
		}

		l.match.Advance(now, dt, scale)

		if l.match.Tick()%uint64(l.cfg.SnapshotEvery) == 0 {
			l.match.BroadcastSnapshot(now)
		}

		if l.metrics != nil {
			l.metrics.RecordTick(time.Since(tickStart))
		}

		if l.match.PlayerCount() > 0 {
			lastPopulated = now
		} else if now.Sub(lastPopulated) > l.cfg.IdleGrace {
			l.logger.Info().Msg("reclaiming idle match")
			return
		}
		if l.match.Phase() == PhaseFinished && now.Sub(l.match.PhaseStart()) > l.cfg.FinishedGrace {
			l.logger.Info().Msg("reclaiming finished match")
			return
		}

		next = next.Add(interval)
		if !next.After(now) {
			// Fell behind by more than a full tick; re-anchor the deadline
			// instead of burning CPU catching up.
			next = now.Add(interval)
		}
		timer.Reset(time.Until(next))
	}
}
