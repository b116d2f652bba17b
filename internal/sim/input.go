package sim

import "time"

// connectionInput buffers the latest validated movement state for one
// connection. It is mutated only from the match loop: network handlers stage
// raw updates as commands, and applyInput runs them between ticks.
type connectionInput struct {
	targetX float64
	targetZ float64
	active  bool

	dashRequested bool      // edge-triggered, consumed by the force pass
	dashUntil     time.Time // dash force multiplier applies strictly before this
	dashReadyAt   time.Time // cooldown expiry

	lastAccepted time.Time // rate limiting
}

// applyInput validates, clamps, and rate-limits one movement update. Bad
// values are dropped silently: input validation never surfaces a fault to
// the client.
func (m *Match) applyInput(playerID string, targetX, targetZ float64, active, dash bool, now time.Time) {
	p, ok := m.players[playerID]
	if !ok {
		return
	}
	in := &p.input

	if !isFinite(targetX) || !isFinite(targetZ) {
		return
	}
	if !in.lastAccepted.IsZero() && now.Sub(in.lastAccepted) < m.cfg.Input.MinInterval {
		return
	}
	in.lastAccepted = now

	// Clamp to a generous super-region so adversarial coordinates can never
	// reach the physics passes.
	boundX := m.cfg.Field.HalfWidth * m.cfg.Input.ClampMargin
	boundZ := (m.cfg.Field.HalfLength + m.cfg.Field.GoalDepth) * m.cfg.Input.ClampMargin
	in.targetX = clamp(targetX, -boundX, boundX)
	in.targetZ = clamp(targetZ, -boundZ, boundZ)
	in.active = active

	if dash {
		in.dashRequested = true
	}
}

// consumeDash clears a pending dash request and, if the cooldown has
// elapsed, opens the dash window. A request inside the cooldown is dropped
// without any error surfaced to the caller.
func (in *connectionInput) consumeDash(now time.Time, cfg DashConfig) {
	if !in.dashRequested {
		return
	}
	in.dashRequested = false
	if now.Before(in.dashReadyAt) {
		return
	}
	in.dashUntil = now.Add(cfg.Duration)
	in.dashReadyAt = now.Add(cfg.Cooldown)
}

// dashActive reports whether the dash force multiplier applies right now.
func (in *connectionInput) dashActive(now time.Time) bool {
	return now.Before(in.dashUntil)
}
