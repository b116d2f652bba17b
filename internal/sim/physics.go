package sim

import (
	"math"
	"time"
)

// minSeparation guards the collision passes against a division by zero when
// two centers coincide exactly; such a pair is treated as a non-collision.
const minSeparation = 1e-9

// stepPhysics runs one full ordered pass. Every effect is multiplied by the
// tick's time-scale factor so behavior is identical across tick durations.
func (m *Match) stepPhysics(now time.Time, scale float64) {
	m.applyForces(now, scale)
	m.resolvePlayerCollisions()
	m.resolveBallContacts()
	m.integrate(scale)
	m.resolveBounds()
	if m.phase != PhaseWaiting {
		if team, ok := m.detectGoal(); ok {
			m.handleGoal(team, now)
		}
	}
}

// applyForces turns each buffered movement target into a velocity change.
// The force ramps up with distance to the target and is capped; the dash
// multiplier applies only while that connection's dash window is open.
func (m *Match) applyForces(now time.Time, scale float64) {
	phys := &m.cfg.Physics
	for _, p := range m.players {
		in := &p.input
		in.consumeDash(now, m.cfg.Dash)
		if !in.active {
			continue
		}

		dx := in.targetX - p.Position.X
		dz := in.targetZ - p.Position.Z
		dist := math.Hypot(dx, dz)
		if dist <= phys.DeadZone {
			continue
		}

		ramp := dist / phys.ForceRamp
		if ramp > 1 {
			ramp = 1
		}
		force := phys.MoveForce * ramp
		if in.dashActive(now) {
			force *= m.cfg.Dash.Multiplier
		}

		p.Velocity.X += dx / dist * force * scale
		p.Velocity.Z += dz / dist * force * scale
	}
}

// resolvePlayerCollisions separates overlapping player pairs. Positions split
// the overlap equally (equal mass); an impulse is exchanged only when the
// pair is closing, but a small separating impulse always applies so resting
// contacts drift apart.
func (m *Match) resolvePlayerCollisions() {
	phys := &m.cfg.Physics
	states := make([]*playerState, 0, len(m.players))
	for _, p := range m.players {
		states = append(states, p)
	}

	for i := 0; i < len(states); i++ {
		for j := i + 1; j < len(states); j++ {
			a, b := states[i], states[j]

			dx := b.Position.X - a.Position.X
			dy := b.Position.Y - a.Position.Y
			dz := b.Position.Z - a.Position.Z
			distSq := dx*dx + dy*dy + dz*dz
			minDist := 2 * phys.PlayerRadius
			if distSq >= minDist*minDist {
				continue
			}
			dist := math.Sqrt(distSq)
			if dist < minSeparation {
				continue
			}

			nx, ny, nz := dx/dist, dy/dist, dz/dist
			overlap := minDist - dist

			a.Position.X -= nx * overlap / 2
			a.Position.Y -= ny * overlap / 2
			a.Position.Z -= nz * overlap / 2
			b.Position.X += nx * overlap / 2
			b.Position.Y += ny * overlap / 2
			b.Position.Z += nz * overlap / 2

			closing := (b.Velocity.X-a.Velocity.X)*nx +
				(b.Velocity.Y-a.Velocity.Y)*ny +
				(b.Velocity.Z-a.Velocity.Z)*nz
			if closing < 0 {
				impulse := -closing * phys.PlayerBounce
				a.Velocity.X -= nx * impulse
				a.Velocity.Y -= ny * impulse
				a.Velocity.Z -= nz * impulse
				b.Velocity.X += nx * impulse
				b.Velocity.Y += ny * impulse
				b.Velocity.Z += nz * impulse
			}

			sep := phys.SeparationImpulse
			a.Velocity.X -= nx * sep
			a.Velocity.Z -= nz * sep
			b.Velocity.X += nx * sep
			b.Velocity.Z += nz * sep
		}
	}
}

// resolveBallContacts handles every player touching the ball. There is no
// explicit kick: contact alone transfers momentum. Positional correction is
// split inversely by mass so the much lighter ball moves furthest, and the
// impulse is distributed the same way. The toucher is recorded on every
// contact, unconditionally.
func (m *Match) resolveBallContacts() {
	phys := &m.cfg.Physics
	ball := &m.ball

	for _, p := range m.players {
		dx := ball.Position.X - p.Position.X
		dy := ball.Position.Y - p.Position.Y
		dz := ball.Position.Z - p.Position.Z
		distSq := dx*dx + dy*dy + dz*dz
		minDist := phys.PlayerRadius + phys.BallRadius
		if distSq >= minDist*minDist {
			continue
		}
		dist := math.Sqrt(distSq)
		if dist < minSeparation {
			continue
		}

		nx, ny, nz := dx/dist, dy/dist, dz/dist
		overlap := minDist - dist
		totalMass := phys.PlayerMass + phys.BallMass
		ballShare := phys.PlayerMass / totalMass
		playerShare := phys.BallMass / totalMass

		ball.Position.X += nx * overlap * ballShare
		ball.Position.Y += ny * overlap * ballShare
		ball.Position.Z += nz * overlap * ballShare
		p.Position.X -= nx * overlap * playerShare
		p.Position.Y -= ny * overlap * playerShare
		p.Position.Z -= nz * overlap * playerShare

		closing := (ball.Velocity.X-p.Velocity.X)*nx +
			(ball.Velocity.Y-p.Velocity.Y)*ny +
			(ball.Velocity.Z-p.Velocity.Z)*nz
		if closing < 0 {
			impulse := -(1 + phys.ContactElasticity) * closing /
				(1/phys.PlayerMass + 1/phys.BallMass)
			ball.Velocity.X += nx * impulse / phys.BallMass
			ball.Velocity.Y += ny * impulse / phys.BallMass
			ball.Velocity.Z += nz * impulse / phys.BallMass
			p.Velocity.X -= nx * impulse / phys.PlayerMass
			p.Velocity.Y -= ny * impulse / phys.PlayerMass
			p.Velocity.Z -= nz * impulse / phys.PlayerMass
		}

		ball.LastTouchedBy = p.ID
	}
}

// integrate applies drag, gravity, speed clamps, and position updates. Each
// entity's new position and velocity are computed together and committed
// together, so a fault mid-tick can never leave a torn pair behind.
func (m *Match) integrate(scale float64) {
	phys := &m.cfg.Physics
	for _, p := range m.players {
		pos, vel := integrateEntity(p.Position, p.Velocity,
			phys.PlayerDrag, phys.MaxPlayerSpeed, phys.Gravity, phys.PlayerRadius, scale)
		p.Position, p.Velocity = pos, vel
	}
	pos, vel := integrateEntity(m.ball.Position, m.ball.Velocity,
		phys.BallDrag, phys.MaxBallSpeed, phys.Gravity, phys.BallRadius, scale)
	m.ball.Position, m.ball.Velocity = pos, vel
}

// integrateEntity advances one entity. Drag is raised to the time-scale, not
// multiplied by it, so decay is exact under variable step sizes.
func integrateEntity(pos, vel Vec3, drag, maxSpeed, gravity, radius, scale float64) (Vec3, Vec3) {
	decay := math.Pow(drag, scale)
	vel.X *= decay
	vel.Z *= decay

	if h := vel.horizontal(); h > maxSpeed && h > 0 {
		ratio := maxSpeed / h
		vel.X *= ratio
		vel.Z *= ratio
	}

	vel.Y -= gravity * scale

	pos.X += vel.X * scale
	pos.Y += vel.Y * scale
	pos.Z += vel.Z * scale

	if pos.Y <= radius {
		pos.Y = radius
		if vel.Y < 0 {
			vel.Y = 0
		}
	}
	return pos, vel
}

// resolveBounds reflects every entity off the field walls. The active goal
// half-width is wider during golden goal.
func (m *Match) resolveBounds() {
	phys := &m.cfg.Physics
	goalHalf := m.activeGoalHalfWidth()
	for _, p := range m.players {
		p.Position, p.Velocity = m.resolveBoundary(
			p.Position, p.Velocity, phys.PlayerRadius, phys.PlayerRestitution, goalHalf)
	}
	m.ball.Position, m.ball.Velocity = m.resolveBoundary(
		m.ball.Position, m.ball.Velocity, phys.BallRadius, phys.BallRestitution, goalHalf)
}

// activeGoalHalfWidth returns the goal mouth half-width for the current
// phase: sudden death plays with the wider mouth.
func (m *Match) activeGoalHalfWidth() float64 {
	if m.phase == PhaseGoldenGoal {
		return m.cfg.Field.GoldenGoalHalfWidth
	}
	return m.cfg.Field.GoalHalfWidth
}

// resolveBoundary is the axis-aligned wall response for one circular entity.
// Each end wall carries a central goal mouth; behind the mouth a pocket
// extends for GoalDepth, bounded by its own back and side walls, so nothing
// escapes past the net.
//
// Precedence at the mouth edge: an entity in the post-edge band (laterally
// overlapping a post but not fully inside the mouth) resolves against the
// post as a solid wall BEFORE the general end-wall constraint is considered.
// All penetration tests are strict, so re-resolving an already resolved pair
// is a no-op.
func (m *Match) resolveBoundary(pos, vel Vec3, radius, restitution, goalHalf float64) (Vec3, Vec3) {
	field := &m.cfg.Field

	// Side walls.
	if pos.X < -field.HalfWidth+radius {
		pos.X = -field.HalfWidth + radius
		if vel.X < 0 {
			vel.X = -vel.X * restitution
		}
	}
	if pos.X > field.HalfWidth-radius {
		pos.X = field.HalfWidth - radius
		if vel.X > 0 {
			vel.X = -vel.X * restitution
		}
	}

	// End walls, goal mouths, and pockets.
	pos, vel = resolveEnd(pos, vel, 1, field.HalfLength, field.GoalDepth, goalHalf, radius, restitution)
	pos, vel = resolveEnd(pos, vel, -1, field.HalfLength, field.GoalDepth, goalHalf, radius, restitution)
	return pos, vel
}

// resolveEnd handles one end wall. dir is +1 for the +Z end, -1 for the −Z
// end; the math below works in "outward" coordinates (w = pos.Z*dir).
func resolveEnd(pos, vel Vec3, dir, halfLength, depth, goalHalf, radius, restitution float64) (Vec3, Vec3) {
	w := pos.Z * dir
	vw := vel.Z * dir
	if w <= halfLength-radius {
		return pos, vel
	}

	insideMouth := math.Abs(pos.X) < goalHalf-radius
	switch {
	case insideMouth:
		// Free to travel into the pocket; only the back wall constrains.
		if w > halfLength+depth-radius {
			w = halfLength + depth - radius
			if vw > 0 {
				vw = -vw * restitution
			}
		}
	case w > halfLength && math.Abs(pos.X) < goalHalf:
		// Behind the goal line inside the pocket: its side walls and back
		// wall constrain.
		if pos.X >= goalHalf-radius {
			pos.X = goalHalf - radius
			if vel.X > 0 {
				vel.X = -vel.X * restitution
			}
		}
		if pos.X <= -(goalHalf - radius) {
			pos.X = -(goalHalf - radius)
			if vel.X < 0 {
				vel.X = -vel.X * restitution
			}
		}
		if w > halfLength+depth-radius {
			w = halfLength + depth - radius
			if vw > 0 {
				vw = -vw * restitution
			}
		}
	default:
		// Post-edge band and plain end wall both resolve as solid wall.
		w = halfLength - radius
		if vw > 0 {
			vw = -vw * restitution
		}
	}

	pos.Z = w * dir
	vel.Z = vw * dir
	return pos, vel
}

// detectGoal reports a goal once the ball is fully across an end line within
// the active mouth. The +Z end is defended by team 2, so a crossing there
// scores for team 1, and vice versa.
func (m *Match) detectGoal() (int, bool) {
	field := &m.cfg.Field
	radius := m.cfg.Physics.BallRadius
	if math.Abs(m.ball.Position.X) > m.activeGoalHalfWidth() {
		return 0, false
	}
	if m.ball.Position.Z > field.HalfLength+radius {
		return 1, true
	}
	if m.ball.Position.Z < -(field.HalfLength + radius) {
		return 2, true
	}
	return 0, false
}
