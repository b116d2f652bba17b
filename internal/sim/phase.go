package sim

import "time"

// Phase enumerates the match lifecycle states.
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseCountdown  Phase = "countdown"
	PhasePlaying    Phase = "playing"
	PhaseGoalScored Phase = "goalScored"
	PhaseGoldenGoal Phase = "goldenGoal"
	PhaseFinished   Phase = "finished"
)

// active reports whether the phase counts as mid-match: a disconnect during
// an active phase ends the match by forfeit.
func (p Phase) active() bool {
	switch p {
	case PhaseCountdown, PhasePlaying, PhaseGoalScored, PhaseGoldenGoal:
		return true
	default:
		return false
	}
}

// simulated reports whether the physics engine runs a pass this phase.
// waiting is solo practice: full physics, no goal checks.
func (p Phase) simulated() bool {
	switch p {
	case PhaseWaiting, PhasePlaying, PhaseGoldenGoal:
		return true
	default:
		return false
	}
}

// advancePhase moves the lifecycle state machine forward by one tick's worth
// of wall time. Goal transitions arrive separately through handleGoal; this
// covers the purely time-driven edges.
func (m *Match) advancePhase(now time.Time, dt time.Duration) {
	switch m.phase {
	case PhaseCountdown:
		if now.Sub(m.phaseStart) >= m.cfg.Rules.Countdown {
			m.setPhase(PhasePlaying, now)
		}
	case PhasePlaying:
		m.remaining -= dt
		if m.remaining <= 0 {
			m.remaining = 0
			if m.scores[0] == m.scores[1] {
				m.setPhase(PhaseGoldenGoal, now)
				return
			}
			winner := 1
			if m.scores[1] > m.scores[0] {
				winner = 2
			}
			m.finish(winner, now)
		}
	case PhaseGoalScored:
		if now.Sub(m.phaseStart) >= m.cfg.Rules.Celebration {
			if m.scores[0] >= m.cfg.Rules.WinThreshold || m.scores[1] >= m.cfg.Rules.WinThreshold {
				winner := 1
				if m.scores[1] > m.scores[0] {
					winner = 2
				}
				m.finish(winner, now)
				return
			}
			m.resetKickoff()
			m.setPhase(PhasePlaying, now)
		}
	}
}

// setPhase records the transition and announces it to every connection.
func (m *Match) setPhase(phase Phase, now time.Time) {
	if m.phase == phase {
		return
	}
	m.phase = phase
	m.phaseStart = now
	m.logger.Debug().Str("phase", string(phase)).Msg("phase changed")
	m.broadcastPhase()
	m.notifyRoster()
}

// finish ends the match in favor of the given team (0 means no winner, for
// example when everyone left mid-match). finished is terminal.
func (m *Match) finish(winnerTeam int, now time.Time) {
	if m.phase == PhaseFinished {
		return
	}
	m.winnerTeam = winnerTeam
	m.winnerID = ""
	for _, p := range m.players {
		if p.Team == winnerTeam {
			m.winnerID = p.ID
		}
	}
	m.setPhase(PhaseFinished, now)
	m.broadcastGameOver()
	m.logger.Info().
		Int("winnerTeam", winnerTeam).
		Int("score1", m.scores[0]).
		Int("score2", m.scores[1]).
		Msg("match finished")
}

// handleGoal applies a detected goal for the scoring team. During golden goal
// any score ends the match outright, regardless of the win threshold.
func (m *Match) handleGoal(team int, now time.Time) {
	m.scores[team-1]++
	scorer := m.ball.LastTouchedBy
	m.lastScorerID = scorer
	m.broadcastGoal(team, scorer)
	m.logger.Info().
		Int("team", team).
		Str("scorer", scorer).
		Int("score1", m.scores[0]).
		Int("score2", m.scores[1]).
		Msg("goal scored")

	if m.phase == PhaseGoldenGoal {
		m.finish(team, now)
		return
	}
	m.setPhase(PhaseGoalScored, now)
}

// startMatch fires the waiting→countdown transition once the second player
// is seated: scores reset, clock refilled, entities placed at kickoff.
func (m *Match) startMatch(now time.Time) {
	m.scores[0] = 0
	m.scores[1] = 0
	m.remaining = m.cfg.Rules.MatchDuration
	m.resetKickoff()
	m.setPhase(PhaseCountdown, now)
}
