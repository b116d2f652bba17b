package sim

import (
	"fmt"
	"strings"
)

// Team colors are fixed per side so clients never need a palette exchange.
const (
	team1Color = "#4f8bff"
	team2Color = "#ff5b4f"

	maxNameLength = 24
)

// Player is the durable, broadcast-visible part of a connected player.
type Player struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Team     int     `json:"team"`
	Color    string  `json:"color"`
	Position Vec3    `json:"position"`
	Velocity Vec3    `json:"velocity"`
}

// playerState pairs the snapshot-visible player with its per-connection
// input buffer. Both are created on admission and dropped together on
// disconnect.
type playerState struct {
	Player
	input connectionInput
}

// sanitizeName trims and bounds a display name, substituting a fallback for
// empty input.
func sanitizeName(name string, playerNumber int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("Player %d", playerNumber)
	}
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name
}

// teamColor maps a team index to its fixed color.
func teamColor(team int) string {
	if team == 2 {
		return team2Color
	}
	return team1Color
}

// kickoffPosition returns the canonical spawn for a team. Team 1 defends the
// −Z end, team 2 the +Z end; both spawn halfway between center and their own
// goal line.
func (m *Match) kickoffPosition(team int) Vec3 {
	z := -m.cfg.Field.HalfLength / 2
	if team == 2 {
		z = m.cfg.Field.HalfLength / 2
	}
	return Vec3{X: 0, Y: m.cfg.Physics.PlayerRadius, Z: z}
}

// resetKickoff repositions both players and recreates the ball at field
// center. Velocities are zeroed so play always resumes from rest.
func (m *Match) resetKickoff() {
	for _, p := range m.players {
		p.Position = m.kickoffPosition(p.Team)
		p.Velocity = Vec3{}
	}
	m.ball = newBall(m.cfg.Physics.BallRadius)
}
