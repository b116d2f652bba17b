package sim

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"marble-soccer/server/internal/net/proto"
)

// Sender delivers marshaled messages to one connection. Implementations must
// be safe for use from the match loop goroutine and must not block
// indefinitely (the websocket session uses a write deadline).
type Sender interface {
	Send(data []byte) error
	Close(reason string)
}

// RosterUpdate is the coarse public summary pushed through the roster hook
// whenever seats or the phase change. It is what the room directory and the
// diagnostics endpoint see; neither ever reads match state directly.
type RosterUpdate struct {
	Players int
	Phase   Phase
	Score1  int
	Score2  int
}

// Match owns the authoritative state of one marble-soccer match. All fields
// are mutated exclusively from the loop goroutine; the only way in from the
// outside is the command buffer.
type Match struct {
	cfg Config

	players map[string]*playerState
	subs    map[string]Sender
	ball    Ball

	phase      Phase
	phaseStart time.Time
	remaining  time.Duration
	scores     [2]int

	winnerTeam   int
	winnerID     string
	lastScorerID string

	tick         uint64
	now          time.Time
	createdAt    time.Time
	nextPlayerID uint64

	logger   zerolog.Logger
	roster   func(RosterUpdate)
	sent     func(bytes, entities int)
}

// NewMatch builds an empty match in the waiting phase. roster and sent are
// optional observation hooks; they must not block.
func NewMatch(cfg Config, logger zerolog.Logger, roster func(RosterUpdate), sent func(bytes, entities int)) *Match {
	cfg = cfg.Normalized()
	now := time.Now()
	return &Match{
		cfg:        cfg,
		players:    make(map[string]*playerState),
		subs:       make(map[string]Sender),
		ball:       newBall(cfg.Physics.BallRadius),
		phase:      PhaseWaiting,
		phaseStart: now,
		remaining:  cfg.Rules.MatchDuration,
		now:        now,
		createdAt:  now,
		logger:     logger,
		roster:     roster,
		sent:       sent,
	}
}

// NewMatchAt is NewMatch with an explicit clock, used by tests.
func NewMatchAt(cfg Config, logger zerolog.Logger, now time.Time) *Match {
	m := NewMatch(cfg, logger, nil, nil)
	m.phaseStart = now
	m.now = now
	m.createdAt = now
	return m
}

// Advance runs one full iteration: time-driven phase transitions first, then
// a physics pass when the phase is simulated.
func (m *Match) Advance(now time.Time, dt time.Duration, scale float64) {
	m.now = now
	m.tick++

	m.advancePhase(now, dt)

	if m.phase.simulated() {
		m.stepPhysics(now, scale)
	}
}

// PlayerCount reports the current number of seated players. Loop-goroutine
// only, like every other accessor.
func (m *Match) PlayerCount() int {
	return len(m.players)
}

// Phase returns the current lifecycle phase. Loop-goroutine only.
func (m *Match) Phase() Phase {
	return m.phase
}

// PhaseStart returns when the current phase was entered.
func (m *Match) PhaseStart() time.Time {
	return m.phaseStart
}

// Tick returns the current tick index.
func (m *Match) Tick() uint64 {
	return m.tick
}

// applyJoin admits a connection or refuses it with ErrMatchFull. The reply
// carries the assigned id and the full marshaled state in one round trip.
func (m *Match) applyJoin(cmd Command, now time.Time) {
	join := cmd.Join
	if join == nil {
		return
	}
	reply := func(r JoinReply) {
		if join.Reply != nil {
			join.Reply <- r
		}
	}

	if len(m.players) >= m.cfg.Rules.MaxPlayers {
		reply(JoinReply{Err: ErrMatchFull})
		return
	}

	m.nextPlayerID++
	team := 1
	for _, p := range m.players {
		if p.Team == 1 {
			team = 2
		}
	}

	player := &playerState{
		Player: Player{
			ID:    fmt.Sprintf("player-%d", m.nextPlayerID),
			Name:  sanitizeName(join.Name, int(m.nextPlayerID)),
			Team:  team,
			Color: teamColor(team),
		},
	}
	player.Position = m.kickoffPosition(team)

	m.players[player.ID] = player
	if join.Sender != nil {
		m.subs[player.ID] = join.Sender
	}

	m.logger.Info().
		Str("player", player.ID).
		Str("name", player.Name).
		Int("team", team).
		Msg("player joined")

	welcome := proto.Welcome{
		Ver:   proto.ProtocolVersion,
		Type:  proto.TypeWelcome,
		ID:    player.ID,
		State: m.buildState(now),
	}
	data, err := json.Marshal(welcome)
	if err != nil {
		// Nothing in the welcome is unmarshalable; treat this as a refused
		// seat rather than leaving a half-admitted player behind.
		delete(m.players, player.ID)
		delete(m.subs, player.ID)
		reply(JoinReply{Err: err})
		return
	}
	reply(JoinReply{PlayerID: player.ID, Welcome: data})

	m.broadcast(proto.PlayerJoined{
		Ver:    proto.ProtocolVersion,
		Type:   proto.TypePlayerJoined,
		Player: toProtoPlayer(player.Player),
	})

	if m.phase == PhaseWaiting && len(m.players) >= 2 {
		m.startMatch(now)
	}
	m.notifyRoster()
}

// removePlayer drops a player and its connection input, announces the
// departure, and applies forfeit semantics when the match was underway.
func (m *Match) removePlayer(playerID string, now time.Time) {
	player, ok := m.players[playerID]
	if !ok {
		return
	}
	delete(m.players, playerID)
	if sub, ok := m.subs[playerID]; ok {
		delete(m.subs, playerID)
		sub.Close("left")
	}

	m.logger.Info().Str("player", playerID).Msg("player left")

	m.broadcast(proto.PlayerLeft{
		Ver:  proto.ProtocolVersion,
		Type: proto.TypePlayerLeft,
		ID:   playerID,
		Team: player.Team,
	})

	if m.phase.active() && len(m.players) < 2 {
		winner := 0
		for _, p := range m.players {
			winner = p.Team
		}
		m.finish(winner, now)
	}
	m.notifyRoster()
}

// applyStateRequest answers a joinState action with the full current state
// plus the caller's own id, mirroring the original join round trip.
func (m *Match) applyStateRequest(cmd Command) {
	req := cmd.State
	if req == nil || req.Reply == nil {
		return
	}
	data, err := json.Marshal(proto.Welcome{
		Ver:   proto.ProtocolVersion,
		Type:  proto.TypeWelcome,
		ID:    cmd.PlayerID,
		State: m.buildState(m.now),
	})
	req.Reply <- StateReply{State: data, Err: err}
}

// BroadcastSnapshot emits the reduced-cadence physics snapshot. Nothing is
// emitted when no players are present.
func (m *Match) BroadcastSnapshot(now time.Time) {
	if len(m.players) == 0 {
		return
	}
	m.broadcast(m.buildState(now))
}

// Shutdown closes every live connection. Called once by the loop on exit;
// nothing is emitted afterwards.
func (m *Match) Shutdown() {
	for id, sub := range m.subs {
		delete(m.subs, id)
		sub.Close("match closed")
	}
}

// broadcast marshals msg once and writes it to every connection. A failed
// write disconnects that player, exactly like a closed socket would.
func (m *Match) broadcast(msg any) {
	if len(m.subs) == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to marshal broadcast")
		return
	}

	var failed []string
	for id, sub := range m.subs {
		if err := sub.Send(data); err != nil {
			m.logger.Debug().Str("player", id).Err(err).Msg("dropping subscriber after failed send")
			failed = append(failed, id)
		}
	}
	if m.sent != nil {
		m.sent(len(data)*len(m.subs), len(m.players)+1)
	}
	for _, id := range failed {
		m.removePlayer(id, m.now)
	}
}

func (m *Match) broadcastPhase() {
	m.broadcast(proto.PhaseChanged{
		Ver:             proto.ProtocolVersion,
		Type:            proto.TypePhase,
		Phase:           string(m.phase),
		RemainingMillis: m.remaining.Milliseconds(),
	})
}

func (m *Match) broadcastGoal(team int, scorer string) {
	m.broadcast(proto.Goal{
		Ver:      proto.ProtocolVersion,
		Type:     proto.TypeGoal,
		Team:     team,
		ScorerID: scorer,
		Score1:   m.scores[0],
		Score2:   m.scores[1],
	})
}

func (m *Match) broadcastGameOver() {
	m.broadcast(proto.GameOver{
		Ver:        proto.ProtocolVersion,
		Type:       proto.TypeGameOver,
		WinnerID:   m.winnerID,
		WinnerTeam: m.winnerTeam,
		Score1:     m.scores[0],
		Score2:     m.scores[1],
	})
}

// notifyRoster pushes the public summary through the roster hook.
func (m *Match) notifyRoster() {
	if m.roster == nil {
		return
	}
	m.roster(RosterUpdate{
		Players: len(m.players),
		Phase:   m.phase,
		Score1:  m.scores[0],
		Score2:  m.scores[1],
	})
}

// buildState samples the full broadcast-visible state.
func (m *Match) buildState(now time.Time) proto.State {
	players := make([]proto.Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, toProtoPlayer(p.Player))
	}
	return proto.State{
		Ver:             proto.ProtocolVersion,
		Type:            proto.TypeState,
		Tick:            m.tick,
		Phase:           string(m.phase),
		RemainingMillis: m.remaining.Milliseconds(),
		Score1:          m.scores[0],
		Score2:          m.scores[1],
		Players:         players,
		Ball: proto.Ball{
			Position:      toProtoVec(m.ball.Position),
			Velocity:      toProtoVec(m.ball.Velocity),
			LastTouchedBy: m.ball.LastTouchedBy,
		},
		ServerTime: now.UnixMilli(),
	}
}

func toProtoPlayer(p Player) proto.Player {
	return proto.Player{
		ID:       p.ID,
		Name:     p.Name,
		Team:     p.Team,
		Color:    p.Color,
		Position: toProtoVec(p.Position),
		Velocity: toProtoVec(p.Velocity),
	}
}

func toProtoVec(v Vec3) proto.Vec3 {
	return proto.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}
