package sim

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"marble-soccer/server/internal/net/proto"
)

// fakeSender records everything the match writes to one connection.
type fakeSender struct {
	sent   [][]byte
	closed string
	fail   bool
}

func (f *fakeSender) Send(data []byte) error {
	if f.fail {
		return errors.New("broken pipe")
	}
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeSender) Close(reason string) { f.closed = reason }

func join(t *testing.T, m *Match, name string, sender Sender) JoinReply {
	t.Helper()
	reply := make(chan JoinReply, 1)
	m.applyJoin(Command{
		Type: CommandJoin,
		Join: &JoinCommand{Name: name, Sender: sender, Reply: reply},
	}, m.now)
	return <-reply
}

func TestJoinAssignsTeamsAndWelcome(t *testing.T) {
	m := newTestMatch(t)

	first := join(t, m, "alice", &fakeSender{})
	if first.Err != nil {
		t.Fatalf("first join failed: %v", first.Err)
	}
	second := join(t, m, "bob", &fakeSender{})
	if second.Err != nil {
		t.Fatalf("second join failed: %v", second.Err)
	}

	var welcome proto.Welcome
	if err := json.Unmarshal(first.Welcome, &welcome); err != nil {
		t.Fatalf("welcome not decodable: %v", err)
	}
	if welcome.Type != proto.TypeWelcome || welcome.ID != first.PlayerID {
		t.Fatalf("welcome = %+v, want type=welcome id=%s", welcome, first.PlayerID)
	}
	if len(welcome.State.Players) != 1 {
		t.Fatalf("first welcome should carry one player, got %d", len(welcome.State.Players))
	}

	p1 := m.players[first.PlayerID]
	p2 := m.players[second.PlayerID]
	if p1.Team == p2.Team {
		t.Fatalf("both players on team %d", p1.Team)
	}
	if p1.Color == p2.Color {
		t.Fatalf("both players share color %s", p1.Color)
	}
}

func TestJoinBeyondCapacityRefused(t *testing.T) {
	m := newTestMatch(t)
	join(t, m, "a", nil)
	join(t, m, "b", nil)

	third := join(t, m, "c", nil)
	if !errors.Is(third.Err, ErrMatchFull) {
		t.Fatalf("third join err = %v, want ErrMatchFull", third.Err)
	}
	if len(m.players) != 2 {
		t.Fatalf("refused join mutated the roster: %d players", len(m.players))
	}
}

func TestJoinAnnouncedToExistingPlayers(t *testing.T) {
	m := newTestMatch(t)
	sender := &fakeSender{}
	join(t, m, "a", sender)
	before := len(sender.sent)

	second := join(t, m, "b", &fakeSender{})

	var found bool
	for _, data := range sender.sent[before:] {
		var msg proto.PlayerJoined
		if json.Unmarshal(data, &msg) == nil && msg.Type == proto.TypePlayerJoined {
			if msg.Player.ID != second.PlayerID {
				t.Fatalf("announced id = %s, want %s", msg.Player.ID, second.PlayerID)
			}
			found = true
		}
	}
	if !found {
		t.Fatal("existing player never saw the playerJoined announcement")
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in     string
		number int
		want   string
	}{
		{"alice", 1, "alice"},
		{"  padded  ", 2, "padded"},
		{"", 3, "Player 3"},
		{"   ", 4, "Player 4"},
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 5, "aaaaaaaaaaaaaaaaaaaaaaaa"},
	}
	for _, tc := range cases {
		if got := sanitizeName(tc.in, tc.number); got != tc.want {
			t.Fatalf("sanitizeName(%q, %d) = %q, want %q", tc.in, tc.number, got, tc.want)
		}
	}
}

func TestInputValidation(t *testing.T) {
	m := newTestMatch(t)
	p1, _ := seatPlayers(t, m)
	now := m.now.Add(time.Second)

	m.applyInput(p1.ID, math.NaN(), 0, true, false, now)
	if p1.input.active {
		t.Fatal("NaN coordinate must be dropped whole")
	}

	m.applyInput(p1.ID, math.Inf(1), 0, true, false, now)
	if p1.input.active {
		t.Fatal("infinite coordinate must be dropped whole")
	}

	// Out-of-range but finite coordinates are clamped, not dropped.
	m.applyInput(p1.ID, 1e6, -1e6, true, false, now)
	if !p1.input.active {
		t.Fatal("finite input should be accepted")
	}
	boundX := m.cfg.Field.HalfWidth * m.cfg.Input.ClampMargin
	boundZ := (m.cfg.Field.HalfLength + m.cfg.Field.GoalDepth) * m.cfg.Input.ClampMargin
	if p1.input.targetX != boundX || p1.input.targetZ != -boundZ {
		t.Fatalf("clamp = (%v, %v), want (%v, %v)", p1.input.targetX, p1.input.targetZ, boundX, -boundZ)
	}
}

func TestInputRateLimit(t *testing.T) {
	m := newTestMatch(t)
	p1, _ := seatPlayers(t, m)
	now := m.now.Add(time.Second)

	m.applyInput(p1.ID, 1, 1, true, false, now)
	if p1.input.targetX != 1 {
		t.Fatalf("first update rejected: %v", p1.input.targetX)
	}

	// Too soon: silently ignored.
	m.applyInput(p1.ID, 2, 2, true, false, now.Add(m.cfg.Input.MinInterval/2))
	if p1.input.targetX != 1 {
		t.Fatalf("rate-limited update applied: %v", p1.input.targetX)
	}

	m.applyInput(p1.ID, 3, 3, true, false, now.Add(m.cfg.Input.MinInterval))
	if p1.input.targetX != 3 {
		t.Fatalf("spaced update rejected: %v", p1.input.targetX)
	}
}

func TestInputForUnknownPlayerIgnored(t *testing.T) {
	m := newTestMatch(t)
	m.applyInput("nobody", 1, 1, true, true, m.now)
	// Nothing to assert beyond not panicking and not creating a player.
	if len(m.players) != 0 {
		t.Fatalf("ghost player created: %d", len(m.players))
	}
}

func TestStateRequestCarriesCallerID(t *testing.T) {
	m := newTestMatch(t)
	admitted := join(t, m, "a", &fakeSender{})

	reply := make(chan StateReply, 1)
	m.apply(Command{
		Type:     CommandState,
		PlayerID: admitted.PlayerID,
		State:    &StateCommand{Reply: reply},
	}, m.now)

	answer := <-reply
	if answer.Err != nil {
		t.Fatalf("state request failed: %v", answer.Err)
	}
	var welcome proto.Welcome
	if err := json.Unmarshal(answer.State, &welcome); err != nil {
		t.Fatalf("state reply not decodable: %v", err)
	}
	if welcome.ID != admitted.PlayerID {
		t.Fatalf("state reply id = %s, want %s", welcome.ID, admitted.PlayerID)
	}
	if welcome.State.Phase != string(PhaseWaiting) {
		t.Fatalf("state phase = %s, want waiting", welcome.State.Phase)
	}
}

func TestBroadcastDropsFailedConnections(t *testing.T) {
	m := newTestMatch(t)
	healthy := &fakeSender{}
	broken := &fakeSender{fail: true}
	join(t, m, "a", healthy)
	victim := join(t, m, "b", broken)

	m.BroadcastSnapshot(m.now)

	if _, ok := m.players[victim.PlayerID]; ok {
		t.Fatal("player with a failing connection should have been removed")
	}
	if broken.closed == "" {
		t.Fatal("failing connection should have been closed")
	}
	if len(healthy.sent) == 0 {
		t.Fatal("healthy connection should have received the snapshot")
	}
}

func TestSnapshotSkippedWhenEmpty(t *testing.T) {
	m := newTestMatch(t)
	var broadcasts int
	m.sent = func(bytes, entities int) { broadcasts++ }

	m.BroadcastSnapshot(m.now)
	if broadcasts != 0 {
		t.Fatalf("empty match emitted %d broadcasts", broadcasts)
	}
}

func TestScoresOnlyIncrease(t *testing.T) {
	m := newTestMatch(t)
	now := playThrough(t, m)

	prev := [2]int{}
	for goal := 0; goal < 3; goal++ {
		team := 1 + goal%2
		m.handleGoal(team, now)
		if m.scores[0] < prev[0] || m.scores[1] < prev[1] {
			t.Fatalf("score decreased: %v -> %v", prev, m.scores)
		}
		prev = m.scores
		now = now.Add(m.cfg.Rules.Celebration)
		m.advancePhase(now, m.cfg.Rules.Celebration)
	}
}

func TestRosterHookSeesPhaseAndSeats(t *testing.T) {
	m := newTestMatch(t)
	var last RosterUpdate
	m.roster = func(u RosterUpdate) { last = u }

	join(t, m, "a", nil)
	if last.Players != 1 || last.Phase != PhaseWaiting {
		t.Fatalf("after first join: %+v", last)
	}

	join(t, m, "b", nil)
	if last.Players != 2 || last.Phase != PhaseCountdown {
		t.Fatalf("after second join: %+v", last)
	}
}

func TestShutdownClosesAllConnections(t *testing.T) {
	m := newTestMatch(t)
	s1 := &fakeSender{}
	s2 := &fakeSender{}
	join(t, m, "a", s1)
	join(t, m, "b", s2)

	m.Shutdown()

	if s1.closed == "" || s2.closed == "" {
		t.Fatalf("connections not closed: %q %q", s1.closed, s2.closed)
	}
	if len(m.subs) != 0 {
		t.Fatalf("%d subscribers left after shutdown", len(m.subs))
	}
}
