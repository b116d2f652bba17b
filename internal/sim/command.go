package sim

import (
	"errors"
	"time"
)

// ErrMatchFull rejects a join at admission time, before the handshake
// completes. Capacity is never enforced mid-tick.
var ErrMatchFull = errors.New("match is full")

// CommandType enumerates the staged match commands.
type CommandType string

const (
	CommandJoin  CommandType = "Join"
	CommandLeave CommandType = "Leave"
	CommandInput CommandType = "Input"
	CommandState CommandType = "State"
)

// Command represents one intent captured from a network handler for
// processing at the top of the next tick. Handlers never touch match state
// directly; the command seam is what keeps each match effectively
// single-threaded without locks around simulation data.
type Command struct {
	Type     CommandType
	PlayerID string
	Join     *JoinCommand
	Input    *InputCommand
	State    *StateCommand
}

// JoinCommand admits a connection. Reply receives the assigned player id and
// the full state in one round trip, or an error when the match is at
// capacity.
type JoinCommand struct {
	Name   string
	Sender Sender
	Reply  chan<- JoinReply
}

// JoinReply is the admission result delivered to the waiting handler.
type JoinReply struct {
	PlayerID string
	Welcome  []byte // marshaled welcome message, ready to write
	Err      error
}

// InputCommand carries one raw movement/dash update.
type InputCommand struct {
	TargetX float64
	TargetZ float64
	Active  bool
	Dash    bool
}

// StateCommand re-serves the full current state to one caller.
type StateCommand struct {
	Reply chan<- StateReply
}

// StateReply carries the marshaled state answer.
type StateReply struct {
	State []byte
	Err   error
}

// apply executes one drained command against the match. Runs on the loop
// goroutine only.
func (m *Match) apply(cmd Command, now time.Time) {
	switch cmd.Type {
	case CommandJoin:
		m.applyJoin(cmd, now)
	case CommandLeave:
		m.removePlayer(cmd.PlayerID, now)
	case CommandInput:
		if cmd.Input != nil {
			m.applyInput(cmd.PlayerID, cmd.Input.TargetX, cmd.Input.TargetZ, cmd.Input.Active, cmd.Input.Dash, now)
		}
	case CommandState:
		m.applyStateRequest(cmd)
	}
}
