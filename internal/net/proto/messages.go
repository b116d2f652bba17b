// Package proto defines the JSON wire messages exchanged with clients. Every
// server message carries a "ver" and a "type" discriminator; clients are
// expected to ignore types they do not understand.
package proto

// ProtocolVersion is bumped whenever a message shape changes incompatibly.
const ProtocolVersion = 1

// Message type discriminators.
const (
	TypeWelcome      = "welcome"
	TypeState        = "state"
	TypePlayerJoined = "playerJoined"
	TypePlayerLeft   = "playerLeft"
	TypeGoal         = "goal"
	TypePhase        = "phase"
	TypeGameOver     = "gameOver"

	TypeInput     = "input"
	TypeJoinState = "joinState"
)

// Vec3 mirrors the simulation vector on the wire.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Player is the broadcast-visible player state.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Team     int    `json:"team"`
	Color    string `json:"color"`
	Position Vec3   `json:"position"`
	Velocity Vec3   `json:"velocity"`
}

// Ball is the broadcast-visible ball state.
type Ball struct {
	Position      Vec3   `json:"position"`
	Velocity      Vec3   `json:"velocity"`
	LastTouchedBy string `json:"lastTouchedBy,omitempty"`
}

// State is the periodic physics snapshot plus coarse match state. It is also
// embedded in Welcome so joining needs a single round trip.
type State struct {
	Ver             int      `json:"ver"`
	Type            string   `json:"type"`
	Tick            uint64   `json:"t"`
	Phase           string   `json:"phase"`
	RemainingMillis int64    `json:"remainingMillis"`
	Score1          int      `json:"score1"`
	Score2          int      `json:"score2"`
	Players         []Player `json:"players"`
	Ball            Ball     `json:"ball"`
	ServerTime      int64    `json:"serverTime"`
}

// Welcome answers a join: the caller's assigned id plus the full state.
type Welcome struct {
	Ver   int    `json:"ver"`
	Type  string `json:"type"`
	ID    string `json:"id"`
	State State  `json:"state"`
}

// PlayerJoined announces an admission to every connection.
type PlayerJoined struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Player Player `json:"player"`
}

// PlayerLeft announces a departure.
type PlayerLeft struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	ID   string `json:"id"`
	Team int    `json:"team"`
}

// Goal announces a scored goal with attribution and updated scores.
type Goal struct {
	Ver      int    `json:"ver"`
	Type     string `json:"type"`
	Team     int    `json:"team"`
	ScorerID string `json:"scorerId,omitempty"`
	Score1   int    `json:"score1"`
	Score2   int    `json:"score2"`
}

// PhaseChanged announces a lifecycle transition.
type PhaseChanged struct {
	Ver             int    `json:"ver"`
	Type            string `json:"type"`
	Phase           string `json:"phase"`
	RemainingMillis int64  `json:"remainingMillis"`
}

// GameOver announces the terminal result.
type GameOver struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	WinnerID   string `json:"winnerId,omitempty"`
	WinnerTeam int    `json:"winnerTeam"`
	Score1     int    `json:"score1"`
	Score2     int    `json:"score2"`
}

// ClientMessage is the union of everything a client may send after the
// handshake. Type selects which fields are meaningful.
type ClientMessage struct {
	Ver     int     `json:"ver,omitempty"`
	Type    string  `json:"type"`
	TargetX float64 `json:"targetX"`
	TargetZ float64 `json:"targetZ"`
	Active  bool    `json:"active"`
	Dash    bool    `json:"dash"`
}
