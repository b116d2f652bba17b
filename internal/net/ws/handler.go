// Package ws bridges websocket connections to match loops. A connection maps
// to exactly one player in exactly one room; everything it sends after the
// handshake is staged as commands for that room's loop.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"marble-soccer/server/internal/net/proto"
	"marble-soccer/server/internal/rooms"
	"marble-soccer/server/internal/sim"
)

// joinTimeout bounds how long the handshake waits on the match loop. One
// tick is 16 ms; anything near this limit means the loop is wedged.
const joinTimeout = 2 * time.Second

// Handler upgrades connections and runs their read pumps.
type Handler struct {
	manager  *rooms.Manager
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler builds the /ws handler. allowedOrigins is a whitelist of Origin
// header values; empty allows every origin.
func NewHandler(manager *rooms.Manager, allowedOrigins []string, logger zerolog.Logger) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	return &Handler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
		logger: logger,
	}
}

// ServeHTTP admits one player: upgrade, join round trip, welcome, then the
// read pump until the socket dies.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	playerName := r.URL.Query().Get("name")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied (403 for a denied origin).
		h.logger.Debug().Err(err).Msg("upgrade refused")
		return
	}

	room := h.manager.GetOrCreate(roomID)
	sess := newSession(conn)

	reply := make(chan sim.JoinReply, 1)
	staged := room.Loop.Enqueue(sim.Command{
		Type: sim.CommandJoin,
		Join: &sim.JoinCommand{Name: playerName, Sender: sess, Reply: reply},
	})
	if !staged {
		sess.reject("room closed")
		return
	}

	var admitted sim.JoinReply
	select {
	case admitted = <-reply:
	case <-time.After(joinTimeout):
		sess.reject("join timed out")
		return
	}
	if admitted.Err != nil {
		// Capacity is enforced here, at admission, never mid-tick.
		sess.reject("room full")
		return
	}
	if err := sess.Send(admitted.Welcome); err != nil {
		room.Loop.Enqueue(sim.Command{Type: sim.CommandLeave, PlayerID: admitted.PlayerID})
		return
	}

	logger := h.logger.With().Str("room", room.ID).Str("player", admitted.PlayerID).Logger()
	logger.Debug().Msg("session established")

	done := make(chan struct{})
	defer close(done)
	go sess.ping(done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			room.Loop.Enqueue(sim.Command{Type: sim.CommandLeave, PlayerID: admitted.PlayerID})
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg proto.ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.Debug().Err(err).Msg("discarding malformed message")
			continue
		}

		switch msg.Type {
		case proto.TypeInput:
			room.Loop.Enqueue(sim.Command{
				Type:     sim.CommandInput,
				PlayerID: admitted.PlayerID,
				Input: &sim.InputCommand{
					TargetX: msg.TargetX,
					TargetZ: msg.TargetZ,
					Active:  msg.Active,
					Dash:    msg.Dash,
				},
			})
		case proto.TypeJoinState:
			h.serveState(room, sess, admitted.PlayerID, logger)
		default:
			logger.Debug().Str("type", msg.Type).Msg("unknown message type")
		}
	}
}

// serveState answers a joinState action with the full current state.
func (h *Handler) serveState(room *rooms.Room, sess *session, playerID string, logger zerolog.Logger) {
	reply := make(chan sim.StateReply, 1)
	staged := room.Loop.Enqueue(sim.Command{
		Type:     sim.CommandState,
		PlayerID: playerID,
		State:    &sim.StateCommand{Reply: reply},
	})
	if !staged {
		return
	}
	select {
	case answer := <-reply:
		if answer.Err != nil {
			logger.Debug().Err(answer.Err).Msg("state request failed")
			return
		}
		if err := sess.Send(answer.State); err != nil {
			logger.Debug().Err(err).Msg("state reply write failed")
		}
	case <-time.After(joinTimeout):
	}
}
