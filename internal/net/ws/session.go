package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	// pongWait bounds how long a silent connection survives; pings go out at
	// a fraction of it so healthy clients never trip the deadline.
	pongWait     = 20 * time.Second
	pingInterval = pongWait * 2 / 5
)

// session wraps one websocket connection with the write discipline the match
// loop relies on: serialized writes, a deadline per write, and an idempotent
// close. It implements sim.Sender.
type session struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func newSession(conn *websocket.Conn) *session {
	return &session{conn: conn}
}

// Send writes one marshaled message. It never blocks past the write
// deadline; an error here means the connection is gone.
func (s *session) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return websocket.ErrCloseSent
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame with the given reason and tears the socket down.
func (s *session) Close(reason string) {
	s.closeWithCode(websocket.CloseNormalClosure, reason)
}

// reject refuses a connection at admission time with an explicit reason,
// e.g. "room full".
func (s *session) reject(reason string) {
	s.closeWithCode(websocket.ClosePolicyViolation, reason)
}

func (s *session) closeWithCode(code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	message := websocket.FormatCloseMessage(code, reason)
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.conn.WriteMessage(websocket.CloseMessage, message)
	s.conn.Close()
}

// ping keeps the connection's liveness probe running until the socket dies.
func (s *session) ping(done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
