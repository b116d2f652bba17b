// Package directory publishes each match's public summary to an external
// room listing. Calls are strictly best-effort: the tick loop never awaits
// them, failures are swallowed, and the listing is expected to self-heal via
// its own periodic reconciliation.
package directory

import (
	"context"
	"time"
)

// Summary is the listing entry for one match.
type Summary struct {
	ID         string `json:"id"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Phase      string `json:"phase"`
	Score1     int    `json:"score1"`
	Score2     int    `json:"score2"`
	UpdatedAt  int64  `json:"updatedAt"`
}

// Directory is the fire-and-forget collaborator contract. Implementations
// may block on I/O; callers dispatch off the hot path.
type Directory interface {
	Register(ctx context.Context, s Summary) error
	Update(ctx context.Context, s Summary) error
	Remove(ctx context.Context, id string) error
}

// Nop is the directory used when no listing backend is configured.
type Nop struct{}

func (Nop) Register(context.Context, Summary) error { return nil }
func (Nop) Update(context.Context, Summary) error   { return nil }
func (Nop) Remove(context.Context, string) error    { return nil }

// callTimeout bounds every dispatched directory call so a dead backend can
// never pile up goroutines.
const callTimeout = 2 * time.Second

// Go dispatches one directory call without awaiting completion. Errors are
// handed to report (may be nil) and otherwise ignored.
func Go(call func(ctx context.Context) error, report func(error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		if err := call(ctx); err != nil && report != nil {
			report(err)
		}
	}()
}
