package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/log"
)

// IdleCloser closes sessions that have not been used for longer than ttl
// and returns how many it closed.
type IdleCloser interface {
	CloseIdle(now time.Time, ttl time.Duration) int
}

type SessionReaperWorker struct {
	sessions IdleCloser
	interval time.Duration
	idleTTL  time.Duration
}

type NewSessionReaperWorkerOptions struct {
	Sessions IdleCloser
	Interval time.Duration
	IdleTTL  time.Duration
}

// NewSessionReaperWorker creates a new SessionReaperWorker.
// The worker periodically tears down abandoned sessions so their
// kitchens stop spawning dishes.
func NewSessionReaperWorker(opts NewSessionReaperWorkerOptions) *SessionReaperWorker {
	return &SessionReaperWorker{
		sessions: opts.Sessions,
		interval: opts.Interval,
		idleTTL:  opts.IdleTTL,
	}
}

func (w *SessionReaperWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			w.reap(t)
		}
	}
}

func (w *SessionReaperWorker) reap(now time.Time) {
	if n := w.sessions.CloseIdle(now, w.idleTTL); n > 0 {
		log.Info("Closed %d idle sessions", n)
	}
}
