// Package poller schedules refresh cycles and publishes the resulting
// snapshots. Cycles are strictly serialized: the loop body runs inline, so a
// new cycle can never start while the previous one is outstanding.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"freesleep-bridge/internal/snapshot"
)

// Refresher runs one refresh cycle. Satisfied by *snapshot.Builder.
type Refresher interface {
	Refresh(ctx context.Context, now time.Time) (*snapshot.Snapshot, error)
}

// Poller drives the refresh loop and holds the currently published snapshot.
type Poller struct {
	builder   Refresher
	interval  time.Duration
	logger    *zap.Logger
	refreshCh chan struct{}

	current atomic.Pointer[snapshot.Snapshot]

	onPublish func(*snapshot.Snapshot)

	mu          sync.Mutex
	lastErr     error
	failures    int
	lastAttempt time.Time
}

// New creates a poller refreshing at the given interval.
func New(builder Refresher, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		builder:   builder,
		interval:  interval,
		logger:    logger,
		refreshCh: make(chan struct{}, 1),
	}
}

// OnPublish registers a callback invoked after each successful publication.
// Must be set before Run.
func (p *Poller) OnPublish(fn func(*snapshot.Snapshot)) {
	p.onPublish = fn
}

// TriggerRefresh requests an immediate refresh outside the regular interval,
// typically after a write. Coalesces when one is already pending.
func (p *Poller) TriggerRefresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

// Run refreshes once immediately, then on every interval tick or trigger,
// until ctx is cancelled. Outstanding fetches are abandoned on shutdown.
func (p *Poller) Run(ctx context.Context) {
	p.refreshOnce(ctx)
	for {
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.refreshCh:
			timer.Stop()
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}
		p.refreshOnce(ctx)
	}
}

func (p *Poller) refreshOnce(ctx context.Context) {
	now := time.Now()
	snap, err := p.builder.Refresh(ctx, now)

	p.mu.Lock()
	p.lastAttempt = now
	p.lastErr = err
	if err != nil {
		p.failures++
	}
	p.mu.Unlock()

	if err != nil {
		// Previous snapshot stays published; no partial snapshot ever is.
		p.logger.Error("refresh cycle failed", zap.Error(err))
		return
	}

	p.current.Store(snap)
	p.logger.Debug("snapshot published", zap.Time("taken", snap.Taken))
	if p.onPublish != nil {
		p.onPublish(snap)
	}
}

// Current returns the most recently published snapshot, nil before the first
// successful cycle.
func (p *Poller) Current() *snapshot.Snapshot {
	return p.current.Load()
}

// Status returns the last attempt time, the failure count and the last cycle
// error (nil after a successful cycle).
func (p *Poller) Status() (lastAttempt time.Time, failures int, lastErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastAttempt, p.failures, p.lastErr
}
