// Package syncd runs reconciliation on a schedule. It is deliberately
// free of any UI or lifecycle coupling: callers hand it a context and a
// trigger channel, and cancelling the context stops it between syncs.
package syncd

import (
	"context"
	"log/slog"
	"time"

	"github.com/inovatickets/validador/internal/app"
)

// Syncer is the single operation the runner drives.
type Syncer interface {
	SyncAll(ctx context.Context) (app.SyncResult, error)
}

// Runner periodically reconciles with the backend and accepts manual
// triggers in between. Sync failures are logged and retried on the next
// tick; the pending rows they left behind go up then.
type Runner struct {
	syncer   Syncer
	interval time.Duration
	trigger  chan struct{}
	log      *slog.Logger
}

func New(syncer Syncer, interval time.Duration, log *slog.Logger) *Runner {
	return &Runner{
		syncer:   syncer,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		log:      log,
	}
}

// Trigger requests an immediate sync. Requests arriving while one is
// already queued coalesce into a single run.
func (r *Runner) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled. One sync runs at a time; a sync in
// flight is cancelled through the same context, which is safe because every
// snapshot change commits at a phase boundary.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("sync runner started", "interval", r.interval)

	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("sync runner stopped")
			return ctx.Err()
		case <-ticker.C:
			r.runOnce(ctx)
		case <-r.trigger:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	result, err := r.syncer.SyncAll(ctx)
	if err != nil {
		r.log.Error("sync failed", "err", err)
		return
	}
	if result.Skipped {
		r.log.Info("sync skipped, backend returned no events")
		return
	}
	r.log.Info("sync finished",
		"uploaded", result.Uploaded,
		"events", result.Events,
		"codes", result.Codes,
	)
}
