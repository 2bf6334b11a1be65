// Package reaper implements the periodic sweep that returns orphaned
// RESERVED slots — ones whose intake message never arrived or was lost —
// back to AVAILABLE.
package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nrhodes/burstqueue/pkg/metrics"
	"github.com/nrhodes/burstqueue/pkg/storage"
)

// Reaper orchestrates the slot store's orphan listing against the intake
// queue's liveness check. Splitting reap_orphans this way — rather than
// handing the slot store a callback into the queue package — keeps
// pkg/storage free of a queue-package import, matching the "no component
// shares mutable state through memory" ownership rule: the only channel
// between the two stores is the persisted resource_id each already holds.
type Reaper struct {
	Slots  storage.SlotStore
	Queue  storage.Queue
	Logger *slog.Logger
}

func New(slots storage.SlotStore, queue storage.Queue) *Reaper {
	return &Reaper{Slots: slots, Queue: queue, Logger: slog.Default()}
}

// Sweep runs one reap pass: every RESERVED slot older than threshold with
// no live intake_queue message is released back to AVAILABLE. Returns the
// count actually reaped.
func (r *Reaper) Sweep(ctx context.Context, threshold time.Duration) (int, error) {
	stale, err := r.Slots.ListStaleReserved(ctx, threshold)
	if err != nil {
		return 0, errors.Wrap(err, "list stale reserved slots")
	}

	reaped := 0
	for _, slot := range stale {
		live, err := r.Queue.Exists(ctx, slot.Id)
		if err != nil {
			r.Logger.Error("queue liveness check failed, skipping slot", "slot_id", slot.Id, "error", err)
			continue
		}
		if live {
			continue
		}

		released, err := r.Slots.ReleaseIfOrphan(ctx, slot.Id)
		if err != nil {
			r.Logger.Error("release orphan slot failed", "slot_id", slot.Id, "error", err)
			continue
		}
		if released {
			reaped++
			metrics.ReaperReapedTotal.Inc()
		}
	}

	return reaped, nil
}
