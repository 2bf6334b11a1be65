package storage

import (
	"context"
	"time"

	"github.com/nrhodes/burstqueue/pkg/models"
)

// SlotStore is the contention-free allocator described in spec.md §4.1.
// Implementations must make ClaimOne safe to call from arbitrarily many
// concurrent callers without blocking on a row another in-flight call holds.
//
// reap_orphans from spec.md is split across ListStaleReserved (read side)
// and ReleaseIfOrphan (the conditional write) so that the slot store itself
// never has to import the queue package to check "no live intent" — that
// cross-store check is owned by pkg/reaper, keeping ownership boundaries
// the way spec.md §3 describes them.
type SlotStore interface {
	// CreateSlots inserts n AVAILABLE rows into pool_id. Operator path.
	CreateSlots(ctx context.Context, poolID string, n int) ([]string, error)

	// ClaimOne reserves one AVAILABLE slot in pool_id for userID, skipping
	// rows contended by another in-flight claim. Returns ("", nil) — not an
	// error — when the pool has no unlocked AVAILABLE row.
	ClaimOne(ctx context.Context, poolID, userID string) (slotID string, err error)

	// MarkConsumed conditionally transitions a RESERVED slot to CONSUMED.
	// It is a no-op, not an error, if the slot is not currently RESERVED.
	MarkConsumed(ctx context.Context, slotID string) error

	// ListStaleReserved returns every RESERVED slot whose locked_at predates
	// now-threshold, across all pools.
	ListStaleReserved(ctx context.Context, threshold time.Duration) ([]models.Slot, error)

	// ReleaseIfOrphan conditionally transitions a RESERVED slot back to
	// AVAILABLE, clearing locked_by/locked_at. Returns false, not an error,
	// if the slot was no longer RESERVED (e.g. consumed or released
	// concurrently) by the time of the attempt.
	ReleaseIfOrphan(ctx context.Context, slotID string) (bool, error)
}
