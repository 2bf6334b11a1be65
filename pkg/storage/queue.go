package storage

import (
	"context"
	"time"

	"github.com/nrhodes/burstqueue/pkg/models"
)

// Queue is the durable, visibility-timeout-leased message queue described
// in spec.md §4.2. A single implementation backs both intake_queue and
// intake_dlq; callers construct one Queue per queue name.
type Queue interface {
	// Send appends payload and returns its new msg_id.
	Send(ctx context.Context, payload models.IntakePayload) (msgID int64, err error)

	// Read leases up to maxCount messages currently visible, extends each
	// one's visibility deadline by visibilityTimeout, increments read_ct,
	// and returns the envelopes. Returns an empty slice, not an error, when
	// nothing is currently visible.
	Read(ctx context.Context, visibilityTimeout time.Duration, maxCount int) ([]models.Envelope, error)

	// Delete permanently removes messages by id.
	Delete(ctx context.Context, msgIDs []int64) error

	// Exists reports whether any live (non-deleted) message in the queue
	// carries the given resource_id. Used by the Reaper to decide whether a
	// RESERVED slot still has a live intent.
	Exists(ctx context.Context, resourceID string) (bool, error)

	// List returns messages for a pool, for DLQ admin listing. poolID
	// empty means all pools.
	List(ctx context.Context, poolID string) ([]models.Envelope, error)
}

// DLQ is the dead-letter queue: an intake-shaped Queue plus the enrichment
// move_to_dlq attaches.
type DLQ interface {
	Queue

	// Enqueue appends an already-enriched DLQ message, used by
	// MoveToDLQ. Returns the new msg_id on the DLQ.
	Enqueue(ctx context.Context, msg models.DLQMessage) (msgID int64, err error)
}
