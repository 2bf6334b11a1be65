// Package claim implements the composite claim_resource_and_queue
// operation: reserve a slot, then enqueue the intake message that will
// carry it through the Bridge to the ledger.
package claim

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/nrhodes/burstqueue/pkg/metrics"
	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage"
)

// ErrSoldOut is returned when a pool has no AVAILABLE slot left to claim.
var ErrSoldOut = errors.New("pool sold out")

// Service reserves inventory and hands the intent to the intake queue.
type Service struct {
	Slots storage.SlotStore
	Queue storage.Queue
}

func New(slots storage.SlotStore, queue storage.Queue) *Service {
	return &Service{Slots: slots, Queue: queue}
}

// Result is what the HTTP layer reports back to the caller.
type Result struct {
	SlotId string
	MsgId  int64
}

// ClaimResourceAndQueue reserves one slot in poolID for userID and enqueues
// the corresponding intake message. If Send fails after the slot is
// reserved, the caller gets an error and no slot id, and the slot is left
// RESERVED. The Reaper's orphan sweep is what eventually notices the queue
// has no live intent for it and releases it back to AVAILABLE.
// This is the weakened-atomicity tradeoff spec.md §4.3 calls for: a
// dangling reservation is preferable to double-selling the same slot.
func (s *Service) ClaimResourceAndQueue(ctx context.Context, poolID, userID string) (Result, error) {
	slotID, err := s.Slots.ClaimOne(ctx, poolID, userID)
	if err != nil {
		return Result{}, errors.Wrapf(err, "claim slot in pool %s", poolID)
	}
	if slotID == "" {
		metrics.ClaimSoldOutTotal.Inc()
		return Result{}, ErrSoldOut
	}

	payload := models.IntakePayload{
		PoolId:     poolID,
		ResourceId: slotID,
		UserId:     userID,
		State:      models.StateQueued,
	}
	msgID, err := s.Queue.Send(ctx, payload)
	if err != nil {
		return Result{}, errors.Wrapf(err, "enqueue intake message for slot %s", slotID)
	}

	return Result{SlotId: slotID, MsgId: msgID}, nil
}
