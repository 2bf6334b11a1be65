// Package queueops holds the operations that span both the intake queue and
// the dead-letter queue. Neither storage.Queue nor storage.DLQ alone can
// express "move a message from one queue to the other" — that's a property
// of the pair, not of either queue on its own.
package queueops

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage"
)

// MoveToDLQ enriches msg with provenance and appends it to dlq, then deletes
// the original from source. The two writes are not transactional: if the
// process dies between them, the message exists on both queues. A re-run of
// MoveToDLQ against the same original message enqueues a second DLQ copy
// under a new msg_id. Its Delete against source is a no-op if the original
// is already gone.
func MoveToDLQ(ctx context.Context, source storage.Queue, dlq storage.DLQ, msg models.Envelope, reason string) error {
	dlqMsg := models.DLQMessage{
		Envelope:      msg,
		OriginalMsgId: msg.MsgId,
		FinalReadCt:   msg.ReadCt,
		Reason:        reason,
	}

	if _, err := dlq.Enqueue(ctx, dlqMsg); err != nil {
		return errors.Wrapf(err, "enqueue message %d to dlq", msg.MsgId)
	}
	if err := source.Delete(ctx, []int64{msg.MsgId}); err != nil {
		return errors.Wrapf(err, "delete message %d from source queue", msg.MsgId)
	}
	return nil
}

// Replay is the operator-facing inverse of MoveToDLQ: it re-sends the
// original payload to the live intake queue, resetting read_ct, then
// removes the DLQ entry.
func Replay(ctx context.Context, dlq storage.DLQ, source storage.Queue, dlqMsgID int64, poolID string) (int64, error) {
	messages, err := dlq.List(ctx, poolID)
	if err != nil {
		return 0, errors.Wrap(err, "list dlq messages for replay")
	}

	var target *models.Envelope
	for i := range messages {
		if messages[i].MsgId == dlqMsgID {
			target = &messages[i]
			break
		}
	}
	if target == nil {
		return 0, errors.Newf("dlq message %d not found", dlqMsgID)
	}

	newID, err := source.Send(ctx, target.Payload)
	if err != nil {
		return 0, errors.Wrapf(err, "replay message %d to intake queue", dlqMsgID)
	}
	if err := dlq.Delete(ctx, []int64{dlqMsgID}); err != nil {
		return 0, errors.Wrapf(err, "delete replayed dlq message %d", dlqMsgID)
	}
	return newID, nil
}

// Discard permanently removes a message from the DLQ without replaying it.
func Discard(ctx context.Context, dlq storage.DLQ, dlqMsgID int64) error {
	if err := dlq.Delete(ctx, []int64{dlqMsgID}); err != nil {
		return errors.Wrapf(err, "discard dlq message %d", dlqMsgID)
	}
	return nil
}
