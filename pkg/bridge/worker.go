// Package bridge implements the stateful drain that relays intake messages
// to the external ledger: lease, resolve per-pool config, validate, commit,
// mark the slot consumed, and batch-acknowledge.
package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nrhodes/burstqueue/pkg/metrics"
	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/queueops"
	"github.com/nrhodes/burstqueue/pkg/storage"
)

// Fallback constants used only to bootstrap the very first queue.read call
// of an invocation, before any per-message config has been resolved.
const (
	fallbackVisibilityTimeout = 45 * time.Second
	fallbackBatchSize         = 100
)

// Worker drains intake_queue into the ledger.
type Worker struct {
	Queue  storage.Queue
	DLQ    storage.DLQ
	Slots  storage.SlotStore
	Config storage.ConfigStore

	commit *commitDispatcher
	valid  *webhookClient

	Logger *slog.Logger
}

func New(queue storage.Queue, dlq storage.DLQ, slots storage.SlotStore, config storage.ConfigStore, ledger storage.Ledger) *Worker {
	return &Worker{
		Queue:  queue,
		DLQ:    dlq,
		Slots:  slots,
		Config: config,
		commit: newCommitDispatcher(ledger),
		valid:  newWebhookClient(),
		Logger: slog.Default(),
	}
}

// outcome is what processOne decided to do with one envelope.
type outcome int

const (
	outcomeAck outcome = iota
	outcomeDLQ
	outcomeRedeliver
)

// Run executes one Bridge worker invocation and returns its summary. ctx
// should already carry the invocation's wall-clock deadline; Run checks
// ctx.Err() between messages, never mid-message, so it never abandons a
// message it has started committing.
func (w *Worker) Run(ctx context.Context) (models.DrainSummary, error) {
	metrics.BridgeInvocationsTotal.Inc()

	batch, err := w.Queue.Read(ctx, fallbackVisibilityTimeout, fallbackBatchSize)
	if err != nil {
		return models.DrainSummary{}, errors.Wrap(err, "read intake queue")
	}
	if len(batch) == 0 {
		return models.DrainSummary{}, nil
	}

	configCache := make(map[string]models.PoolConfig)
	summary := models.DrainSummary{Total: len(batch)}
	var ackList []int64

	for _, envelope := range batch {
		if ctx.Err() != nil {
			break
		}

		switch w.processOne(ctx, envelope, configCache) {
		case outcomeAck:
			ackList = append(ackList, envelope.MsgId)
			summary.Processed++
			metrics.BridgeProcessedTotal.Inc()
		case outcomeDLQ:
			summary.DLQ++
			metrics.BridgeDLQTotal.Inc()
		case outcomeRedeliver:
			// Leave it off the ack list; it redelivers once its lease
			// expires.
		}
	}

	if len(ackList) > 0 {
		if err := w.Queue.Delete(ctx, ackList); err != nil {
			w.Logger.Error("ack intake messages failed", "error", err, "count", len(ackList))
		}
	}

	return summary, nil
}

// processOne runs one envelope through validate → commit → mark_consumed,
// distinguishing the terminal cases (malformed payload, missing/inactive
// config, retry exhaustion) that route to DLQ from the transient ones
// (validator/commit failure) that simply redeliver.
func (w *Worker) processOne(ctx context.Context, envelope models.Envelope, cache map[string]models.PoolConfig) outcome {
	payload := envelope.Payload
	if payload.ResourceId == "" || payload.PoolId == "" {
		w.moveToDLQ(ctx, envelope, "malformed payload: missing pool_id or resource_id")
		return outcomeDLQ
	}

	cfg, active := w.resolveConfig(ctx, payload.PoolId, cache)
	if !active {
		w.moveToDLQ(ctx, envelope, "pool config missing or inactive")
		return outcomeDLQ
	}
	if envelope.ReadCt > cfg.MaxRetries {
		w.moveToDLQ(ctx, envelope, "retry exhaustion")
		return outcomeDLQ
	}

	if payload.State == models.StateQueued {
		if err := w.validate(ctx, cfg, payload); err != nil {
			w.Logger.Warn("validation failed, will redeliver", "resource_id", payload.ResourceId, "error", err)
			return outcomeRedeliver
		}
		payload.State = models.StateValidated
	}

	if err := w.commit.commit(ctx, cfg, payload); err != nil {
		w.Logger.Warn("commit failed, will redeliver", "resource_id", payload.ResourceId, "error", err)
		return outcomeRedeliver
	}
	payload.State = models.StateCommitted

	if err := w.Slots.MarkConsumed(ctx, payload.ResourceId); err != nil {
		// Logged, non-fatal: the ledger is authoritative and the Reaper
		// reconciles if needed, per spec.md §4.4.
		w.Logger.Error("mark_consumed failed after commit", "resource_id", payload.ResourceId, "error", err)
	}

	return outcomeAck
}

// validate runs the optional validation webhook, or treats the message as
// vacuously validated when none is configured.
func (w *Worker) validate(ctx context.Context, cfg models.PoolConfig, payload models.IntakePayload) error {
	if cfg.ValidationWebhookURL == "" {
		return nil
	}
	return w.valid.post(ctx, cfg.ValidationWebhookURL, payload.ResourceId, payload)
}

// resolveConfig memoizes config.get per invocation. The bool result is
// false for both a missing row and an explicitly inactive pool — the
// Bridge worker treats them identically.
func (w *Worker) resolveConfig(ctx context.Context, poolID string, cache map[string]models.PoolConfig) (models.PoolConfig, bool) {
	if cfg, ok := cache[poolID]; ok {
		return cfg, cfg.IsActive
	}

	cfg, err := w.Config.Get(ctx, poolID)
	if err != nil {
		if !errors.Is(err, storage.ErrConfigNotFound) {
			w.Logger.Error("config lookup failed", "pool_id", poolID, "error", err)
		}
		cache[poolID] = models.PoolConfig{}
		return models.PoolConfig{}, false
	}

	cache[poolID] = cfg
	return cfg, cfg.IsActive
}

func (w *Worker) moveToDLQ(ctx context.Context, envelope models.Envelope, reason string) {
	if err := queueops.MoveToDLQ(ctx, w.Queue, w.DLQ, envelope, reason); err != nil {
		w.Logger.Error("move_to_dlq failed", "msg_id", envelope.MsgId, "error", err)
	}
}
