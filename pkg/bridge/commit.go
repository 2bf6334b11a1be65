package bridge

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage"
)

// commitRPC performs an idempotent insert-if-absent of payload into the
// ledger, keyed by resource_id.
type commitRPC func(ctx context.Context, ledger storage.Ledger, payload models.IntakePayload) error

// finalizeTransaction is the default, and currently only, named commit RPC.
// It is registered under "finalize_transaction", the default value of
// PoolConfig.CommitRPCName.
func finalizeTransaction(ctx context.Context, ledger storage.Ledger, payload models.IntakePayload) error {
	rec := models.LedgerRecord{
		ResourceId:  payload.ResourceId,
		PoolId:      payload.PoolId,
		UserId:      payload.UserId,
		ConfirmedAt: time.Now().UTC(),
	}
	if err := ledger.Insert(ctx, rec); err != nil {
		return errTransient(errors.Wrapf(err, "commit rpc finalize_transaction for %s", payload.ResourceId))
	}
	return nil
}

// commitDispatcher is the tagged-variant selector spec.md §9 calls for:
// {commit-via-RPC, commit-via-HTTP} chosen per-pool from config. A webhook
// URL, when set, always wins over the RPC registry, per spec.md §4.4(e).
type commitDispatcher struct {
	ledger storage.Ledger
	client *webhookClient
	rpcs   map[string]commitRPC
}

func newCommitDispatcher(ledger storage.Ledger) *commitDispatcher {
	return &commitDispatcher{
		ledger: ledger,
		client: newWebhookClient(),
		rpcs: map[string]commitRPC{
			"finalize_transaction": finalizeTransaction,
		},
	}
}

func (d *commitDispatcher) commit(ctx context.Context, cfg models.PoolConfig, payload models.IntakePayload) error {
	if cfg.CommitWebhookURL != "" {
		return d.client.post(ctx, cfg.CommitWebhookURL, payload.ResourceId, payload)
	}

	rpc, ok := d.rpcs[cfg.CommitRPCName]
	if !ok {
		return errors.Newf("unknown commit_rpc_name %q", cfg.CommitRPCName)
	}
	return rpc(ctx, d.ledger, payload)
}
