// Package postgres implements the external ledger datastore the Bridge
// worker commits confirmed intents to, separately from the DynamoDB tables
// that back slots, the config store, and the intake queues.
package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nrhodes/burstqueue/pkg/models"
)

// Ledger implements storage.Ledger on top of a Postgres table keyed by
// resource_id. Insert is a ON CONFLICT DO NOTHING upsert: the idempotency
// guarantee comes from the unique constraint, not from an application-level
// existence check, so two Bridge workers racing on the same resource_id
// never both succeed in creating a row.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) Insert(ctx context.Context, rec models.LedgerRecord) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO ledger_records (resource_id, pool_id, user_id, confirmed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (resource_id) DO NOTHING
	`, rec.ResourceId, rec.PoolId, rec.UserId, rec.ConfirmedAt)
	if err != nil {
		return errors.Wrapf(err, "insert ledger record %s", rec.ResourceId)
	}
	return nil
}

func (l *Ledger) Get(ctx context.Context, resourceID string) (models.LedgerRecord, bool, error) {
	row := l.pool.QueryRow(ctx, `
		SELECT resource_id, pool_id, user_id, confirmed_at
		FROM ledger_records
		WHERE resource_id = $1
	`, resourceID)

	var rec models.LedgerRecord
	if err := row.Scan(&rec.ResourceId, &rec.PoolId, &rec.UserId, &rec.ConfirmedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.LedgerRecord{}, false, nil
		}
		return models.LedgerRecord{}, false, errors.Wrapf(err, "get ledger record %s", resourceID)
	}
	return rec, true, nil
}

func (l *Ledger) ListRecent(ctx context.Context, limit int) ([]models.LedgerRecord, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT resource_id, pool_id, user_id, confirmed_at
		FROM ledger_records
		ORDER BY confirmed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list recent ledger records")
	}
	defer rows.Close()

	var out []models.LedgerRecord
	for rows.Next() {
		var rec models.LedgerRecord
		if err := rows.Scan(&rec.ResourceId, &rec.PoolId, &rec.UserId, &rec.ConfirmedAt); err != nil {
			return nil, errors.Wrap(err, "scan ledger record")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate ledger records")
	}
	return out, nil
}
