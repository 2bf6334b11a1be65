package storage

import (
	"context"
	"testing"

	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/stretchr/testify/assert"
)

// StubLedger stands in for postgres.Ledger in tests that need a real Ledger
// implementation rather than a mock — exercising the idempotent
// insert-if-absent contract every Ledger implementation must honor.
func TestStubLedgerInsertIsIdempotent(t *testing.T) {
	ledger := NewStubLedger()
	rec := models.LedgerRecord{ResourceId: "slot-1", PoolId: "pool-1", UserId: "user-1"}

	assert.NoError(t, ledger.Insert(context.Background(), rec))
	first, _, _ := ledger.Get(context.Background(), "slot-1")

	rec.UserId = "user-2"
	assert.NoError(t, ledger.Insert(context.Background(), rec))
	second, ok, err := ledger.Get(context.Background(), "slot-1")

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, first.UserId, second.UserId)
	assert.Equal(t, "user-1", second.UserId)
}

func TestStubLedgerGetMissing(t *testing.T) {
	ledger := NewStubLedger()

	_, ok, err := ledger.Get(context.Background(), "does-not-exist")

	assert.NoError(t, err)
	assert.False(t, ok)
}

var _ Ledger = (*StubLedger)(nil)
