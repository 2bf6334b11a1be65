package storage

import (
	"context"
	"time"

	"github.com/nrhodes/burstqueue/pkg/models"
)

// Ledger is the authoritative external system of record. Insertion is
// idempotent on resource_id: a second Insert for the same resource_id must
// not create a second row, and must not error either — it means resuming
// the same logical intent, per spec.md §3.
type Ledger interface {
	Insert(ctx context.Context, rec models.LedgerRecord) error
	Get(ctx context.Context, resourceID string) (models.LedgerRecord, bool, error)
	ListRecent(ctx context.Context, limit int) ([]models.LedgerRecord, error)
}

// StubLedger is an in-memory Ledger used only by this package's tests. Not
// used in cmd/ wiring.
type StubLedger struct {
	records map[string]models.LedgerRecord
}

func NewStubLedger() *StubLedger {
	return &StubLedger{records: make(map[string]models.LedgerRecord)}
}

func (s *StubLedger) Insert(ctx context.Context, rec models.LedgerRecord) error {
	if _, ok := s.records[rec.ResourceId]; ok {
		return nil
	}
	if rec.ConfirmedAt.IsZero() {
		rec.ConfirmedAt = time.Now()
	}
	s.records[rec.ResourceId] = rec
	return nil
}

func (s *StubLedger) Get(ctx context.Context, resourceID string) (models.LedgerRecord, bool, error) {
	rec, ok := s.records[resourceID]
	return rec, ok, nil
}

func (s *StubLedger) ListRecent(ctx context.Context, limit int) ([]models.LedgerRecord, error) {
	out := make([]models.LedgerRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
