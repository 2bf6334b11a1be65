// Package mocks holds hand-written testify mocks in the shape mockery
// would generate for storage.SlotStore, storage.Queue, storage.DLQ,
// storage.ConfigStore, and storage.Ledger. The generated package itself
// wasn't part of the retrieval pack, so the shape is reproduced by hand
// rather than copied, grounded on the teacher's pkg/storage/mocks.Storage
// usage in handlers_test.go.
package mocks

import (
	"context"
	"time"

	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage"
	"github.com/stretchr/testify/mock"
)

// SlotStore mocks storage.SlotStore.
type SlotStore struct {
	mock.Mock
}

func (m *SlotStore) CreateSlots(ctx context.Context, poolID string, n int) ([]string, error) {
	args := m.Called(ctx, poolID, n)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *SlotStore) ClaimOne(ctx context.Context, poolID, userID string) (string, error) {
	args := m.Called(ctx, poolID, userID)
	return args.String(0), args.Error(1)
}

func (m *SlotStore) MarkConsumed(ctx context.Context, slotID string) error {
	args := m.Called(ctx, slotID)
	return args.Error(0)
}

func (m *SlotStore) ListStaleReserved(ctx context.Context, threshold time.Duration) ([]models.Slot, error) {
	args := m.Called(ctx, threshold)
	slots, _ := args.Get(0).([]models.Slot)
	return slots, args.Error(1)
}

func (m *SlotStore) ReleaseIfOrphan(ctx context.Context, slotID string) (bool, error) {
	args := m.Called(ctx, slotID)
	return args.Bool(0), args.Error(1)
}

// Queue mocks storage.Queue.
type Queue struct {
	mock.Mock
}

func (m *Queue) Send(ctx context.Context, payload models.IntakePayload) (int64, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Queue) Read(ctx context.Context, visibilityTimeout time.Duration, maxCount int) ([]models.Envelope, error) {
	args := m.Called(ctx, visibilityTimeout, maxCount)
	envelopes, _ := args.Get(0).([]models.Envelope)
	return envelopes, args.Error(1)
}

func (m *Queue) Delete(ctx context.Context, msgIDs []int64) error {
	args := m.Called(ctx, msgIDs)
	return args.Error(0)
}

func (m *Queue) Exists(ctx context.Context, resourceID string) (bool, error) {
	args := m.Called(ctx, resourceID)
	return args.Bool(0), args.Error(1)
}

func (m *Queue) List(ctx context.Context, poolID string) ([]models.Envelope, error) {
	args := m.Called(ctx, poolID)
	envelopes, _ := args.Get(0).([]models.Envelope)
	return envelopes, args.Error(1)
}

// DLQ mocks storage.DLQ.
type DLQ struct {
	Queue
}

func (m *DLQ) Enqueue(ctx context.Context, msg models.DLQMessage) (int64, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(int64), args.Error(1)
}

// ConfigStore mocks storage.ConfigStore.
type ConfigStore struct {
	mock.Mock
}

func (m *ConfigStore) Get(ctx context.Context, poolID string) (models.PoolConfig, error) {
	args := m.Called(ctx, poolID)
	cfg, _ := args.Get(0).(models.PoolConfig)
	return cfg, args.Error(1)
}

func (m *ConfigStore) Put(ctx context.Context, cfg models.PoolConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// Ledger mocks storage.Ledger.
type Ledger struct {
	mock.Mock
}

func (m *Ledger) Insert(ctx context.Context, rec models.LedgerRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *Ledger) Get(ctx context.Context, resourceID string) (models.LedgerRecord, bool, error) {
	args := m.Called(ctx, resourceID)
	rec, _ := args.Get(0).(models.LedgerRecord)
	return rec, args.Bool(1), args.Error(2)
}

func (m *Ledger) ListRecent(ctx context.Context, limit int) ([]models.LedgerRecord, error) {
	args := m.Called(ctx, limit)
	recs, _ := args.Get(0).([]models.LedgerRecord)
	return recs, args.Error(1)
}

var (
	_ storage.SlotStore   = (*SlotStore)(nil)
	_ storage.Queue       = (*Queue)(nil)
	_ storage.DLQ         = (*DLQ)(nil)
	_ storage.ConfigStore = (*ConfigStore)(nil)
	_ storage.Ledger      = (*Ledger)(nil)
)
