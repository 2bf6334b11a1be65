package reaper

import (
	"context"
	"testing"
	"time"

	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSweepReleasesOrphans(t *testing.T) {
	slots := new(mocks.SlotStore)
	queue := new(mocks.Queue)

	stale := []models.Slot{{Id: "slot-1", PoolId: "pool-1"}, {Id: "slot-2", PoolId: "pool-1"}}
	slots.On("ListStaleReserved", mock.Anything, 20*time.Minute).Return(stale, nil).Once()
	queue.On("Exists", mock.Anything, "slot-1").Return(false, nil).Once()
	queue.On("Exists", mock.Anything, "slot-2").Return(true, nil).Once()
	slots.On("ReleaseIfOrphan", mock.Anything, "slot-1").Return(true, nil).Once()

	r := New(slots, queue)
	reaped, err := r.Sweep(context.Background(), 20*time.Minute)

	assert.NoError(t, err)
	assert.Equal(t, 1, reaped)
	slots.AssertExpectations(t)
	queue.AssertExpectations(t)
	slots.AssertNotCalled(t, "ReleaseIfOrphan", mock.Anything, "slot-2")
}

func TestSweepSkipsOnQueueCheckFailure(t *testing.T) {
	slots := new(mocks.SlotStore)
	queue := new(mocks.Queue)

	stale := []models.Slot{{Id: "slot-1", PoolId: "pool-1"}}
	slots.On("ListStaleReserved", mock.Anything, 20*time.Minute).Return(stale, nil).Once()
	queue.On("Exists", mock.Anything, "slot-1").Return(false, assertError("dynamo unavailable")).Once()

	r := New(slots, queue)
	reaped, err := r.Sweep(context.Background(), 20*time.Minute)

	assert.NoError(t, err)
	assert.Equal(t, 0, reaped)
	slots.AssertNotCalled(t, "ReleaseIfOrphan", mock.Anything, mock.Anything)
}

func TestSweepNothingStale(t *testing.T) {
	slots := new(mocks.SlotStore)
	queue := new(mocks.Queue)

	slots.On("ListStaleReserved", mock.Anything, 20*time.Minute).Return([]models.Slot{}, nil).Once()

	r := New(slots, queue)
	reaped, err := r.Sweep(context.Background(), 20*time.Minute)

	assert.NoError(t, err)
	assert.Equal(t, 0, reaped)
	queue.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
}

type reaperTestError struct{ msg string }

func (e *reaperTestError) Error() string { return e.msg }

func assertError(msg string) error { return &reaperTestError{msg: msg} }
