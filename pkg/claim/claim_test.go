package claim

import (
	"context"
	"testing"

	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestClaimResourceAndQueueSuccess(t *testing.T) {
	slots := new(mocks.SlotStore)
	queue := new(mocks.Queue)

	slots.On("ClaimOne", mock.Anything, "pool-1", "user-1").Return("slot-1", nil).Once()
	queue.On("Send", mock.Anything, mock.MatchedBy(func(p models.IntakePayload) bool {
		return p.ResourceId == "slot-1" && p.PoolId == "pool-1" && p.State == models.StateQueued
	})).Return(int64(42), nil).Once()

	svc := New(slots, queue)
	result, err := svc.ClaimResourceAndQueue(context.Background(), "pool-1", "user-1")

	assert.NoError(t, err)
	assert.Equal(t, "slot-1", result.SlotId)
	assert.Equal(t, int64(42), result.MsgId)
	slots.AssertExpectations(t)
	queue.AssertExpectations(t)
}

func TestClaimResourceAndQueueSoldOut(t *testing.T) {
	slots := new(mocks.SlotStore)
	queue := new(mocks.Queue)

	slots.On("ClaimOne", mock.Anything, "pool-1", "user-1").Return("", nil).Once()

	svc := New(slots, queue)
	_, err := svc.ClaimResourceAndQueue(context.Background(), "pool-1", "user-1")

	assert.ErrorIs(t, err, ErrSoldOut)
	queue.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestClaimResourceAndQueueSendFailureLeavesSlotReserved(t *testing.T) {
	slots := new(mocks.SlotStore)
	queue := new(mocks.Queue)

	slots.On("ClaimOne", mock.Anything, "pool-1", "user-1").Return("slot-1", nil).Once()
	queue.On("Send", mock.Anything, mock.Anything).Return(int64(0), assertError("dynamo unavailable")).Once()

	svc := New(slots, queue)
	_, err := svc.ClaimResourceAndQueue(context.Background(), "pool-1", "user-1")

	assert.Error(t, err)
	slots.AssertNotCalled(t, "ReleaseIfOrphan", mock.Anything, mock.Anything)
}

type claimTestError struct{ msg string }

func (e *claimTestError) Error() string { return e.msg }

func assertError(msg string) error { return &claimTestError{msg: msg} }
