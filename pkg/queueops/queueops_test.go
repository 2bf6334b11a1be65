package queueops

import (
	"context"
	"testing"

	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMoveToDLQ(t *testing.T) {
	source := new(mocks.Queue)
	dlq := new(mocks.DLQ)

	msg := models.Envelope{MsgId: 5, ReadCt: 3, Payload: models.IntakePayload{ResourceId: "slot-1"}}
	dlq.On("Enqueue", mock.Anything, mock.MatchedBy(func(m models.DLQMessage) bool {
		return m.OriginalMsgId == 5 && m.FinalReadCt == 3 && m.Reason == "retry exhaustion"
	})).Return(int64(100), nil).Once()
	source.On("Delete", mock.Anything, []int64{5}).Return(nil).Once()

	err := MoveToDLQ(context.Background(), source, dlq, msg, "retry exhaustion")

	assert.NoError(t, err)
	source.AssertExpectations(t)
	dlq.AssertExpectations(t)
}

func TestReplay(t *testing.T) {
	dlq := new(mocks.DLQ)
	source := new(mocks.Queue)

	target := models.Envelope{MsgId: 7, Payload: models.IntakePayload{PoolId: "pool-1", ResourceId: "slot-1"}}
	dlq.On("List", mock.Anything, "pool-1").Return([]models.Envelope{target}, nil).Once()
	source.On("Send", mock.Anything, target.Payload).Return(int64(42), nil).Once()
	dlq.On("Delete", mock.Anything, []int64{7}).Return(nil).Once()

	newID, err := Replay(context.Background(), dlq, source, 7, "pool-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(42), newID)
	dlq.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestReplayNotFound(t *testing.T) {
	dlq := new(mocks.DLQ)
	source := new(mocks.Queue)

	dlq.On("List", mock.Anything, "pool-1").Return([]models.Envelope{}, nil).Once()

	_, err := Replay(context.Background(), dlq, source, 7, "pool-1")

	assert.Error(t, err)
	source.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDiscard(t *testing.T) {
	dlq := new(mocks.DLQ)
	dlq.On("Delete", mock.Anything, []int64{9}).Return(nil).Once()

	err := Discard(context.Background(), dlq, 9)

	assert.NoError(t, err)
	dlq.AssertExpectations(t)
}
