package dlqadmin

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListDLQ(t *testing.T) {
	dlq := new(mocks.DLQ)
	queue := new(mocks.Queue)
	dlq.On("List", mock.Anything, "pool-1").Return([]models.Envelope{{MsgId: 1}}, nil).Once()

	h := NewHandler(dlq, queue, slog.Default())
	req := httptest.NewRequest(http.MethodGet, "/internal/dlq?pool_id=pool-1", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got []models.Envelope
	json.Unmarshal(rr.Body.Bytes(), &got)
	assert.Len(t, got, 1)
}

func TestReplayDLQ(t *testing.T) {
	dlq := new(mocks.DLQ)
	queue := new(mocks.Queue)

	target := models.Envelope{MsgId: 7, Payload: models.IntakePayload{PoolId: "pool-1", ResourceId: "slot-1"}}
	dlq.On("List", mock.Anything, "pool-1").Return([]models.Envelope{target}, nil).Once()
	queue.On("Send", mock.Anything, target.Payload).Return(int64(42), nil).Once()
	dlq.On("Delete", mock.Anything, []int64{7}).Return(nil).Once()

	h := NewHandler(dlq, queue, slog.Default())
	body, _ := json.Marshal(msgIDsRequest{MsgIds: []int64{7}, PoolId: "pool-1"})
	req := httptest.NewRequest(http.MethodPost, "/internal/dlq/replay", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Replay(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string][]int64
	json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Equal(t, []int64{42}, resp["replayed"])
}

func TestDiscardDLQ(t *testing.T) {
	dlq := new(mocks.DLQ)
	queue := new(mocks.Queue)
	dlq.On("Delete", mock.Anything, []int64{9}).Return(nil).Once()

	h := NewHandler(dlq, queue, slog.Default())
	body, _ := json.Marshal(msgIDsRequest{MsgIds: []int64{9}})
	req := httptest.NewRequest(http.MethodPost, "/internal/dlq/discard", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Discard(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string][]int64
	json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Equal(t, []int64{9}, resp["discarded"])
}
