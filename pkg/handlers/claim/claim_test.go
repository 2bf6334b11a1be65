package claim

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	claimsvc "github.com/nrhodes/burstqueue/pkg/claim"
	"github.com/nrhodes/burstqueue/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func withPoolID(req *http.Request, poolID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("pool_id", poolID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestClaimHandlerSuccess(t *testing.T) {
	slots := new(mocks.SlotStore)
	queue := new(mocks.Queue)
	slots.On("ClaimOne", mock.Anything, "pool-1", "user-1").Return("slot-1", nil).Once()
	queue.On("Send", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	h := NewHandler(claimsvc.New(slots, queue), slog.Default())

	body, _ := json.Marshal(request{UserId: "user-1"})
	req := withPoolID(httptest.NewRequest(http.MethodPost, "/pools/pool-1/claims", bytes.NewReader(body)), "pool-1")
	rr := httptest.NewRecorder()

	h.Claim(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp response
	json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Equal(t, "slot-1", *resp.ResourceId)
}

func TestClaimHandlerSoldOut(t *testing.T) {
	slots := new(mocks.SlotStore)
	queue := new(mocks.Queue)
	slots.On("ClaimOne", mock.Anything, "pool-1", "user-1").Return("", nil).Once()

	h := NewHandler(claimsvc.New(slots, queue), slog.Default())

	body, _ := json.Marshal(request{UserId: "user-1"})
	req := withPoolID(httptest.NewRequest(http.MethodPost, "/pools/pool-1/claims", bytes.NewReader(body)), "pool-1")
	rr := httptest.NewRecorder()

	h.Claim(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp response
	json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.Nil(t, resp.ResourceId)
}

func TestClaimHandlerMissingUserId(t *testing.T) {
	slots := new(mocks.SlotStore)
	queue := new(mocks.Queue)
	h := NewHandler(claimsvc.New(slots, queue), slog.Default())

	body, _ := json.Marshal(request{UserId: ""})
	req := withPoolID(httptest.NewRequest(http.MethodPost, "/pools/pool-1/claims", bytes.NewReader(body)), "pool-1")
	rr := httptest.NewRecorder()

	h.Claim(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	slots.AssertNotCalled(t, "ClaimOne", mock.Anything, mock.Anything, mock.Anything)
}
