package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCommitDispatcherPrefersWebhookOverRPC(t *testing.T) {
	var gotIdempotencyKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdempotencyKey = r.Header.Get("X-Idempotency-Key")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ledger := new(mocks.Ledger)
	d := newCommitDispatcher(ledger)
	cfg := models.PoolConfig{CommitWebhookURL: server.URL, CommitRPCName: "finalize_transaction"}
	payload := models.IntakePayload{ResourceId: "slot-1", PoolId: "pool-1"}

	err := d.commit(context.Background(), cfg, payload)

	assert.NoError(t, err)
	assert.Equal(t, "slot-1", gotIdempotencyKey)
	ledger.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCommitDispatcherFallsBackToRPC(t *testing.T) {
	ledger := new(mocks.Ledger)
	ledger.On("Insert", mock.Anything, mock.AnythingOfType("models.LedgerRecord")).Return(nil).Once()
	d := newCommitDispatcher(ledger)
	cfg := models.PoolConfig{CommitRPCName: "finalize_transaction"}
	payload := models.IntakePayload{ResourceId: "slot-1", PoolId: "pool-1"}

	err := d.commit(context.Background(), cfg, payload)

	assert.NoError(t, err)
	ledger.AssertExpectations(t)
}

func TestCommitDispatcherUnknownRPCName(t *testing.T) {
	ledger := new(mocks.Ledger)
	d := newCommitDispatcher(ledger)
	cfg := models.PoolConfig{CommitRPCName: "does_not_exist"}

	err := d.commit(context.Background(), cfg, models.IntakePayload{ResourceId: "slot-1"})

	assert.Error(t, err)
}

func TestCommitDispatcherWebhookNonOKIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ledger := new(mocks.Ledger)
	d := newCommitDispatcher(ledger)
	cfg := models.PoolConfig{CommitWebhookURL: server.URL}

	err := d.commit(context.Background(), cfg, models.IntakePayload{ResourceId: "slot-1"})

	assert.Error(t, err)
	var transient *transientError
	assert.ErrorAs(t, err, &transient)
}
