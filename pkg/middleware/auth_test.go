package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nrhodes/burstqueue/pkg/auth"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireBearerRejectsMissingHeader(t *testing.T) {
	svc := auth.NewService("secret")
	handler := RequireBearer(svc, auth.RoleCaller)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/internal/bridge/drain", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireBearerAcceptsSufficientRole(t *testing.T) {
	svc := auth.NewService("secret")
	token, _ := svc.IssueToken(auth.RoleOperator, time.Hour)
	handler := RequireBearer(svc, auth.RoleCaller)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/internal/bridge/drain", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireBearerRejectsInsufficientRole(t *testing.T) {
	svc := auth.NewService("secret")
	token, _ := svc.IssueToken(auth.RoleCaller, time.Hour)
	handler := RequireBearer(svc, auth.RoleOperator)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/internal/dlq", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
