package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nrhodes/burstqueue/pkg/auth"
)

type ctxKey string

const ctxRoleKey ctxKey = "role"

// RequireBearer guards a route with a bearer token carrying at least
// minRole, per spec.md §6's "bearer credential" / "elevated bearer
// credential" language: the Bridge trigger needs RoleCaller, DLQ admin
// needs RoleOperator.
func RequireBearer(svc *auth.Service, minRole auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeUnauthorized(w, "bearer token required")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := svc.ValidateToken(token)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}
			if !auth.HasMinimumRole(claims.Role, minRole) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{"error": "insufficient permissions"})
				return
			}

			ctx := context.WithValue(r.Context(), ctxRoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
