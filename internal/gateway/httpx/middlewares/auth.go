// Package middlewares holds the HTTP middleware of the fulfillment gateway.
package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jcmexdev/shoe-fulfillment/internal/pkg/session"
)

type contextKey string

// ContextKeyUserID is the context key under which the authenticated user id
// is stored; ContextKeySessionToken holds the raw token (for logout).
const (
	ContextKeyUserID       contextKey = "user_id"
	ContextKeySessionToken contextKey = "session_token"
)

// UserID extracts the authenticated user id placed in ctx by Authenticate.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	return id, ok
}

// SessionToken extracts the raw session token placed in ctx by Authenticate.
func SessionToken(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(ContextKeySessionToken).(string)
	return t, ok
}

// Authenticate resolves the request's session token to a user id and stores
// it in the context. Token issuance is an external auth service's job; this
// middleware only consumes tokens. Requests without a valid session get 401.
func Authenticate(sessions session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "missing session token")
				return
			}

			sess, err := sessions.Lookup(r.Context(), token)
			if err != nil {
				unauthorized(w, "invalid or expired session")
				return
			}

			// Keep the last-activity timestamp fresh; failures here must
			// not fail the request.
			_ = sessions.Touch(r.Context(), token)

			ctx := context.WithValue(r.Context(), ContextKeyUserID, sess.UserID)
			ctx = context.WithValue(ctx, ContextKeySessionToken, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the token from "Authorization: Bearer <token>" or,
// failing that, the X-Session-Token header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-Session-Token"))
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": msg,
	})
}
