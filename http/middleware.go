package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/collagery/collagery"
)

// Tokens is the authorization surface handlers depend on.
type Tokens interface {
	Issue() (string, error)
	Verify(token string) error
}

type requestIDKey struct{}

// RequestID tags every request with a fresh id, exposed in the X-Request-Id
// response header and on the request context for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFromContext returns the request id, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequireAdmin rejects requests lacking a valid admin bearer token.
func RequireAdmin(tokens Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authorized(tokens, r) {
				WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authorized reports whether the request carries a valid admin bearer token.
func authorized(tokens Tokens, r *http.Request) bool {
	token, ok := collagery.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return false
	}
	return tokens.Verify(token) == nil
}
