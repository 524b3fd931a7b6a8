package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/goldshop/internal/session"
)

// SessionHeader carries the id returned by POST /api/v1/sessions.
const SessionHeader = "X-Session-ID"

type contextKey string

const sessionKey contextKey = "session"

// SessionMiddleware resolves the caller's session from SessionHeader.
func SessionMiddleware(registry *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				respondError(w, http.StatusUnauthorized, "missing_session", "missing "+SessionHeader+" header")
				return
			}

			s, err := registry.Get(id)
			if errors.Is(err, session.ErrSessionNotFound) {
				respondError(w, http.StatusNotFound, "session_not_found", "session not found or expired")
				return
			}
			if err != nil {
				respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}
