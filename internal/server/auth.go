package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/roster"
)

type ctxKey int

const ctxKeyTeam ctxKey = iota

// teamAuthMiddleware authenticates a team with HTTP Basic credentials:
// the team name as user and the team secret as password.
func teamAuthMiddleware(logger *slog.Logger, rosters *roster.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, secret, ok := r.BasicAuth()
			if !ok || name == "" {
				w.Header().Set("WWW-Authenticate", `Basic realm="capture"`)
				writeError(w, http.StatusUnauthorized, "team credentials required")
				return
			}

			team, err := rosters.Authenticate(r.Context(), name, secret)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="capture"`)
				writeServiceError(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyTeam, team)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func teamFrom(r *http.Request) roster.Team {
	return r.Context().Value(ctxKeyTeam).(roster.Team)
}

// adminAuthMiddleware requires "Authorization: Bearer <token>". With an
// empty token the admin routes do not exist.
func adminAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeError(w, http.StatusNotFound, "admin api disabled")
				return
			}

			got, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
