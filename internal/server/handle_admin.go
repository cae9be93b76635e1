package server

import (
	"log/slog"
	"net/http"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/arena"
)

func handleClearMatches(logger *slog.Logger, reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := reg.Clear()
		logger.Info("admin cleared matches", "count", n)
		writeJSON(w, http.StatusOK, map[string]int{"matches": n})
	}
}

func handleClearAll(logger *slog.Logger, deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := deps.Arena.Clear()
		if err := deps.Rosters.DeleteAll(r.Context()); err != nil {
			writeServiceError(w, logger, err)
			return
		}
		logger.Info("admin cleared matches and rosters", "matches", n)
		writeJSON(w, http.StatusOK, map[string]int{"matches": n})
	}
}

