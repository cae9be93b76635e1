package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/arena"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/roster"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps errors of the arena and roster packages to HTTP
// statuses. Anything unknown is logged and reported as 500.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var status int
	switch {
	case errors.Is(err, arena.ErrNotFound), errors.Is(err, roster.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, arena.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, arena.ErrPrecondition):
		status = http.StatusPreconditionFailed
	case errors.Is(err, arena.ErrObserveRejected), errors.Is(err, roster.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, roster.ErrUnauthorized):
		status = http.StatusUnauthorized
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
