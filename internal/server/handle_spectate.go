package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/arena"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/feed"
)

type EventResponse struct {
	Seq    int    `json:"seq"`
	Round  int    `json:"round"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
	Event  string `json:"event"`
}

type PlayerInfoResponse struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Action  string `json:"action"`
	HasCode bool   `json:"hasCode"`
}

// SpectateResponse is what a spectator sees of a match. Players are only
// listed for trainings.
type SpectateResponse struct {
	TeamA   string               `json:"teamA"`
	TeamB   string               `json:"teamB,omitempty"`
	Events  []EventResponse      `json:"events"`
	Players []PlayerInfoResponse `json:"players,omitempty"`
}

func handleListMatches(reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reg.List())
	}
}

func handleSpectate(logger *slog.Logger, reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sp, err := reg.Spectate(chi.URLParam(r, "matchID"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		resp := SpectateResponse{
			TeamA:  sp.TeamA,
			TeamB:  sp.TeamB,
			Events: make([]EventResponse, 0, len(sp.Events)),
		}
		for _, ev := range sp.Events {
			resp.Events = append(resp.Events, EventResponse{
				Seq:    ev.Seq,
				Round:  ev.Round,
				Source: ev.Source,
				Target: ev.Target,
				Event:  ev.Description,
			})
		}
		for _, p := range sp.Players {
			resp.Players = append(resp.Players, PlayerInfoResponse{
				Name:    p.Name,
				State:   p.State.String(),
				Action:  p.Action.String(),
				HasCode: p.HasCode,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleSpectateEvents streams match events as server-sent events. The
// stream starts with the events already in the log and ends with an "end"
// event once the match is over.
func handleSpectateEvents(logger *slog.Logger, reg *arena.Registry, broker *feed.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		stream, err := openStream(r, reg, broker, chi.URLParam(r, "matchID"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		defer stream.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		send := func(data []byte) bool {
			fmt.Fprintf(w, "event: match\ndata: %s\n\n", data)
			flusher.Flush()
			return true
		}
		ping := func() bool {
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
			return true
		}

		if stream.run(r.Context(), send, ping) {
			fmt.Fprintf(w, "event: end\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}
