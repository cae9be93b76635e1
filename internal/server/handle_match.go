package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/arena"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/capture"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/roster"
)

// MatchResponse is returned when a training starts or a competition is
// created.
type MatchResponse struct {
	MatchID string     `json:"matchId"`
	Mode    arena.Mode `json:"mode"`
}

// PlayerStateResponse is one player's public state. Exactly one of id and
// name is set.
type PlayerStateResponse struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	State   string `json:"state"`
	Action  string `json:"action"`
	HasFlag bool   `json:"hasFlag"`
}

// ActionResponse reports the acting player's situation after an action.
type ActionResponse struct {
	Round        int                   `json:"round"`
	MaxRound     int                   `json:"maxRound"`
	State        string                `json:"state"`
	HasFlag      bool                  `json:"hasFlag"`
	HaveFlag     bool                  `json:"haveFlag"`
	GameOver     bool                  `json:"gameOver"`
	TargetState  *PlayerStateResponse  `json:"targetState,omitempty"`
	TargetStates []PlayerStateResponse `json:"targetStates,omitempty"`
}

type ScoreResponse struct {
	TeamA  string `json:"teamA"`
	ScoreA int    `json:"scoreA"`
	TeamB  string `json:"teamB,omitempty"`
	ScoreB int    `json:"scoreB"`
	Round  int    `json:"round"`
}

// TurnResponse is returned after a training round was resolved.
type TurnResponse struct {
	GameOver bool          `json:"gameOver"`
	Score    ScoreResponse `json:"score"`
}

type FlagResponse struct {
	HasFlag bool `json:"hasFlag"`
}

func toPlayerState(v capture.PlayerView) PlayerStateResponse {
	return PlayerStateResponse{
		ID:      v.ID,
		Name:    v.Name,
		State:   v.State.String(),
		Action:  v.Action.String(),
		HasFlag: v.HasFlag,
	}
}

func toActionResponse(res capture.ActionResult) ActionResponse {
	out := ActionResponse{
		Round:    res.Round,
		MaxRound: res.MaxRound,
		State:    res.State.String(),
		HasFlag:  res.HasFlag,
		HaveFlag: res.HaveFlag,
		GameOver: res.GameOver,
	}
	if res.TargetState != nil {
		ts := toPlayerState(*res.TargetState)
		out.TargetState = &ts
	}
	for _, v := range res.TargetStates {
		out.TargetStates = append(out.TargetStates, toPlayerState(v))
	}
	return out
}

func toScore(s capture.Score) ScoreResponse {
	return ScoreResponse{TeamA: s.TeamA, ScoreA: s.ScoreA, TeamB: s.TeamB, ScoreB: s.ScoreB, Round: s.Round}
}

// modeMiddleware rejects match ids of the other mode so that trainings and
// competitions stay on their own routes.
func modeMiddleware(logger *slog.Logger, reg *arena.Registry, mode arena.Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, err := reg.Mode(chi.URLParam(r, "matchID"))
			if err != nil {
				writeServiceError(w, logger, err)
				return
			}
			if got != mode {
				writeError(w, http.StatusNotFound, "no "+string(mode)+" with this id")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleStartTraining(logger *slog.Logger, rosters *roster.Store, reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := rosters.Roster(r.Context(), teamFrom(r).ID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		id, err := reg.StartTraining(team)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, MatchResponse{MatchID: id, Mode: arena.Training})
	}
}

func handleCreateCompetition(logger *slog.Logger, rosters *roster.Store, reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := rosters.Roster(r.Context(), teamFrom(r).ID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		id, err := reg.CreateCompetition(team)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, MatchResponse{MatchID: id, Mode: arena.Competition})
	}
}

func handleJoinCompetition(logger *slog.Logger, rosters *roster.Store, reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := rosters.Roster(r.Context(), teamFrom(r).ID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		id := chi.URLParam(r, "matchID")
		if err := reg.Join(id, team); err != nil {
			writeServiceError(w, logger, err)
			return
		}
		sc, err := reg.Score(id, team.ID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toScore(sc))
	}
}

func handleScore(logger *slog.Logger, reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := reg.Score(chi.URLParam(r, "matchID"), teamFrom(r).ID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toScore(sc))
	}
}

func handleTurn(logger *slog.Logger, reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, teamID := chi.URLParam(r, "matchID"), teamFrom(r).ID
		over, err := reg.Advance(id, teamID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		sc, err := reg.Score(id, teamID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, TurnResponse{GameOver: over, Score: toScore(sc)})
	}
}

func handleStop(logger *slog.Logger, reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.Stop(chi.URLParam(r, "matchID"), teamFrom(r).ID); err != nil {
			writeServiceError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleHasFlag(logger *slog.Logger, reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		has, err := reg.HasFlag(chi.URLParam(r, "matchID"), teamFrom(r).ID, chi.URLParam(r, "playerID"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, FlagResponse{HasFlag: has})
	}
}

func handleAction(logger *slog.Logger, reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action, err := capture.ParseAction(chi.URLParam(r, "action"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if action == capture.ActionObserve {
			handleObserve(logger, reg)(w, r)
			return
		}

		res, err := reg.Submit(
			chi.URLParam(r, "matchID"),
			teamFrom(r).ID,
			chi.URLParam(r, "playerID"),
			action,
			chi.URLParam(r, "targetID"),
		)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toActionResponse(res))
	}
}

func handleObserve(logger *slog.Logger, reg *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := reg.Observe(chi.URLParam(r, "matchID"), teamFrom(r).ID, chi.URLParam(r, "playerID"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toActionResponse(res))
	}
}
