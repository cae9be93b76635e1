package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/roster"
)

// CreateTeamRequest is the request body for POST /api/teams.
type CreateTeamRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

// TeamResponse is a team with its players.
type TeamResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt string          `json:"createdAt"`
	Players   []roster.Player `json:"players"`
}

// AddPlayerRequest is the request body for POST /api/teams/me/players.
type AddPlayerRequest struct {
	Name string `json:"name"`
}

func handleCreateTeam(logger *slog.Logger, rosters *roster.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTeamRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || req.Secret == "" {
			writeError(w, http.StatusBadRequest, "name and secret are required")
			return
		}

		team, err := rosters.CreateTeam(r.Context(), req.Name, req.Secret)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		logger.Info("team created", "team_id", team.ID, "team", team.Name)
		writeJSON(w, http.StatusCreated, TeamResponse{
			ID:        team.ID,
			Name:      team.Name,
			CreatedAt: team.CreatedAt,
			Players:   []roster.Player{},
		})
	}
}

func handleListTeams(logger *slog.Logger, rosters *roster.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := rosters.ListTeams(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		if teams == nil {
			teams = []roster.Team{}
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func handleMe(logger *slog.Logger, rosters *roster.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		players, err := rosters.Players(r.Context(), team.ID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		if players == nil {
			players = []roster.Player{}
		}
		writeJSON(w, http.StatusOK, TeamResponse{
			ID:        team.ID,
			Name:      team.Name,
			CreatedAt: team.CreatedAt,
			Players:   players,
		})
	}
}

func handleAddPlayer(logger *slog.Logger, rosters *roster.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddPlayerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		p, err := rosters.AddPlayer(r.Context(), teamFrom(r).ID, req.Name)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}
