package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/arena"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	reg, rosters := deps.Arena, deps.Rosters

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Capture the Code API", "/openapi.json", "/docs"))

	// Spectators need no credentials.
	r.Get("/api/spectate", handleListMatches(reg))
	r.Get("/api/spectate/{matchID}", handleSpectate(logger, reg))
	r.Get("/api/spectate/{matchID}/events", handleSpectateEvents(logger, reg, deps.Broker))
	r.Get("/ws/spectate/{matchID}", handleSpectateWS(logger, reg, deps.Broker))

	r.Post("/api/teams", handleCreateTeam(logger, rosters))

	// Team routes: HTTP Basic with team name and secret.
	r.Group(func(r chi.Router) {
		r.Use(teamAuthMiddleware(logger, rosters))

		r.Get("/api/teams", handleListTeams(logger, rosters))
		r.Get("/api/teams/me", handleMe(logger, rosters))
		r.Post("/api/teams/me/players", handleAddPlayer(logger, rosters))

		r.Put("/api/training", handleStartTraining(logger, rosters, reg))
		r.Route("/api/training/{matchID}", func(r chi.Router) {
			r.Use(modeMiddleware(logger, reg, arena.Training))
			r.Get("/", handleScore(logger, reg))
			r.Delete("/", handleStop(logger, reg))
			r.Post("/turn", handleTurn(logger, reg))
			playerRoutes(r, logger, reg)
		})

		r.Post("/api/competitions", handleCreateCompetition(logger, rosters, reg))
		r.Route("/api/competitions/{matchID}", func(r chi.Router) {
			r.Use(modeMiddleware(logger, reg, arena.Competition))
			r.Get("/", handleScore(logger, reg))
			r.Delete("/", handleStop(logger, reg))
			r.Post("/join", handleJoinCompetition(logger, rosters, reg))
			playerRoutes(r, logger, reg)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminAuthMiddleware(deps.AdminToken))
		r.Delete("/matches", handleClearMatches(logger, reg))
		r.Delete("/all", handleClearAll(logger, deps))
	})
}

// playerRoutes are shared by trainings and competitions.
func playerRoutes(r chi.Router, logger *slog.Logger, reg *arena.Registry) {
	r.Route("/players/{playerID}", func(r chi.Router) {
		r.Get("/flag", handleHasFlag(logger, reg))
		r.Post("/observe", handleObserve(logger, reg))
		r.Post("/actions/{action}", handleAction(logger, reg))
		r.Post("/actions/{action}/target/{targetID}", handleAction(logger, reg))
	})
}
