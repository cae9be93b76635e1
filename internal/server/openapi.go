package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/arena"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/roster"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse documents GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Checks map[string]struct {
		Status    string `json:"status"`
		LatencyMS int64  `json:"latencyMs"`
	} `json:"checks"`
}

type matchPath struct {
	MatchID string `path:"matchID"`
}

type playerPath struct {
	MatchID  string `path:"matchID"`
	PlayerID string `path:"playerID"`
}

type actionPath struct {
	MatchID  string `path:"matchID"`
	PlayerID string `path:"playerID"`
	Action   string `path:"action" enum:"PASS,PUSH,GETREADY,LOOK,OBSERVE,CATCH,GRAB,GRAP"`
}

type targetPath struct {
	MatchID  string `path:"matchID"`
	PlayerID string `path:"playerID"`
	Action   string `path:"action" enum:"PASS,PUSH,GETREADY,LOOK,OBSERVE,CATCH,GRAB,GRAP"`
	TargetID string `path:"targetID"`
}

type sinceQuery struct {
	MatchID string `path:"matchID"`
	Since   int    `query:"since" description:"Skip the first n events of the log."`
}

type operation struct {
	method, path, summary, description string
	req                                any
	resp                               map[int]any
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Capture the Code API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Match server for the capture-the-code game. Team routes use HTTP Basic auth with team name and secret.")

	errResp := ErrorResponse{}
	ops := []operation{
		{http.MethodGet, "/healthz", "Health check", "Returns the health status of backend dependencies.", nil,
			map[int]any{http.StatusOK: HealthResponse{}, http.StatusServiceUnavailable: HealthResponse{}}},

		{http.MethodPost, "/api/teams", "Create team", "Registers a team. The secret is the team's password for HTTP Basic auth.", CreateTeamRequest{},
			map[int]any{http.StatusCreated: TeamResponse{}, http.StatusBadRequest: errResp, http.StatusConflict: errResp}},
		{http.MethodGet, "/api/teams", "List teams", "", nil,
			map[int]any{http.StatusOK: []roster.Team{}, http.StatusUnauthorized: errResp}},
		{http.MethodGet, "/api/teams/me", "Own team", "Returns the authenticated team with its players.", nil,
			map[int]any{http.StatusOK: TeamResponse{}, http.StatusUnauthorized: errResp}},
		{http.MethodPost, "/api/teams/me/players", "Add player", "Player names are unique across all teams.", AddPlayerRequest{},
			map[int]any{http.StatusCreated: roster.Player{}, http.StatusConflict: errResp, http.StatusUnauthorized: errResp}},

		{http.MethodPut, "/api/training", "Start training", "Starts a match of the team against itself. Rounds advance with POST .../turn.", nil,
			map[int]any{http.StatusCreated: MatchResponse{}, http.StatusPreconditionFailed: errResp}},
		{http.MethodGet, "/api/training/{matchID}", "Training score", "", matchPath{},
			map[int]any{http.StatusOK: ScoreResponse{}, http.StatusForbidden: errResp, http.StatusNotFound: errResp}},
		{http.MethodPost, "/api/training/{matchID}/turn", "Resolve round", "Resolves the queued actions of the current round.", matchPath{},
			map[int]any{http.StatusOK: TurnResponse{}, http.StatusForbidden: errResp, http.StatusNotFound: errResp}},
		{http.MethodDelete, "/api/training/{matchID}", "Stop training", "", matchPath{},
			map[int]any{http.StatusNoContent: nil, http.StatusForbidden: errResp, http.StatusNotFound: errResp}},

		{http.MethodPost, "/api/competitions", "Create competition", "Creates a match waiting for an opponent.", nil,
			map[int]any{http.StatusCreated: MatchResponse{}, http.StatusPreconditionFailed: errResp}},
		{http.MethodPost, "/api/competitions/{matchID}/join", "Join competition", "Attaches the team as opponent; rounds then advance on their own.", matchPath{},
			map[int]any{http.StatusOK: ScoreResponse{}, http.StatusNotFound: errResp, http.StatusPreconditionFailed: errResp}},
		{http.MethodGet, "/api/competitions/{matchID}", "Competition score", "", matchPath{},
			map[int]any{http.StatusOK: ScoreResponse{}, http.StatusNotFound: errResp}},
		{http.MethodDelete, "/api/competitions/{matchID}", "Stop competition", "", matchPath{},
			map[int]any{http.StatusNoContent: nil, http.StatusForbidden: errResp, http.StatusNotFound: errResp}},

		{http.MethodGet, "/api/spectate", "List matches", "", nil,
			map[int]any{http.StatusOK: []arena.Summary{}}},
		{http.MethodGet, "/api/spectate/{matchID}", "Spectate match", "Event log of a match. Trainings also list every player.", matchPath{},
			map[int]any{http.StatusOK: SpectateResponse{}, http.StatusNotFound: errResp}},
		{http.MethodDelete, "/api/admin/matches", "Clear matches", "Requires the admin bearer token.", nil,
			map[int]any{http.StatusOK: map[string]int{}, http.StatusUnauthorized: errResp}},
		{http.MethodDelete, "/api/admin/all", "Clear everything", "Removes every match, team and player. Requires the admin bearer token.", nil,
			map[int]any{http.StatusOK: map[string]int{}, http.StatusUnauthorized: errResp}},
	}

	for _, prefix := range []string{"/api/training/{matchID}", "/api/competitions/{matchID}"} {
		ops = append(ops,
			operation{http.MethodGet, prefix + "/players/{playerID}/flag", "Has flag", "Reports whether the player holds the code.", playerPath{},
				map[int]any{http.StatusOK: FlagResponse{}, http.StatusForbidden: errResp, http.StatusNotFound: errResp}},
			operation{http.MethodPost, prefix + "/players/{playerID}/actions/{action}", "Queue action", "Queues the player's action for the current round.", actionPath{},
				map[int]any{http.StatusOK: ActionResponse{}, http.StatusBadRequest: errResp, http.StatusForbidden: errResp, http.StatusPreconditionFailed: errResp}},
			operation{http.MethodPost, prefix + "/players/{playerID}/actions/{action}/target/{targetID}", "Queue targeted action", "", targetPath{},
				map[int]any{http.StatusOK: ActionResponse{}, http.StatusBadRequest: errResp, http.StatusForbidden: errResp, http.StatusPreconditionFailed: errResp}},
			operation{http.MethodPost, prefix + "/players/{playerID}/observe", "Observe", "Returns every player's state. Only possible as the first action of a round.", playerPath{},
				map[int]any{http.StatusOK: ActionResponse{}, http.StatusConflict: errResp, http.StatusForbidden: errResp}},
		)
	}

	for _, op := range ops {
		oc, _ := r.NewOperationContext(op.method, op.path)
		oc.SetSummary(op.summary)
		if op.description != "" {
			oc.SetDescription(op.description)
		}
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		for status, body := range op.resp {
			oc.AddRespStructure(body, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(oc)
	}

	// GET /api/spectate/{matchID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/spectate/{matchID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of match events, starting with the existing log.")
	getEvents.AddReqStructure(sinceQuery{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/spectate/{matchID}
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws/spectate/{matchID}")
	getWS.SetSummary("WebSocket event stream")
	getWS.SetDescription("Upgrades to a WebSocket connection carrying the same messages as the SSE stream.")
	getWS.AddReqStructure(sinceQuery{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
