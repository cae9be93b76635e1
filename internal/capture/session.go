package capture

import "fmt"

// PlayerView is the public state of one player as seen by another player.
// Exactly one of ID and Name is set.
type PlayerView struct {
	ID      string
	Name    string
	State   PlayerState
	Action  Action
	HasFlag bool
}

// ActionResult reports the acting player's situation after an action was
// submitted, whether or not the action was accepted.
type ActionResult struct {
	Round    int
	MaxRound int
	State    PlayerState
	// HasFlag is true if the supplied target holds the token.
	HasFlag bool
	// HaveFlag is true if the acting player holds the token.
	HaveFlag bool
	GameOver bool
	// TargetState is set for LOOK actions aimed at a known player.
	TargetState *PlayerView
	// TargetStates is set while the player's queued action is OBSERVE.
	TargetStates []PlayerView
}

// PlayerInfo is the spectator view of a player in a solo match.
type PlayerInfo struct {
	Name    string
	State   PlayerState
	Action  Action
	HasCode bool
}

// Score is the running result of a match.
type Score struct {
	TeamA  string
	ScoreA int
	// TeamB is empty until roster B is attached.
	TeamB  string
	ScoreB int
	Round  int
}

// Spectation is everything a spectator may see of a match.
type Spectation struct {
	TeamA   string
	TeamB   string
	Events  []Event
	Players []PlayerInfo
}

// PerformAction queues action for playerID. Calls that cannot be queued
// are ignored: unknown players, matches that are not active, a round whose
// queue already holds a non-passive action for the player, and anything
// but GETREADY from a grounded or banned player. target may be empty.
func (m *Match) PerformAction(playerID string, action Action, target string) ActionResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, known := m.states[playerID]
	if known && m.status == statusActive {
		cur, queued := m.pending[playerID]
		switch {
		case queued && !cur.action.passive():
		case state.down():
			if action == ActionGetReady {
				m.pending[playerID] = intent{action: ActionGetReady}
				m.record(playerID, "", "gets ready again")
			}
		default:
			m.pending[playerID] = intent{action: action, target: target}
			m.record(playerID, target, fmt.Sprintf("performs action: %s", action))
		}
	}

	res := m.result(playerID)
	res.HasFlag = target != "" && m.holds(target)
	if action == ActionLook && target != "" {
		if v, ok := m.targetState(target, false); ok {
			res.TargetState = &v
		}
	}
	return res
}

// Observe queues OBSERVE for a player with nothing queued yet this round
// and returns every player's public state. It reports false when the
// player already queued an action, is down, is unknown or the match is not
// active.
func (m *Match) Observe(playerID string) (ActionResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, known := m.states[playerID]
	if !known || m.status != statusActive || state.down() {
		return ActionResult{}, false
	}
	if _, queued := m.pending[playerID]; queued {
		return ActionResult{}, false
	}

	m.pending[playerID] = intent{action: ActionObserve}
	m.record(playerID, "", "observes the ground")
	return m.result(playerID), true
}

func (m *Match) result(playerID string) ActionResult {
	res := ActionResult{
		Round:    m.round,
		MaxRound: m.limit,
		State:    m.states[playerID],
		HaveFlag: m.holds(playerID),
		GameOver: m.status == statusFinished,
	}
	if in, ok := m.pending[playerID]; ok && in.action == ActionObserve {
		res.TargetStates = m.targetStates(false)
	}
	return res
}

// TargetState returns the public state of a participant. byName selects
// whether the view carries the player's name or id.
func (m *Match) TargetState(target string, byName bool) (PlayerView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.targetState(target, byName)
}

func (m *Match) targetState(target string, byName bool) (PlayerView, bool) {
	if !m.teamA.Has(target) && (m.teamB == nil || !m.teamB.Has(target)) {
		return PlayerView{}, false
	}
	state, ok := m.states[target]
	if !ok {
		return PlayerView{}, false
	}

	v := PlayerView{
		State:   state,
		Action:  m.pending[target].action,
		HasFlag: m.holds(target),
	}
	if byName {
		v.Name = m.players[target].Name
	} else {
		v.ID = target
	}
	return v, true
}

func (m *Match) targetStates(byName bool) []PlayerView {
	out := make([]PlayerView, 0, len(m.order))
	for _, id := range m.order {
		if v, ok := m.targetState(id, byName); ok {
			out = append(out, v)
		}
	}
	return out
}

// PlayerInfos returns a per-player snapshot for solo matches. Adversarial
// matches report false so that spectators cannot leak positions between
// the two teams.
func (m *Match) PlayerInfos() ([]PlayerInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playerInfos()
}

func (m *Match) playerInfos() ([]PlayerInfo, bool) {
	if !m.solo {
		return nil, false
	}
	out := make([]PlayerInfo, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, PlayerInfo{
			Name:    m.players[id].Name,
			State:   m.states[id],
			Action:  m.pending[id].action,
			HasCode: m.holds(id),
		})
	}
	return out, true
}

// Score returns the team names, scores and the current round.
func (m *Match) Score() Score {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Score{
		TeamA:  m.teamA.Name,
		ScoreA: m.scoreA,
		ScoreB: m.scoreB,
		Round:  m.round,
	}
	if m.teamB != nil {
		s.TeamB = m.teamB.Name
	}
	return s
}

// Spectate returns the event log and, for solo matches, the player
// snapshot, both taken under one lock.
func (m *Match) Spectate() Spectation {
	m.mu.Lock()
	defer m.mu.Unlock()

	sp := Spectation{
		TeamA:  m.teamA.Name,
		Events: m.log.All(),
	}
	if m.teamB != nil {
		sp.TeamB = m.teamB.Name
	}
	sp.Players, _ = m.playerInfos()
	return sp
}

// EventsSince returns the events appended after the first n.
func (m *Match) EventsSince(n int) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log.Since(n)
}
