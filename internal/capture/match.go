package capture

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrAlreadyStarted = errors.New("match already started")
	ErrFinished       = errors.New("match finished")
)

// DefaultRoundLimit is used when Config.RoundLimit is not positive.
const DefaultRoundLimit = 100

type status int

const (
	statusCreated status = iota
	statusActive
	statusFinished
)

// Config tunes a single match.
type Config struct {
	RoundLimit int
	// Solo marks a training match. Only solo matches expose the full
	// per-player snapshot through PlayerInfos.
	Solo bool
	// Chooser picks among reassignment candidates. Nil means a
	// RandomChooser with seed 0.
	Chooser Chooser
	// OnEvent is called for every appended event with the match lock held.
	// It must not block or call back into the match.
	OnEvent func(Event)
}

type intent struct {
	action Action
	target string
}

// Match is one capture-the-code session. Every exported method holds the
// match lock for its full duration, so round resolution never interleaves
// with action submission and readers never see a half-resolved round.
type Match struct {
	mu sync.Mutex

	limit   int
	solo    bool
	chooser Chooser
	onEvent func(Event)

	teamA Roster
	teamB *Roster

	order   []string
	players map[string]Player
	states  map[string]PlayerState
	pending map[string]intent

	holder string
	scoreA int
	scoreB int
	round  int
	status status
	log    EventLog
	done   chan struct{}
}

// NewMatch creates a match holding roster A. It becomes active once Start
// attaches roster B.
func NewMatch(teamA Roster, cfg Config) *Match {
	if cfg.RoundLimit <= 0 {
		cfg.RoundLimit = DefaultRoundLimit
	}
	if cfg.Chooser == nil {
		cfg.Chooser = NewRandomChooser(0)
	}
	m := &Match{
		limit:   cfg.RoundLimit,
		solo:    cfg.Solo,
		chooser: cfg.Chooser,
		onEvent: cfg.OnEvent,
		teamA:   teamA,
		players: make(map[string]Player),
		states:  make(map[string]PlayerState),
		pending: make(map[string]intent),
		done:    make(chan struct{}),
	}
	m.enlist(teamA)
	return m
}

func (m *Match) enlist(r Roster) {
	for _, p := range r.Players {
		if _, ok := m.players[p.ID]; !ok {
			m.order = append(m.order, p.ID)
		}
		m.players[p.ID] = p
		m.states[p.ID] = StateReady
	}
}

// Start attaches roster B, sets its players READY and activates the match.
// The token is not assigned here; the first resolved round does that.
func (m *Match) Start(teamB Roster) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.status {
	case statusActive:
		return ErrAlreadyStarted
	case statusFinished:
		return ErrFinished
	}

	m.teamB = &teamB
	m.enlist(teamB)
	m.status = statusActive
	m.record("", "", fmt.Sprintf("match started: %s vs. %s", m.teamA.Name, teamB.Name))
	return nil
}

// Finish ends the match and clears the token. It is idempotent.
func (m *Match) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finish()
}

func (m *Match) finish() {
	if m.status == statusFinished {
		return
	}
	m.status = statusFinished
	m.holder = ""
	m.record("", "", "match finished")
	close(m.done)
}

// Done is closed once the match is finished. The "match finished" event is
// published before it closes.
func (m *Match) Done() <-chan struct{} {
	return m.done
}

// PerformRound resolves the current round if the match is active and
// reports whether the match is over.
func (m *Match) PerformRound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == statusActive {
		m.resolveRound()
	}
	return m.status == statusFinished
}

// HasFlag reports whether playerID currently holds the token.
func (m *Match) HasFlag(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holds(playerID)
}

func (m *Match) holds(playerID string) bool {
	return m.holder != "" && m.holder == playerID
}

// Active reports whether roster B is attached and the match is not over.
func (m *Match) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == statusActive
}

// GameOver reports whether the match is finished.
func (m *Match) GameOver() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == statusFinished
}

// Teams returns roster A and, once attached, roster B.
func (m *Match) Teams() (Roster, *Roster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.teamB == nil {
		return m.teamA, nil
	}
	b := *m.teamB
	return m.teamA, &b
}

// record appends an event; source and target are player ids and are
// translated to names.
func (m *Match) record(source, target, description string) {
	ev := Event{
		Round:       m.round,
		Source:      m.players[source].Name,
		Target:      m.players[target].Name,
		Description: description,
	}
	ev = m.log.Append(ev)
	if m.onEvent != nil {
		m.onEvent(ev)
	}
}
