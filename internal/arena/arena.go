// Package arena keeps the running matches of the server. It decides who may
// act in a match and owns the drivers of competitions.
package arena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/capture"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/feed"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/random"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrPrecondition = errors.New("precondition failed")
	// ErrObserveRejected is returned when a player may not observe in the
	// current round.
	ErrObserveRejected = errors.New("observe not possible this round")
)

type Mode string

const (
	Training    Mode = "training"
	Competition Mode = "competition"
)

// DefaultTickDelay is the pause between two competition rounds.
const DefaultTickDelay = 500 * time.Millisecond

type Options struct {
	RoundLimit int
	TickDelay  time.Duration
	// Seeds feeds every match its own chooser seed. Nil draws a crypto
	// seed per registry.
	Seeds     *random.Seeds
	Publisher feed.Publisher
	Logger    *slog.Logger
}

// Summary describes a match in listings.
type Summary struct {
	ID       string `json:"id"`
	Mode     Mode   `json:"mode"`
	TeamA    string `json:"teamA"`
	TeamB    string `json:"teamB,omitempty"`
	Round    int    `json:"round"`
	ScoreA   int    `json:"scoreA"`
	ScoreB   int    `json:"scoreB"`
	Active   bool   `json:"active"`
	GameOver bool   `json:"gameOver"`
}

type session struct {
	id     string
	mode   Mode
	match  *capture.Match
	driver *capture.Driver
}

// inMatch reports whether teamID plays roster A or roster B.
func (s *session) inMatch(teamID string) bool {
	a, b := s.match.Teams()
	return a.ID == teamID || (b != nil && b.ID == teamID)
}

// roster returns the roster that teamID plays in this match.
func (s *session) roster(teamID string) (capture.Roster, bool) {
	a, b := s.match.Teams()
	switch {
	case a.ID == teamID:
		return a, true
	case b != nil && b.ID == teamID:
		return *b, true
	}
	return capture.Roster{}, false
}

type Registry struct {
	ctx    context.Context
	cancel context.CancelFunc

	limit     int
	tickDelay time.Duration
	seeds     *random.Seeds
	publisher feed.Publisher
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
	created  map[string]time.Time
}

func New(opts Options) (*Registry, error) {
	if opts.TickDelay <= 0 {
		opts.TickDelay = DefaultTickDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Seeds == nil {
		root, err := random.NewSeed()
		if err != nil {
			return nil, err
		}
		opts.Seeds = random.NewSeeds(root)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		ctx:       ctx,
		cancel:    cancel,
		limit:     opts.RoundLimit,
		tickDelay: opts.TickDelay,
		seeds:     opts.Seeds,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		sessions:  make(map[string]*session),
		created:   make(map[string]time.Time),
	}, nil
}

func (r *Registry) newMatch(id string, team capture.Roster, solo bool) *capture.Match {
	cfg := capture.Config{
		RoundLimit: r.limit,
		Solo:       solo,
		Chooser:    capture.NewRandomChooser(r.seeds.Next()),
	}
	if r.publisher != nil {
		pub := r.publisher
		cfg.OnEvent = func(ev capture.Event) { pub.Publish(id, ev) }
	}
	return capture.NewMatch(team, cfg)
}

func (r *Registry) add(s *session) {
	r.mu.Lock()
	r.sessions[s.id] = s
	r.created[s.id] = time.Now()
	r.mu.Unlock()
}

func (r *Registry) get(id string) (*session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	return s, nil
}

// Mode reports whether id is a training or a competition.
func (r *Registry) Mode(id string) (Mode, error) {
	s, err := r.get(id)
	if err != nil {
		return "", err
	}
	return s.mode, nil
}

// member returns the session if teamID plays in it.
func (r *Registry) member(id, teamID string) (*session, error) {
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if !s.inMatch(teamID) {
		return nil, fmt.Errorf("team is not part of match %s: %w", id, ErrForbidden)
	}
	return s, nil
}

// StartTraining creates a solo match in which team plays against itself.
// Rounds only advance through Advance.
func (r *Registry) StartTraining(team capture.Roster) (string, error) {
	if len(team.Players) == 0 {
		return "", fmt.Errorf("team %s has no players: %w", team.Name, ErrPrecondition)
	}

	id := uuid.NewString()
	m := r.newMatch(id, team, true)
	if err := m.Start(team); err != nil {
		return "", err
	}
	r.add(&session{id: id, mode: Training, match: m})

	r.logger.Info("training started", "match_id", id, "team", team.Name, "players", len(team.Players))
	return id, nil
}

// CreateCompetition creates a match waiting for an opponent.
func (r *Registry) CreateCompetition(team capture.Roster) (string, error) {
	if len(team.Players) == 0 {
		return "", fmt.Errorf("team %s has no players: %w", team.Name, ErrPrecondition)
	}

	id := uuid.NewString()
	r.add(&session{id: id, mode: Competition, match: r.newMatch(id, team, false)})

	r.logger.Info("competition created", "match_id", id, "team", team.Name)
	return id, nil
}

// Join attaches team as roster B and starts the driver of the competition.
func (r *Registry) Join(id string, team capture.Roster) error {
	if len(team.Players) == 0 {
		return fmt.Errorf("team %s has no players: %w", team.Name, ErrPrecondition)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if s.mode != Competition {
		return fmt.Errorf("match %s is a training: %w", id, ErrPrecondition)
	}
	if a, _ := s.match.Teams(); a.ID == team.ID {
		return fmt.Errorf("team %s cannot join its own competition: %w", team.Name, ErrPrecondition)
	}
	if err := s.match.Start(team); err != nil {
		return fmt.Errorf("joining match %s: %w: %w", id, err, ErrPrecondition)
	}

	s.driver = capture.StartDriver(r.ctx, s.match, r.tickDelay)
	go r.watch(s)

	r.logger.Info("competition joined", "match_id", id, "team", team.Name)
	return nil
}

func (r *Registry) watch(s *session) {
	<-s.driver.Done()
	sc := s.match.Score()
	r.logger.Info("competition finished",
		"match_id", s.id,
		"team_a", sc.TeamA, "score_a", sc.ScoreA,
		"team_b", sc.TeamB, "score_b", sc.ScoreB,
		"rounds", sc.Round,
		"game_over", s.match.GameOver(),
	)
}

// authorize checks that playerID belongs to teamID and the match has both
// rosters.
func (r *Registry) authorize(id, teamID, playerID string) (*session, error) {
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	team, ok := s.roster(teamID)
	if !ok {
		return nil, fmt.Errorf("team is not part of match %s: %w", id, ErrForbidden)
	}
	if !team.Has(playerID) {
		return nil, fmt.Errorf("player %s is not in team %s: %w", playerID, team.Name, ErrForbidden)
	}
	if _, b := s.match.Teams(); b == nil {
		return nil, fmt.Errorf("match %s has no opponent yet: %w", id, ErrPrecondition)
	}
	return s, nil
}

// Submit queues an action of a player of teamID. Actions the match cannot
// accept are dropped and only show in the returned result.
func (r *Registry) Submit(id, teamID, playerID string, action capture.Action, target string) (capture.ActionResult, error) {
	s, err := r.authorize(id, teamID, playerID)
	if err != nil {
		return capture.ActionResult{}, err
	}
	return s.match.PerformAction(playerID, action, target), nil
}

func (r *Registry) Observe(id, teamID, playerID string) (capture.ActionResult, error) {
	s, err := r.authorize(id, teamID, playerID)
	if err != nil {
		return capture.ActionResult{}, err
	}
	res, ok := s.match.Observe(playerID)
	if !ok {
		return capture.ActionResult{}, ErrObserveRejected
	}
	return res, nil
}

// Advance resolves one round of a training and reports whether it is over.
func (r *Registry) Advance(id, teamID string) (bool, error) {
	s, err := r.member(id, teamID)
	if err != nil {
		return false, err
	}
	if s.mode != Training {
		return false, fmt.Errorf("match %s advances on its own: %w", id, ErrPrecondition)
	}
	if !s.match.Active() && !s.match.GameOver() {
		return false, fmt.Errorf("match %s has not started: %w", id, ErrPrecondition)
	}

	over := s.match.PerformRound()
	r.logger.Debug("training round", "match_id", id, "round", s.match.Score().Round, "game_over", over)
	return over, nil
}

func (r *Registry) HasFlag(id, teamID, playerID string) (bool, error) {
	s, err := r.member(id, teamID)
	if err != nil {
		return false, err
	}
	return s.match.HasFlag(playerID), nil
}

// Score is public for competitions. A training only reports to its team.
func (r *Registry) Score(id, teamID string) (capture.Score, error) {
	s, err := r.get(id)
	if err != nil {
		return capture.Score{}, err
	}
	if s.mode == Training && !s.inMatch(teamID) {
		return capture.Score{}, fmt.Errorf("training %s belongs to another team: %w", id, ErrForbidden)
	}
	return s.match.Score(), nil
}

// Stop finishes a match and removes it from the registry.
func (r *Registry) Stop(id, teamID string) error {
	s, err := r.member(id, teamID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.sessions, id)
	delete(r.created, id)
	r.mu.Unlock()

	r.end(s)
	r.logger.Info("match stopped", "match_id", id, "mode", s.mode)
	return nil
}

func (r *Registry) end(s *session) {
	if s.driver != nil {
		s.driver.Stop()
	}
	s.match.Finish()
}

func (r *Registry) Spectate(id string) (capture.Spectation, error) {
	s, err := r.get(id)
	if err != nil {
		return capture.Spectation{}, err
	}
	return s.match.Spectate(), nil
}

// Events returns the events of a match appended after the first n.
func (r *Registry) Events(id string, n int) ([]capture.Event, error) {
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return s.match.EventsSince(n), nil
}

// Done returns a channel that is closed once the match is finished. Stop
// and Clear finish a match before removing it.
func (r *Registry) Done(id string) (<-chan struct{}, error) {
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return s.match.Done(), nil
}

// List returns every match, oldest first.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	sessions := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	created := make(map[string]time.Time, len(r.created))
	for id, t := range r.created {
		created[id] = t
	}
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		ti, tj := created[sessions[i].id], created[sessions[j].id]
		if ti.Equal(tj) {
			return sessions[i].id < sessions[j].id
		}
		return ti.Before(tj)
	})

	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		sc := s.match.Score()
		out = append(out, Summary{
			ID:       s.id,
			Mode:     s.mode,
			TeamA:    sc.TeamA,
			TeamB:    sc.TeamB,
			Round:    sc.Round,
			ScoreA:   sc.ScoreA,
			ScoreB:   sc.ScoreB,
			Active:   s.match.Active(),
			GameOver: s.match.GameOver(),
		})
	}
	return out
}

// Clear finishes and removes every match.
func (r *Registry) Clear() int {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.created = make(map[string]time.Time)
	r.mu.Unlock()

	for _, s := range sessions {
		r.end(s)
	}
	r.logger.Info("matches cleared", "count", len(sessions))
	return len(sessions)
}

// Close stops every competition driver. Matches stay readable.
func (r *Registry) Close() {
	r.cancel()

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.driver != nil {
			<-s.driver.Done()
		}
	}
}
