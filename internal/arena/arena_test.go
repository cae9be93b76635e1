package arena

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/capture"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/random"
)

type recorder struct {
	mu  sync.Mutex
	ids map[string]int
}

func (r *recorder) Publish(matchID string, ev capture.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ids == nil {
		r.ids = make(map[string]int)
	}
	r.ids[matchID]++
}

func (r *recorder) count(matchID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids[matchID]
}

func newRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()
	if opts.Seeds == nil {
		opts.Seeds = random.NewSeeds(42)
	}
	r, err := New(opts)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func team(id string, players ...string) capture.Roster {
	r := capture.Roster{ID: id, Name: "TEAM_" + id}
	for _, p := range players {
		r.Players = append(r.Players, capture.Player{ID: p, Name: "PLAYER_" + p})
	}
	return r
}

func TestTraining(t *testing.T) {
	r := newRegistry(t, Options{RoundLimit: 2})
	a := team("a", "p1")

	id, err := r.StartTraining(a)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := r.Submit(id, "a", "p1", capture.ActionCatch, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	over, err := r.Advance(id, "a")
	if err != nil || over {
		t.Fatalf("advance = %v, %v; want false, nil", over, err)
	}

	has, err := r.HasFlag(id, "a", "p1")
	if err != nil || !has {
		t.Fatalf("hasFlag = %v, %v; want true, nil", has, err)
	}
	sc, err := r.Score(id, "a")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if sc.Round != 1 || sc.ScoreA != 1 || sc.ScoreB != 0 {
		t.Errorf("score = %+v, want round 1 with A=1", sc)
	}

	sp, err := r.Spectate(id)
	if err != nil {
		t.Fatalf("spectate: %v", err)
	}
	if len(sp.Players) != 1 || !sp.Players[0].HasCode {
		t.Errorf("players = %+v, want p1 holding the code", sp.Players)
	}

	if over, _ := r.Advance(id, "a"); !over {
		t.Error("second advance should end the training")
	}
}

func TestStartRequiresPlayers(t *testing.T) {
	r := newRegistry(t, Options{})

	if _, err := r.StartTraining(team("a")); !errors.Is(err, ErrPrecondition) {
		t.Errorf("training: err = %v, want ErrPrecondition", err)
	}
	if _, err := r.CreateCompetition(team("a")); !errors.Is(err, ErrPrecondition) {
		t.Errorf("competition: err = %v, want ErrPrecondition", err)
	}
}

func TestBoundaryErrors(t *testing.T) {
	r := newRegistry(t, Options{TickDelay: time.Hour})
	training, _ := r.StartTraining(team("a", "p1"))
	waiting, _ := r.CreateCompetition(team("b", "p2"))

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"submit unknown match", func() error {
			_, err := r.Submit("missing", "a", "p1", capture.ActionPass, "")
			return err
		}, ErrNotFound},
		{"submit foreign team", func() error {
			_, err := r.Submit(training, "b", "p2", capture.ActionPass, "")
			return err
		}, ErrForbidden},
		{"submit foreign player", func() error {
			_, err := r.Submit(training, "a", "p2", capture.ActionPass, "")
			return err
		}, ErrForbidden},
		{"submit before join", func() error {
			_, err := r.Submit(waiting, "b", "p2", capture.ActionPass, "")
			return err
		}, ErrPrecondition},
		{"observe before join", func() error {
			_, err := r.Observe(waiting, "b", "p2")
			return err
		}, ErrPrecondition},
		{"advance competition", func() error {
			_, err := r.Advance(waiting, "b")
			return err
		}, ErrPrecondition},
		{"advance foreign training", func() error {
			_, err := r.Advance(training, "b")
			return err
		}, ErrForbidden},
		{"advance unknown", func() error {
			_, err := r.Advance("missing", "a")
			return err
		}, ErrNotFound},
		{"score foreign training", func() error {
			_, err := r.Score(training, "b")
			return err
		}, ErrForbidden},
		{"hasFlag foreign team", func() error {
			_, err := r.HasFlag(training, "b", "p1")
			return err
		}, ErrForbidden},
		{"join training", func() error {
			return r.Join(training, team("c", "p3"))
		}, ErrPrecondition},
		{"join unknown", func() error {
			return r.Join("missing", team("c", "p3"))
		}, ErrNotFound},
		{"join own competition", func() error {
			return r.Join(waiting, team("b", "p2"))
		}, ErrPrecondition},
		{"join without players", func() error {
			return r.Join(waiting, team("c"))
		}, ErrPrecondition},
		{"stop foreign team", func() error {
			return r.Stop(training, "b")
		}, ErrForbidden},
		{"spectate unknown", func() error {
			_, err := r.Spectate("missing")
			return err
		}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := r.Score(waiting, "a"); err != nil {
		t.Errorf("competition score should be public, got %v", err)
	}
}

func TestJoinTwice(t *testing.T) {
	r := newRegistry(t, Options{TickDelay: time.Hour})
	id, _ := r.CreateCompetition(team("a", "p1"))

	if err := r.Join(id, team("b", "p2")); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := r.Join(id, team("c", "p3")); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("err = %v, want ErrPrecondition", err)
	}
}

func TestObserveRejectedTwice(t *testing.T) {
	r := newRegistry(t, Options{})
	id, _ := r.StartTraining(team("a", "p1", "p2"))

	res, err := r.Observe(id, "a", "p1")
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if len(res.TargetStates) != 2 {
		t.Errorf("target states = %d, want 2", len(res.TargetStates))
	}
	if _, err := r.Observe(id, "a", "p1"); !errors.Is(err, ErrObserveRejected) {
		t.Errorf("err = %v, want ErrObserveRejected", err)
	}
}

func TestCompetitionRunsToGameOver(t *testing.T) {
	pub := &recorder{}
	r := newRegistry(t, Options{RoundLimit: 3, TickDelay: time.Millisecond, Publisher: pub})

	id, _ := r.CreateCompetition(team("a", "p1"))
	if err := r.Join(id, team("b", "p2")); err != nil {
		t.Fatalf("join: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		sc, err := r.Score(id, "")
		if err != nil {
			t.Fatalf("score: %v", err)
		}
		if sc.Round == 3 {
			if sc.ScoreA+sc.ScoreB != 3 {
				t.Errorf("score = %+v, want 3 points in total", sc)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("competition stuck at round %d", sc.Round)
		}
		time.Sleep(5 * time.Millisecond)
	}

	list := r.List()
	if len(list) != 1 || !list[0].GameOver || list[0].Mode != Competition {
		t.Errorf("list = %+v, want one finished competition", list)
	}
	if pub.count(id) == 0 {
		t.Error("no events published")
	}
}

func TestStop(t *testing.T) {
	r := newRegistry(t, Options{TickDelay: time.Hour})
	id, _ := r.CreateCompetition(team("a", "p1"))
	r.Join(id, team("b", "p2"))

	if err := r.Stop(id, "b"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := r.Spectate(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after stop", err)
	}
	if err := r.Stop(id, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second stop: err = %v, want ErrNotFound", err)
	}
}

func TestClear(t *testing.T) {
	r := newRegistry(t, Options{TickDelay: time.Hour})
	r.StartTraining(team("a", "p1"))
	id, _ := r.CreateCompetition(team("b", "p2"))
	r.Join(id, team("c", "p3"))

	if n := r.Clear(); n != 2 {
		t.Errorf("cleared = %d, want 2", n)
	}
	if got := r.List(); len(got) != 0 {
		t.Errorf("list = %+v, want empty", got)
	}
}

func TestSeedsReplayMatches(t *testing.T) {
	play := func() []capture.Event {
		r := newRegistry(t, Options{Seeds: random.NewSeeds(7)})
		id, _ := r.StartTraining(team("a", "p1", "p2", "p3", "p4"))
		for range 20 {
			r.Submit(id, "a", "p2", capture.ActionGrab, "p1")
			r.Submit(id, "a", "p3", capture.ActionPush, "p4")
			r.Submit(id, "a", "p4", capture.ActionGetReady, "")
			r.Advance(id, "a")
		}
		events, _ := r.Events(id, 0)
		return events
	}

	a, b := play(), play()
	if len(a) != len(b) {
		t.Fatalf("event counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("event %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDoneClosesOnStop(t *testing.T) {
	r := newRegistry(t, Options{TickDelay: time.Hour})
	id, _ := r.CreateCompetition(team("a", "p1"))
	r.Join(id, team("b", "p2"))

	done, err := r.Done(id)
	if err != nil {
		t.Fatalf("done: %v", err)
	}
	if err := r.Stop(id, "a"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("done not closed after stop")
	}
	if _, err := r.Done(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
