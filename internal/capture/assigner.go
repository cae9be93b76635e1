package capture

import "math/rand/v2"

// Chooser picks an index in [0, n) for token reassignment. n is always
// greater than zero. Implementations are called with the match lock held.
type Chooser interface {
	Choose(n int) int
}

// RandomChooser picks uniformly with a seeded PCG source. It is not safe
// for concurrent use; give each match its own.
type RandomChooser struct {
	rng *rand.Rand
}

func NewRandomChooser(seed uint64) *RandomChooser {
	return &RandomChooser{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (c *RandomChooser) Choose(n int) int {
	return c.rng.IntN(n)
}

// assignToken chooses a new holder while the token is unheld. Players that
// queued GRAB or CATCH this round are preferred; otherwise any READY player
// may receive it. It returns "" when nobody qualifies.
func (m *Match) assignToken() string {
	var pool []string
	for _, id := range m.order {
		if in, ok := m.pending[id]; ok && in.action.fetches() {
			pool = append(pool, id)
		}
	}
	if len(pool) == 0 {
		for _, id := range m.order {
			if m.states[id] == StateReady {
				pool = append(pool, id)
			}
		}
	}
	if len(pool) == 0 {
		m.record("", "", "code dropped, nobody could take it")
		return ""
	}

	id := pool[m.chooser.Choose(len(pool))]
	m.record("", id, "code was randomly set to a new player")
	return id
}
