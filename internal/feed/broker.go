package feed

import (
	"sync"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/capture"
)

// Broker is an in-process pub/sub for match events, keyed by match ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan Message]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan Message]struct{}),
	}
}

// Subscribe returns a channel that receives the messages of the given
// match.
func (b *Broker) Subscribe(matchID string) chan Message {
	ch := make(chan Message, 64)
	b.mu.Lock()
	if b.subs[matchID] == nil {
		b.subs[matchID] = make(map[chan Message]struct{})
	}
	b.subs[matchID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the match's subscribers.
func (b *Broker) Unsubscribe(matchID string, ch chan Message) {
	b.mu.Lock()
	delete(b.subs[matchID], ch)
	if len(b.subs[matchID]) == 0 {
		delete(b.subs, matchID)
	}
	b.mu.Unlock()
}

// Subscribers reports how many channels listen to a match.
func (b *Broker) Subscribers(matchID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[matchID])
}

// Publish sends an event to all subscribers of the match.
func (b *Broker) Publish(matchID string, ev capture.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.subs[matchID]) == 0 {
		return
	}

	msg := NewMessage(matchID, ev)
	for ch := range b.subs[matchID] {
		select {
		case ch <- msg:
		default:
			// Drop if subscriber is slow.
		}
	}
}
