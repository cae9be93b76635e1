// Package feed distributes match events to spectators.
package feed

import (
	"encoding/json"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/capture"
)

// Message is the wire form of a match event.
type Message struct {
	MatchID string `json:"matchId"`
	// Seq is the event's position in the match log.
	Seq     int    `json:"seq"`
	Round   int    `json:"round"`
	Source  string `json:"source,omitempty"`
	Target  string `json:"target,omitempty"`
	Event   string `json:"event"`
}

func NewMessage(matchID string, ev capture.Event) Message {
	return Message{
		MatchID: matchID,
		Seq:     ev.Seq,
		Round:   ev.Round,
		Source:  ev.Source,
		Target:  ev.Target,
		Event:   ev.Description,
	}
}

// Encode returns the JSON form of m.
func (m Message) Encode() []byte {
	data, _ := json.Marshal(m)
	return data
}

// Publisher receives every event appended to a match log. Publish is
// called with the match lock held and must not block.
type Publisher interface {
	Publish(matchID string, ev capture.Event)
}

// Multi fans an event out to several publishers.
type Multi []Publisher

func (m Multi) Publish(matchID string, ev capture.Event) {
	for _, p := range m {
		p.Publish(matchID, ev)
	}
}
