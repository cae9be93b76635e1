package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/arena"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/feed"
)

// matchStream replays a match log and then follows live events. Live
// messages carry their log position, so anything already replayed is
// skipped.
type matchStream struct {
	broker  *feed.Broker
	matchID string
	ch      chan feed.Message
	done    <-chan struct{}
	past    []feed.Message
	next    int
}

// openStream subscribes to the match before reading its log so no event is
// lost in between. The "since" query parameter skips the first n events.
func openStream(r *http.Request, reg *arena.Registry, broker *feed.Broker, matchID string) (*matchStream, error) {
	done, err := reg.Done(matchID)
	if err != nil {
		return nil, err
	}

	since, _ := strconv.Atoi(r.URL.Query().Get("since"))
	since = max(since, 0)

	s := &matchStream{
		broker:  broker,
		matchID: matchID,
		ch:      broker.Subscribe(matchID),
		done:    done,
		next:    since,
	}
	events, err := reg.Events(matchID, since)
	if err != nil {
		s.Close()
		return nil, err
	}
	for _, ev := range events {
		s.past = append(s.past, feed.NewMessage(matchID, ev))
	}
	return s, nil
}

func (s *matchStream) Close() {
	s.broker.Unsubscribe(s.matchID, s.ch)
}

// forward sends msg unless it was already sent.
func (s *matchStream) forward(msg feed.Message, send func([]byte) bool) bool {
	if msg.Seq < s.next {
		return true
	}
	s.next = msg.Seq + 1
	return send(msg.Encode())
}

// run sends the backlog and then live messages until ctx ends, send fails
// or the match is over. keepalive, if set, is called every 30 seconds. run
// reports whether it ended because the match is over.
func (s *matchStream) run(ctx context.Context, send func([]byte) bool, keepalive func() bool) bool {
	for _, msg := range s.past {
		if !s.forward(msg, send) {
			return false
		}
	}

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case msg := <-s.ch:
			if !s.forward(msg, send) {
				return false
			}
		case <-s.done:
			// The final events were published before done closed.
			for {
				select {
				case msg := <-s.ch:
					if !s.forward(msg, send) {
						return false
					}
				default:
					return true
				}
			}
		case <-ping.C:
			if keepalive != nil && !keepalive() {
				return false
			}
		}
	}
}
