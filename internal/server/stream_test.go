package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/feed"
)

func TestMatchStreamSkipsReplayedEvents(t *testing.T) {
	broker := feed.NewBroker()
	done := make(chan struct{})
	s := &matchStream{
		broker:  broker,
		matchID: "m1",
		ch:      broker.Subscribe("m1"),
		done:    done,
		past: []feed.Message{
			{MatchID: "m1", Seq: 0, Event: "match started"},
			{MatchID: "m1", Seq: 1, Event: "performs action: CATCH"},
		},
	}
	defer s.Close()

	// Seq 1 was appended between subscribing and reading the log, so it
	// arrives on the channel as well.
	s.ch <- feed.Message{MatchID: "m1", Seq: 1, Event: "performs action: CATCH"}
	s.ch <- feed.Message{MatchID: "m1", Seq: 2, Event: "match finished"}
	close(done)

	var got []int
	send := func(data []byte) bool {
		var msg feed.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		got = append(got, msg.Seq)
		return true
	}

	if over := s.run(context.Background(), send, nil); !over {
		t.Error("run should report the match as over")
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("sent seqs = %v, want [0 1 2]", got)
	}
}

func TestMatchStreamStopsWhenSendFails(t *testing.T) {
	broker := feed.NewBroker()
	s := &matchStream{
		broker:  broker,
		matchID: "m1",
		ch:      broker.Subscribe("m1"),
		done:    make(chan struct{}),
		past:    []feed.Message{{Seq: 0}, {Seq: 1}},
	}
	defer s.Close()

	calls := 0
	over := s.run(context.Background(), func([]byte) bool {
		calls++
		return false
	}, nil)
	if over || calls != 1 {
		t.Errorf("over = %v, calls = %d; want false, 1", over, calls)
	}
}
