package feed

import (
	"encoding/json"
	"testing"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/capture"
)

func TestBrokerPublish(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("m1")
	other := b.Subscribe("m2")

	b.Publish("m1", capture.Event{Seq: 4, Round: 3, Source: "alice", Target: "bob", Description: "player pushed another one"})

	select {
	case msg := <-ch:
		want := Message{MatchID: "m1", Seq: 4, Round: 3, Source: "alice", Target: "bob", Event: "player pushed another one"}
		if msg != want {
			t.Errorf("message = %+v, want %+v", msg, want)
		}

		var decoded Message
		if err := json.Unmarshal(msg.Encode(), &decoded); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if decoded != want {
			t.Errorf("decoded = %+v, want %+v", decoded, want)
		}
	default:
		t.Fatal("no message delivered")
	}

	select {
	case <-other:
		t.Fatal("message leaked to another match")
	default:
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("m1")

	for i := range cap(ch) + 10 {
		b.Publish("m1", capture.Event{Round: i})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered = %d, want %d", len(ch), cap(ch))
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("m1")
	b.Unsubscribe("m1", ch)

	if n := b.Subscribers("m1"); n != 0 {
		t.Fatalf("subscribers = %d, want 0", n)
	}
	b.Publish("m1", capture.Event{})
	if len(ch) != 0 {
		t.Error("unsubscribed channel received a message")
	}
}

type recorder struct{ got []string }

func (r *recorder) Publish(matchID string, ev capture.Event) {
	r.got = append(r.got, matchID+":"+ev.Description)
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, b}.Publish("m1", capture.Event{Description: "x"})

	for i, r := range []*recorder{a, b} {
		if len(r.got) != 1 || r.got[0] != "m1:x" {
			t.Errorf("publisher %d got %v", i, r.got)
		}
	}
}
