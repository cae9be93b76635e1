package capture

// Event is an immutable record of something notable that happened in a
// match. Source and Target hold player names and may be empty.
type Event struct {
	// Seq is the event's position in the match log, starting at 0.
	Seq         int
	Round       int
	Source      string
	Target      string
	Description string
}

// EventLog is an append-only, insertion-ordered list of events. It is not
// safe for concurrent use; Match guards it with its own lock.
type EventLog struct {
	events []Event
}

// Append stores ev with its log position set and returns the stored event.
func (l *EventLog) Append(ev Event) Event {
	ev.Seq = len(l.events)
	l.events = append(l.events, ev)
	return ev
}

func (l *EventLog) Len() int {
	return len(l.events)
}

// Since returns a copy of the events appended after the first n.
func (l *EventLog) Since(n int) []Event {
	if n < 0 {
		n = 0
	}
	if n >= len(l.events) {
		return nil
	}
	out := make([]Event, len(l.events)-n)
	copy(out, l.events[n:])
	return out
}

// All returns a copy of every event in order.
func (l *EventLog) All() []Event {
	return l.Since(0)
}
