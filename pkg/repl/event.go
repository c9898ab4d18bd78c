package repl

// Event describes a change to a Session.
type Event struct {
	Type EventType
	// The statement that was added, removed or changed, or the statement that
	// was pinned or unpinned. Nil for Cleared.
	Statement *Statement
}

// EventType is the type of an Event.
type EventType int

// Possible values of EventType.
const (
	StatementAdded EventType = iota
	StatementRemoved
	StatementChanged
	PinsChanged
	Cleared
)

var eventTypeNames = [...]string{
	StatementAdded:   "added",
	StatementRemoved: "removed",
	StatementChanged: "changed",
	PinsChanged:      "pins",
	Cleared:          "cleared",
}

func (t EventType) String() string {
	if 0 <= t && int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

type subscriber struct {
	f func(Event)
}

// Subscribe registers f to be called synchronously after each change to the
// session, in the order the changes happen. It returns a function that
// cancels the subscription.
func (s *Session) Subscribe(f func(Event)) func() {
	sub := &subscriber{f}
	s.subscribers = append(s.subscribers, sub)
	return func() {
		for i, other := range s.subscribers {
			if other == sub {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) emit(e Event) {
	for _, sub := range s.subscribers {
		sub.f(e)
	}
}
