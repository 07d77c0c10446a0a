package worker

// Session is the channel pair between one or more foregrounds and the worker
type Session struct {
	commands chan Command
	events   chan Event
}

func NewSession(bufferSize int) *Session {
	return &Session{
		commands: make(chan Command, bufferSize),
		events:   make(chan Event, bufferSize),
	}
}

// Send queues the command without blocking. Returns false if the queue is full.
func (s *Session) Send(command Command) bool {
	select {
	case s.commands <- command:
		return true
	default:
		return false
	}
}

// Poll returns the next event without blocking
func (s *Session) Poll() (Event, bool) {
	select {
	case event := <-s.events:
		return event, true
	default:
		return nil, false
	}
}

// Events allows waiting for the next event
func (s *Session) Events() <-chan Event {
	return s.events
}
