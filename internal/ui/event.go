package ui

// Status is the state of one file in a check run.
type Status uint8

const (
	StatusQueued Status = iota
	StatusChecking
	StatusDone
	StatusProblems
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusChecking:
		return "checking"
	case StatusDone:
		return "clean"
	case StatusProblems:
		return "problems"
	case StatusError:
		return "error"
	}
	return ""
}

// Finished reports whether no further events are expected for the file.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusProblems || s == StatusError
}

// Event reports progress of one file.
type Event struct {
	File     string
	Status   Status
	Problems int
}

// Sink receives progress events; it must be safe for concurrent use.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}
