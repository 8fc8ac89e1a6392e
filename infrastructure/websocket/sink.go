package websocket

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"sync"
)

var _ contract.EventSink = (*Sink)(nil)

// Sink buffers the outbound events of one connection until its write pump
// picks them up. Send never blocks: when the buffer is full the event is lost.
type Sink struct {
	events    chan event.Event
	done      chan struct{}
	closeOnce sync.Once
}

func NewSink(bufferSize int) *Sink {
	return &Sink{
		events: make(chan event.Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// Send is called by the fan-out. It returns false when the event was dropped.
func (s *Sink) Send(e event.Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- e:
		return true
	default:
		return false
	}
}

func (s *Sink) Events() <-chan event.Event {
	return s.events
}

// Done is closed once the connection is gone.
func (s *Sink) Done() <-chan struct{} {
	return s.done
}

// Close rejects further events. It is safe to call more than once.
func (s *Sink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
