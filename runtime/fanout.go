package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"log/slog"
)

var _ contract.Broadcaster = (*Fanout)(nil)

// Fanout delivers events to the sinks of live connections.
//
// It provides best-effort delivery with no retries: a connection that is gone,
// or whose buffer is full, simply misses the event. Recipients of ToRoom are
// resolved from the presence table at call time.
type Fanout struct {
	log         *slog.Logger
	connections *ConnectionRegistry
	presence    *PresenceTable
}

func NewFanout(log *slog.Logger, connections *ConnectionRegistry, presence *PresenceTable) *Fanout {
	return &Fanout{log: log, connections: connections, presence: presence}
}

// ToRoom delivers to every user currently in room, except one connection
// when except is not empty.
func (f *Fanout) ToRoom(room string, except domain.ConnectionID, e event.Event) {
	for _, user := range f.presence.UsersInRoom(room) {
		if except != "" && user.ConnectionID == except {
			continue
		}
		f.ToConnection(user.ConnectionID, e)
	}
}

func (f *Fanout) ToConnection(id domain.ConnectionID, e event.Event) {
	sink, ok := f.connections.Get(id)
	if !ok {
		f.log.Debug("No sink for connection, event lost", "conn", id, "event", e.Name())
		return
	}
	if !sink.Send(e) {
		f.log.Debug("Sink full, event dropped", "conn", id, "event", e.Name())
	}
}

func (f *Fanout) ToAll(e event.Event) {
	for _, sink := range f.connections.All() {
		if !sink.Send(e) {
			f.log.Debug("Sink full, event dropped", "event", e.Name())
		}
	}
}
