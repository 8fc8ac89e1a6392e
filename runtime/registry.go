package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"sync"
)

// ConnectionRegistry is the directory of live connections and their sinks.
// It is written only by the coordinator, on Connect and Disconnect.
type ConnectionRegistry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnectionID]contract.EventSink
	order    []domain.ConnectionID
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		sessions: make(map[domain.ConnectionID]contract.EventSink),
	}
}

// Register binds a sink to a connection. Registering twice replaces the sink.
func (r *ConnectionRegistry) Register(id domain.ConnectionID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		r.order = append(r.order, id)
	}
	r.sessions[id] = sink
}

// Unregister forgets a connection. Unknown ids are ignored.
func (r *ConnectionRegistry) Unregister(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	for i, c := range r.order {
		if c == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *ConnectionRegistry) Get(id domain.ConnectionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[id]
	return sink, ok
}

// All returns the sinks of every live connection in connection order.
func (r *ConnectionRegistry) All() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]contract.EventSink, 0, len(r.order))
	for _, id := range r.order {
		res = append(res, r.sessions[id])
	}
	return res
}

func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
