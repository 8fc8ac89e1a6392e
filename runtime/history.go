package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"sync"
)

var _ contract.HistoryStore = (*MemoryHistory)(nil)

// MemoryHistory keeps per-room messages in process memory.
// With a positive limit only the latest limit messages of each room are retained.
type MemoryHistory struct {
	mu       sync.RWMutex
	messages map[string][]domain.Message
	limit    int
}

func NewMemoryHistory(limit int) *MemoryHistory {
	return &MemoryHistory{
		messages: make(map[string][]domain.Message),
		limit:    limit,
	}
}

// Append adds the message at the end of its room, creating the room sequence lazily.
func (h *MemoryHistory) Append(_ context.Context, message domain.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	messages := append(h.messages[message.Room], message)
	if h.limit > 0 && len(messages) > h.limit {
		// The next growing append reallocates with live elements only
		messages = messages[len(messages)-h.limit:]
	}
	h.messages[message.Room] = messages
	return nil
}

// Get returns a copy of the room messages in chronological order.
func (h *MemoryHistory) Get(_ context.Context, room string) ([]domain.Message, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	res := make([]domain.Message, len(h.messages[room]))
	copy(res, h.messages[room])
	return res, nil
}
