package runtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"
)

// RoomRegistry owns the set of valid room names.
// Rooms are never removed; the default room is seeded at construction.
type RoomRegistry struct {
	mu       sync.RWMutex
	names    map[string]struct{}
	ordered  []string
	maxRooms int
}

// NewRoomRegistry seeds the default room. A maxRooms of 0 means no cap.
func NewRoomRegistry(maxRooms int) *RoomRegistry {
	r := &RoomRegistry{
		names:    make(map[string]struct{}),
		maxRooms: maxRooms,
	}
	r.names[domain.DefaultRoom] = struct{}{}
	r.ordered = append(r.ordered, domain.DefaultRoom)
	return r
}

func (r *RoomRegistry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[name]
	return ok
}

// Create registers a trimmed room name and returns it.
// Names are compared case-sensitively.
func (r *RoomRegistry) Create(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", errors.ErrInvalidName
	}
	if utf8.RuneCountInString(name) > domain.MaxRoomNameLength {
		return "", fmt.Errorf("%w: %d runes max", errors.ErrNameTooLong, domain.MaxRoomNameLength)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; ok {
		return "", fmt.Errorf("%w: %q", errors.ErrAlreadyExists, name)
	}
	if r.maxRooms > 0 && len(r.ordered) >= r.maxRooms {
		return "", fmt.Errorf("%w: %d rooms max", errors.ErrResourceExhausted, r.maxRooms)
	}
	r.names[name] = struct{}{}
	r.ordered = append(r.ordered, name)
	return name, nil
}

// List returns a copy of the room names in creation order, default room first.
func (r *RoomRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]string, len(r.ordered))
	copy(res, r.ordered)
	return res
}

func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}
