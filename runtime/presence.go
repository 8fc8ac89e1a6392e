package runtime

import (
	"chat-relay/domain"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// PresenceTable maps every joined connection to its User.
// Iteration follows join order: a user switching rooms moves to the back.
type PresenceTable struct {
	mu     sync.RWMutex
	users  *orderedmap.OrderedMap[domain.ConnectionID, domain.User]
	counts map[string]int
}

func NewPresenceTable() *PresenceTable {
	return &PresenceTable{
		users:  orderedmap.New[domain.ConnectionID, domain.User](),
		counts: make(map[string]int),
	}
}

// SetUser upserts the User of a connection.
// Room-scoped side effects of a previous room are the caller's job.
func (p *PresenceTable) SetUser(user domain.User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.users.Get(user.ConnectionID); ok {
		if prev.Room == user.Room {
			p.users.Set(user.ConnectionID, user)
			return
		}
		p.users.Delete(user.ConnectionID)
		p.decrement(prev.Room)
	}
	p.users.Set(user.ConnectionID, user)
	p.counts[user.Room]++
}

// RemoveUser deletes and returns the User of a connection, if any.
func (p *PresenceTable) RemoveUser(id domain.ConnectionID) (domain.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.users.Delete(id)
	if !ok {
		return domain.User{}, false
	}
	p.decrement(user.Room)
	return user, true
}

func (p *PresenceTable) Get(id domain.ConnectionID) (domain.User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.users.Get(id)
}

// UsersInRoom scans the table and keeps the users of one room, in join order.
func (p *PresenceTable) UsersInRoom(room string) []domain.User {
	p.mu.RLock()
	defer p.mu.RUnlock()

	res := make([]domain.User, 0, p.counts[room])
	for pair := p.users.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Room == room {
			res = append(res, pair.Value)
		}
	}
	return res
}

func (p *PresenceTable) CountInRoom(room string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.counts[room]
}

func (p *PresenceTable) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.users.Len()
}

func (p *PresenceTable) decrement(room string) {
	p.counts[room]--
	if p.counts[room] <= 0 {
		delete(p.counts, room)
	}
}
