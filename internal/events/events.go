// Package events is the mutation bus lists subscribe to for optimistic
// patches: a dialog that changed an entity publishes the updated fields and
// every list holding a shadow copy patches the affected entry by identifier,
// instead of threading ad hoc callbacks through parents.
package events

import "sync"

type Entity string

const (
	EntityMovie  Entity = "movie"
	EntityUser   Entity = "user"
	EntityRating Entity = "rating"
)

type Mutation struct {
	Entity Entity
	ID     int
	Fields map[string]any
}

type Bus struct {
	mu   sync.RWMutex
	subs map[int]func(Mutation)
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Mutation))}
}

// Subscribe registers fn for every future mutation; the returned cancel
// detaches it. Screens cancel on close so a disposed list is never patched.
func (b *Bus) Subscribe(fn func(Mutation)) (cancel func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Bus) Publish(m Mutation) {
	b.mu.RLock()
	subs := make([]func(Mutation), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(m)
	}
}
