package bus

import (
	"sync"
)

// Topic names a stream of events carrying T. Subscribing and publishing go
// through the package functions so payload types are checked at compile time.
type Topic[T any] struct {
	name string
}

func NewTopic[T any](name string) Topic[T] { return Topic[T]{name: name} }

func (t Topic[T]) Name() string { return t.name }

type subscription struct {
	id uint64
	fn func(any)
}

// Bus is an in-process publish/subscribe channel. Handlers run synchronously in
// the publisher's goroutine, in subscription order; a handler may publish.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
	mirror []subscription
}

func New() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

func Subscribe[T any](b *Bus, t Topic[T], fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[t.name] = append(b.subs[t.name], subscription{
		id: id,
		fn: func(v any) { fn(v.(T)) },
	})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs[t.name] = removeSub(b.subs[t.name], id)
	}
}

func Publish[T any](b *Bus, t Topic[T], v T) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[t.name]...)
	mirror := append([]subscription(nil), b.mirror...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(v)
	}
	for _, m := range mirror {
		m.fn(Event{Topic: t.name, Payload: v})
	}
}

// Event is a publication seen by a mirror.
type Event struct {
	Topic   string
	Payload any
}

// Mirror receives every publication after the topic subscribers ran.
func (b *Bus) Mirror(fn func(Event)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.mirror = append(b.mirror, subscription{id: id, fn: func(v any) { fn(v.(Event)) }})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.mirror = removeSub(b.mirror, id)
	}
}

// Subscribers is the number of handlers on topic name.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

func removeSub(in []subscription, id uint64) []subscription {
	out := in[:0:0]
	for _, s := range in {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
