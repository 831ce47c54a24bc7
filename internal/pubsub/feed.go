// Package pubsub implements a broadcast feed that retains its latest value.
// New subscribers immediately receive the most recently published value and
// then every subsequent one, in publish order, with no drops.
package pubsub

import "sync"

// Feed is a broadcast channel with replay-latest semantics.
// Publish never blocks on slow subscribers; each subscriber owns a queue
// drained by its own goroutine. With a clone function configured, every
// delivered value is an independent copy, so one subscriber mutating what
// it received cannot corrupt what the others observe.
type Feed[T any] struct {
	mu     sync.Mutex
	latest T
	seeded bool
	subs   map[uint64]*Subscription[T]
	nextID uint64
	clone  func(T) T
}

// Option configures a Feed.
type Option[T any] func(*Feed[T])

// WithClone sets the copy function applied to each value on delivery.
func WithClone[T any](fn func(T) T) Option[T] {
	return func(f *Feed[T]) { f.clone = fn }
}

// NewFeed creates an empty feed. The first Publish seeds the latest value.
func NewFeed[T any](opts ...Option[T]) *Feed[T] {
	f := &Feed[T]{
		subs: make(map[uint64]*Subscription[T]),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// deliver copies v when a clone function is set.
func (f *Feed[T]) deliver(v T) T {
	if f.clone != nil {
		return f.clone(v)
	}
	return v
}

// Publish replaces the latest value and queues it to every subscriber.
// Values reach all subscribers in the order they were published.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest = v
	f.seeded = true
	for _, sub := range f.subs {
		sub.push(f.deliver(v))
	}
}

// Latest returns the most recently published value.
// The second return is false if nothing has been published yet.
func (f *Feed[T]) Latest() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.seeded {
		return f.latest, false
	}
	return f.deliver(f.latest), true
}

// Subscribe registers a new subscriber. If the feed has a latest value it is
// delivered first. Callers must Cancel the subscription when done.
func (f *Feed[T]) Subscribe() *Subscription[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++

	sub := newSubscription[T](func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	})
	f.subs[id] = sub

	if f.seeded {
		sub.push(f.deliver(f.latest))
	}
	return sub
}

// SubscriberCount returns the number of registered subscribers.
func (f *Feed[T]) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
