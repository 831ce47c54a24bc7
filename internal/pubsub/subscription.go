package pubsub

import "sync"

// Subscription delivers feed values on a channel.
// Values are buffered in an internal queue so a slow reader delays only
// itself; ordering is preserved and nothing is dropped while subscribed.
type Subscription[T any] struct {
	ch       chan T
	done     chan struct{}
	onCancel func()
	once     sync.Once

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []T
	closed bool
}

func newSubscription[T any](onCancel func()) *Subscription[T] {
	s := &Subscription[T]{
		ch:       make(chan T),
		done:     make(chan struct{}),
		onCancel: onCancel,
	}
	s.cond = sync.NewCond(&s.mu)
	go s.drain()
	return s
}

// C returns the delivery channel. It is closed after Cancel, or once the
// source ends and all queued values have been delivered.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Cancel unregisters the subscription. Undelivered values are dropped and
// the channel is closed. Safe to call more than once.
func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		if s.onCancel != nil {
			s.onCancel()
		}
		close(s.done)

		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.cond.Signal()
		s.mu.Unlock()
	})
}

// close marks the end of the stream. Queued values are still delivered,
// then the channel closes. Used by Map when the source subscription ends.
func (s *Subscription[T]) close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Signal()
	s.mu.Unlock()
}

// push queues a value for delivery. Ignored after close or Cancel.
func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	if !s.closed {
		s.queue = append(s.queue, v)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

// drain moves values from the queue to the channel, one goroutine per
// subscription. It exits when canceled or when the queue empties after close.
func (s *Subscription[T]) drain() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			close(s.ch)
			return
		}
		v := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.ch <- v:
		case <-s.done:
			close(s.ch)
			return
		}
	}
}

// Map derives a subscription whose values are fn applied to each value of
// src, preserving order. Canceling the result cancels src.
func Map[T, U any](src *Subscription[T], fn func(T) U) *Subscription[U] {
	dst := newSubscription[U](src.Cancel)
	go func() {
		for v := range src.C() {
			dst.push(fn(v))
		}
		dst.close()
	}()
	return dst
}
