// Package cancel implements a single-slot, generation-counted cancellation
// signal shared by every in-flight bridge call. One Advance cancels all
// current subscribers at once: the hosting application runs a single logical
// request at a time, so per-request scoping is intentionally absent.
package cancel

import "sync"

// closed is returned by Changed when an advance is already pending, so the
// caller's select fires immediately.
var closed = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Broadcaster holds a monotonically increasing generation counter and wakes
// every current subscriber when it advances. It lives for the process and is
// never reset. The zero value is not usable; construct with NewBroadcaster.
//
// Pass the broadcaster into client components explicitly (constructor
// injection) rather than through a package global, so tests can run an
// independent broadcaster per case.
type Broadcaster struct {
	mu  sync.Mutex
	gen uint64
	ch  chan struct{}
}

// NewBroadcaster returns a broadcaster at generation zero.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{ch: make(chan struct{})}
}

// Advance increments the generation and wakes all current subscribers.
// A subscriber created before Advance is guaranteed to observe it.
func (b *Broadcaster) Advance() {
	b.mu.Lock()
	b.gen++
	close(b.ch)
	b.ch = make(chan struct{})
	b.mu.Unlock()
}

// Subscribe returns a handle capturing the current generation.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &Subscription{b: b, seen: b.gen}
}

// Subscription observes advances that happen after it was created. It is not
// safe for concurrent use by multiple goroutines.
type Subscription struct {
	b    *Broadcaster
	seen uint64
}

// Changed returns a channel that is closed once the generation advances past
// the value observed by the previous Changed call (or by Subscribe). If it
// already has, the returned channel is closed immediately. Rapid repeated
// advances between calls coalesce into a single observable change:
// last-value-wins, not a queue.
func (s *Subscription) Changed() <-chan struct{} {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.b.gen > s.seen {
		s.seen = s.b.gen
		return closed
	}
	return s.b.ch
}
