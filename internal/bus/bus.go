package bus

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/adriangreen/fddplan/internal/debug"
)

// Listener receives events. A returned error is logged and otherwise
// ignored.
type Listener func(Event) error

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	bus      *Bus
	listener Listener
	active   atomic.Bool
}

// Unsubscribe stops delivery to the listener. It is safe to call more than
// once and from inside a listener; an unsubscribed listener is skipped for
// the rest of an ongoing publish.
func (s *Subscription) Unsubscribe() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	s.bus.remove(s)
}

// Bus is a synchronous publish/subscribe channel for tree changes. Events are
// delivered on the publisher's goroutine in subscription order.
type Bus struct {
	mu       sync.Mutex
	subs     []*Subscription
	failures atomic.Int64
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a listener. Listeners added while an event is being
// published only see later events.
func (b *Bus) Subscribe(l Listener) *Subscription {
	s := &Subscription{bus: b, listener: l}
	s.active.Store(true)
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return s
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cur := range b.subs {
		if cur == s {
			// copy so snapshots held by in-flight publishes stay intact
			next := make([]*Subscription, 0, len(b.subs)-1)
			next = append(next, b.subs[:i]...)
			b.subs = append(next, b.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Failures returns how many deliveries have failed so far.
func (b *Bus) Failures() int64 {
	return b.failures.Load()
}

// Publish delivers evt to every listener subscribed at the time of the
// call. Listener errors and panics never reach the publisher.
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	snapshot := b.subs
	b.mu.Unlock()

	for _, s := range snapshot {
		if !s.active.Load() {
			continue
		}
		if err := deliver(s.listener, evt); err != nil {
			b.failures.Add(1)
			debug.Warn("listener failed on %T: %v", evt, err)
		}
	}
}

func deliver(l Listener, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return l(evt)
}
