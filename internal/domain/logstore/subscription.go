package logstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrClosed is returned by Next once the subscription has been closed.
var ErrClosed = errors.New("subscription closed")

// Subscription receives payload-free notifications from a Store.
//
// Notifications never block the store. Each one bumps a pending counter and
// wakes C if it is not already signalled, so a slow reader sees several
// notifications coalesced into one wake-up without losing count of them.
type Subscription struct {
	id      string
	wake    chan struct{}
	done    chan struct{}
	pending atomic.Uint64
	once    sync.Once
	cancel  func(*Subscription)
}

func newSubscription(cancel func(*Subscription)) *Subscription {
	return &Subscription{
		id:     uuid.NewString(),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// ID uniquely identifies the subscription.
func (s *Subscription) ID() string {
	return s.id
}

// C is signalled whenever at least one notification is pending.
func (s *Subscription) C() <-chan struct{} {
	return s.wake
}

// Done is closed when the subscription is closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Drain returns the number of notifications received since the previous
// Drain or Next and resets the count.
func (s *Subscription) Drain() int {
	return int(s.pending.Swap(0))
}

// Next blocks until at least one notification is pending and returns how
// many arrived. It returns ErrClosed after Close and the context error if ctx
// ends first.
func (s *Subscription) Next(ctx context.Context) (int, error) {
	for {
		if n := s.Drain(); n > 0 {
			return n, nil
		}
		select {
		case <-s.wake:
		case <-s.done:
			if n := s.Drain(); n > 0 {
				return n, nil
			}
			return 0, ErrClosed
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel(s)
		}
		close(s.done)
	})
}

// notify records one notification and wakes the reader without blocking.
func (s *Subscription) notify() {
	s.pending.Add(1)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// subscriberSet is a set of subscriptions guarded by its own lock so
// membership changes never contend with buffer readers.
type subscriberSet struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func newSubscriberSet() *subscriberSet {
	return &subscriberSet{subs: make(map[*Subscription]struct{})}
}

func (set *subscriberSet) add(sub *Subscription) int {
	set.mu.Lock()
	defer set.mu.Unlock()
	set.subs[sub] = struct{}{}
	return len(set.subs)
}

func (set *subscriberSet) remove(sub *Subscription) int {
	set.mu.Lock()
	defer set.mu.Unlock()
	delete(set.subs, sub)
	return len(set.subs)
}

func (set *subscriberSet) len() int {
	set.mu.RLock()
	defer set.mu.RUnlock()
	return len(set.subs)
}

func (set *subscriberSet) notifyAll() {
	set.mu.RLock()
	defer set.mu.RUnlock()
	for sub := range set.subs {
		sub.notify()
	}
}
