package logstore

import (
	"strings"
	"sync"

	"github.com/GriffinCanCode/TraceStream/backend/internal/infrastructure/monitoring"
)

// Separator joins consecutive lines in the buffer.
const Separator = "\n"

// State is the buffer's position in its reset cycle.
type State int

const (
	// StateEmpty holds at startup and immediately after a reset.
	StateEmpty State = iota
	// StateAccumulating holds once a line has been appended in this cycle.
	StateAccumulating
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAccumulating:
		return "accumulating"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the buffer taken under one lock.
type Snapshot struct {
	Content string
	Lines   int
	Cycle   uint64
	Version uint64
}

// Stats summarises the buffer without copying its content.
type Stats struct {
	State       string `json:"state"`
	Bytes       int    `json:"bytes"`
	Lines       int    `json:"lines"`
	Cycle       uint64 `json:"cycle"`
	Version     uint64 `json:"version"`
	Subscribers int    `json:"subscribers"`
}

// Store owns the accumulated log text. Append and Reset are the only
// mutations; they are serialised and every one is followed by a change
// notification to all subscribers.
type Store struct {
	mu         sync.RWMutex
	content    strings.Builder // Protected by mu
	hasContent bool            // Protected by mu
	lines      int             // Protected by mu
	cycle      uint64          // Protected by mu
	version    uint64          // Protected by mu

	changes *subscriberSet
	firsts  *subscriberSet
	metrics *monitoring.Metrics
}

// New creates an empty store.
func New() *Store {
	return &Store{
		changes: newSubscriberSet(),
		firsts:  newSubscriberSet(),
	}
}

// WithMetrics adds metrics tracking to the store
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// Append adds one line to the end of the buffer. The first line of a cycle
// is written without a separator and raises the first-content signal.
func (s *Store) Append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := !s.hasContent
	if !first {
		s.content.WriteString(Separator)
	}
	s.content.WriteString(line)
	s.hasContent = true
	s.lines++
	s.version++

	if s.metrics != nil {
		s.metrics.RecordAppend(s.content.Len(), s.lines)
	}

	// Notifying under the lock keeps per-subscriber order equal to
	// mutation order; notify never blocks. The first-content signal goes
	// out before the change so it is pending by the time a change wakes
	// anyone.
	if first {
		if s.metrics != nil {
			s.metrics.IncFirstContent()
		}
		s.firsts.notifyAll()
	}
	s.changes.notifyAll()
}

// Reset clears the buffer and starts a new cycle. Subscribers are notified
// even when the buffer was already empty.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Reset drops the backing array; strings handed out earlier stay valid.
	s.content.Reset()
	s.hasContent = false
	s.lines = 0
	s.cycle++
	s.version++

	if s.metrics != nil {
		s.metrics.RecordReset()
	}

	s.changes.notifyAll()
}

// Content returns the full buffer as of the call.
func (s *Store) Content() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content.String()
}

// Snapshot returns the content together with its cycle and version.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Content: s.content.String(),
		Lines:   s.lines,
		Cycle:   s.cycle,
		Version: s.version,
	}
}

// State reports whether the current cycle has produced content yet.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hasContent {
		return StateAccumulating
	}
	return StateEmpty
}

// Stats returns buffer statistics
func (s *Store) Stats() Stats {
	s.mu.RLock()
	state := StateEmpty
	if s.hasContent {
		state = StateAccumulating
	}
	stats := Stats{
		State:   state.String(),
		Bytes:   s.content.Len(),
		Lines:   s.lines,
		Cycle:   s.cycle,
		Version: s.version,
	}
	s.mu.RUnlock()

	stats.Subscribers = s.changes.len()
	return stats
}

// Subscribe registers for change notifications. The caller re-reads the
// buffer with Content or Snapshot when notified, and must Close the
// subscription when done.
func (s *Store) Subscribe() *Subscription {
	sub := newSubscription(s.unsubscribe)
	count := s.changes.add(sub)
	if s.metrics != nil {
		s.metrics.SetSubscribers(count)
	}
	return sub
}

// SubscribeFirstContent registers for the signal raised once per reset
// cycle when the first line is appended.
func (s *Store) SubscribeFirstContent() *Subscription {
	sub := newSubscription(func(sub *Subscription) { s.firsts.remove(sub) })
	s.firsts.add(sub)
	return sub
}

func (s *Store) unsubscribe(sub *Subscription) {
	count := s.changes.remove(sub)
	if s.metrics != nil {
		s.metrics.SetSubscribers(count)
	}
}
