package selection

import (
	"sync"
	"time"

	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
)

// DefaultSyncDelay is the quiet period before a scheduled sync fires.
const DefaultSyncDelay = 100 * time.Millisecond

// SyncScheduler coalesces bursts of selection changes into one sync call.
// At most one timer is pending; every trigger restarts it.
type SyncScheduler struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewSyncScheduler creates a scheduler that calls fn once delay has passed
// without a new trigger.
func NewSyncScheduler(delay time.Duration, fn func()) *SyncScheduler {
	if delay <= 0 {
		delay = DefaultSyncDelay
	}
	return &SyncScheduler{delay: delay, fn: fn}
}

// Subscribe triggers the scheduler on selection.changed events for
// storageKey. An empty storageKey matches every selection. bus may be nil,
// in which case only explicit Trigger calls schedule a sync.
func (s *SyncScheduler) Subscribe(bus *eventbus.EventBus, storageKey string) {
	bus.SubscribeSelectionChanged(func(p eventbus.SelectionChangedPayload) {
		if storageKey != "" && p.StorageKey != storageKey {
			return
		}
		s.Trigger()
	})
}

// Trigger (re)starts the pending timer.
func (s *SyncScheduler) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

// Pending reports whether a sync is scheduled.
func (s *SyncScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Stop cancels any pending sync.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *SyncScheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	if s.fn != nil {
		s.fn()
	}
}
