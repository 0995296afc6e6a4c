package selection

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
)

func TestSyncScheduler_CoalescesBurst(t *testing.T) {
	var calls atomic.Int32
	s := NewSyncScheduler(20*time.Millisecond, func() { calls.Add(1) })

	for range 5 {
		s.Trigger()
		time.Sleep(2 * time.Millisecond)
	}
	assert.True(t, s.Pending())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, s.Pending())
}

func TestSyncScheduler_Stop(t *testing.T) {
	var calls atomic.Int32
	s := NewSyncScheduler(10*time.Millisecond, func() { calls.Add(1) })

	s.Trigger()
	s.Stop()

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestSyncScheduler_SubscribeFiltersByKey(t *testing.T) {
	var calls atomic.Int32
	bus := eventbus.New()
	s := NewSyncScheduler(10*time.Millisecond, func() { calls.Add(1) })
	s.Subscribe(bus, "p_entries")

	bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{StorageKey: "p_rules"})
	assert.False(t, s.Pending())

	sel := New(NewStore(nil, "p", "entries"), bus, Options{})
	sel.AddIDs("1")
	sel.AddIDs("2")

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSyncScheduler_SubscribeNilBus(t *testing.T) {
	var calls atomic.Int32
	s := NewSyncScheduler(5*time.Millisecond, func() { calls.Add(1) })

	assert.NotPanics(t, func() { s.Subscribe(nil, "p_entries") })
	assert.False(t, s.Pending())

	s.Trigger()
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}
