// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within smartlp.
//
// Dispatch is synchronous: Publish returns after every subscriber ran. The
// TUI update loop is the only publisher in practice, so subscribers observe
// events in publish order without any buffering.
package eventbus

import "sync"

// Event names a bus event.
type Event string

// EventBus dispatches typed events to subscribers.
type EventBus struct {
	mu    sync.RWMutex
	subs  map[Event][]func(any)
	hooks hooks
}

// New creates an empty bus.
func New() *EventBus {
	return &EventBus{subs: make(map[Event][]func(any))}
}

// subscribe registers fn for event. Subscribing to a nil bus is a no-op.
func (bus *EventBus) subscribe(event Event, fn func(any)) {
	if bus == nil {
		return
	}

	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

// send delivers payload to every subscriber of event. A panicking
// subscriber is recovered and reported through OnPanic hooks; the
// remaining subscribers still run.
func (bus *EventBus) send(event Event, payload any) {
	if bus == nil {
		return
	}

	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[event]))
	copy(subs, bus.subs[event])
	bus.mu.RUnlock()

	bus.runOnPublish(event, payload)

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(event, payload, r)
				}
			}()
			fn(payload)
		}()
	}
}
