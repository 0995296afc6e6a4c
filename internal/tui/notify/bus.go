package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skykid17/smartlp-sub005/internal/core/notify"
)

// Subscriber is a callback invoked when a notification is published.
type Subscriber func(notify.Notification)

// Bus is a synchronous in-process notification bus. It dispatches notifications
// to subscribers inline and records them in a History. The Bus is safe for use
// from the Bubble Tea Update loop.
type Bus struct {
	history     *notify.History
	subscribers []Subscriber
	mu          sync.Mutex
}

// NewBus creates a notification bus backed by the given history.
// If history is nil, notifications are dispatched but not kept.
func NewBus(history *notify.History) *Bus {
	return &Bus{history: history}
}

// Subscribe registers a callback that will be invoked on every Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish dispatches a notification to all subscribers and records it.
func (b *Bus) Publish(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if b.history != nil {
		n.ID = b.history.Save(n)
	}

	if n.Level == notify.LevelError {
		log.Error().Str("message", n.Message).Msg("notification")
	}

	b.mu.Lock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

// Errorf publishes an error-level notification.
func (b *Bus) Errorf(format string, args ...any) {
	b.Publish(notify.Notification{Level: notify.LevelError, Message: fmt.Sprintf(format, args...)})
}

// Warnf publishes a warning-level notification.
func (b *Bus) Warnf(format string, args ...any) {
	b.Publish(notify.Notification{Level: notify.LevelWarning, Message: fmt.Sprintf(format, args...)})
}

// Infof publishes an info-level notification.
func (b *Bus) Infof(format string, args ...any) {
	b.Publish(notify.Notification{Level: notify.LevelInfo, Message: fmt.Sprintf(format, args...)})
}

// History returns recorded notifications (newest first).
func (b *Bus) History() []notify.Notification {
	if b.history == nil {
		return nil
	}
	return b.history.List()
}

// Clear drops all recorded notifications.
func (b *Bus) Clear() {
	if b.history != nil {
		b.history.Clear()
	}
}
