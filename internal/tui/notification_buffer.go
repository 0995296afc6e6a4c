package tui

import (
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
	"github.com/skykid17/smartlp-sub005/internal/core/notify"
)

type drainNotificationsMsg struct{}

// NotificationBuffer collects notifications published off the update loop,
// for example by event bus subscribers running in a fetch goroutine, and
// hands them to the loop in batches.
type NotificationBuffer struct {
	mu            sync.Mutex
	notifications []notify.Notification
	signal        chan struct{}
}

var _ eventbus.Notifier = (*NotificationBuffer)(nil)

// NewNotificationBuffer constructs an empty buffer.
func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{signal: make(chan struct{}, 1)}
}

// Publish appends a notification and emits a non-blocking drain signal.
func (b *NotificationBuffer) Publish(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	b.notifications = append(b.notifications, n)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns all buffered notifications and clears the buffer.
func (b *NotificationBuffer) Drain() []notify.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.notifications) == 0 {
		return nil
	}
	out := b.notifications
	b.notifications = nil
	return out
}

// WaitForSignal blocks until there are notifications ready to drain.
func (b *NotificationBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return drainNotificationsMsg{}
	}
}
