package eventbus

import (
	"fmt"

	"github.com/skykid17/smartlp-sub005/internal/core/notify"
)

// Notifier receives user-facing notifications.
type Notifier interface {
	Publish(n notify.Notification)
}

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus      *EventBus
	notifier Notifier
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus, notifier Notifier) *NotificationRouter {
	return &NotificationRouter{bus: bus, notifier: notifier}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil || r.notifier == nil {
		return
	}

	r.bus.SubscribePanelSyncFailed(func(p PanelSyncFailedPayload) {
		r.notifyf(notify.LevelError, "configuration panel: %v", p.Err)
	})

	r.bus.SubscribeRecordsDeleted(func(p RecordsDeletedPayload) {
		switch {
		case p.Failed > 0 && len(p.Deleted) == 0:
			r.notifyf(notify.LevelError, "delete failed for %d record(s)", p.Failed)
		case p.Failed > 0:
			r.notifyf(notify.LevelWarning, "deleted %d record(s), %d failed", len(p.Deleted), p.Failed)
		default:
			r.notifyf(notify.LevelInfo, "deleted %d record(s)", len(p.Deleted))
		}
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.notifier.Publish(notify.Notification{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
