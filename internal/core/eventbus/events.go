package eventbus

import "github.com/skykid17/smartlp-sub005/internal/core/record"

// Event names. Keep list sorted A-Z.
const (
	EventPanelSyncFailed  Event = "panel.sync-failed"
	EventPanelSynced      Event = "panel.synced"
	EventRecordsDeleted   Event = "records.deleted"
	EventSelectionChanged Event = "selection.changed"
)

// PanelSyncFailedPayload is emitted when a configuration panel fetch fails.
type PanelSyncFailedPayload struct {
	StorageKey string
	Err        error
}

// PanelSyncedPayload is emitted after a configuration panel rendered fresh rows.
type PanelSyncedPayload struct {
	StorageKey string
	Count      int
}

// RecordsDeletedPayload is emitted after a bulk delete finished.
type RecordsDeletedPayload struct {
	StorageKey string
	Deleted    []record.ID
	Failed     int
}

// SelectionChangedPayload is emitted every time a selection's UI state is
// recomputed.
type SelectionChangedPayload struct {
	StorageKey string
	Selected   int
	Hidden     int
}

// PublishPanelSyncFailed publishes EventPanelSyncFailed.
func (bus *EventBus) PublishPanelSyncFailed(p PanelSyncFailedPayload) {
	bus.send(EventPanelSyncFailed, p)
}

// SubscribePanelSyncFailed subscribes to EventPanelSyncFailed.
func (bus *EventBus) SubscribePanelSyncFailed(fn func(PanelSyncFailedPayload)) {
	bus.subscribe(EventPanelSyncFailed, func(p any) { fn(p.(PanelSyncFailedPayload)) })
}

// PublishPanelSynced publishes EventPanelSynced.
func (bus *EventBus) PublishPanelSynced(p PanelSyncedPayload) {
	bus.send(EventPanelSynced, p)
}

// SubscribePanelSynced subscribes to EventPanelSynced.
func (bus *EventBus) SubscribePanelSynced(fn func(PanelSyncedPayload)) {
	bus.subscribe(EventPanelSynced, func(p any) { fn(p.(PanelSyncedPayload)) })
}

// PublishRecordsDeleted publishes EventRecordsDeleted.
func (bus *EventBus) PublishRecordsDeleted(p RecordsDeletedPayload) {
	bus.send(EventRecordsDeleted, p)
}

// SubscribeRecordsDeleted subscribes to EventRecordsDeleted.
func (bus *EventBus) SubscribeRecordsDeleted(fn func(RecordsDeletedPayload)) {
	bus.subscribe(EventRecordsDeleted, func(p any) { fn(p.(RecordsDeletedPayload)) })
}

// PublishSelectionChanged publishes EventSelectionChanged.
func (bus *EventBus) PublishSelectionChanged(p SelectionChangedPayload) {
	bus.send(EventSelectionChanged, p)
}

// SubscribeSelectionChanged subscribes to EventSelectionChanged.
func (bus *EventBus) SubscribeSelectionChanged(fn func(SelectionChangedPayload)) {
	bus.subscribe(EventSelectionChanged, func(p any) { fn(p.(SelectionChangedPayload)) })
}
