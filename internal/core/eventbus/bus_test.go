package eventbus_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
	"github.com/skykid17/smartlp-sub005/internal/core/eventbus/testbus"
	"github.com/skykid17/smartlp-sub005/internal/core/notify"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

func TestEventBus_DeliversInOrder(t *testing.T) {
	bus := eventbus.New()

	var got []int
	bus.SubscribeSelectionChanged(func(p eventbus.SelectionChangedPayload) {
		got = append(got, p.Selected)
	})

	bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{StorageKey: "k", Selected: 1})
	bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{StorageKey: "k", Selected: 2})

	assert.Equal(t, []int{1, 2}, got)
}

func TestEventBus_PanicIsRecovered(t *testing.T) {
	bus := eventbus.New()

	var panicked any
	bus.OnPanic(func(_ eventbus.Event, _ any, r any) { panicked = r })

	called := false
	bus.SubscribePanelSynced(func(eventbus.PanelSyncedPayload) { panic("boom") })
	bus.SubscribePanelSynced(func(eventbus.PanelSyncedPayload) { called = true })

	require.NotPanics(t, func() {
		bus.PublishPanelSynced(eventbus.PanelSyncedPayload{Count: 3})
	})
	assert.Equal(t, "boom", panicked)
	assert.True(t, called, "later subscribers still run")
}

func TestEventBus_NilBusIsNoop(t *testing.T) {
	var bus *eventbus.EventBus
	assert.NotPanics(t, func() {
		bus.PublishRecordsDeleted(eventbus.RecordsDeletedPayload{})
		bus.SubscribeSelectionChanged(func(eventbus.SelectionChangedPayload) {})
		bus.SubscribePanelSyncFailed(func(eventbus.PanelSyncFailedPayload) {})
	})
}

func TestTestBus_Records(t *testing.T) {
	tb := testbus.New(t)

	tb.PublishSelectionChanged(eventbus.SelectionChangedPayload{StorageKey: "a", Selected: 4, Hidden: 1})

	tb.AssertPublished(t, eventbus.EventSelectionChanged)
	tb.AssertNotPublished(t, eventbus.EventPanelSynced)

	p, ok := tb.Last(eventbus.EventSelectionChanged)
	require.True(t, ok)
	assert.Equal(t, 1, p.(eventbus.SelectionChangedPayload).Hidden)

	tb.Reset()
	assert.Empty(t, tb.Events())
}

func TestRegisterDebugLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	bus := eventbus.New()
	eventbus.RegisterDebugLogger(bus, logger)

	bus.PublishPanelSynced(eventbus.PanelSyncedPayload{Count: 1})

	assert.Contains(t, buf.String(), `"event":"panel.synced"`)
	assert.Contains(t, buf.String(), "event fired")
}

type captureNotifier struct {
	got []notify.Notification
}

func (c *captureNotifier) Publish(n notify.Notification) { c.got = append(c.got, n) }

func TestNotificationRouter(t *testing.T) {
	bus := eventbus.New()
	sink := &captureNotifier{}
	eventbus.NewNotificationRouter(bus, sink).Register()

	bus.PublishPanelSyncFailed(eventbus.PanelSyncFailedPayload{Err: errors.New("timeout")})
	bus.PublishRecordsDeleted(eventbus.RecordsDeletedPayload{Deleted: record.IDs("1", "2")})
	bus.PublishRecordsDeleted(eventbus.RecordsDeletedPayload{Deleted: record.IDs("1"), Failed: 1})
	bus.PublishRecordsDeleted(eventbus.RecordsDeletedPayload{Failed: 2})

	require.Len(t, sink.got, 4)
	assert.Equal(t, notify.LevelError, sink.got[0].Level)
	assert.Equal(t, "configuration panel: timeout", sink.got[0].Message)
	assert.Equal(t, notify.Notification{Level: notify.LevelInfo, Message: "deleted 2 record(s)"}, sink.got[1])
	assert.Equal(t, notify.LevelWarning, sink.got[2].Level)
	assert.Equal(t, "delete failed for 2 record(s)", sink.got[3].Message)
}
