package tui

import (
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skykid17/smartlp-sub005/internal/core/notify"
	"github.com/skykid17/smartlp-sub005/internal/core/styles"
)

func TestToastController_PushEvictsOldest(t *testing.T) {
	c := NewToastController()
	for i := range defaultMaxToasts + 2 {
		c.Push(notify.Notification{Level: notify.LevelInfo, Message: fmt.Sprintf("toast %d", i)})
	}

	msgs := c.Messages()
	require.Len(t, msgs, defaultMaxToasts)
	assert.Equal(t, "toast 2", msgs[0])
}

func TestToastController_TickExpires(t *testing.T) {
	c := NewToastController()
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "info"})
	c.Push(notify.Notification{Level: notify.LevelError, Message: "error"})

	c.Tick(defaultToastTTL - time.Millisecond)
	assert.Equal(t, []string{"info", "error"}, c.Messages())

	c.Tick(time.Millisecond)
	assert.Equal(t, []string{"error"}, c.Messages())

	c.Tick(errorToastTTL)
	assert.False(t, c.HasToasts())
}

func TestToastController_Dismiss(t *testing.T) {
	c := NewToastController()
	c.Dismiss()

	c.Push(notify.Notification{Message: "old"})
	c.Push(notify.Notification{Message: "new"})
	c.Dismiss()

	assert.Equal(t, []string{"old"}, c.Messages())
}

func TestToastController_View(t *testing.T) {
	tests := []struct {
		level notify.Level
		icon  string
	}{
		{notify.LevelError, styles.IconNotifyError},
		{notify.LevelWarning, styles.IconNotifyWarning},
		{notify.LevelInfo, styles.IconNotifyInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			c := NewToastController()
			assert.Empty(t, c.View())

			c.Push(notify.Notification{Level: tt.level, Message: "deleted 2 record(s)"})
			out := ansi.Strip(c.View())
			assert.Contains(t, out, tt.icon)
			assert.Contains(t, out, "deleted 2 record(s)")
		})
	}
}

func TestToastController_Overlay(t *testing.T) {
	c := NewToastController()
	assert.Equal(t, "background", c.Overlay("background", 80, 24))

	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "synced"})
	assert.Contains(t, ansi.Strip(c.Overlay("background", 80, 24)), "synced")
}
