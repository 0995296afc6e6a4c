package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

func TestClickController(t *testing.T) {
	sel, table := newTestSelection(t, tempBackend(t))
	sel.UpdateTableData(entries(1, 2, 3), RenderOptions{})

	var opened []record.ID
	ctrl := NewClickController(sel, func(id record.ID) { opened = append(opened, id) })

	t.Run("checkbox target is ignored", func(t *testing.T) {
		out := ctrl.HandleClick(Click{ID: "1", Target: TargetCheckbox})
		assert.Equal(t, Outcome{}, out)
		assert.False(t, sel.Contains("1"))
	})

	t.Run("interactive target is ignored", func(t *testing.T) {
		out := ctrl.HandleClick(Click{ID: "1", Target: TargetInteractive})
		assert.Equal(t, Outcome{}, out)
		assert.False(t, sel.Contains("1"))
	})

	t.Run("plain click selects and opens", func(t *testing.T) {
		out := ctrl.HandleClick(Click{ID: "1"})
		assert.Equal(t, Outcome{Toggled: true, Selected: true, Opened: true}, out)
		assert.True(t, table.Find("1").Checked)
		assert.Equal(t, record.IDs("1"), opened)
	})

	t.Run("modifier click toggles only", func(t *testing.T) {
		out := ctrl.HandleClick(Click{ID: "2", Modifier: true})
		assert.Equal(t, Outcome{Toggled: true, Selected: true}, out)
		assert.Len(t, opened, 1)
	})

	t.Run("click on selected row deselects", func(t *testing.T) {
		out := ctrl.HandleClick(Click{ID: "1"})
		assert.Equal(t, Outcome{Toggled: true}, out)
		assert.False(t, sel.Contains("1"))
		assert.Len(t, opened, 1)
	})

	t.Run("placeholder row is ignored", func(t *testing.T) {
		assert.Equal(t, Outcome{}, ctrl.HandleClick(Click{}))
	})
}

func TestClickController_HandleChange(t *testing.T) {
	sel, table := newTestSelection(t, tempBackend(t))
	sel.UpdateTableData(entries(1), RenderOptions{})
	ctrl := NewClickController(sel, func(record.ID) { t.Fatal("change must not open detail") })

	out := ctrl.HandleChange("1", true)
	assert.Equal(t, Outcome{Toggled: true, Selected: true}, out)
	assert.True(t, table.Find("1").Selected)

	out = ctrl.HandleChange("1", true)
	assert.Equal(t, Outcome{Selected: true}, out)
	assert.Equal(t, record.IDs("1"), sel.IDs())

	out = ctrl.HandleChange("1", false)
	assert.Equal(t, Outcome{Toggled: true}, out)
	assert.Empty(t, sel.IDs())
}
