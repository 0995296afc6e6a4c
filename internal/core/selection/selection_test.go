package selection

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
	"github.com/skykid17/smartlp-sub005/internal/core/eventbus/testbus"
	"github.com/skykid17/smartlp-sub005/internal/core/kv"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/internal/store/jsonfile"
)

func entries(ids ...int) []record.Record {
	out := make([]record.Record, len(ids))
	for i, id := range ids {
		out[i] = record.LogEntry{ID: record.IntID(id), Log: "line"}
	}
	return out
}

func newTestSelection(t *testing.T, backend kv.KV) (*Selection, *Table) {
	t.Helper()
	store := NewStore(backend, "smartlp", "entries-body")
	sel := New(store, nil, Options{
		Buttons:       []string{"delete", "clear"},
		AlwaysEnabled: []string{"panel"},
		ColumnCount:   4,
	})
	table := NewTable()
	sel.Bind(table)
	return sel, table
}

func tempBackend(t *testing.T) kv.KV {
	t.Helper()
	return jsonfile.NewKVStore(filepath.Join(t.TempDir(), "selection.json"))
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "smartlp_entries-body", StorageKey("smartlp", "entries-body"))
}

func TestSelection_HiddenCount_ScenarioA(t *testing.T) {
	sel, _ := newTestSelection(t, tempBackend(t))

	sel.AddIDs(record.IDs("1", "2", "3")...)
	status := sel.UpdateTableData(entries(2, 3, 4), RenderOptions{})

	assert.Equal(t, 3, status.Total)
	assert.Equal(t, 2, status.Visible)
	assert.Equal(t, 1, status.Hidden)
	assert.Equal(t, "Selected 3 entries (1 filtered out)", status.Message)
}

func TestSelection_HiddenCountInvariant(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		visible  []int
	}{
		{name: "disjoint", selected: []string{"1", "2"}, visible: []int{3, 4}},
		{name: "subset", selected: []string{"3"}, visible: []int{3, 4}},
		{name: "empty selection", selected: nil, visible: []int{1}},
		{name: "empty page", selected: []string{"9"}, visible: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, _ := newTestSelection(t, tempBackend(t))
			sel.AddIDs(record.IDs(tt.selected...)...)

			status := sel.UpdateTableData(entries(tt.visible...), RenderOptions{})

			selected := NewSet(sel.IDs()...)
			visible := NewSet(sel.Visible()...)
			assert.Equal(t, selected.Len()-selected.IntersectCount(visible), status.Hidden)

			status = sel.UpdateSelectionUI()
			assert.Equal(t, selected.Len()-selected.IntersectCount(visible), status.Hidden)
		})
	}
}

func TestSelection_Messages(t *testing.T) {
	sel, _ := newTestSelection(t, tempBackend(t))

	assert.Equal(t, "No entries selected", sel.UpdateSelectionUI().Message)

	sel.UpdateTableData(entries(1, 2), RenderOptions{})
	sel.AddIDs(record.IDs("1", "2")...)
	assert.Equal(t, "Selected 2 entries", sel.Status().Message)
}

func TestSelection_AddIDs_NoDuplicates(t *testing.T) {
	sel, _ := newTestSelection(t, tempBackend(t))

	sel.AddIDs("x", "x")
	sel.AddIDs("x")

	assert.Equal(t, []record.ID{"x"}, sel.IDs())
}

func TestSelection_RoundTripAfterReload(t *testing.T) {
	backend := tempBackend(t)
	sel, _ := newTestSelection(t, backend)

	sel.ToggleRowSelection(nil, "1")
	sel.AddIDs("2", "3", "4")
	sel.RemoveIDs("3")
	sel.ToggleRowSelection(nil, "1")
	sel.ToggleRowSelection(nil, "5")
	want := sel.IDs()

	reloaded, _ := newTestSelection(t, jsonfile.NewKVStore(backend.(*jsonfile.KVStore).Path()))

	assert.ElementsMatch(t, want, reloaded.IDs())
	assert.ElementsMatch(t, record.IDs("2", "4", "5"), reloaded.IDs())
	assert.Equal(t, 3, reloaded.Status().Total)
}

func TestSelection_UpdateTableData_Empty(t *testing.T) {
	sel, table := newTestSelection(t, tempBackend(t))
	sel.UpdateTableData(entries(1, 2), RenderOptions{})

	afterCalled := false
	sel.UpdateTableData(nil, RenderOptions{
		EmptyMessage: "Nothing here",
		AfterUpdate:  func() { afterCalled = true },
	})

	require.Equal(t, 1, table.Len())
	row, _ := table.Row(0)
	assert.True(t, row.Empty)
	assert.Equal(t, 4, row.Span)
	assert.Equal(t, []string{"Nothing here"}, row.Cells)
	assert.Empty(t, sel.Visible())
	assert.True(t, afterCalled)
}

func TestSelection_UpdateTableData_ReappliesSelection(t *testing.T) {
	sel, table := newTestSelection(t, tempBackend(t))
	sel.AddIDs("2")

	sel.UpdateTableData(entries(1, 2, 3), RenderOptions{
		RenderRow: func(r record.Record) []string {
			return []string{r.RecordID().String(), r.(record.LogEntry).Log}
		},
	})

	rows := table.Rows()
	require.Len(t, rows, 3)
	assert.False(t, rows[0].Selected)
	assert.True(t, rows[1].Selected)
	assert.True(t, rows[1].Checked)
	assert.Equal(t, []string{"2", "line"}, rows[1].Cells)
	assert.Equal(t, record.IDs("1", "2", "3"), sel.Visible())
}

func TestSelection_VisibleReplacedAtomically(t *testing.T) {
	sel, _ := newTestSelection(t, tempBackend(t))

	sel.UpdateTableData(entries(1, 2, 3), RenderOptions{})
	sel.UpdateTableData(entries(4), RenderOptions{})

	assert.Equal(t, record.IDs("4"), sel.Visible())
}

func TestSelection_ToggleMarksRow(t *testing.T) {
	sel, table := newTestSelection(t, tempBackend(t))
	sel.UpdateTableData(entries(1, 2), RenderOptions{})

	sel.ToggleRowSelection(nil, "1")
	assert.True(t, table.Find("1").Selected)
	assert.True(t, sel.Status().Enabled("delete"))

	sel.ToggleRowSelection(table.Find("1"), "1")
	assert.False(t, table.Find("1").Checked)
	assert.False(t, sel.Status().Enabled("delete"))
	assert.True(t, sel.Status().Enabled("panel"))
}

func TestSelection_ClearSelection(t *testing.T) {
	sel, table := newTestSelection(t, tempBackend(t))
	sel.UpdateTableData(entries(1, 2), RenderOptions{})
	sel.AddIDs("1", "2", "7")

	sel.ClearSelection()

	assert.Empty(t, sel.IDs())
	for _, row := range table.Rows() {
		assert.False(t, row.Selected)
	}
	assert.Zero(t, sel.Status().Total)
}

func TestSelection_UnboundTableIsNoop(t *testing.T) {
	sel := New(NewStore(tempBackend(t), "p", "t"), nil, Options{})

	assert.NotPanics(t, func() {
		sel.ToggleRowSelection(nil, "1")
		sel.UpdateMainTableSelection()
		sel.UpdateTableData(entries(1), RenderOptions{})
		sel.ClearSelection()
	})
	assert.Nil(t, sel.Table())
	assert.Nil(t, sel.Rows())
}

func TestSelection_RowsIsACopy(t *testing.T) {
	sel, table := newTestSelection(t, tempBackend(t))
	sel.UpdateTableData(entries(1, 2), RenderOptions{})

	rows := sel.Rows()
	require.Len(t, rows, 2)
	rows[0].Selected = true

	got, ok := table.Row(0)
	require.True(t, ok)
	assert.False(t, got.Selected)
}

func TestSelection_PublishesChanged(t *testing.T) {
	bus := testbus.New(t)
	sel := New(NewStore(tempBackend(t), "p", "t"), bus.EventBus, Options{})

	sel.AddIDs("1", "2")

	p, ok := bus.Last(eventbus.EventSelectionChanged)
	require.True(t, ok)
	assert.Equal(t, eventbus.SelectionChangedPayload{StorageKey: "p_t", Selected: 2, Hidden: 2}, p)
}

// failingKV fails every write and read.
type failingKV struct{ kv.KV }

var errQuota = errors.New("quota exceeded")

func (failingKV) Get(context.Context, string, any) error { return errQuota }
func (failingKV) Set(context.Context, string, any) error { return errQuota }

func TestSelection_StorageFailureDegradesToMemory(t *testing.T) {
	sel, table := newTestSelection(t, failingKV{})
	sel.UpdateTableData(entries(1, 2), RenderOptions{})

	assert.NotPanics(t, func() {
		sel.ToggleRowSelection(nil, "1")
		sel.AddIDs("3")
	})

	assert.Equal(t, record.IDs("1", "3"), sel.IDs())
	assert.True(t, table.Find("1").Selected)
	assert.Equal(t, 1, sel.Status().Hidden)
}

func TestStore_GetFailsSoft(t *testing.T) {
	store := NewStore(failingKV{}, "p", "t")
	assert.Equal(t, []record.ID{}, store.Get())
}
