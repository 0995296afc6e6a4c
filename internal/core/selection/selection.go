// Package selection tracks which records a user selected in a paginated,
// filtered table. The selection is persisted per table and survives any
// number of table refreshes; the rendered Table is only a projection of it.
package selection

import (
	"fmt"
	"slices"
	"sync"

	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

// Default option values.
const (
	DefaultNoun         = "entries"
	DefaultEmptyMessage = "No entries found"
	DefaultColumnCount  = 1
)

// Options configures a Selection instance.
type Options struct {
	// Noun names the records in status messages ("entries", "rules").
	Noun string
	// Buttons lists bulk-action controls, enabled only with a non-empty
	// selection.
	Buttons []string
	// AlwaysEnabled lists controls that stay enabled regardless of the
	// selection (for example the panel toggle).
	AlwaysEnabled []string
	EmptyMessage  string
	ColumnCount   int
}

// Button is the enablement state of a control.
type Button struct {
	Name    string
	Enabled bool
}

// Status is the derived selection state shown to the user.
type Status struct {
	Total   int
	Visible int
	Hidden  int
	Message string
	Buttons []Button
}

// Enabled reports whether the named button is enabled. Unknown buttons are
// reported disabled.
func (s Status) Enabled(name string) bool {
	for _, b := range s.Buttons {
		if b.Name == name {
			return b.Enabled
		}
	}
	return false
}

// RenderOptions controls one UpdateTableData pass. Zero fields fall back to
// the Selection's Options.
type RenderOptions struct {
	RenderRow    func(record.Record) []string
	EmptyMessage string
	ColumnCount  int
	AfterUpdate  func()
}

// Selection is the selection module for one table.
type Selection struct {
	store *Store
	bus   *eventbus.EventBus
	opts  Options

	mu      sync.Mutex
	table   *Table
	visible *Set
	status  Status
}

// New creates a Selection over store. bus may be nil.
func New(store *Store, bus *eventbus.EventBus, opts Options) *Selection {
	if opts.Noun == "" {
		opts.Noun = DefaultNoun
	}
	if opts.EmptyMessage == "" {
		opts.EmptyMessage = DefaultEmptyMessage
	}
	if opts.ColumnCount <= 0 {
		opts.ColumnCount = DefaultColumnCount
	}

	s := &Selection{
		store:   store,
		bus:     bus,
		opts:    opts,
		visible: NewSet(),
	}
	s.status = s.computeStatus(NewSet(store.Get()...))
	return s
}

// Bind attaches the table this selection projects onto. Row operations are
// no-ops until a table is bound.
func (s *Selection) Bind(t *Table) {
	s.mu.Lock()
	s.table = t
	s.mu.Unlock()
}

// Table returns the bound table, or nil.
func (s *Selection) Table() *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// Rows returns a copy of the bound table's rows, or nil when no table is
// bound. Use it instead of Table().Rows() when another goroutine may mutate
// the selection.
func (s *Selection) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return nil
	}
	return s.table.Rows()
}

// StorageKey returns the key the selection is persisted under.
func (s *Selection) StorageKey() string { return s.store.Key() }

// Noun returns the configured record noun.
func (s *Selection) Noun() string { return s.opts.Noun }

// IDs returns the persisted selection.
func (s *Selection) IDs() []record.ID {
	return NewSet(s.store.Get()...).IDs()
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id record.ID) bool {
	return slices.Contains(s.store.Get(), id)
}

// Visible returns the IDs rendered by the last UpdateTableData.
func (s *Selection) Visible() []record.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible.IDs()
}

// Status returns the status computed by the last UpdateSelectionUI.
func (s *Selection) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ToggleRowSelection flips the membership of id. row is the rendered row for
// id; when nil it is looked up in the bound table.
func (s *Selection) ToggleRowSelection(row *Row, id record.ID) {
	if id == "" {
		return
	}

	s.mu.Lock()
	set := NewSet(s.store.Get()...)
	selected := !set.Has(id)
	if selected {
		set.Add(id)
	} else {
		set.Remove(id)
	}

	if row == nil && s.table != nil {
		row = s.table.Find(id)
	}
	row.mark(selected)

	s.store.Set(set.IDs())
	s.mu.Unlock()

	s.UpdateSelectionUI()
}

// ClearSelection empties the selection and unmarks every rendered row.
func (s *Selection) ClearSelection() {
	s.mu.Lock()
	if s.table != nil {
		for i := range s.table.rows {
			s.table.rows[i].mark(false)
		}
	}
	s.store.Set([]record.ID{})
	s.mu.Unlock()

	s.UpdateSelectionUI()
}

// AddIDs unions ids into the selection.
func (s *Selection) AddIDs(ids ...record.ID) {
	s.mu.Lock()
	set := NewSet(s.store.Get()...)
	set.Add(ids...)
	s.store.Set(set.IDs())
	s.mu.Unlock()

	s.UpdateSelectionUI()
}

// RemoveIDs subtracts ids from the selection.
func (s *Selection) RemoveIDs(ids ...record.ID) {
	s.mu.Lock()
	set := NewSet(s.store.Get()...)
	set.Remove(ids...)
	s.store.Set(set.IDs())
	s.mu.Unlock()

	s.UpdateSelectionUI()
}

// UpdateMainTableSelection reconciles every rendered row against the
// persisted selection.
func (s *Selection) UpdateMainTableSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcile(NewSet(s.store.Get()...))
}

// UpdateSelectionUI recomputes the hidden count, status message and button
// state, reconciles rows in both directions and publishes a
// selection.changed event.
func (s *Selection) UpdateSelectionUI() Status {
	s.mu.Lock()
	set := NewSet(s.store.Get()...)
	s.reconcile(set)
	s.status = s.computeStatus(set)
	status := s.status
	s.mu.Unlock()

	s.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{
		StorageKey: s.store.Key(),
		Selected:   status.Total,
		Hidden:     status.Hidden,
	})
	return status
}

// UpdateTableData replaces the bound table's rows with records. The visible
// set is rebuilt from scratch; rows whose IDs are selected come out marked.
// An empty record list renders one placeholder row spanning all columns.
// AfterUpdate and UpdateSelectionUI run on both paths.
func (s *Selection) UpdateTableData(records []record.Record, opts RenderOptions) Status {
	if opts.EmptyMessage == "" {
		opts.EmptyMessage = s.opts.EmptyMessage
	}
	if opts.ColumnCount <= 0 {
		opts.ColumnCount = s.opts.ColumnCount
	}
	if opts.RenderRow == nil {
		opts.RenderRow = func(r record.Record) []string { return []string{r.RecordID().String()} }
	}

	s.mu.Lock()
	visible := NewSet()
	for _, r := range records {
		visible.Add(r.RecordID())
	}
	s.visible = visible

	if s.table != nil {
		selected := NewSet(s.store.Get()...)
		s.table.clear()

		if len(records) == 0 {
			s.table.append(Row{
				Cells: []string{opts.EmptyMessage},
				Empty: true,
				Span:  opts.ColumnCount,
			})
		}

		for _, r := range records {
			id := r.RecordID()
			row := Row{ID: id, Cells: opts.RenderRow(r), Span: 1, Record: r}
			row.mark(selected.Has(id))
			s.table.append(row)
		}
	}
	s.mu.Unlock()

	if opts.AfterUpdate != nil {
		opts.AfterUpdate()
	}
	return s.UpdateSelectionUI()
}

func (s *Selection) reconcile(set *Set) {
	if s.table == nil {
		return
	}
	for i := range s.table.rows {
		r := &s.table.rows[i]
		r.mark(set.Has(r.ID))
	}
}

func (s *Selection) computeStatus(set *Set) Status {
	total := set.Len()
	visible := set.IntersectCount(s.visible)
	hidden := total - visible

	var msg string
	switch {
	case total == 0:
		msg = "No " + s.opts.Noun + " selected"
	case hidden == 0:
		msg = fmt.Sprintf("Selected %d %s", total, s.opts.Noun)
	default:
		msg = fmt.Sprintf("Selected %d %s (%d filtered out)", total, s.opts.Noun, hidden)
	}

	buttons := make([]Button, 0, len(s.opts.Buttons)+len(s.opts.AlwaysEnabled))
	for _, name := range s.opts.Buttons {
		buttons = append(buttons, Button{Name: name, Enabled: total > 0})
	}
	for _, name := range s.opts.AlwaysEnabled {
		buttons = append(buttons, Button{Name: name, Enabled: true})
	}

	return Status{
		Total:   total,
		Visible: visible,
		Hidden:  hidden,
		Message: msg,
		Buttons: buttons,
	}
}
