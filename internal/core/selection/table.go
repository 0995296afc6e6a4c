package selection

import "github.com/skykid17/smartlp-sub005/internal/core/record"

// Row is one rendered table row. Empty rows are placeholders (empty state,
// error state) and carry no ID.
type Row struct {
	ID       record.ID
	Cells    []string
	Selected bool
	Checked  bool
	Empty    bool
	Span     int
	Record   record.Record
}

// Table is the rendered body of a record table. It is a projection of the
// selection state and is rebuilt wholesale on every data refresh.
type Table struct {
	rows []Row
}

// NewTable creates an empty table.
func NewTable() *Table { return &Table{} }

// Rows returns a copy of the current rows.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of rows, placeholders included.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the row at index i.
func (t *Table) Row(i int) (Row, bool) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[i], true
}

// Find returns the row for id, or nil when it is not rendered.
func (t *Table) Find(id record.ID) *Row {
	if id == "" {
		return nil
	}
	for i := range t.rows {
		if t.rows[i].ID == id {
			return &t.rows[i]
		}
	}
	return nil
}

func (t *Table) clear() { t.rows = nil }

func (t *Table) append(r Row) { t.rows = append(t.rows, r) }

// mark sets the visual selection state of a row.
func (r *Row) mark(selected bool) {
	if r == nil || r.Empty {
		return
	}
	r.Selected = selected
	r.Checked = selected
}
