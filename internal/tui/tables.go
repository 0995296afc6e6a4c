package tui

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/skykid17/smartlp-sub005/internal/api"
	"github.com/skykid17/smartlp-sub005/internal/console"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/internal/core/selection"
)

// recordTable is one paginated record table and the selection projected
// onto it.
type recordTable struct {
	name    string
	columns []string
	sel     *selection.Selection
	clicks  *selection.ClickController

	query   record.Query
	total   int
	cursor  int
	offset  int
	loading bool
	loaded  bool
	err     error
	seq     int

	// opened is set by the click controller when a plain click asks for
	// the detail view.
	opened record.ID
}

func newRecordTable(name string, columns []string, sel *selection.Selection, pageSize int) *recordTable {
	t := &recordTable{
		name:    name,
		columns: columns,
		sel:     sel,
		query:   record.Query{Page: 1, PageSize: pageSize},
	}
	sel.Bind(selection.NewTable())
	t.clicks = selection.NewClickController(sel, func(id record.ID) { t.opened = id })
	return t
}

func (t *recordTable) takeOpened() record.ID {
	id := t.opened
	t.opened = ""
	return id
}

func (t *recordTable) rows() []selection.Row { return t.sel.Rows() }

// current returns the row under the cursor.
func (t *recordTable) current() (selection.Row, bool) {
	rows := t.rows()
	if t.cursor < 0 || t.cursor >= len(rows) {
		return selection.Row{}, false
	}
	return rows[t.cursor], true
}

func (t *recordTable) find(id record.ID) (selection.Row, bool) {
	for _, r := range t.rows() {
		if r.ID == id && !r.Empty {
			return r, true
		}
	}
	return selection.Row{}, false
}

func (t *recordTable) moveCursor(delta, height int) {
	t.cursor = clamp(t.cursor+delta, 0, max(len(t.rows())-1, 0))
	t.scrollTo(height)
}

// scrollTo keeps the cursor inside a window of height rows.
func (t *recordTable) scrollTo(height int) {
	height = max(height, 1)
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+height {
		t.offset = t.cursor - height + 1
	}
}

func (t *recordTable) pages() int { return t.query.Pages(t.total) }

// setPage moves to page p, clamped to the known page range. It reports
// whether the page changed.
func (t *recordTable) setPage(p int) bool {
	p = clamp(p, 1, t.pages())
	if p == t.query.Page {
		return false
	}
	t.query.Page = p
	t.cursor, t.offset = 0, 0
	return true
}

func (t *recordTable) setSearch(s string) {
	t.query.Search = strings.TrimSpace(s)
	t.query.Page = 1
	t.cursor, t.offset = 0, 0
}

// load starts fetching the current page. Responses to earlier loads are
// discarded once this one is issued.
func (t *recordTable) load(ctx context.Context, client *api.Client) tea.Cmd {
	t.seq++
	t.loading = true
	name, seq, q := t.name, t.seq, t.query

	return func() tea.Msg {
		records, total, err := fetchPage(ctx, client, name, q)
		return pageLoadedMsg{table: name, seq: seq, records: records, total: total, err: err}
	}
}

// apply renders a loaded page. It returns false for stale responses.
func (t *recordTable) apply(msg pageLoadedMsg, height int) bool {
	if msg.seq != t.seq {
		return false
	}

	t.loading = false
	t.loaded = true
	if msg.err != nil {
		t.err = msg.err
		t.sel.UpdateTableData(nil, selection.RenderOptions{
			EmptyMessage: "Error loading " + t.name + ": " + msg.err.Error(),
		})
	} else {
		t.err = nil
		t.total = msg.total
		t.sel.UpdateTableData(msg.records, selection.RenderOptions{RenderRow: t.renderRow})
	}

	t.cursor = clamp(t.cursor, 0, max(len(t.rows())-1, 0))
	t.offset = min(t.offset, t.cursor)
	t.scrollTo(height)
	return true
}

func (t *recordTable) renderRow(r record.Record) []string {
	cells := make([]string, len(t.columns))
	for i, col := range t.columns {
		cells[i] = cellValue(r, col)
	}
	return cells
}

func fetchPage(ctx context.Context, client *api.Client, table string, q record.Query) ([]record.Record, int, error) {
	if table == console.TableRules {
		page, err := client.QueryRules(ctx, q)
		return toRecords(page.Results), page.Total, err
	}
	page, err := client.QueryEntries(ctx, q)
	return toRecords(page.Results), page.Total, err
}

func toRecords[R record.Record](in []R) []record.Record {
	out := make([]record.Record, len(in))
	for i, r := range in {
		out[i] = r
	}
	return out
}

// cellValue returns the display value of column for r.
func cellValue(r record.Record, column string) string {
	switch v := r.(type) {
	case record.LogEntry:
		switch column {
		case "id":
			return v.ID.String()
		case "timestamp":
			return v.Timestamp
		case "index":
			return v.Index
		case "source_type":
			return v.SourceType
		case "status":
			return v.Status
		case "log":
			return v.Log
		}
	case record.Rule:
		switch column {
		case "id":
			return v.ID.String()
		case "name":
			return v.Name
		case "source_type":
			return v.SourceType
		case "regex":
			return v.Regex
		case "description":
			return v.Description
		}
	}
	return ""
}

var columnTitles = map[string]string{
	"id":          "ID",
	"timestamp":   "Timestamp",
	"index":       "Index",
	"source_type": "Source",
	"status":      "Status",
	"log":         "Log",
	"name":        "Name",
	"regex":       "Regex",
	"description": "Description",
}

func columnTitle(column string) string {
	if title, ok := columnTitles[column]; ok {
		return title
	}
	return column
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
