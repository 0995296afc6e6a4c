package tui

import (
	"github.com/skykid17/smartlp-sub005/internal/api"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

// pageLoadedMsg carries one fetched page. seq guards against a slow
// response overwriting a newer query.
type pageLoadedMsg struct {
	table   string
	seq     int
	records []record.Record
	total   int
	err     error
}

// panelSyncedMsg is sent when a panel open, sync or removal finished.
type panelSyncedMsg struct {
	ran bool
	err error
}

// syncRequestMsg is sent when the debounced selection sync fires.
type syncRequestMsg struct{}

// selectionFileChangedMsg is sent when another process rewrote the
// selection file.
type selectionFileChangedMsg struct {
	path string
}

// matchLoadedMsg carries the regex spans for the detail view.
type matchLoadedMsg struct {
	id    record.ID
	text  string
	spans []record.MatchSpan
	err   error
}

// deleteCompleteMsg is sent when a bulk delete finished.
type deleteCompleteMsg struct {
	table  string
	result api.BulkResult
	err    error
}
