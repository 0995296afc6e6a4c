// Package panel implements the configuration panel: a secondary view that
// shows per-record configuration for the current selection and lets the
// user drop individual records from it.
package panel

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
	"github.com/skykid17/smartlp-sub005/internal/core/logging"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/internal/core/selection"
)

// State is the visibility state of the panel.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Direction indicators shown on the panel toggle.
const (
	IndicatorClosed = "◀"
	IndicatorOpen   = "▶"
)

// Messages rendered in placeholder rows.
const (
	NoSelectionMessage = "No entries selected"
	RemoveAction       = "remove"
)

// Fetcher loads configuration rows for a batch of IDs.
type Fetcher interface {
	FetchConfig(ctx context.Context, ids []record.ID) ([]record.ConfigRow, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, ids []record.ID) ([]record.ConfigRow, error)

// FetchConfig implements Fetcher.
func (f FetcherFunc) FetchConfig(ctx context.Context, ids []record.ID) ([]record.ConfigRow, error) {
	return f(ctx, ids)
}

// Row is one rendered panel row. Placeholder rows (no selection, fetch
// error) have no ID and span all columns.
type Row struct {
	ID      record.ID
	Cells   []string
	Actions []string
	Empty   bool
	Error   bool
	Span    int
}

// RowTemplate renders a configuration row.
type RowTemplate func(record.ConfigRow) Row

// Columns is the column header of DefaultRowTemplate.
var Columns = []string{"ID", "Timestamp", "Index", "Source", "Log", ""}

// DefaultRowTemplate renders the ID, the optional timestamp, index, source
// and log columns, and a remove action.
func DefaultRowTemplate(c record.ConfigRow) Row {
	return Row{
		ID:      c.ID,
		Cells:   []string{c.ID.String(), c.Timestamp, c.Index, c.SourceType, c.Log},
		Actions: []string{RemoveAction},
		Span:    1,
	}
}

// Options configures a Panel.
type Options struct {
	Template    RowTemplate
	ColumnCount int
}

// Panel synchronizes its rows with a Selection.
type Panel struct {
	sel      *selection.Selection
	fetcher  Fetcher
	bus      *eventbus.EventBus
	template RowTemplate
	columns  int
	log      zerolog.Logger

	syncing atomic.Bool

	mu    sync.Mutex
	state State
	rows  []Row
	err   error
}

// New creates a closed panel bound to sel. bus may be nil.
func New(sel *selection.Selection, fetcher Fetcher, bus *eventbus.EventBus, opts Options) *Panel {
	if opts.Template == nil {
		opts.Template = DefaultRowTemplate
	}
	if opts.ColumnCount <= 0 {
		opts.ColumnCount = len(Columns)
	}
	return &Panel{
		sel:      sel,
		fetcher:  fetcher,
		bus:      bus,
		template: opts.Template,
		columns:  opts.ColumnCount,
		log:      logging.ForTable("panel", sel.StorageKey()),
	}
}

// Open shows the panel and syncs it.
func (p *Panel) Open(ctx context.Context) error {
	p.mu.Lock()
	p.state = Open
	p.mu.Unlock()

	_, err := p.Sync(ctx)
	return err
}

// Close hides the panel. No fetch is made.
func (p *Panel) Close() {
	p.mu.Lock()
	p.state = Closed
	p.mu.Unlock()
}

// Toggle opens a closed panel and closes an open one.
func (p *Panel) Toggle(ctx context.Context) error {
	if p.State() == Open {
		p.Close()
		return nil
	}
	return p.Open(ctx)
}

// State returns the current state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Indicator returns the direction glyph for the current state.
func (p *Panel) Indicator() string {
	if p.State() == Open {
		return IndicatorOpen
	}
	return IndicatorClosed
}

// Syncing reports whether a sync is in flight.
func (p *Panel) Syncing() bool { return p.syncing.Load() }

// Sync re-renders the panel from the current selection. A call made while
// another sync is running returns immediately with ran=false; it is dropped,
// not queued. A fetch error replaces the rows with a single error row and is
// also returned.
func (p *Panel) Sync(ctx context.Context) (ran bool, err error) {
	if !p.syncing.CompareAndSwap(false, true) {
		p.log.Debug().Msg("sync already running, dropped")
		return false, nil
	}
	defer p.syncing.Store(false)

	ids := p.sel.IDs()
	if len(ids) == 0 {
		p.render([]Row{{
			Cells: []string{NoSelectionMessage},
			Empty: true,
			Span:  p.columns,
		}}, nil)
		p.bus.PublishPanelSynced(eventbus.PanelSyncedPayload{StorageKey: p.sel.StorageKey()})
		return true, nil
	}

	configs, err := p.fetcher.FetchConfig(ctx, ids)
	if err != nil {
		err = fmt.Errorf("fetch configuration for %d record(s): %w", len(ids), err)
		p.log.Error().Err(err).Msg("sync panel")
		p.render([]Row{{
			Cells: []string{"Error loading configuration: " + err.Error()},
			Error: true,
			Span:  p.columns,
		}}, err)
		p.bus.PublishPanelSyncFailed(eventbus.PanelSyncFailedPayload{StorageKey: p.sel.StorageKey(), Err: err})
		return true, err
	}

	rows := make([]Row, 0, len(configs))
	for _, c := range configs {
		rows = append(rows, p.template(c))
	}
	p.render(rows, nil)

	p.bus.PublishPanelSynced(eventbus.PanelSyncedPayload{StorageKey: p.sel.StorageKey(), Count: len(rows)})
	return true, nil
}

// RemoveFromConfig drops id from the selection, which also updates the
// persisted set and the main table, then re-syncs the panel.
func (p *Panel) RemoveFromConfig(ctx context.Context, id record.ID) (bool, error) {
	p.sel.RemoveIDs(id)
	return p.Sync(ctx)
}

// Rows returns a copy of the rendered rows.
func (p *Panel) Rows() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Row, len(p.rows))
	copy(out, p.rows)
	return out
}

// Count returns the number of configuration rows shown. Placeholder rows are
// not counted.
func (p *Panel) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, r := range p.rows {
		if !r.Empty && !r.Error {
			n++
		}
	}
	return n
}

// Err returns the error of the last sync, if it failed.
func (p *Panel) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Panel) render(rows []Row, err error) {
	p.mu.Lock()
	p.rows = rows
	p.err = err
	p.mu.Unlock()
}
