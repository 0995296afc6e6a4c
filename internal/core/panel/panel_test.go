package panel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
	"github.com/skykid17/smartlp-sub005/internal/core/eventbus/testbus"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/internal/core/selection"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls [][]record.ID
	err   error
}

func (f *fakeFetcher) FetchConfig(_ context.Context, ids []record.ID) ([]record.ConfigRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ids)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]record.ConfigRow, len(ids))
	for i, id := range ids {
		out[i] = record.ConfigRow{ID: id, Index: "main", Log: "log " + id.String()}
	}
	return out, nil
}

func (f *fakeFetcher) Calls() [][]record.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newSelection(bus *eventbus.EventBus, ids ...string) *selection.Selection {
	sel := selection.New(selection.NewStore(nil, "smartlp", "entries"), bus, selection.Options{})
	sel.AddIDs(record.IDs(ids...)...)
	return sel
}

func TestPanel_OpenClose(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := New(newSelection(nil, "1"), fetcher, nil, Options{})

	assert.Equal(t, Closed, p.State())
	assert.Equal(t, IndicatorClosed, p.Indicator())

	require.NoError(t, p.Toggle(context.Background()))
	assert.Equal(t, Open, p.State())
	assert.Equal(t, IndicatorOpen, p.Indicator())
	assert.Len(t, fetcher.Calls(), 1)

	require.NoError(t, p.Toggle(context.Background()))
	assert.Equal(t, Closed, p.State())
	assert.Len(t, fetcher.Calls(), 1, "closing must not fetch")
}

func TestPanel_Sync_RendersRows(t *testing.T) {
	p := New(newSelection(nil, "1", "2"), &fakeFetcher{}, nil, Options{})

	ran, err := p.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)

	rows := p.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "", "main", "", "log 1"}, rows[0].Cells)
	assert.Equal(t, []string{RemoveAction}, rows[0].Actions)
	assert.Equal(t, 2, p.Count())
}

func TestPanel_Sync_EmptySelection(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := New(newSelection(nil), fetcher, nil, Options{ColumnCount: 5})

	_, err := p.Sync(context.Background())
	require.NoError(t, err)

	rows := p.Rows()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Empty)
	assert.Equal(t, 5, rows[0].Span)
	assert.Equal(t, []string{NoSelectionMessage}, rows[0].Cells)
	assert.Zero(t, p.Count())
	assert.Empty(t, fetcher.Calls())
}

func TestPanel_Sync_FetchError(t *testing.T) {
	bus := testbus.New(t)
	fetcher := &fakeFetcher{}
	p := New(newSelection(bus.EventBus, "1"), fetcher, bus.EventBus, Options{})

	_, err := p.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, p.Count())

	fetcher.err = errors.New("502 bad gateway")
	ran, err := p.Sync(context.Background())
	assert.True(t, ran)
	require.Error(t, err)

	rows := p.Rows()
	require.Len(t, rows, 1, "no stale rows survive an error")
	assert.True(t, rows[0].Error)
	assert.Equal(t, len(Columns), rows[0].Span)
	assert.Contains(t, rows[0].Cells[0], "502 bad gateway")
	assert.Zero(t, p.Count())
	assert.ErrorIs(t, p.Err(), fetcher.err)
	bus.AssertPublished(t, eventbus.EventPanelSyncFailed)
}

func TestPanel_RemoveFromConfig_ScenarioB(t *testing.T) {
	fetcher := &fakeFetcher{}
	sel := newSelection(nil, "1", "2", "3")
	p := New(sel, fetcher, nil, Options{})

	ran, err := p.RemoveFromConfig(context.Background(), "2")
	require.NoError(t, err)
	assert.True(t, ran)

	assert.Equal(t, record.IDs("1", "3"), sel.IDs())
	calls := fetcher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, record.IDs("1", "3"), calls[0])

	_, err = p.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, record.IDs("1", "3"), fetcher.Calls()[1])
}

type blockingFetcher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingFetcher) FetchConfig(_ context.Context, ids []record.ID) ([]record.ConfigRow, error) {
	b.calls.Add(1)
	close(b.started)
	<-b.release
	return []record.ConfigRow{{ID: ids[0]}}, nil
}

func TestPanel_Sync_ReentrancyGuard(t *testing.T) {
	fetcher := &blockingFetcher{started: make(chan struct{}), release: make(chan struct{})}
	p := New(newSelection(nil, "1"), fetcher, nil, Options{})

	done := make(chan bool)
	go func() {
		ran, _ := p.Sync(context.Background())
		done <- ran
	}()

	<-fetcher.started
	assert.True(t, p.Syncing())

	ran, err := p.Sync(context.Background())
	require.NoError(t, err)
	assert.False(t, ran, "overlapping sync is dropped")

	close(fetcher.release)
	select {
	case ran := <-done:
		assert.True(t, ran)
	case <-time.After(time.Second):
		t.Fatal("first sync did not finish")
	}

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.False(t, p.Syncing())
}

func TestPanel_CustomTemplate(t *testing.T) {
	tmpl := func(c record.ConfigRow) Row {
		return Row{ID: c.ID, Cells: []string{"#" + c.ID.String()}, Span: 1}
	}
	p := New(newSelection(nil, "9"), FetcherFunc(func(_ context.Context, ids []record.ID) ([]record.ConfigRow, error) {
		return []record.ConfigRow{{ID: ids[0]}}, nil
	}), nil, Options{Template: tmpl, ColumnCount: 1})

	_, err := p.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"#9"}, p.Rows()[0].Cells)
}
