package tui

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skykid17/smartlp-sub005/internal/api"
	"github.com/skykid17/smartlp-sub005/internal/console"
	"github.com/skykid17/smartlp-sub005/internal/core/config"
	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
	"github.com/skykid17/smartlp-sub005/internal/core/panel"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/internal/core/selection"
	"github.com/skykid17/smartlp-sub005/internal/devserver"
	"github.com/skykid17/smartlp-sub005/internal/store/jsonfile"
	"github.com/skykid17/smartlp-sub005/pkg/tuitest"
)

type harness struct {
	m     Model
	srv   *devserver.Server
	app   *console.App
	store *jsonfile.KVStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv := devserver.New(devserver.SeedDataset(), devserver.Options{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg, err := config.Load("", t.TempDir())
	require.NoError(t, err)
	cfg.Delete.RateLimit = 0
	cfg.Tables.PageSize = 10
	cfg.Selection.SyncDebounce = time.Millisecond

	store := jsonfile.NewKVStore(cfg.SelectionFile())
	app := console.NewApp(cfg, api.New(api.Options{BaseURL: ts.URL}), store, eventbus.New(), console.BuildInfo{Version: "dev"})

	m, err := New(app, Options{})
	require.NoError(t, err)
	t.Cleanup(func() {
		m.scheduler.Stop()
		m.cancel()
	})

	h := &harness{m: m, srv: srv, app: app, store: store}
	h.send(t, tuitest.WindowSize(120, 30))
	for _, tbl := range h.m.tables {
		h.send(t, tbl.load(h.m.ctx, h.m.client)())
	}
	return h
}

// send feeds msgs through Update and returns the command of the last one.
func (h *harness) send(t *testing.T, msgs ...tea.Msg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		model, c := h.m.Update(msg)
		h.m = model.(Model)
		cmd = c
	}
	return cmd
}

// run executes cmd and feeds its message back into the model.
func (h *harness) run(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	return h.send(t, cmd())
}

func (h *harness) screen() string { return tuitest.StripANSI(h.m.render()) }

func (h *harness) entries() *recordTable { return h.m.table(console.TableEntries) }

func TestModel_LoadsTables(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 60, h.entries().total)
	assert.Len(t, h.entries().rows(), 10)
	assert.Equal(t, 3, h.m.table(console.TableRules).total)

	screen := h.screen()
	assert.Contains(t, screen, "Entries (60)")
	assert.Contains(t, screen, "Rules (3)")
	assert.Contains(t, screen, "Page 1/6 • 60 entries")
	assert.Contains(t, screen, "No entries selected")
	assert.Contains(t, screen, "config ◀")
}

func TestModel_View(t *testing.T) {
	h := newHarness(t)

	v := h.m.View()
	assert.True(t, v.AltScreen)
	assert.Equal(t, tea.MouseModeCellMotion, v.MouseMode)
}

func TestModel_ToggleWithKeys(t *testing.T) {
	h := newHarness(t)
	sel := h.entries().sel

	h.send(t, tuitest.KeySpace())
	assert.True(t, sel.Contains("1"))

	h.send(t, tuitest.KeyDown(), tuitest.KeySpace())
	assert.ElementsMatch(t, record.IDs("1", "2"), sel.IDs())
	assert.Contains(t, h.screen(), "Selected 2 entries")
	assert.True(t, sel.Status().Enabled(console.ButtonDelete))

	h.send(t, tuitest.KeySpace())
	assert.Equal(t, record.IDs("1"), sel.IDs())
}

func TestModel_SelectionSurvivesPaging(t *testing.T) {
	h := newHarness(t)
	sel := h.entries().sel

	h.send(t, tuitest.KeySpace())
	h.run(t, h.send(t, tuitest.KeyPress('n')))

	assert.Equal(t, 2, h.entries().query.Page)
	assert.True(t, sel.Contains("1"))
	assert.Equal(t, 1, sel.Status().Hidden)
	assert.Contains(t, h.screen(), "Selected 1 entries (1 filtered out)")

	h.run(t, h.send(t, tuitest.KeyPress('p')))
	assert.Equal(t, 0, sel.Status().Hidden)
	row, ok := h.entries().find("1")
	require.True(t, ok)
	assert.True(t, row.Checked)
}

func TestModel_PagingStopsAtBounds(t *testing.T) {
	h := newHarness(t)

	cmd := h.send(t, tuitest.KeyPress('p'))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, h.entries().query.Page)
}

func TestModel_Search(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeyPress('/'))
	require.Equal(t, stateSearching, h.m.state)

	h.send(t, tuitest.Type("nginx")...)
	h.run(t, h.send(t, tuitest.KeyEnter()))

	assert.Equal(t, stateNormal, h.m.state)
	assert.Equal(t, "nginx", h.entries().query.Search)
	assert.Equal(t, 24, h.entries().total)
	assert.Contains(t, h.screen(), "/ nginx")
}

func TestModel_SearchEscapeCancels(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeyPress('/'))
	h.send(t, tuitest.Type("sshd")...)
	cmd := h.send(t, tuitest.KeyEsc())

	assert.Nil(t, cmd)
	assert.Equal(t, stateNormal, h.m.state)
	assert.Empty(t, h.entries().query.Search)
}

func TestModel_ClickSelectsAndOpensDetail(t *testing.T) {
	h := newHarness(t)

	cmd := h.send(t, tuitest.Click(10, tableBodyTop))
	assert.True(t, h.entries().sel.Contains("1"))
	require.Equal(t, stateShowingDetail, h.m.state)
	assert.Equal(t, record.ID("1"), h.m.detailID)

	h.run(t, cmd)
	body := tuitest.StripANSI(h.m.detail.Body())
	assert.Contains(t, body, "2024-01-01 ERROR boom")
	assert.Contains(t, body, "level:")
	assert.Contains(t, body, "ERROR")

	h.send(t, tuitest.KeyEsc())
	assert.Equal(t, stateNormal, h.m.state)
	assert.Nil(t, h.m.detail)
}

func TestModel_ModifierClickOnlyToggles(t *testing.T) {
	h := newHarness(t)

	cmd := h.send(t, tuitest.CtrlClick(10, tableBodyTop+1))
	assert.Nil(t, cmd)
	assert.Equal(t, stateNormal, h.m.state)
	assert.Equal(t, record.IDs("2"), h.entries().sel.IDs())
	assert.Equal(t, 1, h.entries().cursor)
}

func TestModel_ClickOnSelectedRowDeselects(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeySpace())
	h.send(t, tuitest.Click(10, tableBodyTop))

	assert.False(t, h.entries().sel.Contains("1"))
	assert.Equal(t, stateNormal, h.m.state)
}

func TestModel_CheckboxClick(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.Click(1, tableBodyTop+2))
	assert.True(t, h.entries().sel.Contains("3"))
	assert.Equal(t, stateNormal, h.m.state)

	h.send(t, tuitest.Click(1, tableBodyTop+2))
	assert.False(t, h.entries().sel.Contains("3"))
}

func TestModel_ClickOutsideRowsIgnored(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.Click(10, 0))
	h.send(t, tuitest.Click(10, tableBodyTop+15))
	assert.Empty(t, h.entries().sel.IDs())
}

func TestModel_ClearSelection(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeySpace(), tuitest.KeyDown(), tuitest.KeySpace())
	h.send(t, tuitest.KeyPress('c'))

	assert.Empty(t, h.entries().sel.IDs())
	assert.Contains(t, h.screen(), "No entries selected")
}

func TestModel_SwitchTablesKeepsSelectionsApart(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeySpace())
	h.send(t, tuitest.KeyTab())
	require.Equal(t, console.TableRules, h.m.activeTable().name)

	h.send(t, tuitest.KeySpace())
	assert.Equal(t, record.IDs("1"), h.m.table(console.TableRules).sel.IDs())
	assert.Equal(t, record.IDs("1"), h.entries().sel.IDs())
	assert.Contains(t, h.screen(), "Selected 1 rules")

	// The panel belongs to the entries table.
	assert.Nil(t, h.send(t, tuitest.KeyPress('o')))
	assert.Equal(t, panel.Closed, h.m.panel.State())
}

func TestModel_PanelOpenAndRemove(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeySpace(), tuitest.KeyDown(), tuitest.KeySpace())
	h.run(t, h.send(t, tuitest.KeyPress('o')))

	require.Equal(t, panel.Open, h.m.panel.State())
	assert.Equal(t, 2, h.m.panel.Count())
	assert.Contains(t, h.screen(), "Configuration (2)")
	assert.Contains(t, h.screen(), "config ▶")

	h.send(t, tuitest.KeyRight())
	require.Equal(t, focusPanel, h.m.focus)

	first := h.m.panel.Rows()[0].ID
	h.run(t, h.send(t, tuitest.KeyPress('x')))

	assert.False(t, h.entries().sel.Contains(first))
	assert.Equal(t, 1, h.m.panel.Count())
	row, ok := h.entries().find(first)
	require.True(t, ok)
	assert.False(t, row.Checked)

	h.send(t, tuitest.KeyPress('o'))
	assert.Equal(t, panel.Closed, h.m.panel.State())
	assert.Equal(t, focusTable, h.m.focus)
}

func TestModel_PanelClickRemove(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeySpace())
	h.run(t, h.send(t, tuitest.KeyPress('o')))
	require.Equal(t, 1, h.m.panel.Count())

	_, panelX, panelWidth := h.m.layout()
	h.run(t, h.send(t, tuitest.Click(panelX+panelWidth-1, tableBodyTop)))

	assert.Empty(t, h.entries().sel.IDs())
	assert.Equal(t, 0, h.m.panel.Count())
	assert.Contains(t, h.screen(), panel.NoSelectionMessage)
}

func TestModel_RemoveKeyWithClosedPanel(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeySpace())
	cmd := h.send(t, tuitest.KeyPress('x'))

	assert.Nil(t, cmd)
	assert.Empty(t, h.entries().sel.IDs())
}

func TestModel_PanelSyncFailureShowsErrorRow(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeySpace())
	h.srv.FailNext(devserver.RouteConfig, http.StatusBadGateway)
	h.run(t, h.send(t, tuitest.KeyPress('o')))

	require.Error(t, h.m.panel.Err())
	assert.Contains(t, h.screen(), "Error loading configuration")

	h.send(t, drainNotificationsMsg{})
	require.True(t, h.m.toasts.HasToasts())
	assert.Contains(t, h.m.toasts.Messages()[0], "configuration panel")
}

func TestModel_SelectionChangeSchedulesPanelSync(t *testing.T) {
	h := newHarness(t)

	h.run(t, h.send(t, tuitest.KeyPress('o')))
	require.Equal(t, 0, h.m.panel.Count())

	h.send(t, tuitest.KeySpace())
	select {
	case <-h.m.syncRequests:
	case <-time.After(2 * time.Second):
		t.Fatal("sync was not scheduled")
	}

	require.NotNil(t, h.send(t, syncRequestMsg{}))
	h.run(t, h.m.syncPanel())
	assert.Equal(t, 1, h.m.panel.Count())
	assert.Equal(t, record.IDs("1"), h.srv.LastConfigIDs())
}

func TestModel_DeleteWithConfirm(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeySpace(), tuitest.KeyDown(), tuitest.KeySpace())
	h.send(t, tuitest.KeyPress('d'))
	require.Equal(t, stateConfirming, h.m.state)
	assert.Contains(t, h.screen(), "Delete entries")
	assert.Contains(t, h.screen(), "2 entries will be deleted.")

	reload := h.run(t, h.send(t, tuitest.KeyPress('y')))
	assert.Equal(t, stateNormal, h.m.state)
	assert.Empty(t, h.entries().sel.IDs())
	assert.Equal(t, 2, h.srv.Calls(devserver.RouteDelete))

	h.run(t, reload)
	assert.Equal(t, 58, h.entries().total)
	_, ok := h.entries().find("1")
	assert.False(t, ok)

	h.send(t, drainNotificationsMsg{})
	assert.Equal(t, []string{"deleted 2 record(s)"}, h.m.toasts.Messages())
}

func TestModel_DeleteCancelled(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeySpace())
	h.send(t, tuitest.KeyPress('d'))
	cmd := h.send(t, tuitest.KeyPress('n'))

	assert.Nil(t, cmd)
	assert.Equal(t, stateNormal, h.m.state)
	assert.Equal(t, record.IDs("1"), h.entries().sel.IDs())
	assert.Equal(t, 0, h.srv.Calls(devserver.RouteDelete))
}

func TestModel_DeleteDisabledWithoutSelection(t *testing.T) {
	h := newHarness(t)

	cmd := h.send(t, tuitest.KeyPress('d'))
	assert.Nil(t, cmd)
	assert.Equal(t, stateNormal, h.m.state)
}

func TestModel_LoadErrorRendersPlaceholder(t *testing.T) {
	h := newHarness(t)

	h.srv.FailNext(devserver.RouteEntries, http.StatusInternalServerError)
	h.run(t, h.send(t, tuitest.KeyPress('r')))

	require.Error(t, h.entries().err)
	rows := h.entries().rows()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Empty)
	assert.Contains(t, h.screen(), "Error loading entries")
	assert.True(t, h.m.toasts.HasToasts())
}

func TestModel_StalePageDiscarded(t *testing.T) {
	h := newHarness(t)
	tbl := h.entries()

	tbl.setSearch("nginx")
	stale := tbl.load(h.m.ctx, h.m.client)
	tbl.setSearch("")
	fresh := tbl.load(h.m.ctx, h.m.client)

	h.send(t, fresh())
	h.send(t, stale())

	assert.False(t, tbl.loading)
	assert.Equal(t, 60, tbl.total)
}

func TestModel_SelectionFileChanged(t *testing.T) {
	h := newHarness(t)

	other := selection.NewStore(jsonfile.NewKVStore(h.store.Path()), h.app.Config.Selection.Prefix, console.TableEntries)
	other.Set(record.IDs("3", "4", "42"))

	h.send(t, selectionFileChangedMsg{path: h.store.Path()})

	status := h.entries().sel.Status()
	assert.Equal(t, 3, status.Total)
	assert.Equal(t, 1, status.Hidden)
	row, ok := h.entries().find("4")
	require.True(t, ok)
	assert.True(t, row.Checked)
}

func TestModel_HelpDialog(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeyPress('?'))
	require.Equal(t, stateShowingHelp, h.m.state)
	assert.Contains(t, h.m.helpDialog.Markdown(), "toggle")

	h.send(t, tuitest.KeyEsc())
	assert.Equal(t, stateNormal, h.m.state)
}

func TestModel_RuleDetailShowsMetadata(t *testing.T) {
	h := newHarness(t)

	h.send(t, tuitest.KeyTab())
	h.send(t, tuitest.KeyEnter())

	require.Equal(t, stateShowingDetail, h.m.state)
	assert.Equal(t, record.ID("1"), h.m.detailID)
	assert.Contains(t, h.screen(), "syslog-level")
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t)

	cmd := h.send(t, tuitest.KeyPress('q'))
	require.NotNil(t, cmd)
	assert.True(t, h.m.quitting)
	assert.Error(t, h.m.ctx.Err())
}
