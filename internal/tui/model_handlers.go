package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/skykid17/smartlp-sub005/internal/console"
	"github.com/skykid17/smartlp-sub005/internal/core/config"
	"github.com/skykid17/smartlp-sub005/internal/core/highlight"
	"github.com/skykid17/smartlp-sub005/internal/core/panel"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/internal/core/selection"
	"github.com/skykid17/smartlp-sub005/internal/core/styles"
	"github.com/skykid17/smartlp-sub005/internal/tui/components"
	"github.com/skykid17/smartlp-sub005/internal/tui/jsoncolor"
)

const (
	keyCtrlC = "ctrl+c"
	keyEsc   = "esc"
	keyEnter = "enter"
)

// --- Window ---

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	for _, t := range m.tables {
		t.scrollTo(m.bodyHeight())
	}
	return m, nil
}

// --- Data loaded ---

func (m Model) handlePageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	t := m.table(msg.table)
	if t == nil || !t.apply(msg, m.bodyHeight()) {
		return m, nil
	}
	if msg.err != nil {
		return m, m.notifyError("load %s: %v", t.name, msg.err)
	}
	return m, nil
}

func (m Model) handlePanelSynced(msg panelSyncedMsg) (tea.Model, tea.Cmd) {
	// Failures reach the user through the panel.sync_failed notification.
	if msg.err != nil {
		m.log.Debug().Err(msg.err).Msg("panel sync failed")
	}
	m.panelCursor = clamp(m.panelCursor, 0, max(len(m.panel.Rows())-1, 0))
	return m, nil
}

func (m Model) handleMatchLoaded(msg matchLoadedMsg) (tea.Model, tea.Cmd) {
	if m.state != stateShowingDetail || m.detail == nil || m.detailID != msg.id {
		return m, nil
	}

	if msg.err != nil {
		m.detail.SetBody(msg.text + "\n\n" + styles.TableErrorStyle.Render("Match unavailable: "+msg.err.Error()))
		return m, nil
	}

	frag := highlight.Build(msg.text, msg.spans)
	body := frag.RenderANSI(highlight.DefaultTheme())
	if legend := renderMarkLegend(frag.Marks()); legend != "" {
		body += "\n\n" + legend
	}
	m.detail.SetBody(body)
	return m, nil
}

func (m Model) handleDeleteComplete(msg deleteCompleteMsg) (tea.Model, tea.Cmd) {
	m.deleting = false
	if msg.err != nil {
		// The records.deleted notification already reported the failure.
		m.log.Debug().Err(msg.err).Str("table", msg.table).Msg("delete failed")
	}

	t := m.table(msg.table)
	if t == nil || len(msg.result.Deleted) == 0 {
		return m, nil
	}
	return m, m.loadTable(t)
}

// --- Background listeners ---

func (m Model) handleSyncRequest() (tea.Model, tea.Cmd) {
	next := listenForSyncRequest(m.syncRequests)
	if m.panel.State() != panel.Open {
		return m, next
	}
	return m, tea.Batch(m.syncPanel(), next)
}

func (m Model) handleSelectionFileChanged(msg selectionFileChangedMsg) (tea.Model, tea.Cmd) {
	m.log.Debug().Str("path", msg.path).Msg("selection file changed")
	for _, t := range m.tables {
		t.sel.UpdateSelectionUI()
	}
	return m, listenForSelectionFile(m.watchEvents)
}

func (m Model) handleDrainNotifications() (tea.Model, tea.Cmd) {
	for _, n := range m.notifications.Drain() {
		m.notifyBus.Publish(n)
	}
	return m, tea.Batch(m.ensureToastTick(), m.notifications.WaitForSignal())
}

func (m Model) handleToastTick() (tea.Model, tea.Cmd) {
	m.toasts.Tick(toastTickInterval)
	if m.toasts.HasToasts() {
		return m, scheduleToastTick()
	}
	m.toastTicking = false
	return m, nil
}

// --- Keys ---

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == keyCtrlC {
		return m.quit()
	}

	switch m.state {
	case stateSearching:
		return m.handleSearchKey(msg, keyStr)
	case stateConfirming:
		return m.handleConfirmKey(msg)
	case stateShowingDetail:
		return m.handleDetailKey(keyStr)
	case stateShowingHelp:
		return m.handleHelpKey(keyStr)
	}
	return m.handleNormalKey(keyStr)
}

func (m Model) handleSearchKey(msg tea.KeyPressMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc:
		m.state = stateNormal
		m.search.Blur()
		return m, nil
	case keyEnter:
		m.state = stateNormal
		m.search.Blur()
		t := m.activeTable()
		t.setSearch(m.search.Value())
		return m, m.loadTable(t)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.confirm, _ = m.confirm.Update(msg)

	switch {
	case m.confirm.Confirmed():
		m.state = stateNormal
		t := m.table(m.pendingDelete)
		m.pendingDelete = ""
		if t == nil {
			return m, nil
		}
		m.deleting = true
		return m, m.deleteSelected(t)
	case m.confirm.Cancelled():
		m.state = stateNormal
		m.pendingDelete = ""
	}
	return m, nil
}

func (m Model) handleDetailKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc, keyEnter, "q":
		m.state = stateNormal
		m.detail = nil
		m.detailID = ""
	case "j", "down":
		m.detail.ScrollDown()
	case "k", "up":
		m.detail.ScrollUp()
	}
	return m, nil
}

func (m Model) handleHelpKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc, "?", "q":
		m.state = stateNormal
		m.helpDialog = nil
	case "j", "down":
		m.helpDialog.ScrollDown()
	case "k", "up":
		m.helpDialog.ScrollUp()
	}
	return m, nil
}

func (m Model) handleNormalKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "q":
		return m.quit()
	case "?":
		m.helpDialog = components.NewHelpDialog("Keybindings", m.keys.HelpSections(), m.width, m.height)
		m.state = stateShowingHelp
		return m, nil
	case keyEsc:
		m.toasts.Dismiss()
		m.focus = focusTable
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "left", "h":
		m.focus = focusTable
		return m, nil
	case "right", "l":
		if m.panelVisible() {
			m.focus = focusPanel
		}
		return m, nil
	}

	action, ok := m.keys.Resolve(keyStr)
	if !ok {
		return m, nil
	}
	return m.dispatchAction(action)
}

func (m *Model) moveCursor(delta int) {
	if m.focus == focusPanel && m.panelVisible() {
		m.panelCursor = clamp(m.panelCursor+delta, 0, max(len(m.panel.Rows())-1, 0))
		return
	}
	m.activeTable().moveCursor(delta, m.bodyHeight())
}

// dispatchAction runs a resolved keybinding.
func (m Model) dispatchAction(action Action) (tea.Model, tea.Cmd) {
	t := m.activeTable()

	switch action.Name {
	case config.ActionToggle:
		if m.focus == focusPanel {
			return m, nil
		}
		if row, ok := t.current(); ok && !row.Empty {
			t.sel.ToggleRowSelection(nil, row.ID)
		}
		return m, nil

	case config.ActionDetail:
		if m.focus == focusPanel {
			return m, nil
		}
		if row, ok := t.current(); ok && !row.Empty {
			return m.openDetail(t, row.ID)
		}
		return m, nil

	case config.ActionClear:
		if t.sel.Status().Enabled(console.ButtonClear) {
			t.sel.ClearSelection()
		}
		return m, nil

	case config.ActionDelete:
		status := t.sel.Status()
		if !status.Enabled(console.ButtonDelete) || m.deleting {
			return m, nil
		}
		if !action.NeedsConfirm() {
			m.deleting = true
			return m, m.deleteSelected(t)
		}
		m.pendingDelete = t.name
		m.confirm = components.NewConfirmModal(
			"Delete "+t.name,
			fmt.Sprintf("%s\n\n%d %s will be deleted.", action.Confirm, status.Total, t.name),
			"Delete",
		)
		m.state = stateConfirming
		return m, nil

	case config.ActionPanel:
		if t.name != console.TableEntries {
			return m, nil
		}
		if m.panel.State() == panel.Open {
			m.panel.Close()
			m.focus = focusTable
			return m, nil
		}
		return m, m.openPanel()

	case config.ActionRemove:
		return m.removeCurrent()

	case config.ActionSearch:
		m.state = stateSearching
		m.search.Placeholder = "search " + t.name
		m.search.SetValue(t.query.Search)
		return m, m.search.Focus()

	case config.ActionNextPage:
		if t.setPage(t.query.Page + 1) {
			return m, m.loadTable(t)
		}
		return m, nil

	case config.ActionPrevPage:
		if t.setPage(t.query.Page - 1) {
			return m, m.loadTable(t)
		}
		return m, nil

	case config.ActionRefresh:
		if m.panelVisible() {
			return m, tea.Batch(m.loadTable(t), m.syncPanel())
		}
		return m, m.loadTable(t)

	case config.ActionSwitch:
		m.active = (m.active + 1) % len(m.tables)
		m.focus = focusTable
		if next := m.activeTable(); !next.loaded && !next.loading {
			return m, m.loadTable(next)
		}
		return m, nil
	}

	return m, nil
}

// removeCurrent removes the focused panel row, or the table row under the
// cursor when it is a selected entry, from the configuration.
func (m Model) removeCurrent() (tea.Model, tea.Cmd) {
	var id record.ID
	if m.focus == focusPanel && m.panelVisible() {
		rows := m.panel.Rows()
		if m.panelCursor < len(rows) && !rows[m.panelCursor].Empty && !rows[m.panelCursor].Error {
			id = rows[m.panelCursor].ID
		}
	} else if t := m.activeTable(); t.name == console.TableEntries {
		if row, ok := t.current(); ok && t.sel.Contains(row.ID) {
			id = row.ID
		}
	}

	if id == "" {
		return m, nil
	}
	return m, m.removeFromConfig(id)
}

// openDetail shows the detail dialog for a rendered row. Entries with a
// regex also request the match spans for highlighting.
func (m Model) openDetail(t *recordTable, id record.ID) (tea.Model, tea.Cmd) {
	row, ok := t.find(id)
	if !ok {
		return m, nil
	}

	const helpText = "j/k scroll • esc close"
	switch r := row.Record.(type) {
	case record.LogEntry:
		m.detail = components.NewDetailDialog("Entry "+r.ID.String(), []components.DetailField{
			{Label: "Timestamp", Value: r.Timestamp},
			{Label: "Index", Value: r.Index},
			{Label: "Source type", Value: r.SourceType},
			{Label: "Status", Value: r.Status},
			{Label: "Regex", Value: r.Regex},
		}, helpText, m.width, m.height)
		m.detail.SetBody(r.Log)
		m.detailID = id
		m.state = stateShowingDetail
		if r.Regex == "" {
			return m, nil
		}
		return m, m.findMatch(id, r.Log, r.Regex)

	case record.Rule:
		m.detail = components.NewDetailDialog("Rule "+r.ID.String(), []components.DetailField{
			{Label: "Name", Value: r.Name},
			{Label: "Source type", Value: r.SourceType},
			{Label: "Regex", Value: r.Regex},
			{Label: "Description", Value: r.Description},
		}, helpText, m.width, m.height)
		if len(r.Metadata) > 0 {
			m.detail.SetBody(jsoncolor.Value(r.Metadata))
		}
		m.detailID = id
		m.state = stateShowingDetail
	}
	return m, nil
}

// renderMarkLegend lists the named capture groups of a highlighted match.
func renderMarkLegend(marks []highlight.Mark) string {
	var lines []string
	for _, mk := range marks {
		if mk.Depth == 0 {
			continue
		}
		indent := strings.Repeat("  ", mk.Depth-1)
		lines = append(lines, indent+styles.DetailLabelStyle.Render(mk.Name+":")+" "+styles.DetailValueStyle.Render(mk.Text))
	}
	return strings.Join(lines, "\n")
}

// --- Mouse ---

func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	mouse := msg.Mouse()
	if m.state != stateNormal || mouse.Button != tea.MouseLeft {
		return m, nil
	}

	line := mouse.Y - tableBodyTop
	if line < 0 || line >= m.bodyHeight() {
		return m, nil
	}

	_, panelX, panelWidth := m.layout()
	if m.panelVisible() && mouse.X >= panelX {
		return m.handlePanelClick(mouse.X-panelX, line, panelWidth)
	}

	t := m.activeTable()
	idx := t.offset + line
	rows := t.rows()
	if idx >= len(rows) || rows[idx].Empty {
		return m, nil
	}
	row := rows[idx]
	t.cursor = idx
	m.focus = focusTable

	if mouse.X < checkboxWidth {
		t.clicks.HandleChange(row.ID, !row.Checked)
		return m, nil
	}

	modifier := mouse.Mod&(tea.ModCtrl|tea.ModShift|tea.ModAlt) != 0
	out := t.clicks.HandleClick(selection.Click{ID: row.ID, Target: selection.TargetRow, Modifier: modifier})
	if out.Opened {
		if id := t.takeOpened(); id != "" {
			return m.openDetail(t, id)
		}
	}
	return m, nil
}

// handlePanelClick handles a click at column x of panel row line. The last
// cells of a row hold the remove action.
func (m Model) handlePanelClick(x, line, width int) (tea.Model, tea.Cmd) {
	rows := m.panel.Rows()
	if line >= len(rows) {
		return m, nil
	}
	row := rows[line]
	if row.Empty || row.Error {
		return m, nil
	}

	m.focus = focusPanel
	m.panelCursor = line
	if x >= width-panelActionWidth {
		return m, m.removeFromConfig(row.ID)
	}
	return m, nil
}
