package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/skykid17/smartlp-sub005/internal/console"
	"github.com/skykid17/smartlp-sub005/internal/core/selection"
	"github.com/skykid17/smartlp-sub005/internal/core/styles"
)

// Screen geometry shared by rendering and mouse hit testing.
const (
	tableBodyTop     = 3 // tab bar, search line, column header
	footerLines      = 3 // pagination, selection status, key help
	checkboxWidth    = 4 // "[x] "
	panelMinWidth    = 40
	panelActionWidth = 3 // " ✕ "
)

// fixed column widths; columns not listed share the remaining space.
var columnWidths = map[string]int{
	"id":          6,
	"timestamp":   20,
	"index":       12,
	"source_type": 14,
	"status":      10,
	"name":        20,
	"regex":       28,
}

// panelColumns are the configuration fields shown in the panel and their
// position in panel.DefaultRowTemplate cells.
var panelColumns = []struct {
	name string
	cell int
}{
	{"id", 0},
	{"source_type", 3},
	{"log", 4},
}

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// render composes the main screen and any active overlay.
func (m Model) render() string {
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}
	m.width, m.height = w, h

	content := m.renderMain()
	switch {
	case m.state == stateConfirming:
		content = m.confirm.Overlay(content, w, h)
	case m.state == stateShowingDetail && m.detail != nil:
		content = m.detail.Overlay(content, w, h)
	case m.state == stateShowingHelp && m.helpDialog != nil:
		content = m.helpDialog.Overlay(content, w, h)
	}

	if m.toasts.HasToasts() {
		content = m.toasts.Overlay(content, w, h)
	}
	return content
}

func (m Model) renderMain() string {
	t := m.activeTable()
	tableWidth, _, panelWidth := m.layout()
	height := m.bodyHeight()

	body := m.renderTable(t, tableWidth, height)
	if m.panelVisible() {
		side := m.renderPanel(panelWidth, height)
		divider := styles.DividerStyle.Render("│")
		for i := range body {
			body[i] = padRight(body[i], tableWidth) + divider + side[i]
		}
	}

	lines := make([]string, 0, height+tableBodyTop+footerLines)
	lines = append(lines, m.renderTabBar(), m.renderSearchLine(t))
	lines = append(lines, body...)
	lines = append(lines,
		m.renderPagination(t),
		m.renderStatus(t),
		m.help.ShortHelpView(m.keys.ShortHelp()),
	)
	return strings.Join(lines, "\n")
}

func (m Model) renderTabBar() string {
	tabs := make([]string, 0, len(m.tables))
	for i, t := range m.tables {
		label := fmt.Sprintf(" %s (%d) ", tableTitle(t.name), t.total)
		if i == m.active {
			tabs = append(tabs, styles.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactiveStyle.Render(label))
		}
	}
	bar := strings.Join(tabs, " ")

	if m.activeTable().name == console.TableEntries {
		toggle := styles.ButtonStyle.Render("config " + m.panel.Indicator())
		gap := max(m.width-lipgloss.Width(bar)-lipgloss.Width(toggle), 1)
		bar += strings.Repeat(" ", gap) + toggle
	}
	return bar
}

func (m Model) renderSearchLine(t *recordTable) string {
	var parts []string
	if t.loading || m.deleting {
		label := " loading"
		if m.deleting {
			label = " deleting"
		}
		parts = append(parts, m.spinner.View()+label)
	}

	switch {
	case m.state == stateSearching:
		parts = append(parts, m.search.View())
	case t.query.Search != "":
		parts = append(parts, styles.SearchPromptStyle.Render("/ "+t.query.Search))
	}
	return strings.Join(parts, "  ")
}

// renderTable returns the column header followed by exactly height row
// lines.
func (m Model) renderTable(t *recordTable, width, height int) []string {
	widths := columnLayout(t.columns, width-checkboxWidth)

	header := strings.Repeat(" ", checkboxWidth)
	for i, col := range t.columns {
		if i > 0 {
			header += " "
		}
		header += fit(columnTitle(col), widths[i])
	}

	lines := make([]string, 0, height+1)
	lines = append(lines, styles.TableHeaderStyle.Render(fit(header, width)))

	rows := t.rows()
	for i := t.offset; i < len(rows) && len(lines) <= height; i++ {
		lines = append(lines, m.renderRow(t, rows[i], i, widths, width))
	}
	for len(lines) <= height {
		lines = append(lines, "")
	}
	return lines
}

func (m Model) renderRow(t *recordTable, row selection.Row, idx int, widths []int, width int) string {
	if row.Empty {
		style := styles.TableEmptyStyle
		if t.err != nil {
			style = styles.TableErrorStyle
		}
		return style.Render(fit(strings.Repeat(" ", checkboxWidth)+strings.Join(row.Cells, " "), width))
	}

	line := "[ ] "
	if row.Checked {
		line = "[x] "
	}
	for i := range widths {
		if i > 0 {
			line += " "
		}
		var cell string
		if i < len(row.Cells) {
			cell = row.Cells[i]
		}
		line += fit(cell, widths[i])
	}
	line = fit(line, width)

	switch {
	case m.focus == focusTable && idx == t.cursor:
		return styles.TableCursorStyle.Render(line)
	case row.Selected:
		return styles.TableSelectedStyle.Render(line)
	default:
		return styles.TableRowStyle.Render(line)
	}
}

// renderPanel returns the panel title followed by exactly height lines.
func (m Model) renderPanel(width, height int) []string {
	rows := m.panel.Rows()

	title := fmt.Sprintf("Configuration (%d)", m.panel.Count())
	if m.panel.Syncing() {
		title += " " + m.spinner.View()
	}
	lines := make([]string, 0, height+1)
	lines = append(lines, styles.PanelTitleStyle.Render(fit(title, width)))

	if len(rows) == 0 {
		lines = append(lines, styles.TableEmptyStyle.Render(fit("Loading configuration…", width)))
	}

	names := make([]string, len(panelColumns))
	for i, c := range panelColumns {
		names[i] = c.name
	}
	widths := columnLayout(names, width-panelActionWidth)

	for i, row := range rows {
		if len(lines) > height {
			break
		}
		if row.Empty || row.Error {
			style := styles.TableEmptyStyle
			if row.Error {
				style = styles.TableErrorStyle
			}
			lines = append(lines, style.Render(fit(strings.Join(row.Cells, " "), width)))
			continue
		}

		var line string
		for j, c := range panelColumns {
			if j > 0 {
				line += " "
			}
			var cell string
			if c.cell < len(row.Cells) {
				cell = row.Cells[c.cell]
			}
			line += fit(cell, widths[j])
		}
		line = fit(line, width-panelActionWidth)

		style := styles.TableRowStyle
		if m.focus == focusPanel && i == m.panelCursor {
			style = styles.TableCursorStyle
		}
		lines = append(lines, style.Render(line)+styles.PanelRemoveStyle.Render(" ✕ "))
	}

	for len(lines) <= height {
		lines = append(lines, "")
	}
	return lines
}

func (m Model) renderPagination(t *recordTable) string {
	return styles.PaginationStyle.Render(fmt.Sprintf("Page %d/%d • %d %s", t.query.Page, t.pages(), t.total, t.name))
}

func (m Model) renderStatus(t *recordTable) string {
	status := t.sel.Status()

	style := styles.StatusStyle
	if status.Hidden > 0 {
		style = styles.StatusHiddenStyle
	}
	parts := []string{style.Render(status.Message)}
	for _, b := range status.Buttons {
		if b.Enabled {
			parts = append(parts, styles.ButtonStyle.Render(b.Name))
		} else {
			parts = append(parts, styles.ButtonDisabledStyle.Render(b.Name))
		}
	}
	return strings.Join(parts, "  ")
}

// columnLayout assigns widths to columns within width. The first column
// without a fixed width takes the remaining space; when every column is
// fixed the last one does.
func columnLayout(columns []string, width int) []int {
	widths := make([]int, len(columns))
	if len(columns) == 0 {
		return widths
	}

	flex := -1
	used := len(columns) - 1 // separators
	for i, col := range columns {
		w, ok := columnWidths[col]
		if !ok && flex < 0 {
			flex = i
			continue
		}
		if !ok {
			w = 20
		}
		widths[i] = w
		used += w
	}
	if flex < 0 {
		flex = len(columns) - 1
		used -= widths[flex]
	}
	widths[flex] = max(width-used, 4)
	return widths
}

// fit truncates or pads s to exactly width cells. Line breaks are folded
// into spaces.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(s)
	s = ansi.Truncate(s, width, "…")
	return padRight(s, width)
}

func padRight(s string, width int) string {
	if pad := width - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

func tableTitle(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
