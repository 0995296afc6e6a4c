package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/skykid17/smartlp-sub005/internal/core/styles"
)

const (
	detailModalMaxHeight = 30
	detailModalMargin    = 4
	detailModalChrome    = 6 // title + divider + help + spacing
	detailModalMinWidth  = 50
)

// DetailField is one labeled value of a record.
type DetailField struct {
	Label string
	Value string
}

// DetailDialog shows the fields of one record followed by a free-form body
// such as a highlighted log line.
type DetailDialog struct {
	title    string
	fields   []DetailField
	body     string
	helpText string
	width    int
	height   int
	viewport viewport.Model
}

// NewDetailDialog creates a detail dialog sized for a width x height screen.
func NewDetailDialog(title string, fields []DetailField, helpText string, width, height int) *DetailDialog {
	modalWidth, modalHeight := detailSize(width, height)

	d := &DetailDialog{
		title:    title,
		fields:   fields,
		helpText: helpText,
		width:    modalWidth,
		height:   modalHeight,
		viewport: viewport.New(
			viewport.WithWidth(modalWidth-4),
			viewport.WithHeight(modalHeight-detailModalChrome),
		),
	}
	d.refresh()
	return d
}

func detailSize(width, height int) (int, int) {
	modalWidth := min(max(int(float64(width)*0.7), detailModalMinWidth), max(width-detailModalMargin, 1))
	modalHeight := max(min(height-detailModalMargin, detailModalMaxHeight), detailModalChrome+1)
	return modalWidth, modalHeight
}

// SetBody replaces the body shown under the fields.
func (d *DetailDialog) SetBody(body string) {
	d.body = body
	d.refresh()
}

// Body returns the current body.
func (d *DetailDialog) Body() string { return d.body }

func (d *DetailDialog) refresh() {
	lines := make([]string, 0, len(d.fields)+2)
	for _, f := range d.fields {
		value := f.Value
		if value == "" {
			value = "-"
		}
		lines = append(lines, styles.DetailLabelStyle.Render(f.Label)+styles.DetailValueStyle.Render(value))
	}
	if d.body != "" {
		lines = append(lines, "", d.body)
	}
	d.viewport.SetContent(strings.Join(lines, "\n"))
}

// ScrollUp scrolls the viewport up.
func (d *DetailDialog) ScrollUp() { d.viewport.ScrollUp(1) }

// ScrollDown scrolls the viewport down.
func (d *DetailDialog) ScrollDown() { d.viewport.ScrollDown(1) }

// Overlay renders the dialog centered over the provided background.
func (d *DetailDialog) Overlay(background string, width, height int) string {
	scrollInfo := ""
	if d.viewport.TotalLineCount() > d.viewport.VisibleLineCount() {
		scrollInfo = styles.PaginationStyle.Render(
			fmt.Sprintf(" (%.0f%%)", d.viewport.ScrollPercent()*100),
		)
	}

	divider := styles.DividerStyle.Render(strings.Repeat("─", max(d.width-6, 1)))
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(d.title+scrollInfo),
		divider,
		d.viewport.View(),
		styles.ModalHelpStyle.Render(d.helpText),
	)

	modal := styles.ModalStyle.
		Width(d.width).
		Height(d.height).
		Render(content)

	return center(background, modal, width, height)
}
