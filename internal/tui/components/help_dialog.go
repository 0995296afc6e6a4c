// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/skykid17/smartlp-sub005/internal/core/styles"
)

const (
	helpModalMaxWidth = 72
	helpModalMargin   = 4
	helpModalChrome   = 4
)

// HelpEntry represents a single keyboard shortcut entry.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpDialogSection groups related help entries under a title.
type HelpDialogSection struct {
	Title   string
	Entries []HelpEntry
}

// HelpDialog displays the available keyboard shortcuts as rendered
// markdown.
type HelpDialog struct {
	title    string
	markdown string
	width    int
	viewport viewport.Model
}

// NewHelpDialog creates a new help dialog with the given sections.
func NewHelpDialog(title string, sections []HelpDialogSection, width, height int) *HelpDialog {
	modalWidth := min(helpModalMaxWidth, max(width-helpModalMargin, 20))
	contentHeight := max(height-helpModalMargin-helpModalChrome, 3)

	h := &HelpDialog{
		title:    title,
		markdown: HelpMarkdown(sections),
		width:    modalWidth,
		viewport: viewport.New(
			viewport.WithWidth(modalWidth-4),
			viewport.WithHeight(contentHeight),
		),
	}
	h.viewport.SetContent(renderMarkdown(h.markdown, modalWidth-4))
	return h
}

// HelpMarkdown renders sections as markdown tables.
func HelpMarkdown(sections []HelpDialogSection) string {
	var b strings.Builder
	for i, section := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if section.Title != "" {
			fmt.Fprintf(&b, "## %s\n\n", section.Title)
		}
		b.WriteString("| Key | Action |\n|---|---|\n")
		for _, e := range section.Entries {
			fmt.Fprintf(&b, "| `%s` | %s |\n", e.Key, e.Desc)
		}
	}
	return b.String()
}

func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// Markdown returns the unrendered help text.
func (h *HelpDialog) Markdown() string { return h.markdown }

// ScrollUp scrolls the dialog up one line.
func (h *HelpDialog) ScrollUp() { h.viewport.ScrollUp(1) }

// ScrollDown scrolls the dialog down one line.
func (h *HelpDialog) ScrollDown() { h.viewport.ScrollDown(1) }

// View renders the help dialog.
func (h *HelpDialog) View() string {
	content := strings.Join([]string{
		styles.ModalTitleStyle.Render(h.title),
		h.viewport.View(),
		styles.ModalHelpStyle.Render("j/k scroll • esc/? close"),
	}, "\n")
	return styles.ModalStyle.Width(h.width).Render(content)
}

// Overlay renders the help dialog as a layer over the given background.
func (h *HelpDialog) Overlay(background string, width, height int) string {
	return center(background, h.View(), width, height)
}
