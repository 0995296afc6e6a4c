package components

import (
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/skykid17/smartlp-sub005/internal/core/styles"
)

const (
	confirmFocusAccept = iota
	confirmFocusCancel
)

// ConfirmModal is a yes/no confirmation dialog with two buttons.
type ConfirmModal struct {
	title       string
	message     string
	acceptLabel string
	focus       int
	confirmed   bool
	cancelled   bool
}

// NewConfirmModal creates a confirmation modal. acceptLabel defaults to
// "Confirm".
func NewConfirmModal(title, message, acceptLabel string) ConfirmModal {
	if acceptLabel == "" {
		acceptLabel = "Confirm"
	}
	return ConfirmModal{
		title:       title,
		message:     message,
		acceptLabel: acceptLabel,
	}
}

// Update handles input for the confirmation modal.
func (m ConfirmModal) Update(msg tea.Msg) (ConfirmModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		m.confirmed = true
	case "n", "N", "esc":
		m.cancelled = true
	case "left", "right", "h", "l", "tab":
		if m.focus == confirmFocusAccept {
			m.focus = confirmFocusCancel
		} else {
			m.focus = confirmFocusAccept
		}
	case "enter":
		if m.focus == confirmFocusAccept {
			m.confirmed = true
		} else {
			m.cancelled = true
		}
	}

	return m, nil
}

// View renders the confirmation modal.
func (m ConfirmModal) View() string {
	accept, cancel := styles.ModalButtonStyle, styles.ModalButtonStyle
	if m.focus == confirmFocusAccept {
		accept = styles.ModalButtonSelected
	} else {
		cancel = styles.ModalButtonSelected
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		accept.Render(m.acceptLabel),
		"  ",
		cancel.Render("Cancel"),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		m.message,
		"",
		buttons,
		styles.ModalHelpStyle.Render("y/n • ←/→ choose • enter select"),
	)
	return styles.ModalStyle.Render(content)
}

// Overlay renders the modal centered over background.
func (m ConfirmModal) Overlay(background string, width, height int) string {
	return center(background, m.View(), width, height)
}

// Confirmed returns true if user confirmed.
func (m ConfirmModal) Confirmed() bool {
	return m.confirmed
}

// Cancelled returns true if user cancelled.
func (m ConfirmModal) Cancelled() bool {
	return m.cancelled
}

// center composites modal over background at the center of the screen.
func center(background, modal string, width, height int) string {
	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)

	modalW := lipgloss.Width(modal)
	modalH := lipgloss.Height(modal)
	modalLayer.X(max((width-modalW)/2, 0)).Y(max((height-modalH)/2, 0)).Z(1)

	return lipgloss.NewCompositor(bgLayer, modalLayer).Render()
}
