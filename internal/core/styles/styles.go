// Package styles provides shared lipgloss v2 styles for CLI and TUI components.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    color.Color
	ColorSecondary  color.Color
	ColorForeground color.Color
	ColorMuted      color.Color
	ColorBackground color.Color
	ColorSurface    color.Color
	ColorSuccess    color.Color
	ColorWarning    color.Color
	ColorError      color.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style
	TextMutedStyle     lipgloss.Style
	TextSuccessStyle   lipgloss.Style
	TextWarningStyle   lipgloss.Style
	TextErrorStyle     lipgloss.Style

	// Table styles.
	TableHeaderStyle   lipgloss.Style
	TableRowStyle      lipgloss.Style
	TableSelectedStyle lipgloss.Style
	TableCursorStyle   lipgloss.Style
	TableEmptyStyle    lipgloss.Style
	TableErrorStyle    lipgloss.Style

	// Status line and bulk-action buttons.
	StatusStyle          lipgloss.Style
	StatusHiddenStyle    lipgloss.Style
	ButtonStyle          lipgloss.Style
	ButtonDisabledStyle  lipgloss.Style
	TabActiveStyle       lipgloss.Style
	TabInactiveStyle     lipgloss.Style
	PanelStyle           lipgloss.Style
	PanelTitleStyle      lipgloss.Style
	PanelRemoveStyle     lipgloss.Style
	SearchPromptStyle    lipgloss.Style
	PaginationStyle      lipgloss.Style
	DetailLabelStyle     lipgloss.Style
	DetailValueStyle     lipgloss.Style
	HighlightMatchStyle  lipgloss.Style
	HighlightEvenStyle   lipgloss.Style
	HighlightOddStyle    lipgloss.Style
	ModalStyle           lipgloss.Style
	ModalTitleStyle      lipgloss.Style
	ModalHelpStyle       lipgloss.Style
	ModalButtonStyle     lipgloss.Style
	ModalButtonSelected  lipgloss.Style
	ToastInfoStyle       lipgloss.Style
	ToastWarningStyle    lipgloss.Style
	ToastErrorStyle      lipgloss.Style
	HelpKeyStyle         lipgloss.Style
	HelpDescriptionStyle lipgloss.Style

	// JSON syntax colors for record metadata.
	JSONKeyStyle     lipgloss.Style
	JSONStringStyle  lipgloss.Style
	JSONNumberStyle  lipgloss.Style
	JSONLiteralStyle lipgloss.Style
	JSONNullStyle    lipgloss.Style
	JSONPunctStyle   lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	CommandStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	TextMutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	TextWarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	TextErrorStyle = lipgloss.NewStyle().Foreground(ColorError)

	TableHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	TableRowStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	TableSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Bold(true)
	TableCursorStyle = lipgloss.NewStyle().
		Background(ColorSurface)
	TableEmptyStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)
	TableErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	StatusStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	StatusHiddenStyle = lipgloss.NewStyle().
		Foreground(ColorWarning)
	ButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorPrimary).
		Foreground(ColorBackground)
	ButtonDisabledStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorMuted)
	TabActiveStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Underline(true)
	TabInactiveStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSecondary).
		Padding(0, 1)
	PanelTitleStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)
	PanelRemoveStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	SearchPromptStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	PaginationStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	DetailLabelStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(12)
	DetailValueStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)

	matchBg := p.Match
	if matchBg == nil {
		matchBg = p.Primary
	}
	evenBg, oddBg := GroupShades(p)
	HighlightMatchStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(matchBg)
	HighlightEvenStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(evenBg)
	HighlightOddStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(oddBg)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)
	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorMuted)
	ModalButtonSelected = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorPrimary).
		Foreground(ColorBackground).
		Bold(true)

	ToastInfoStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSecondary).
		Padding(0, 1)
	ToastWarningStyle = ToastInfoStyle.
		BorderForeground(ColorWarning)
	ToastErrorStyle = ToastInfoStyle.
		BorderForeground(ColorError)

	HelpKeyStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)
	HelpDescriptionStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	JSONKeyStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	JSONStringStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	JSONNumberStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	JSONLiteralStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	JSONNullStyle = lipgloss.NewStyle().Foreground(ColorError)
	JSONPunctStyle = lipgloss.NewStyle().Foreground(ColorMuted)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
