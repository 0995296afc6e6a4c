package highlight

import (
	"html"
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/skykid17/smartlp-sub005/internal/core/styles"
)

// RenderHTML renders the fragment as escaped markup with <mark> elements
// carrying class and title attributes.
func (f *Fragment) RenderHTML() string {
	var b strings.Builder
	writeHTML(&b, f.Nodes)
	return b.String()
}

func writeHTML(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		if n.Kind == KindText {
			b.WriteString(html.EscapeString(n.Text))
			continue
		}
		b.WriteString(`<mark class="`)
		b.WriteString(html.EscapeString(n.Class))
		b.WriteString(`" title="`)
		b.WriteString(html.EscapeString(n.Title))
		b.WriteString(`">`)
		writeHTML(b, n.Children)
		b.WriteString("</mark>")
	}
}

// Theme maps mark classes to terminal styles.
type Theme struct {
	Plain lipgloss.Style
	Match lipgloss.Style
	Even  lipgloss.Style
	Odd   lipgloss.Style
}

// DefaultTheme builds a Theme from the active style palette.
func DefaultTheme() Theme {
	return Theme{
		Plain: lipgloss.NewStyle(),
		Match: styles.HighlightMatchStyle,
		Even:  styles.HighlightEvenStyle,
		Odd:   styles.HighlightOddStyle,
	}
}

func (t Theme) style(class string) lipgloss.Style {
	switch class {
	case ClassMatch:
		return t.Match
	case ClassEven:
		return t.Even
	case ClassOdd:
		return t.Odd
	default:
		return t.Plain
	}
}

// RenderANSI renders the fragment for a terminal. Each text run is styled by
// its innermost enclosing mark, so nested marks never reset their parent.
func (f *Fragment) RenderANSI(theme Theme) string {
	var b strings.Builder
	writeANSI(&b, f.Nodes, theme, theme.Plain)
	return b.String()
}

func writeANSI(b *strings.Builder, nodes []Node, theme Theme, current lipgloss.Style) {
	for _, n := range nodes {
		if n.Kind == KindText {
			if n.Text != "" {
				b.WriteString(current.Render(n.Text))
			}
			continue
		}
		writeANSI(b, n.Children, theme, theme.style(n.Class))
	}
}
