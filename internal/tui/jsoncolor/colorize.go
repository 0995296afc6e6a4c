// Package jsoncolor renders JSON values with theme-aware syntax colors.
package jsoncolor

import (
	"bytes"
	"encoding/json"
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/skykid17/smartlp-sub005/internal/core/styles"
)

// Value indents and colorizes v. Values that cannot be marshalled render as
// an empty string.
func Value(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return Colorize(data)
}

// Colorize pretty-prints JSON bytes and colors keys, strings, numbers and
// literals. Invalid JSON is returned unchanged.
func Colorize(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}

	raw := buf.String()
	var out strings.Builder

	for i := 0; i < len(raw); {
		ch := raw[i]
		switch {
		case ch == '"':
			end := stringEnd(raw, i)
			lit := raw[i : end+1]
			if isKey(raw[end+1:]) {
				out.WriteString(styles.JSONKeyStyle.Render(lit))
			} else {
				out.WriteString(styles.JSONStringStyle.Render(lit))
			}
			i = end + 1

		case ch == '-' || (ch >= '0' && ch <= '9'):
			end := numberEnd(raw, i)
			out.WriteString(styles.JSONNumberStyle.Render(raw[i:end]))
			i = end

		case strings.HasPrefix(raw[i:], "true"):
			i += write(&out, styles.JSONLiteralStyle, "true")
		case strings.HasPrefix(raw[i:], "false"):
			i += write(&out, styles.JSONLiteralStyle, "false")
		case strings.HasPrefix(raw[i:], "null"):
			i += write(&out, styles.JSONNullStyle, "null")

		case strings.IndexByte("{}[]:,", ch) >= 0:
			i += write(&out, styles.JSONPunctStyle, string(ch))

		default:
			out.WriteByte(ch)
			i++
		}
	}

	return out.String()
}

func write(out *strings.Builder, style lipgloss.Style, s string) int {
	out.WriteString(style.Render(s))
	return len(s)
}

func isKey(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	return rest != "" && rest[0] == ':'
}

// stringEnd returns the index of the quote closing the string opened at pos.
func stringEnd(s string, pos int) int {
	for i := pos + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return len(s) - 1
}

func numberEnd(s string, pos int) int {
	end := pos + 1
	for end < len(s) && strings.IndexByte("0123456789.eE+-", s[end]) >= 0 {
		end++
	}
	return end
}
