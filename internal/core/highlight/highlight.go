// Package highlight decomposes a text into plain runs and nested highlight
// marks for a regex match and its named capture groups.
//
// The decomposition is lossless: concatenating the text of every node in
// document order reproduces the input exactly, whatever spans were given.
package highlight

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

// Mark classes.
const (
	ClassMatch = "match"
	ClassEven  = "group-even"
	ClassOdd   = "group-odd"
)

// Kind distinguishes node types.
type Kind int

const (
	KindText Kind = iota
	KindMark
)

// Node is a plain text run or a mark wrapping child nodes.
type Node struct {
	Kind     Kind
	Text     string
	Name     string
	Class    string
	Title    string
	Children []Node
}

// TextNode returns a plain text node.
func TextNode(s string) Node { return Node{Kind: KindText, Text: s} }

// TextContent concatenates the text of n and its descendants.
func (n Node) TextContent() string {
	if n.Kind == KindText {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Fragment is an ordered list of top-level nodes.
type Fragment struct {
	Nodes []Node
}

// TextContent concatenates the text of every node in document order.
func (f *Fragment) TextContent() string {
	var b strings.Builder
	for _, n := range f.Nodes {
		b.WriteString(n.TextContent())
	}
	return b.String()
}

// Mark is a flattened view of one mark node.
type Mark struct {
	Name  string
	Class string
	Text  string
	Depth int
}

// Marks lists every mark in document order.
func (f *Fragment) Marks() []Mark {
	var out []Mark
	var walk func(nodes []Node, depth int)
	walk = func(nodes []Node, depth int) {
		for _, n := range nodes {
			if n.Kind != KindMark {
				continue
			}
			out = append(out, Mark{Name: n.Name, Class: n.Class, Text: n.TextContent(), Depth: depth})
			walk(n.Children, depth+1)
		}
	}
	walk(f.Nodes, 0)
	return out
}

// Build highlights text with spans.
//
// The span named record.TopLevelSpan becomes the outer mark; without it the
// text is returned as a single plain node. Other spans with a reserved name
// are ignored, and capture groups not contained in the top-level span are
// dropped. Groups are nested in order of their start offset; ties keep input
// order. A group that starts before the end of the previous one is clipped to
// begin where the previous one ended, and dropped if nothing remains of it.
//
// Offsets are rune offsets, with each invalid UTF-8 byte counting as one
// rune. The top-level span is clamped to the text.
func Build(text string, spans []record.MatchSpan) *Fragment {
	top, ok := topLevel(spans)
	if !ok {
		return &Fragment{Nodes: []Node{TextNode(text)}}
	}

	offs := runeOffsets(text)
	n := len(offs) - 1
	start := clamp(top.Start, 0, n)
	end := clamp(top.End, start, n)
	top.Start, top.End = start, end

	type group struct {
		name       string
		start, end int
	}

	var groups []group
	for _, s := range spans {
		if s.IsReserved() || s.Start > s.End || !top.Contains(s) {
			continue
		}
		groups = append(groups, group{name: s.Name, start: s.Start - start, end: s.End - start})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].start < groups[j].start })

	// at slices the match by rune offsets relative to its start.
	at := func(from, to int) string { return text[offs[start+from]:offs[start+to]] }
	children := make([]Node, 0, 2*len(groups)+1)
	cursor := 0
	emitted := 0
	for _, g := range groups {
		if g.start < cursor {
			if g.end <= cursor {
				continue
			}
			g.start = cursor
		}

		class := ClassEven
		if emitted%2 == 1 {
			class = ClassOdd
		}
		emitted++

		children = append(children,
			TextNode(at(cursor, g.start)),
			Node{
				Kind:     KindMark,
				Name:     g.name,
				Class:    class,
				Title:    g.name,
				Children: []Node{TextNode(at(g.start, g.end))},
			},
		)
		cursor = g.end
	}
	children = append(children, TextNode(at(cursor, end-start)))

	return &Fragment{Nodes: []Node{
		TextNode(text[:offs[start]]),
		{
			Kind:     KindMark,
			Name:     top.Name,
			Class:    ClassMatch,
			Title:    top.Name,
			Children: children,
		},
		TextNode(text[offs[end]:]),
	}}
}

func topLevel(spans []record.MatchSpan) (record.MatchSpan, bool) {
	for _, s := range spans {
		if s.IsTopLevel() {
			return s, true
		}
	}
	return record.MatchSpan{}, false
}

// runeOffsets returns the byte offset of every rune in s followed by len(s).
// An invalid byte counts as one rune, so slicing s by these offsets never
// rewrites it.
func runeOffsets(s string) []int {
	offs := make([]int, 0, len(s)+1)
	for i := 0; i < len(s); {
		offs = append(offs, i)
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return append(offs, len(s))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
