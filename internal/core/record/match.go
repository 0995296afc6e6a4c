package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TopLevelSpan is the reserved name of the span covering the whole match.
const TopLevelSpan = "matched1"

// ReservedSpanPrefix marks span names that are not capture groups.
const ReservedSpanPrefix = "matched"

// MatchSpan is a named character range inside a text. Start and End are
// rune offsets with Start <= End.
type MatchSpan struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Value string `json:"value"`
}

// IsTopLevel reports whether the span is the overall match.
func (s MatchSpan) IsTopLevel() bool { return s.Name == TopLevelSpan }

// IsReserved reports whether the span name uses the reserved prefix.
func (s MatchSpan) IsReserved() bool { return strings.HasPrefix(s.Name, ReservedSpanPrefix) }

// Contains reports whether other lies fully inside s.
func (s MatchSpan) Contains(other MatchSpan) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Spans decodes the two shapes find_match is known to return: a list of
// spans, or an object keyed by span name. The object form is returned in
// name order so callers see a deterministic slice.
type Spans []MatchSpan

// UnmarshalJSON implements json.Unmarshaler.
func (s *Spans) UnmarshalJSON(data []byte) error {
	var list []MatchSpan
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}

	var byName map[string]MatchSpan
	if err := json.Unmarshal(data, &byName); err != nil {
		return fmt.Errorf("decode match spans: %w", err)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]MatchSpan, 0, len(names))
	for _, name := range names {
		span := byName[name]
		span.Name = name
		out = append(out, span)
	}
	*s = out
	return nil
}
