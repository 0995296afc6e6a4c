package devserver

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

// FindMatch runs pattern over text and reports the first match as spans:
// record.TopLevelSpan for the whole match plus one span per named group that
// participated. Offsets are rune offsets. No match yields no spans.
func FindMatch(text, pattern string) ([]record.MatchSpan, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile regex: %w", err)
	}

	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return []record.MatchSpan{}, nil
	}

	runeOffset := func(byteOffset int) int {
		return utf8.RuneCountInString(text[:byteOffset])
	}

	spans := []record.MatchSpan{{
		Name:  record.TopLevelSpan,
		Start: runeOffset(loc[0]),
		End:   runeOffset(loc[1]),
		Value: text[loc[0]:loc[1]],
	}}

	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" || loc[2*i] < 0 {
			continue
		}
		start, end := loc[2*i], loc[2*i+1]
		spans = append(spans, record.MatchSpan{
			Name:  name,
			Start: runeOffset(start),
			End:   runeOffset(end),
			Value: text[start:end],
		})
	}
	return spans, nil
}
