// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hay-kot/criterio"

	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

// MaxRecordIDLength bounds IDs accepted from the command line.
const MaxRecordIDLength = 64

// RecordID validates a record ID typed by a user. IDs are used as request
// path segments.
func RecordID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("id is required")
	case len(id) > MaxRecordIDLength:
		return fmt.Errorf("id is longer than %d characters", MaxRecordIDLength)
	case strings.ContainsAny(id, "/?#"):
		return fmt.Errorf("id %q contains a path separator", id)
	case strings.IndexFunc(id, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0:
		return fmt.Errorf("id %q contains whitespace", id)
	}
	return nil
}

// RecordIDs validates raw IDs and converts them. Every invalid ID is
// reported as field[i].
func RecordIDs(field string, raw []string) ([]record.ID, error) {
	if len(raw) == 0 {
		return nil, criterio.NewFieldErrors(field, fmt.Errorf("at least one record ID is required"))
	}

	var errs criterio.FieldErrorsBuilder
	for i, id := range raw {
		if err := RecordID(id); err != nil {
			errs = errs.Append(fmt.Sprintf("%s[%d]", field, i), err)
		}
	}
	if err := errs.ToError(); err != nil {
		return nil, err
	}
	return record.IDs(raw...), nil
}
