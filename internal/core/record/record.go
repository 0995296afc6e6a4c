// Package record defines the backend entities shown by the console. The
// selection engine only depends on Record.RecordID; everything else is
// display data and may be missing in a response.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a stable record identifier. The backend emits ids as JSON numbers
// for some endpoints and strings for others; both decode to the same ID.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// IDs converts raw strings into IDs.
func IDs(raw ...string) []ID {
	out := make([]ID, len(raw))
	for i, s := range raw {
		out[i] = ID(s)
	}
	return out
}

// IntID formats an integer id.
func IntID(n int) ID { return ID(strconv.Itoa(n)) }

// Record is any backend entity with a stable identity.
type Record interface {
	RecordID() ID
}

// LogEntry is a parsed log line tracked by the backend.
type LogEntry struct {
	ID         ID     `json:"id"`
	Log        string `json:"log"`
	Regex      string `json:"regex"`
	Status     string `json:"status"`
	Index      string `json:"index"`
	SourceType string `json:"source_type"`
	Timestamp  string `json:"timestamp"`
}

// RecordID implements Record.
func (e LogEntry) RecordID() ID { return e.ID }

// Rule is a detection / extraction rule managed by the backend.
type Rule struct {
	ID          ID             `json:"id"`
	Name        string         `json:"name"`
	Regex       string         `json:"regex"`
	SourceType  string         `json:"source_type"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// RecordID implements Record.
func (r Rule) RecordID() ID { return r.ID }

// ConfigRow is the per-record configuration returned for the panel.
type ConfigRow struct {
	ID         ID     `json:"id"`
	Timestamp  string `json:"timestamp"`
	Index      string `json:"index"`
	SourceType string `json:"source_type"`
	Log        string `json:"log"`
}

// RecordID implements Record.
func (c ConfigRow) RecordID() ID { return c.ID }

// Page is one page of a paginated query.
type Page[R Record] struct {
	Results []R `json:"results"`
	Total   int `json:"total_entries"`
}

// Query describes a paginated, filtered record query. Page is 1-based.
type Query struct {
	Search   string
	Filters  map[string]string
	Page     int
	PageSize int
}

// Pages returns the number of pages needed for total records.
func (q Query) Pages(total int) int {
	if q.PageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + q.PageSize - 1) / q.PageSize
}
