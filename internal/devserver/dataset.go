package devserver

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

// Dataset is the mutable in-memory record set served by the dev backend.
type Dataset struct {
	mu      sync.RWMutex
	entries []record.LogEntry
	rules   []record.Rule
}

// NewDataset creates a dataset holding copies of entries and rules.
func NewDataset(entries []record.LogEntry, rules []record.Rule) *Dataset {
	return &Dataset{
		entries: slices.Clone(entries),
		rules:   slices.Clone(rules),
	}
}

// SeedDataset returns a small dataset with realistic log lines.
func SeedDataset() *Dataset {
	sources := []struct {
		index, sourceType, status, log, regex string
	}{
		{"main", "syslog", "parsed", "2024-01-01 ERROR boom", `(?P<ts>\S+) (?P<level>[A-Z]+) (?P<msg>.*)`},
		{"main", "syslog", "parsed", "2024-01-01 WARN disk 91% on /var", `(?P<ts>\S+) (?P<level>[A-Z]+) (?P<msg>.*)`},
		{"web", "nginx", "pending", `10.0.0.7 - - "GET /health HTTP/1.1" 200`, `(?P<ip>[\d.]+) .*"(?P<method>[A-Z]+) (?P<path>\S+).*" (?P<status>\d{3})`},
		{"web", "nginx", "pending", `10.0.0.9 - - "POST /login HTTP/1.1" 401`, `(?P<ip>[\d.]+) .*"(?P<method>[A-Z]+) (?P<path>\S+).*" (?P<status>\d{3})`},
		{"auth", "sshd", "failed", "Failed password for root from 203.0.113.5 port 22", `Failed password for (?P<user>\S+) from (?P<ip>\S+)`},
	}

	var entries []record.LogEntry
	for i := range 60 {
		s := sources[i%len(sources)]
		entries = append(entries, record.LogEntry{
			ID:         record.IntID(i + 1),
			Log:        s.log,
			Regex:      s.regex,
			Status:     s.status,
			Index:      s.index,
			SourceType: s.sourceType,
			Timestamp:  fmt.Sprintf("2024-01-01T00:%02d:00Z", i%60),
		})
	}

	rules := []record.Rule{
		{ID: "1", Name: "syslog-level", Regex: sources[0].regex, SourceType: "syslog", Description: "Severity and message"},
		{ID: "2", Name: "nginx-access", Regex: sources[2].regex, SourceType: "nginx", Description: "Access log request line"},
		{ID: "3", Name: "sshd-failed", Regex: sources[4].regex, SourceType: "sshd", Description: "Failed SSH logins"},
	}

	return NewDataset(entries, rules)
}

// Entries returns a copy of all entries.
func (d *Dataset) Entries() []record.LogEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.entries)
}

// Rules returns a copy of all rules.
func (d *Dataset) Rules() []record.Rule {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.rules)
}

// QueryEntries filters and paginates entries.
func (d *Dataset) QueryEntries(q record.Query) record.Page[record.LogEntry] {
	d.mu.RLock()
	defer d.mu.RUnlock()

	matched := make([]record.LogEntry, 0, len(d.entries))
	for _, e := range d.entries {
		if !containsFold(q.Search, e.Log, e.Index, e.SourceType, e.Status) {
			continue
		}
		if !matchFilters(q.Filters, map[string]string{
			"index":       e.Index,
			"source_type": e.SourceType,
			"status":      e.Status,
		}) {
			continue
		}
		matched = append(matched, e)
	}
	return paginate(matched, q)
}

// QueryRules filters and paginates rules.
func (d *Dataset) QueryRules(q record.Query) record.Page[record.Rule] {
	d.mu.RLock()
	defer d.mu.RUnlock()

	matched := make([]record.Rule, 0, len(d.rules))
	for _, r := range d.rules {
		if !containsFold(q.Search, r.Name, r.Description, r.SourceType) {
			continue
		}
		if !matchFilters(q.Filters, map[string]string{"source_type": r.SourceType}) {
			continue
		}
		matched = append(matched, r)
	}
	return paginate(matched, q)
}

// Config returns configuration rows for the known ids, in request order.
func (d *Dataset) Config(ids []record.ID) []record.ConfigRow {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows := make([]record.ConfigRow, 0, len(ids))
	for _, id := range ids {
		for _, e := range d.entries {
			if e.ID == id {
				rows = append(rows, record.ConfigRow{
					ID:         e.ID,
					Timestamp:  e.Timestamp,
					Index:      e.Index,
					SourceType: e.SourceType,
					Log:        e.Log,
				})
				break
			}
		}
	}
	return rows
}

// DeleteEntry removes an entry. It reports whether the entry existed.
func (d *Dataset) DeleteEntry(id record.ID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	before := len(d.entries)
	d.entries = slices.DeleteFunc(d.entries, func(e record.LogEntry) bool { return e.ID == id })
	return len(d.entries) != before
}

// DeleteRule removes a rule. It reports whether the rule existed.
func (d *Dataset) DeleteRule(id record.ID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	before := len(d.rules)
	d.rules = slices.DeleteFunc(d.rules, func(r record.Rule) bool { return r.ID == id })
	return len(d.rules) != before
}

func containsFold(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func matchFilters(filters, values map[string]string) bool {
	for k, want := range filters {
		got, known := values[k]
		if known && got != want {
			return false
		}
	}
	return true
}

func paginate[R record.Record](all []R, q record.Query) record.Page[R] {
	page := record.Page[R]{Results: []R{}, Total: len(all)}
	size := q.PageSize
	if size <= 0 {
		size = len(all)
	}
	n := max(q.Page, 1)
	start := (n - 1) * size
	if start >= len(all) {
		return page
	}
	end := min(start+size, len(all))
	page.Results = all[start:end]
	return page
}
