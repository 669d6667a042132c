package timesheet

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type RowOutcome int

const (
	RowClean RowOutcome = iota
	RowParseFailure
	RowUnmappedCategory
)

// RowResult tags one raw row with its normalization outcome. Entry is
// populated for clean and unmapped rows; Problem is set on parse failures
// and names the cell that could not be read.
type RowResult struct {
	Outcome RowOutcome
	Entry   CleanEntry
	Raw     TimeEntry
	Problem string
}

// Normalizer turns raw rows into billable entries. Rows never abort the
// run here: whatever cannot be normalized is tagged and carried along so
// the report can surface it as a warning.
type Normalizer struct {
	mapping Mapping
}

func NewNormalizer(mapping Mapping) *Normalizer {
	return &Normalizer{mapping: mapping}
}

func (n *Normalizer) Normalize(entries []TimeEntry) []RowResult {
	results := make([]RowResult, 0, len(entries))
	for _, raw := range entries {
		results = append(results, n.normalizeRow(raw))
	}
	return results
}

func (n *Normalizer) normalizeRow(raw TimeEntry) RowResult {
	duration, err := ParseDuration(raw.RawDuration)
	if err != nil {
		return RowResult{
			Outcome: RowParseFailure,
			Raw:     raw,
			Problem: fmt.Sprintf("duration %q: %v", raw.RawDuration, err),
		}
	}
	date, err := parseDate(raw.RawDate)
	if err != nil {
		return RowResult{
			Outcome: RowParseFailure,
			Raw:     raw,
			Problem: fmt.Sprintf("date %q is not a recognized date", raw.RawDate),
		}
	}
	entry := CleanEntry{
		Person:   raw.Person,
		Date:     date,
		Duration: duration,
		Task:     raw.Task,
		TaskID:   raw.TaskID,
	}
	client, ok := n.mapping.Resolve(raw.RawCategory)
	if !ok {
		return RowResult{Outcome: RowUnmappedCategory, Entry: entry, Raw: raw}
	}
	entry.Client = client
	return RowResult{Outcome: RowClean, Entry: entry, Raw: raw}
}

var dateLayouts = []string{"2006-01-02", "1/2/2006", "1/2/06"}

// parseDate reads the date cell of an export. Trackers often append a time
// of day after a comma ("9/3/2025, 10:15 am"); only the date part counts.
func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, ","); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// ParsedEntries extracts the entries that survived normalization, in input
// order. Unmapped rows are included; their Client is empty.
func ParsedEntries(results []RowResult) []CleanEntry {
	var entries []CleanEntry
	for _, r := range results {
		if r.Outcome != RowParseFailure {
			entries = append(entries, r.Entry)
		}
	}
	return entries
}

// Failures extracts the rows that could not be parsed, in input order.
func Failures(results []RowResult) []RowResult {
	var failures []RowResult
	for _, r := range results {
		if r.Outcome == RowParseFailure {
			failures = append(failures, r)
		}
	}
	return failures
}

// UnmappedTags lists the distinct category tags that had no mapping,
// sorted for stable reporting.
func UnmappedTags(results []RowResult) []string {
	seen := map[string]bool{}
	for _, r := range results {
		if r.Outcome == RowUnmappedCategory {
			seen[r.Raw.RawCategory] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
