package timesheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Canonical field names the pipeline needs from an export. The configured
// column mapping translates whatever headers the time tracker emits into
// these.
const (
	FieldPerson   = "person"
	FieldDate     = "date"
	FieldDuration = "duration"
	FieldCategory = "category"
	FieldTask     = "task"
	FieldTaskID   = "task_id"
)

var requiredFields = []string{FieldPerson, FieldDate, FieldDuration, FieldCategory}

// RequiredFields lists the canonical fields a column mapping must cover.
func RequiredFields() []string {
	out := make([]string, len(requiredFields))
	copy(out, requiredFields)
	return out
}

var (
	ErrNoExportFiles = errors.New("no export files found")
	ErrMissingColumn = errors.New("required column missing from export")
)

// SkippedRow records an input row the reader could not lift into a TimeEntry,
// typically because the row had fewer columns than the header.
type SkippedRow struct {
	Line   int
	Reason string
}

// Reader loads raw time-tracking exports from disk.
type Reader struct {
	columns map[string]string // source header -> canonical field
}

func NewReader(columnMapping map[string]string) *Reader {
	columns := make(map[string]string, len(columnMapping))
	for header, field := range columnMapping {
		columns[strings.TrimSpace(header)] = field
	}
	return &Reader{columns: columns}
}

// NewestExport picks the lexicographically last CSV file in dir. Export
// names carry their download date, so the last name is the newest export,
// and the choice never depends on file system timestamps.
func (r *Reader) NewestExport(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return "", fmt.Errorf("listing exports in %s: %w", dir, err)
	}
	sort.Strings(matches)
	for i := len(matches) - 1; i >= 0; i-- {
		info, err := os.Stat(matches[i])
		if err != nil || info.IsDir() {
			continue
		}
		return matches[i], nil
	}
	return "", fmt.Errorf("%w in %s", ErrNoExportFiles, dir)
}

// ReadFile loads every row of one export. Rows that cannot even be shaped
// into a TimeEntry are returned as SkippedRows, not errors; a single bad row
// must never abort the run.
func (r *Reader) ReadFile(path string) ([]TimeEntry, []SkippedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening export %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading export header %s: %w", path, err)
	}

	index := map[string]int{}
	for i, h := range header {
		if field, ok := r.columns[strings.TrimSpace(h)]; ok {
			index[field] = i
		}
	}
	var missing []string
	for _, field := range requiredFields {
		if _, ok := index[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	var entries []TimeEntry
	var skipped []SkippedRow
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading export %s: %w", path, err)
		}
		line++
		if short(index, record) {
			skipped = append(skipped, SkippedRow{Line: line, Reason: "row has fewer columns than the header"})
			continue
		}
		entries = append(entries, TimeEntry{
			Person:      cell(record, index, FieldPerson),
			RawDate:     cell(record, index, FieldDate),
			RawDuration: cell(record, index, FieldDuration),
			RawCategory: cell(record, index, FieldCategory),
			Task:        cell(record, index, FieldTask),
			TaskID:      cell(record, index, FieldTaskID),
			Line:        line,
		})
	}
	return entries, skipped, nil
}

func short(index map[string]int, record []string) bool {
	for _, field := range requiredFields {
		if index[field] >= len(record) {
			return true
		}
	}
	return false
}

func cell(record []string, index map[string]int, field string) string {
	i, ok := index[field]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
