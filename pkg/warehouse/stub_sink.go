package warehouse

import (
	"context"
	"sort"

	"github.com/dsg-innosource/data-platform/pkg/period"
)

// StubSink is an in-memory Sink used in tests and whenever the warehouse
// is disabled. It keeps the same replace semantics as the SQL repository.
type StubSink struct {
	entries map[string][]EntryRow
	totals  map[string][]ClientPeriodRow
}

func NewStubSink() *StubSink {
	return &StubSink{
		entries: map[string][]EntryRow{},
		totals:  map[string][]ClientPeriodRow{},
	}
}

func (s *StubSink) ReplacePeriod(_ context.Context, p period.Period, _ string, entries []EntryRow, totals []ClientPeriodRow) error {
	label := p.String()
	s.entries[label] = append([]EntryRow(nil), entries...)
	s.totals[label] = append([]ClientPeriodRow(nil), totals...)
	return nil
}

func (s *StubSink) CountForPeriod(_ context.Context, p period.Period) (int, error) {
	return len(s.entries[p.String()]), nil
}

func (s *StubSink) BilledAmounts(_ context.Context, client string, before period.Period, limit int) ([]float64, error) {
	if limit <= 0 {
		return nil, nil
	}
	labels := make([]string, 0, len(s.totals))
	for label := range s.totals {
		if label < before.String() {
			labels = append(labels, label)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(labels)))

	var amounts []float64
	for _, label := range labels {
		for _, t := range s.totals[label] {
			if t.Client == client {
				amounts = append(amounts, t.Amount)
			}
		}
		if len(amounts) >= limit {
			amounts = amounts[:limit]
			break
		}
	}
	return amounts, nil
}

func (s *StubSink) Close() error {
	return nil
}

func (s *StubSink) Cleanup() {
	s.entries = map[string][]EntryRow{}
	s.totals = map[string][]ClientPeriodRow{}
}
