package budget

import (
	"context"

	"github.com/dsg-innosource/data-platform/pkg/period"
)

// StubHistory is an in-memory History for tests and for runs without a
// warehouse. Amounts are stored newest first, exactly as BilledAmounts
// returns them.
type StubHistory struct {
	amounts map[string][]float64
}

func NewStubHistory() *StubHistory {
	return &StubHistory{amounts: map[string][]float64{}}
}

func (s *StubHistory) Set(client string, newestFirst ...float64) {
	s.amounts[client] = newestFirst
}

func (s *StubHistory) BilledAmounts(_ context.Context, client string, _ period.Period, limit int) ([]float64, error) {
	amounts := s.amounts[client]
	if len(amounts) > limit {
		amounts = amounts[:limit]
	}
	out := make([]float64, len(amounts))
	copy(out, amounts)
	return out, nil
}

func (s *StubHistory) Cleanup() {
	s.amounts = map[string][]float64{}
}
