package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/dsg-innosource/data-platform/pkg/timesheet"
)

var (
	ErrNoRates     = errors.New("no billing rates configured")
	ErrInvalidRate = errors.New("billing rate must be positive")
)

// RateTable maps canonical client names to contracted hourly rates in
// dollars.
type RateTable map[string]float64

func (rt RateTable) Lookup(client string) (float64, bool) {
	rate, ok := rt[client]
	return rate, ok
}

func (rt RateTable) Validate() error {
	if len(rt) == 0 {
		return ErrNoRates
	}
	for client, rate := range rt {
		if rate <= 0 {
			return fmt.Errorf("%w: %s has rate %v", ErrInvalidRate, client, rate)
		}
	}
	return nil
}

// ClientSummary aggregates one client's billable activity for the period.
// Amount is computed once from the summed duration, never by adding up
// per-entry amounts, so it is exact up to display rounding. When the rate
// table has no entry for the client, RateKnown is false and Amount is
// meaningless.
type ClientSummary struct {
	Client    string
	Duration  time.Duration
	Rate      float64
	RateKnown bool
	Amount    float64
}

func (s ClientSummary) Hours() float64 {
	return s.Duration.Hours()
}

// Charge is one entry's line in the detailed billing log.
type Charge struct {
	Entry     timesheet.CleanEntry
	Rate      float64
	RateKnown bool
	Amount    float64
}

// Result is the calculator output for one period.
type Result struct {
	Clients       []ClientSummary
	Charges       []Charge
	TotalDuration time.Duration
	TotalAmount   float64
	MissingRates  []string
}

// BilledByClient returns the amounts per client for clients whose rate is
// known. This is the shape the budget tracker consumes.
func (r Result) BilledByClient() map[string]float64 {
	billed := make(map[string]float64, len(r.Clients))
	for _, c := range r.Clients {
		if c.RateKnown {
			billed[c.Client] = c.Amount
		}
	}
	return billed
}
