package billing

import (
	"sort"
	"time"

	"github.com/dsg-innosource/data-platform/pkg/timesheet"
	log "github.com/sirupsen/logrus"
)

type Calculator interface {
	Calculate(entries []timesheet.CleanEntry, rates RateTable) Result
}

type CalculatorImpl struct{}

func NewCalculator() *CalculatorImpl {
	return &CalculatorImpl{}
}

// Calculate groups billable entries by client and prices them against the
// rate table. Entries without a client (unmapped categories) are not billable
// and do not participate in any total. Clients whose rate is missing keep
// their hours in the result but produce no amount; they are listed in
// MissingRates so the run can surface a warning.
func (c *CalculatorImpl) Calculate(entries []timesheet.CleanEntry, rates RateTable) Result {
	durations := map[string]time.Duration{}
	for _, e := range entries {
		if !e.Mapped() {
			continue
		}
		durations[e.Client] += e.Duration
	}

	clients := make([]string, 0, len(durations))
	for client := range durations {
		clients = append(clients, client)
	}
	sort.Strings(clients)

	var result Result
	for _, client := range clients {
		duration := durations[client]
		rate, known := rates.Lookup(client)
		summary := ClientSummary{Client: client, Duration: duration, Rate: rate, RateKnown: known}
		if known {
			summary.Amount = duration.Hours() * rate
			result.TotalAmount += summary.Amount
		} else {
			log.Warnf("no billing rate configured for client %q (%s hours unpriced)", client, FormatHours(duration))
			result.MissingRates = append(result.MissingRates, client)
		}
		result.TotalDuration += duration
		result.Clients = append(result.Clients, summary)
	}

	for _, e := range entries {
		if !e.Mapped() {
			continue
		}
		rate, known := rates.Lookup(e.Client)
		charge := Charge{Entry: e, Rate: rate, RateKnown: known}
		if known {
			charge.Amount = e.Duration.Hours() * rate
		}
		result.Charges = append(result.Charges, charge)
	}
	sort.SliceStable(result.Charges, func(i, j int) bool {
		a, b := result.Charges[i].Entry, result.Charges[j].Entry
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Client != b.Client {
			return a.Client < b.Client
		}
		return a.Person < b.Person
	})

	return result
}
