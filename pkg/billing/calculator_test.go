package billing

import (
	"testing"
	"time"

	"github.com/dsg-innosource/data-platform/pkg/timesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRates = RateTable{
	"Job News":            175.00,
	"Tri County Services": 150.00,
}

func entry(person string, day int, d time.Duration, client string) timesheet.CleanEntry {
	return timesheet.CleanEntry{
		Person:   person,
		Date:     time.Date(2025, time.September, day, 0, 0, 0, 0, time.UTC),
		Duration: d,
		Client:   client,
	}
}

func TestCalculatorImpl_Calculate(t *testing.T) {
	// given
	calculator := NewCalculator()
	entries := []timesheet.CleanEntry{
		entry("Alice", 3, 2*time.Hour, "Job News"),
		entry("Bob", 5, 10*time.Hour, "Tri County Services"),
		entry("Bob", 12, 8*time.Hour+30*time.Minute, "Tri County Services"),
	}

	// when
	result := calculator.Calculate(entries, testRates)

	// then clients are sorted and priced from the summed duration
	require.Len(t, result.Clients, 2)
	assert.Equal(t, ClientSummary{
		Client:    "Job News",
		Duration:  2 * time.Hour,
		Rate:      175.00,
		RateKnown: true,
		Amount:    350.00,
	}, result.Clients[0])
	assert.Equal(t, "Tri County Services", result.Clients[1].Client)
	assert.Equal(t, 18*time.Hour+30*time.Minute, result.Clients[1].Duration)
	assert.InDelta(t, 2775.00, result.Clients[1].Amount, 1e-9)

	assert.Equal(t, 20*time.Hour+30*time.Minute, result.TotalDuration)
	assert.InDelta(t, 3125.00, result.TotalAmount, 1e-9)
	assert.Empty(t, result.MissingRates)
}

func TestCalculatorImpl_Calculate_missingRate(t *testing.T) {
	// given a client with hours but no configured rate
	calculator := NewCalculator()
	entries := []timesheet.CleanEntry{
		entry("Alice", 3, 2*time.Hour, "Job News"),
		entry("Dan", 4, 5*time.Hour, "Acme Corp"),
	}

	// when
	result := calculator.Calculate(entries, testRates)

	// then the hours are kept but nothing is priced for that client
	require.Len(t, result.Clients, 2)
	acme := result.Clients[0]
	assert.Equal(t, "Acme Corp", acme.Client)
	assert.False(t, acme.RateKnown)
	assert.Equal(t, 0.0, acme.Amount)
	assert.Equal(t, 5*time.Hour, acme.Duration)

	assert.Equal(t, []string{"Acme Corp"}, result.MissingRates)
	// the grand total amount only covers priced clients
	assert.InDelta(t, 350.00, result.TotalAmount, 1e-9)
	// but the hours total covers all billable work
	assert.Equal(t, 7*time.Hour, result.TotalDuration)
}

func TestCalculatorImpl_Calculate_ignoresUnmappedEntries(t *testing.T) {
	// given an entry whose category had no client mapping
	calculator := NewCalculator()
	entries := []timesheet.CleanEntry{
		entry("Alice", 3, 2*time.Hour, "Job News"),
		entry("Carol", 9, 3*time.Hour, ""),
	}

	// when
	result := calculator.Calculate(entries, testRates)

	// then the unmapped hours appear in no total
	require.Len(t, result.Clients, 1)
	assert.Equal(t, 2*time.Hour, result.TotalDuration)
	assert.InDelta(t, 350.00, result.TotalAmount, 1e-9)
	assert.Len(t, result.Charges, 1)
}

func TestCalculatorImpl_Calculate_amountFromSummedDuration(t *testing.T) {
	// given ten six-minute entries, each 0.1h
	calculator := NewCalculator()
	var entries []timesheet.CleanEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, entry("Alice", 3, 6*time.Minute, "Job News"))
	}

	// when
	result := calculator.Calculate(entries, testRates)

	// then the sum is exactly one hour and exactly one hour's rate
	require.Len(t, result.Clients, 1)
	assert.Equal(t, time.Hour, result.Clients[0].Duration)
	assert.Equal(t, 175.00, result.Clients[0].Amount)
}

func TestCalculatorImpl_Calculate_chargesSortedByDate(t *testing.T) {
	// given entries out of order
	calculator := NewCalculator()
	entries := []timesheet.CleanEntry{
		entry("Bob", 12, time.Hour, "Tri County Services"),
		entry("Alice", 3, time.Hour, "Job News"),
		entry("Alice", 12, time.Hour, "Job News"),
	}

	// when
	result := calculator.Calculate(entries, testRates)

	// then
	require.Len(t, result.Charges, 3)
	assert.Equal(t, 3, result.Charges[0].Entry.Date.Day())
	assert.Equal(t, "Job News", result.Charges[1].Entry.Client)
	assert.Equal(t, "Tri County Services", result.Charges[2].Entry.Client)
}

func TestResult_BilledByClient(t *testing.T) {
	// given
	result := Result{Clients: []ClientSummary{
		{Client: "Job News", RateKnown: true, Amount: 350.00},
		{Client: "Acme Corp", RateKnown: false},
	}}

	// when
	billed := result.BilledByClient()

	// then only priced clients appear
	assert.Equal(t, map[string]float64{"Job News": 350.00}, billed)
}

func TestRateTable_Validate(t *testing.T) {
	assert.ErrorIs(t, RateTable{}.Validate(), ErrNoRates)
	assert.ErrorIs(t, RateTable{"X": 0}.Validate(), ErrInvalidRate)
	assert.ErrorIs(t, RateTable{"X": -10}.Validate(), ErrInvalidRate)
	assert.NoError(t, testRates.Validate())
}
