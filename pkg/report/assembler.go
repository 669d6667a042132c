package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/dsg-innosource/data-platform/pkg/billing"
	"github.com/dsg-innosource/data-platform/pkg/budget"
	"github.com/dsg-innosource/data-platform/pkg/period"
	"github.com/dsg-innosource/data-platform/pkg/timesheet"
)

// Inputs bundles everything one run produced for the report.
type Inputs struct {
	Period      period.Period
	GeneratedAt time.Time
	// Entries are all parsed rows, mapped and unmapped.
	Entries  []timesheet.CleanEntry
	Billing  billing.Result
	Budget   budget.Result
	Warnings []Warning
}

// Assemble folds the run results into a Report. It is a pure function:
// same inputs, same report, byte for byte once rendered. Missing rate
// warnings are appended here, after the warnings handed in, so the warning
// order is always parse failures, unmapped categories, missing rates.
func Assemble(in Inputs) Report {
	r := Report{
		Period:        in.Period,
		GeneratedAt:   in.GeneratedAt,
		TotalDuration: in.Billing.TotalDuration,
		TotalAmount:   in.Billing.TotalAmount,
		Warnings:      in.Warnings,
	}

	outcomes := make(map[string]budget.Outcome, len(in.Budget.Outcomes))
	for _, o := range in.Budget.Outcomes {
		outcomes[o.Client] = o
	}

	for _, c := range in.Billing.Clients {
		row := ClientRow{
			Client:    c.Client,
			Duration:  c.Duration,
			Rate:      c.Rate,
			RateKnown: c.RateKnown,
			Amount:    c.Amount,
		}
		if o, ok := outcomes[c.Client]; ok {
			row.Tracked = true
			row.StartRemaining = o.StartRemaining
			row.EndRemaining = o.EndRemaining
			row.MonthsRemaining = o.MonthsRemaining
			row.NoBurn = o.NoBurn
			row.Alert = o.Alert()
			row.Overrun = o.Overrun()
		}
		r.Clients = append(r.Clients, row)
	}

	for _, o := range in.Budget.Outcomes {
		if !o.Alert() {
			continue
		}
		r.Alerts = append(r.Alerts, AlertRow{
			Client:          o.Client,
			Remaining:       o.EndRemaining,
			MonthsRemaining: o.MonthsRemaining,
			Overrun:         o.Overrun(),
		})
	}

	r.People = personRows(in.Entries)
	r.Monthly = monthlyRows(in.Entries, in.Billing)
	for _, charge := range in.Billing.Charges {
		r.Details = append(r.Details, DetailRow{
			Date:      charge.Entry.Date,
			Client:    charge.Entry.Client,
			Person:    charge.Entry.Person,
			Duration:  charge.Entry.Duration,
			Rate:      charge.Rate,
			RateKnown: charge.RateKnown,
			Amount:    charge.Amount,
			Task:      charge.Entry.Task,
		})
	}
	r.Extract = extractRows(in.Entries)

	for _, client := range in.Billing.MissingRates {
		r.Warnings = append(r.Warnings, Warning{
			Kind:    WarnMissingRate,
			Message: fmt.Sprintf("no billing rate configured for %q, its hours are unpriced this period", client),
		})
	}
	return r
}

func personRows(entries []timesheet.CleanEntry) []PersonRow {
	totals := map[string]time.Duration{}
	for _, e := range entries {
		if !e.Mapped() {
			continue
		}
		totals[e.Person] += e.Duration
	}
	rows := make([]PersonRow, 0, len(totals))
	for person, d := range totals {
		rows = append(rows, PersonRow{Person: person, Duration: d})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Person < rows[j].Person })
	return rows
}

func monthlyRows(entries []timesheet.CleanEntry, bill billing.Result) []MonthlyRow {
	rates := map[string]billing.ClientSummary{}
	for _, c := range bill.Clients {
		rates[c.Client] = c
	}
	type key struct{ client, month string }
	totals := map[key]time.Duration{}
	for _, e := range entries {
		if !e.Mapped() {
			continue
		}
		totals[key{e.Client, period.FromDate(e.Date).String()}] += e.Duration
	}
	rows := make([]MonthlyRow, 0, len(totals))
	for k, d := range totals {
		row := MonthlyRow{Client: k.client, Month: k.month, Duration: d}
		if summary, ok := rates[k.client]; ok && summary.RateKnown {
			row.RateKnown = true
			row.Amount = d.Hours() * summary.Rate
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Client != rows[j].Client {
			return rows[i].Client < rows[j].Client
		}
		return rows[i].Month < rows[j].Month
	})
	return rows
}

func extractRows(entries []timesheet.CleanEntry) []ExtractRow {
	rows := make([]ExtractRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ExtractRow{
			Date:        e.Date,
			PeriodLabel: period.FromDate(e.Date).String(),
			Client:      e.Client,
			Person:      e.Person,
			Duration:    e.Duration,
			Task:        e.Task,
			TaskID:      e.TaskID,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}
