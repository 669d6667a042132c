package report

import (
	"fmt"
	"strings"

	"github.com/dsg-innosource/data-platform/pkg/billing"
)

type MarkdownRendererImpl struct {
}

func NewMarkdownRenderer() *MarkdownRendererImpl {
	return &MarkdownRendererImpl{}
}

// RenderSummary formats the human review report. Layout is stable on
// purpose: the report is diffed month over month during review, and a run
// on unchanged input must reproduce it byte for byte.
func (r *MarkdownRendererImpl) RenderSummary(report Report) (string, error) {
	var b strings.Builder

	start, end := report.Period.Bounds()
	fmt.Fprintf(&b, "# Billing Summary Report\n\n")
	fmt.Fprintf(&b, "**Report Period:** %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04"))
	b.WriteString("---\n\n")

	b.WriteString("## Summary by Client\n\n")
	b.WriteString("| Client | Billable Hours | Rate | Amount | Starting Budget | Remaining Budget | Months Left |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, row := range report.Clients {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			row.Client,
			billing.FormatHours(row.Duration),
			rateCell(row),
			amountCell(row),
			budgetCell(row, row.StartRemaining),
			budgetCell(row, row.EndRemaining),
			monthsCell(row),
		)
	}
	fmt.Fprintf(&b, "\n**Grand Total:** %s hours (%s)\n\n",
		billing.FormatHours(report.TotalDuration), billing.FormatUSD(report.TotalAmount))

	if len(report.Alerts) > 0 {
		b.WriteString("### ⚠️ Budget Alerts\n\n")
		for _, alert := range report.Alerts {
			if alert.Overrun {
				fmt.Fprintf(&b, "- **%s**: budget overrun, %s remaining\n", alert.Client, billing.FormatUSD(alert.Remaining))
			} else {
				fmt.Fprintf(&b, "- **%s**: %.1f months of budget left (%s remaining)\n", alert.Client, alert.MonthsRemaining, billing.FormatUSD(alert.Remaining))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("---\n\n")

	b.WriteString("## Summary by Team Member\n\n")
	b.WriteString("| Team Member | Billable Hours |\n")
	b.WriteString("|---|---:|\n")
	for _, row := range report.People {
		fmt.Fprintf(&b, "| %s | %s |\n", row.Person, billing.FormatHours(row.Duration))
	}
	b.WriteString("\n---\n\n")

	b.WriteString("## Summary by Client and Month\n\n")
	b.WriteString("| Client | Month | Billable Hours | Amount |\n")
	b.WriteString("|---|---|---:|---:|\n")
	for _, row := range report.Monthly {
		amount := "n/a"
		if row.RateKnown {
			amount = billing.FormatUSD(row.Amount)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", row.Client, row.Month, billing.FormatHours(row.Duration), amount)
	}
	b.WriteString("\n---\n\n")

	b.WriteString("## Detailed Billing Log\n\n")
	b.WriteString("| Date | Client | Team Member | Hours | Rate | Amount | Task |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---|\n")
	for _, row := range report.Details {
		rate, amount := "n/a", "n/a"
		if row.RateKnown {
			rate = billing.FormatUSD(row.Rate)
			amount = billing.FormatUSD(row.Amount)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			row.Date.Format("2006-01-02"), row.Client, row.Person,
			billing.FormatHours(row.Duration), rate, amount, row.Task)
	}
	b.WriteString("\n---\n\n")

	// The warnings section is always present so its absence can never be
	// mistaken for a clean run.
	b.WriteString("## Warnings\n\n")
	if len(report.Warnings) == 0 {
		b.WriteString("No warnings.\n")
	} else {
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- [%s] %s\n", w.Kind, w.Message)
		}
	}

	return b.String(), nil
}

func rateCell(row ClientRow) string {
	if !row.RateKnown {
		return "n/a"
	}
	return billing.FormatUSD(row.Rate)
}

func amountCell(row ClientRow) string {
	if !row.RateKnown {
		return "n/a"
	}
	return billing.FormatUSD(row.Amount)
}

func budgetCell(row ClientRow, amount float64) string {
	if !row.Tracked {
		return "n/a"
	}
	return billing.FormatUSD(amount)
}

func monthsCell(row ClientRow) string {
	switch {
	case !row.Tracked:
		return "n/a"
	case row.Overrun:
		return "OVERRUN"
	case row.NoBurn:
		return "n/a"
	default:
		return fmt.Sprintf("%.1f", row.MonthsRemaining)
	}
}
