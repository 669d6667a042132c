package billing

import (
	"fmt"
	"math"
	"time"
)

// RoundCents rounds a dollar amount to whole cents, half away from zero.
// All money stays unrounded while it flows through the pipeline; rounding
// happens only here, at the display and hand-off boundary.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatUSD renders a dollar amount for reports, e.g. "$2775.00".
// Negative amounts keep the sign after the currency symbol: "$-150.00".
func FormatUSD(amount float64) string {
	return fmt.Sprintf("$%.2f", RoundCents(amount))
}

// FormatHours renders a duration as decimal hours at report precision,
// e.g. "2.50".
func FormatHours(d time.Duration) string {
	return fmt.Sprintf("%.2f", math.Round(d.Hours()*100)/100)
}
