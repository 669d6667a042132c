package report

import (
	"time"

	"github.com/dsg-innosource/data-platform/pkg/period"
)

// WarningKind classifies the data quality findings a run surfaces to the
// operator. Warnings are part of the report, never a reason to abort.
type WarningKind string

const (
	WarnParseFailure     WarningKind = "parse failure"
	WarnUnmappedCategory WarningKind = "unmapped category"
	WarnMissingRate      WarningKind = "missing rate"
)

// Warning is one operator-facing finding about the input data.
type Warning struct {
	Kind    WarningKind
	Message string
}

// ClientRow is one client's line in the summary table. Tracked is false
// when the budget position could not be reconciled because the rate was
// missing; the budget columns are meaningless then.
type ClientRow struct {
	Client          string
	Duration        time.Duration
	Rate            float64
	RateKnown       bool
	Amount          float64
	StartRemaining  float64
	EndRemaining    float64
	MonthsRemaining float64
	NoBurn          bool
	Tracked         bool
	Alert           bool
	Overrun         bool
}

// AlertRow is one budget alert. Alerts can cover clients with no activity
// this period, so this is not a subset of the client rows.
type AlertRow struct {
	Client          string
	Remaining       float64
	MonthsRemaining float64
	Overrun         bool
}

type PersonRow struct {
	Person   string
	Duration time.Duration
}

type MonthlyRow struct {
	Client    string
	Month     string
	Duration  time.Duration
	Amount    float64
	RateKnown bool
}

// DetailRow is one priced entry in the detailed billing log.
type DetailRow struct {
	Date      time.Time
	Client    string
	Person    string
	Duration  time.Duration
	Rate      float64
	RateKnown bool
	Amount    float64
	Task      string
}

// ExtractRow is one line of the accounting CSV. Every parsed row appears
// here, including unmapped ones (with an empty client), so accounting sees
// the full cleaned dataset.
type ExtractRow struct {
	Date        time.Time
	PeriodLabel string
	Client      string
	Person      string
	Duration    time.Duration
	Task        string
	TaskID      string
}

// Report is the fully assembled model of one reconciliation run. Renderers
// only format it; everything is already ordered deterministically.
type Report struct {
	Period        period.Period
	GeneratedAt   time.Time
	Clients       []ClientRow
	Alerts        []AlertRow
	People        []PersonRow
	Monthly       []MonthlyRow
	Details       []DetailRow
	Extract       []ExtractRow
	TotalDuration time.Duration
	TotalAmount   float64
	Warnings      []Warning
}
