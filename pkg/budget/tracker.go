package budget

import (
	"context"
	"fmt"
	"sort"

	"github.com/dsg-innosource/data-platform/pkg/period"
	log "github.com/sirupsen/logrus"
)

// History supplies billed amounts from periods before the one being
// processed, newest first. The warehouse implements this; when the
// warehouse is disabled an empty history is fine and burn projection
// simply degrades to the current period alone.
type History interface {
	BilledAmounts(ctx context.Context, client string, before period.Period, limit int) ([]float64, error)
}

// Config tunes burn rate projection and alerting.
type Config struct {
	// AlertThresholdMonths flags a client when the projected months of
	// budget left drop below it.
	AlertThresholdMonths float64
	// LookbackPeriods is the width of the trailing window the burn rate
	// averages over.
	LookbackPeriods int
	// IncludeCurrent counts the period being processed as the newest
	// window sample.
	IncludeCurrent bool
}

// Outcome is one client's reconciliation result for the period.
type Outcome struct {
	Client          string
	Billed          float64
	StartRemaining  float64
	EndRemaining    float64
	BurnRate        float64
	MonthsRemaining float64
	// NoBurn means the window averaged to zero spend, so no depletion
	// projection is possible. MonthsRemaining is meaningless then.
	NoBurn     bool
	PrevStatus Status
	Status     Status
}

func (o Outcome) Alert() bool {
	return o.Status == StatusAlert
}

func (o Outcome) Overrun() bool {
	return o.EndRemaining < 0
}

// Result carries every client outcome plus the state the next period
// should start from. The prior state handed to Track is left untouched.
type Result struct {
	Period   period.Period
	Outcomes []Outcome
	NewState State
}

func (r Result) Alerts() []Outcome {
	var alerts []Outcome
	for _, o := range r.Outcomes {
		if o.Alert() {
			alerts = append(alerts, o)
		}
	}
	return alerts
}

type Tracker interface {
	// Track reconciles the period's billed amounts against the prior
	// budget state. billed must only contain clients whose amount could
	// actually be priced; clients whose rate was missing go in skip so
	// their position is carried forward untouched instead of being
	// treated as zero spend.
	Track(ctx context.Context, p period.Period, billed map[string]float64, skip []string, prior State) (Result, error)
}

type TrackerImpl struct {
	history History
	cfg     Config
}

func NewTracker(history History, cfg Config) *TrackerImpl {
	return &TrackerImpl{history: history, cfg: cfg}
}

func (t *TrackerImpl) Track(ctx context.Context, p period.Period, billed map[string]float64, skip []string, prior State) (Result, error) {
	skipped := make(map[string]bool, len(skip))
	for _, client := range skip {
		skipped[client] = true
	}

	clients := map[string]bool{}
	for client := range billed {
		clients[client] = true
	}
	for client := range prior {
		clients[client] = true
	}
	ordered := make([]string, 0, len(clients))
	for client := range clients {
		if !skipped[client] {
			ordered = append(ordered, client)
		}
	}
	sort.Strings(ordered)

	result := Result{Period: p, NewState: prior.Clone()}
	for _, client := range ordered {
		outcome, err := t.reconcile(ctx, p, client, billed[client], prior)
		if err != nil {
			return Result{}, err
		}
		result.Outcomes = append(result.Outcomes, outcome)
		result.NewState[client] = ClientBudget{Remaining: outcome.EndRemaining, Status: outcome.Status}
		if outcome.Alert() && outcome.PrevStatus != StatusAlert {
			log.Warnf("budget alert for %q: %.2f remaining after %s", client, outcome.EndRemaining, p)
		}
	}
	return result, nil
}

func (t *TrackerImpl) reconcile(ctx context.Context, p period.Period, client string, billed float64, prior State) (Outcome, error) {
	outcome := Outcome{
		Client:         client,
		Billed:         billed,
		StartRemaining: prior.Remaining(client),
		PrevStatus:     prior.StatusOf(client),
	}
	outcome.EndRemaining = outcome.StartRemaining - billed

	burn, noBurn, err := t.burnRate(ctx, p, client, billed)
	if err != nil {
		return Outcome{}, err
	}
	outcome.BurnRate = burn
	outcome.NoBurn = noBurn
	if !noBurn {
		outcome.MonthsRemaining = outcome.EndRemaining / burn
	}

	switch {
	case outcome.EndRemaining < 0:
		outcome.Status = StatusAlert
	case !noBurn && outcome.MonthsRemaining < t.cfg.AlertThresholdMonths:
		outcome.Status = StatusAlert
	default:
		outcome.Status = StatusOK
	}
	return outcome, nil
}

// burnRate averages spend over the trailing window. Periods absent from
// history shrink the window; they are never counted as zero spend.
func (t *TrackerImpl) burnRate(ctx context.Context, p period.Period, client string, billed float64) (float64, bool, error) {
	var window []float64
	lookback := t.cfg.LookbackPeriods
	if t.cfg.IncludeCurrent {
		window = append(window, billed)
		lookback--
	}
	if lookback > 0 {
		past, err := t.history.BilledAmounts(ctx, client, p, lookback)
		if err != nil {
			return 0, false, fmt.Errorf("loading billing history for %q: %w", client, err)
		}
		window = append(window, past...)
	}
	if len(window) == 0 {
		return 0, true, nil
	}
	sum := 0.0
	for _, amount := range window {
		sum += amount
	}
	burn := sum / float64(len(window))
	return burn, burn <= 0, nil
}
