package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/dsg-innosource/data-platform/internal/config"
	"github.com/dsg-innosource/data-platform/internal/utils"
	"github.com/dsg-innosource/data-platform/pkg/billing"
	"github.com/dsg-innosource/data-platform/pkg/budget"
	"github.com/dsg-innosource/data-platform/pkg/period"
	"github.com/dsg-innosource/data-platform/pkg/report"
	"github.com/dsg-innosource/data-platform/pkg/timesheet"
	"github.com/dsg-innosource/data-platform/pkg/warehouse"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrNoUsableRows = errors.New("no usable rows to derive the billing period")

// ProcessRequest selects the input and period for one reconciliation run.
// Both fields are optional: the newest export is picked up by default and
// the period is derived from the data itself.
type ProcessRequest struct {
	InputPath string
	Period    period.Period
}

// RunResult summarizes a completed run for the CLI.
type RunResult struct {
	RunID         string
	Period        period.Period
	InputPath     string
	CSVPath       string
	ReportPath    string
	StatePath     string
	RowsRead      int
	RowsBillable  int
	RowsExcluded  int
	TotalDuration time.Duration
	TotalAmount   float64
	Warnings      []report.Warning
	Alerts        []budget.Outcome
	WarehouseRows int
}

type Service interface {
	Process(ctx context.Context, req ProcessRequest) (RunResult, error)
}

type ServiceImpl struct {
	cfg         config.Application
	reader      *timesheet.Reader
	normalizer  *timesheet.Normalizer
	calculator  billing.Calculator
	tracker     budget.Tracker
	sink        warehouse.Sink
	clock       utils.Clock
	mdRenderer  *report.MarkdownRendererImpl
	csvRenderer *report.CsvExtractRendererImpl
}

func NewService(
	cfg config.Application,
	reader *timesheet.Reader,
	normalizer *timesheet.Normalizer,
	calculator billing.Calculator,
	tracker budget.Tracker,
	sink warehouse.Sink,
	clock utils.Clock,
) *ServiceImpl {
	return &ServiceImpl{
		cfg:         cfg,
		reader:      reader,
		normalizer:  normalizer,
		calculator:  calculator,
		tracker:     tracker,
		sink:        sink,
		clock:       clock,
		mdRenderer:  report.NewMarkdownRenderer(),
		csvRenderer: report.NewCsvExtractRenderer(),
	}
}

// Process runs one reconciliation: read the export, normalize, price,
// reconcile budgets, write the three artifacts atomically and load the
// warehouse. Bad rows become warnings in the report; only configuration
// problems and unreadable files abort the run.
func (s *ServiceImpl) Process(ctx context.Context, req ProcessRequest) (RunResult, error) {
	rates := billing.RateTable(s.cfg.Billing.Rates)
	if err := rates.Validate(); err != nil {
		return RunResult{}, err
	}
	mapping := timesheet.Mapping(s.cfg.Billing.CategoryTransforms)
	if err := mapping.Validate(); err != nil {
		return RunResult{}, err
	}

	inputPath := req.InputPath
	if inputPath == "" {
		var err error
		inputPath, err = s.reader.NewestExport(s.cfg.Paths.RawDir)
		if err != nil {
			return RunResult{}, err
		}
	}
	log.Infof("processing export %s", inputPath)

	raw, skipped, err := s.reader.ReadFile(inputPath)
	if err != nil {
		return RunResult{}, err
	}
	results := s.normalizer.Normalize(raw)
	entries := timesheet.ParsedEntries(results)

	p := req.Period
	if p.IsZero() {
		p, err = derivePeriod(entries)
		if err != nil {
			return RunResult{}, err
		}
	}

	warnings := collectWarnings(skipped, results)
	billingResult := s.calculator.Calculate(entries, rates)

	prior := budget.StateFromConfig(s.cfg.Billing.RemainingBudget, s.cfg.Billing.BudgetStatus)
	budgetResult, err := s.tracker.Track(ctx, p, billingResult.BilledByClient(), billingResult.MissingRates, prior)
	if err != nil {
		return RunResult{}, err
	}

	rep := report.Assemble(report.Inputs{
		Period:      p,
		GeneratedAt: s.clock.Now(),
		Entries:     entries,
		Billing:     billingResult,
		Budget:      budgetResult,
		Warnings:    warnings,
	})

	csvText, err := s.csvRenderer.RenderExtract(rep)
	if err != nil {
		return RunResult{}, err
	}
	mdText, err := s.mdRenderer.RenderSummary(rep)
	if err != nil {
		return RunResult{}, err
	}
	stateText, err := budget.MarshalProposedState(p, budgetResult.NewState)
	if err != nil {
		return RunResult{}, err
	}

	csvPath, err := artifactPath(s.cfg.Paths.CleanedDir, s.cfg.Paths.CSVTemplate, p)
	if err != nil {
		return RunResult{}, err
	}
	reportPath, err := artifactPath(s.cfg.Paths.ReportsDir, s.cfg.Paths.ReportTemplate, p)
	if err != nil {
		return RunResult{}, err
	}
	statePath, err := artifactPath(s.cfg.Paths.ReportsDir, s.cfg.Paths.StateTemplate, p)
	if err != nil {
		return RunResult{}, err
	}

	// Everything is rendered; nothing has touched disk yet. This is the
	// last point a cancellation can stop the run without side effects.
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}
	err = report.WriteAll([]report.Artifact{
		{Path: csvPath, Data: []byte(csvText)},
		{Path: reportPath, Data: []byte(mdText)},
		{Path: statePath, Data: stateText},
	})
	if err != nil {
		return RunResult{}, err
	}
	log.Infof("artifacts written for %s: %s, %s, %s", p, csvPath, reportPath, statePath)

	runID := uuid.NewString()
	existing, err := s.sink.CountForPeriod(ctx, p)
	if err != nil {
		return RunResult{}, fmt.Errorf("artifacts written, but the warehouse is unreachable: %w", err)
	}
	if existing > 0 {
		log.Infof("replacing %d existing warehouse rows for %s", existing, p)
	}
	entryRows, totalRows := warehouseRows(results, billingResult)
	if err := s.sink.ReplacePeriod(ctx, p, runID, entryRows, totalRows); err != nil {
		return RunResult{}, fmt.Errorf("artifacts written, but the warehouse load failed: %w", err)
	}

	result := RunResult{
		RunID:         runID,
		Period:        p,
		InputPath:     inputPath,
		CSVPath:       csvPath,
		ReportPath:    reportPath,
		StatePath:     statePath,
		RowsRead:      len(raw) + len(skipped),
		RowsBillable:  billableCount(entries),
		TotalDuration: billingResult.TotalDuration,
		TotalAmount:   billingResult.TotalAmount,
		Warnings:      rep.Warnings,
		Alerts:        budgetResult.Alerts(),
		WarehouseRows: len(entryRows),
	}
	result.RowsExcluded = result.RowsRead - result.RowsBillable
	return result, nil
}

// derivePeriod picks the month of the earliest entry. Exports are monthly,
// so this is the billing period unless the caller overrides it.
func derivePeriod(entries []timesheet.CleanEntry) (period.Period, error) {
	var earliest time.Time
	for _, e := range entries {
		if earliest.IsZero() || e.Date.Before(earliest) {
			earliest = e.Date
		}
	}
	if earliest.IsZero() {
		return period.Period{}, ErrNoUsableRows
	}
	p := period.FromDate(earliest)
	if err := p.Validate(); err != nil {
		return period.Period{}, err
	}
	return p, nil
}

func collectWarnings(skipped []timesheet.SkippedRow, results []timesheet.RowResult) []report.Warning {
	var warnings []report.Warning
	for _, row := range skipped {
		warnings = append(warnings, report.Warning{
			Kind:    report.WarnParseFailure,
			Message: fmt.Sprintf("row %d skipped: %s", row.Line, row.Reason),
		})
	}
	for _, failure := range timesheet.Failures(results) {
		who := failure.Raw.Person
		if who == "" {
			who = "unknown person"
		}
		warnings = append(warnings, report.Warning{
			Kind:    report.WarnParseFailure,
			Message: fmt.Sprintf("row %d (%s): %s, excluded from all totals", failure.Raw.Line, who, failure.Problem),
		})
	}
	unmapped := 0
	for _, r := range results {
		if r.Outcome == timesheet.RowUnmappedCategory {
			unmapped++
		}
	}
	if unmapped > 0 {
		tags := timesheet.UnmappedTags(results)
		warnings = append(warnings, report.Warning{
			Kind:    report.WarnUnmappedCategory,
			Message: fmt.Sprintf("%d entries with unmapped category tags: %s", unmapped, strings.Join(tags, ", ")),
		})
	}
	return warnings
}

func billableCount(entries []timesheet.CleanEntry) int {
	count := 0
	for _, e := range entries {
		if e.Mapped() {
			count++
		}
	}
	return count
}

// warehouseRows shapes the run for the bronze layer: every parsed entry,
// with its raw category preserved, plus the priced per-client totals.
func warehouseRows(results []timesheet.RowResult, billingResult billing.Result) ([]warehouse.EntryRow, []warehouse.ClientPeriodRow) {
	var entryRows []warehouse.EntryRow
	for _, r := range results {
		if r.Outcome == timesheet.RowParseFailure {
			continue
		}
		entryRows = append(entryRows, warehouse.EntryRow{
			Date:     r.Entry.Date,
			Client:   r.Entry.Client,
			Category: r.Raw.RawCategory,
			Person:   r.Entry.Person,
			Hours:    r.Entry.Hours(),
			Task:     r.Entry.Task,
			TaskID:   r.Entry.TaskID,
		})
	}
	var totalRows []warehouse.ClientPeriodRow
	for _, c := range billingResult.Clients {
		if !c.RateKnown {
			continue
		}
		totalRows = append(totalRows, warehouse.ClientPeriodRow{
			Client: c.Client,
			Hours:  c.Hours(),
			Amount: c.Amount,
		})
	}
	return entryRows, totalRows
}

func artifactPath(dir, tmpl string, p period.Period) (string, error) {
	t, err := template.New("artifact").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parsing artifact name template %q: %w", tmpl, err)
	}
	data := struct {
		Period string
		Year   int
		Month  int
	}{Period: p.String(), Year: p.Year, Month: int(p.Month)}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering artifact name %q: %w", tmpl, err)
	}
	return filepath.Join(dir, b.String()), nil
}
