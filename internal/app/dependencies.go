package app

import (
	"database/sql"

	"github.com/dsg-innosource/data-platform/internal/config"
	"github.com/dsg-innosource/data-platform/internal/utils"
	"github.com/dsg-innosource/data-platform/pkg/archive"
	"github.com/dsg-innosource/data-platform/pkg/billing"
	"github.com/dsg-innosource/data-platform/pkg/budget"
	"github.com/dsg-innosource/data-platform/pkg/pipeline"
	"github.com/dsg-innosource/data-platform/pkg/timesheet"
	"github.com/dsg-innosource/data-platform/pkg/warehouse"
)

// Dependencies holds all services for the application.
type Dependencies struct {
	Reader     *timesheet.Reader
	Normalizer *timesheet.Normalizer
	Calculator billing.Calculator
	Tracker    budget.Tracker
	Sink       warehouse.Sink
	Pipeline   pipeline.Service
	Archiver   archive.Archiver
	Clock      utils.Clock
}

// BuildDependencies initializes and wires all application services. A nil
// db means the warehouse is disabled: loads go to an in-memory sink and
// burn rates see no history beyond the current period.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	if db != nil {
		deps.Sink = warehouse.NewSQLRepository(db, dialectFor(cfg.Warehouse.Engine))
	} else {
		deps.Sink = warehouse.NewStubSink()
	}

	deps.Clock = &utils.SystemClock{}
	deps.Reader = timesheet.NewReader(cfg.Billing.ColumnMapping)
	deps.Normalizer = timesheet.NewNormalizer(timesheet.Mapping(cfg.Billing.CategoryTransforms))
	deps.Calculator = billing.NewCalculator()
	deps.Tracker = budget.NewTracker(deps.Sink, budget.Config{
		AlertThresholdMonths: cfg.Billing.AlertThresholdMonths,
		LookbackPeriods:      cfg.Billing.BurnLookbackPeriods,
		IncludeCurrent:       cfg.Billing.BurnIncludeCurrent,
	})
	deps.Pipeline = pipeline.NewService(cfg, deps.Reader, deps.Normalizer, deps.Calculator, deps.Tracker, deps.Sink, deps.Clock)
	deps.Archiver = archive.NewArchiver(archive.Dirs{
		RawDir:     cfg.Paths.RawDir,
		CleanedDir: cfg.Paths.CleanedDir,
		ReportsDir: cfg.Paths.ReportsDir,
	})

	return deps
}

func dialectFor(engine string) warehouse.Dialect {
	if engine == config.EnginePostgres {
		return warehouse.DialectPostgres
	}
	return warehouse.DialectSQLite
}
