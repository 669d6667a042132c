package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/dsg-innosource/data-platform/pkg/timesheet"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

var ErrInvalid = errors.New("invalid configuration")

type Application struct {
	Billing   Billing   `koanf:"billing"`
	Paths     Paths     `koanf:"paths"`
	Warehouse Warehouse `koanf:"warehouse"`
}

type Billing struct {
	// ColumnMapping translates export headers to the canonical fields
	// (person, date, duration, category, task, task_id).
	ColumnMapping map[string]string `koanf:"column_mapping"`
	// CategoryTransforms maps raw category tags to canonical client names.
	CategoryTransforms map[string]string `koanf:"category_transforms"`
	// Rates are contracted hourly rates in dollars per client.
	Rates map[string]float64 `koanf:"rates"`
	// RemainingBudget and BudgetStatus carry the budget baseline between
	// periods. A run proposes updated values but never writes them back.
	RemainingBudget      map[string]float64 `koanf:"remaining_budget"`
	BudgetStatus         map[string]string  `koanf:"budget_status"`
	AlertThresholdMonths float64            `koanf:"alert_threshold_months"`
	BurnLookbackPeriods  int                `koanf:"burn_lookback_periods"`
	BurnIncludeCurrent   bool               `koanf:"burn_include_current"`
}

type Paths struct {
	RawDir     string `koanf:"raw_dir"`
	CleanedDir string `koanf:"cleaned_dir"`
	ReportsDir string `koanf:"reports_dir"`
	// Artifact name templates, rendered with {{.Period}}, {{.Year}} and
	// {{.Month}}.
	CSVTemplate    string `koanf:"csv_template"`
	ReportTemplate string `koanf:"report_template"`
	StateTemplate  string `koanf:"state_template"`
}

type Warehouse struct {
	Enabled bool   `koanf:"enabled"`
	Engine  string `koanf:"engine"`
	Path    string `koanf:"path"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
	User    string `koanf:"user"`
	Pass    string `koanf:"pass"`
	Name    string `koanf:"name"`
	Schema  string `koanf:"schema"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Billing: Billing{
			ColumnMapping: map[string]string{
				"Username":          "person",
				"Start Text":        "date",
				"Time Tracked Text": "duration",
				"CATEGORY":          "category",
				"Task Name":         "task",
				"Custom Task ID":    "task_id",
			},
			AlertThresholdMonths: 2.0,
			BurnLookbackPeriods:  3,
			BurnIncludeCurrent:   true,
		},
		Paths: Paths{
			RawDir:         "raw/clickup_billing",
			CleanedDir:     "output/monthly_billing/cleaned",
			ReportsDir:     "output/monthly_billing/reports",
			CSVTemplate:    "billing_report_{{.Period}}.csv",
			ReportTemplate: "billing_summary_{{.Period}}.md",
			StateTemplate:  "budget_state_{{.Period}}.yaml",
		},
		Warehouse: Warehouse{
			Enabled: true,
			Engine:  EngineSQLite,
			Path:    "data/warehouse.db",
			Host:    "localhost",
			Port:    5432,
			User:    "billing",
			Name:    "billing",
			Schema:  "public",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "BILLING_",
		TransformFunc: func(k, v string) (string, any) {
			// Keys are section_key; only the first underscore separates
			// the section, the rest belongs to the key itself
			// (BILLING_PATHS_RAW_DIR -> paths.raw_dir).
			k = strings.Replace(strings.ToLower(strings.TrimPrefix(k, "BILLING_")), "_", ".", 1)
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

// Validate rejects configurations the pipeline could not run with. It is
// called once at startup, before any input row is read.
func (a Application) Validate() error {
	if len(a.Billing.Rates) == 0 {
		return fmt.Errorf("%w: billing.rates is empty, no billing rates configured", ErrInvalid)
	}
	for client, rate := range a.Billing.Rates {
		if rate <= 0 {
			return fmt.Errorf("%w: billing.rates[%q] must be positive, got %v", ErrInvalid, client, rate)
		}
	}
	if len(a.Billing.CategoryTransforms) == 0 {
		return fmt.Errorf("%w: billing.category_transforms is empty, no category mapping configured", ErrInvalid)
	}
	for tag, client := range a.Billing.CategoryTransforms {
		if strings.TrimSpace(client) == "" {
			return fmt.Errorf("%w: billing.category_transforms[%q] maps to an empty client", ErrInvalid, tag)
		}
	}

	covered := map[string]bool{}
	for _, field := range a.Billing.ColumnMapping {
		covered[field] = true
	}
	for _, field := range timesheet.RequiredFields() {
		if !covered[field] {
			return fmt.Errorf("%w: billing.column_mapping does not cover the %q field", ErrInvalid, field)
		}
	}

	if a.Billing.AlertThresholdMonths <= 0 {
		return fmt.Errorf("%w: billing.alert_threshold_months must be positive", ErrInvalid)
	}
	if a.Billing.BurnLookbackPeriods < 1 {
		return fmt.Errorf("%w: billing.burn_lookback_periods must be at least 1", ErrInvalid)
	}

	for name, tmpl := range map[string]string{
		"paths.csv_template":    a.Paths.CSVTemplate,
		"paths.report_template": a.Paths.ReportTemplate,
		"paths.state_template":  a.Paths.StateTemplate,
	} {
		if _, err := template.New(name).Parse(tmpl); err != nil {
			return fmt.Errorf("%w: %s does not parse: %v", ErrInvalid, name, err)
		}
	}

	if a.Warehouse.Enabled {
		switch a.Warehouse.Engine {
		case EngineSQLite:
			if a.Warehouse.Path == "" {
				return fmt.Errorf("%w: warehouse.path is required for the sqlite engine", ErrInvalid)
			}
		case EnginePostgres:
			if a.Warehouse.Host == "" || a.Warehouse.Name == "" || a.Warehouse.User == "" {
				return fmt.Errorf("%w: warehouse host, name and user are required for the postgres engine", ErrInvalid)
			}
		default:
			return fmt.Errorf("%w: unknown warehouse.engine %q", ErrInvalid, a.Warehouse.Engine)
		}
	}
	return nil
}
