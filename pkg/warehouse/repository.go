package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dsg-innosource/data-platform/pkg/period"
	log "github.com/sirupsen/logrus"
)

// Sink accepts reconciled rows for the warehouse bronze layer and serves
// the billing history read back by the budget tracker.
type Sink interface {
	// ReplacePeriod loads the period's rows, replacing whatever an earlier
	// run left there. Delete and insert run in one transaction so a rerun
	// can never double count a period.
	ReplacePeriod(ctx context.Context, p period.Period, runID string, entries []EntryRow, totals []ClientPeriodRow) error
	CountForPeriod(ctx context.Context, p period.Period) (int, error)
	// BilledAmounts returns the client's billed totals from periods before
	// the given one, newest first, at most limit values.
	BilledAmounts(ctx context.Context, client string, before period.Period, limit int) ([]float64, error)
	Close() error
}

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLRepository(db *sql.DB, dialect Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) ReplacePeriod(ctx context.Context, p period.Period, runID string, entries []EntryRow, totals []ClientPeriodRow) error {
	label := p.String()
	loadedAt := time.Now().UTC().Format(time.RFC3339)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting warehouse transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.rebind(`DELETE FROM bronze_time_entries WHERE period = ?`), label); err != nil {
		return fmt.Errorf("clearing time entries for %s: %w", label, err)
	}
	if _, err := tx.ExecContext(ctx, r.rebind(`DELETE FROM bronze_client_periods WHERE period = ?`), label); err != nil {
		return fmt.Errorf("clearing client periods for %s: %w", label, err)
	}

	insertEntry := r.rebind(`INSERT INTO bronze_time_entries (
                    period,
                    entry_date,
                    client,
                    category,
                    person,
                    billable_hours,
                    task,
                    task_id,
                    run_id,
                    loaded_at
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, e := range entries {
		_, err := tx.ExecContext(ctx, insertEntry,
			label,
			e.Date.Format("2006-01-02"),
			e.Client,
			e.Category,
			e.Person,
			e.Hours,
			e.Task,
			e.TaskID,
			runID,
			loadedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting time entry: %w", err)
		}
	}

	insertTotal := r.rebind(`INSERT INTO bronze_client_periods (
                    period,
                    client,
                    billable_hours,
                    amount,
                    run_id,
                    loaded_at
                ) VALUES (?, ?, ?, ?, ?, ?)`)
	for _, t := range totals {
		_, err := tx.ExecContext(ctx, insertTotal,
			label,
			t.Client,
			t.Hours,
			t.Amount,
			runID,
			loadedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting client period: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing warehouse load for %s: %w", label, err)
	}
	log.Infof("warehouse load complete for %s: %d entries, %d client totals (run %s)", label, len(entries), len(totals), runID)
	return nil
}

func (r *SQLRepository) CountForPeriod(ctx context.Context, p period.Period) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		r.rebind(`SELECT COUNT(*) FROM bronze_time_entries WHERE period = ?`), p.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting warehouse rows for %s: %w", p, err)
	}
	return count, nil
}

func (r *SQLRepository) BilledAmounts(ctx context.Context, client string, before period.Period, limit int) ([]float64, error) {
	if limit <= 0 {
		return nil, nil
	}
	// Period labels are YYYY-MM, so lexicographic order is chronological.
	rows, err := r.db.QueryContext(ctx, r.rebind(`
        SELECT amount FROM bronze_client_periods
        WHERE client = ? AND period < ?
        ORDER BY period DESC
        LIMIT ?`), client, before.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("loading billing history for %q: %w", client, err)
	}
	defer rows.Close()

	var amounts []float64
	for rows.Next() {
		var amount float64
		if err := rows.Scan(&amount); err != nil {
			return nil, fmt.Errorf("scanning billing history: %w", err)
		}
		amounts = append(amounts, amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading billing history: %w", err)
	}
	return amounts, nil
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind rewrites ? placeholders to the $n form postgres expects. The
// queries are written once with ? and stay engine neutral.
func (r *SQLRepository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
