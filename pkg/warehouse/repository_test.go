package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/dsg-innosource/data-platform/internal/test_utils"
	"github.com/dsg-innosource/data-platform/pkg/period"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepository creates a test repository with a fresh database
func setupTestRepository(t *testing.T) *SQLRepository {
	db := test_utils.SetupTestDB(t)
	return NewSQLRepository(db, DialectSQLite)
}

func testEntry(day int, client, category, person string, hours float64) EntryRow {
	return EntryRow{
		Date:     time.Date(2025, time.September, day, 0, 0, 0, 0, time.UTC),
		Client:   client,
		Category: category,
		Person:   person,
		Hours:    hours,
		Task:     "Task",
		TaskID:   "T-1",
	}
}

func TestSQLRepository_ReplacePeriod(t *testing.T) {
	// Setup
	repository := setupTestRepository(t)
	ctx := context.Background()
	september := period.Period{Year: 2025, Month: time.September}

	// Given
	runID := uuid.NewString()
	entries := []EntryRow{
		testEntry(1, "Job News", "BILLABLE - JN", "Alice", 2.0),
		testEntry(3, "", "INTERNAL - OPS", "Carol", 0.75),
	}
	totals := []ClientPeriodRow{
		{Client: "Job News", Hours: 2.0, Amount: 350.00},
	}

	// When
	err := repository.ReplacePeriod(ctx, september, runID, entries, totals)

	// Then
	require.NoError(t, err)
	count, err := repository.CountForPeriod(ctx, september)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Unmapped rows keep their raw category and an empty client
	var client, category, storedRunID string
	err = repository.db.QueryRow(
		`SELECT client, category, run_id FROM bronze_time_entries WHERE person = 'Carol'`,
	).Scan(&client, &category, &storedRunID)
	require.NoError(t, err)
	assert.Equal(t, "", client)
	assert.Equal(t, "INTERNAL - OPS", category)
	assert.Equal(t, runID, storedRunID)
}

func TestSQLRepository_ReplacePeriod_rerunLeavesOneCopy(t *testing.T) {
	// Setup
	repository := setupTestRepository(t)
	ctx := context.Background()
	september := period.Period{Year: 2025, Month: time.September}

	// Given a period already loaded by an earlier run
	firstRun := uuid.NewString()
	require.NoError(t, repository.ReplacePeriod(ctx, september, firstRun,
		[]EntryRow{
			testEntry(1, "Job News", "BILLABLE - JN", "Alice", 2.0),
			testEntry(2, "Tri County Home Care", "BILLABLE - VA", "Bob", 1.5),
		},
		[]ClientPeriodRow{
			{Client: "Job News", Hours: 2.0, Amount: 350.00},
			{Client: "Tri County Home Care", Hours: 1.5, Amount: 225.00},
		}))

	// When the period is reprocessed with corrected data
	secondRun := uuid.NewString()
	err := repository.ReplacePeriod(ctx, september, secondRun,
		[]EntryRow{
			testEntry(1, "Job News", "BILLABLE - JN", "Alice", 3.0),
		},
		[]ClientPeriodRow{
			{Client: "Job News", Hours: 3.0, Amount: 525.00},
		})

	// Then exactly one copy of the period remains, under the new run
	require.NoError(t, err)
	count, err := repository.CountForPeriod(ctx, september)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var runs int
	err = repository.db.QueryRow(
		`SELECT COUNT(DISTINCT run_id) FROM bronze_time_entries WHERE period = '2025-09'`,
	).Scan(&runs)
	require.NoError(t, err)
	assert.Equal(t, 1, runs)

	var amount float64
	err = repository.db.QueryRow(
		`SELECT amount FROM bronze_client_periods WHERE period = '2025-09' AND client = 'Job News'`,
	).Scan(&amount)
	require.NoError(t, err)
	assert.InDelta(t, 525.00, amount, 1e-9)
}

func TestSQLRepository_ReplacePeriod_emptyRunClearsPeriod(t *testing.T) {
	// Setup
	repository := setupTestRepository(t)
	ctx := context.Background()
	september := period.Period{Year: 2025, Month: time.September}
	require.NoError(t, repository.ReplacePeriod(ctx, september, uuid.NewString(),
		[]EntryRow{testEntry(1, "Job News", "BILLABLE - JN", "Alice", 2.0)},
		[]ClientPeriodRow{{Client: "Job News", Hours: 2.0, Amount: 350.00}}))

	// When
	err := repository.ReplacePeriod(ctx, september, uuid.NewString(), nil, nil)

	// Then
	require.NoError(t, err)
	count, err := repository.CountForPeriod(ctx, september)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLRepository_CountForPeriod_emptyWarehouse(t *testing.T) {
	// Setup
	repository := setupTestRepository(t)

	// When
	count, err := repository.CountForPeriod(context.Background(), period.Period{Year: 2025, Month: time.September})

	// Then
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLRepository_BilledAmounts(t *testing.T) {
	// Setup
	repository := setupTestRepository(t)
	ctx := context.Background()

	// Given three loaded months for one client, noise from another client,
	// and a row in the queried period itself
	seed := []struct {
		p      period.Period
		totals []ClientPeriodRow
	}{
		{period.Period{Year: 2025, Month: time.June}, []ClientPeriodRow{
			{Client: "Tri County Home Care", Hours: 2.0, Amount: 300.00},
			{Client: "Job News", Hours: 1.0, Amount: 175.00},
		}},
		{period.Period{Year: 2025, Month: time.July}, []ClientPeriodRow{
			{Client: "Tri County Home Care", Hours: 1.5, Amount: 250.00},
		}},
		{period.Period{Year: 2025, Month: time.August}, []ClientPeriodRow{
			{Client: "Tri County Home Care", Hours: 2.5, Amount: 400.00},
		}},
		{period.Period{Year: 2025, Month: time.September}, []ClientPeriodRow{
			{Client: "Tri County Home Care", Hours: 1.5, Amount: 225.00},
		}},
	}
	for _, s := range seed {
		require.NoError(t, repository.ReplacePeriod(ctx, s.p, uuid.NewString(), nil, s.totals))
	}
	september := period.Period{Year: 2025, Month: time.September}

	tests := []struct {
		name  string
		limit int
		want  []float64
	}{
		{
			name:  "newest first, capped at limit",
			limit: 2,
			want:  []float64{400.00, 250.00},
		},
		{
			name:  "limit beyond history returns what exists",
			limit: 10,
			want:  []float64{400.00, 250.00, 300.00},
		},
		{
			name:  "zero limit returns nothing",
			limit: 0,
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When
			amounts, err := repository.BilledAmounts(ctx, "Tri County Home Care", september, tt.limit)

			// Then the queried period itself and other clients are excluded
			require.NoError(t, err)
			assert.Equal(t, tt.want, amounts)
		})
	}
}

func TestSQLRepository_BilledAmounts_unknownClient(t *testing.T) {
	// Setup
	repository := setupTestRepository(t)

	// When
	amounts, err := repository.BilledAmounts(context.Background(), "Nobody", period.Period{Year: 2025, Month: time.September}, 3)

	// Then
	require.NoError(t, err)
	assert.Empty(t, amounts)
}
