package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownRendererImpl_RenderSummary(t *testing.T) {
	// given
	renderer := NewMarkdownRenderer()
	report := Assemble(exampleInputs(t, exampleEntries(), nil))

	// when
	out, err := renderer.RenderSummary(report)

	// then
	require.NoError(t, err)
	assert.Contains(t, out, "# Billing Summary Report")
	assert.Contains(t, out, "**Report Period:** 2025-09-01 to 2025-09-30")
	assert.Contains(t, out, "**Generated:** 2025-10-01 09:15")
	assert.Contains(t, out, "| Job News | 2.00 | $175.00 | $350.00 | $200.00 | $-150.00 | OVERRUN |")
	assert.Contains(t, out, "| Tri County Home Care | 1.50 | $150.00 | $225.00 | $3000.00 | $2775.00 | 10.7 |")
	assert.Contains(t, out, "**Grand Total:** 3.50 hours ($575.00)")
	assert.Contains(t, out, "### ⚠️ Budget Alerts")
	assert.Contains(t, out, "- **Job News**: budget overrun, $-150.00 remaining")
	assert.Contains(t, out, "## Summary by Team Member")
	assert.Contains(t, out, "| Alice | 2.00 |")
	assert.Contains(t, out, "## Summary by Client and Month")
	assert.Contains(t, out, "| Job News | 2025-09 | 2.00 | $350.00 |")
	assert.Contains(t, out, "## Detailed Billing Log")
	assert.Contains(t, out, "| 2025-09-01 | Job News | Alice | 2.00 | $175.00 | $350.00 | Task A |")
}

func TestMarkdownRendererImpl_RenderSummary_warningsSectionAlwaysPresent(t *testing.T) {
	// given a clean run
	renderer := NewMarkdownRenderer()
	report := Assemble(exampleInputs(t, exampleEntries(), nil))

	// when
	out, err := renderer.RenderSummary(report)

	// then
	require.NoError(t, err)
	assert.Contains(t, out, "## Warnings")
	assert.Contains(t, out, "No warnings.")
}

func TestMarkdownRendererImpl_RenderSummary_rendersWarnings(t *testing.T) {
	// given
	renderer := NewMarkdownRenderer()
	warnings := []Warning{
		{Kind: WarnParseFailure, Message: `row 3 (Alice): duration "N/A" is not readable`},
		{Kind: WarnUnmappedCategory, Message: "2 entries with unmapped tags: INTERNAL"},
	}
	report := Assemble(exampleInputs(t, exampleEntries(), warnings))

	// when
	out, err := renderer.RenderSummary(report)

	// then
	require.NoError(t, err)
	assert.NotContains(t, out, "No warnings.")
	assert.Contains(t, out, `- [parse failure] row 3 (Alice): duration "N/A" is not readable`)
	assert.Contains(t, out, "- [unmapped category] 2 entries with unmapped tags: INTERNAL")
}

func TestMarkdownRendererImpl_RenderSummary_noAlertsSectionWhenClean(t *testing.T) {
	// given budgets far from their thresholds
	renderer := NewMarkdownRenderer()
	in := exampleInputs(t, exampleEntries(), nil)
	in.Budget.Outcomes = nil
	in.Budget.NewState = nil

	// when
	out, err := renderer.RenderSummary(Assemble(in))

	// then
	require.NoError(t, err)
	assert.NotContains(t, out, "Budget Alerts")
}

func TestMarkdownRendererImpl_RenderSummary_missingRateCells(t *testing.T) {
	// given a client without a rate
	renderer := NewMarkdownRenderer()
	entries := append(exampleEntries(), exampleEntries()[0])
	entries[2].Client = "Acme Corp"
	report := Assemble(exampleInputs(t, entries, nil))

	// when
	out, err := renderer.RenderSummary(report)

	// then the row is present with n/a money and budget cells
	require.NoError(t, err)
	assert.Contains(t, out, "| Acme Corp | 2.00 | n/a | n/a | n/a | n/a | n/a |")
	assert.Contains(t, out, "- [missing rate]")
}

func TestMarkdownRendererImpl_RenderSummary_deterministic(t *testing.T) {
	// given
	renderer := NewMarkdownRenderer()
	report := Assemble(exampleInputs(t, exampleEntries(), nil))

	// when rendered twice
	first, err := renderer.RenderSummary(report)
	require.NoError(t, err)
	second, err := renderer.RenderSummary(report)
	require.NoError(t, err)

	// then byte identical
	assert.Equal(t, first, second)
}

func TestMarkdownRendererImpl_RenderSummary_generatedAtComesFromReport(t *testing.T) {
	// given two renders a minute apart on the same report
	renderer := NewMarkdownRenderer()
	report := Assemble(exampleInputs(t, exampleEntries(), nil))
	report.GeneratedAt = time.Date(2025, time.October, 1, 9, 16, 0, 0, time.UTC)

	// when
	out, err := renderer.RenderSummary(report)

	// then the stamp is the report's, nothing reads the wall clock here
	require.NoError(t, err)
	assert.Contains(t, out, "**Generated:** 2025-10-01 09:16")
	assert.Equal(t, 1, strings.Count(out, "**Generated:**"))
}
