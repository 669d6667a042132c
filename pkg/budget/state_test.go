package budget

import (
	"strings"
	"testing"

	"github.com/dsg-innosource/data-platform/pkg/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalProposedState(t *testing.T) {
	// given
	state := State{
		"Job News":             {Remaining: -150.00, Status: StatusAlert},
		"Tri County Home Care": {Remaining: 2775.00, Status: StatusOK},
	}

	// when
	out, err := MarshalProposedState(period.Period{Year: 2025, Month: 9}, state)

	// then the document mirrors the configuration shape
	require.NoError(t, err)
	text := string(out)
	assert.True(t, strings.HasPrefix(text, "# Proposed budget baseline after 2025-09."))
	assert.Contains(t, text, "billing:")
	assert.Contains(t, text, "remaining_budget:")
	assert.Contains(t, text, "budget_status:")
	assert.Contains(t, text, "Job News: -150")
	assert.Contains(t, text, "Job News: alert")
	assert.Contains(t, text, "Tri County Home Care: 2775")
	assert.Contains(t, text, "Tri County Home Care: ok")
}

func TestMarshalProposedState_roundsToCents(t *testing.T) {
	// given a remaining amount with float dust
	state := State{"Acme": {Remaining: 666.6700000000001, Status: StatusOK}}

	// when
	out, err := MarshalProposedState(period.Period{Year: 2025, Month: 9}, state)

	// then
	require.NoError(t, err)
	assert.Contains(t, string(out), "Acme: 666.67")
}

func TestMarshalProposedState_deterministicOutput(t *testing.T) {
	// given
	state := State{
		"B Client": {Remaining: 10, Status: StatusOK},
		"A Client": {Remaining: 20, Status: StatusOK},
		"C Client": {Remaining: 30, Status: StatusAlert},
	}
	p := period.Period{Year: 2025, Month: 9}

	// when marshalled repeatedly
	first, err := MarshalProposedState(p, state)
	require.NoError(t, err)
	second, err := MarshalProposedState(p, state)
	require.NoError(t, err)

	// then byte identical
	assert.Equal(t, first, second)
}
