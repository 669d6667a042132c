package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Period
		wantErr bool
	}{
		{
			name:  "should parse a regular label",
			input: "2025-09",
			want:  Period{Year: 2025, Month: time.September},
		},
		{
			name:  "should parse december",
			input: "2024-12",
			want:  Period{Year: 2024, Month: time.December},
		},
		{
			name:    "should reject month out of range",
			input:   "2025-13",
			wantErr: true,
		},
		{
			name:    "should reject year before 2020",
			input:   "2019-06",
			wantErr: true,
		},
		{
			name:    "should reject garbage",
			input:   "september",
			wantErr: true,
		},
		{
			name:    "should reject empty string",
			input:   "",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromParts(t *testing.T) {
	tests := []struct {
		name    string
		year    string
		month   string
		want    Period
		wantErr bool
	}{
		{
			name:  "should accept plain year and month",
			year:  "2025",
			month: "9",
			want:  Period{Year: 2025, Month: time.September},
		},
		{
			name:  "should accept zero padded month",
			year:  "2025",
			month: "09",
			want:  Period{Year: 2025, Month: time.September},
		},
		{
			name:    "should reject non numeric year",
			year:    "twenty",
			month:   "9",
			wantErr: true,
		},
		{
			name:    "should reject year after 2100",
			year:    "2101",
			month:   "1",
			wantErr: true,
		},
		{
			name:    "should reject month zero",
			year:    "2025",
			month:   "0",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromParts(tt.year, tt.month)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriod_Bounds(t *testing.T) {
	// given
	p := Period{Year: 2025, Month: time.September}

	// when
	start, end := p.Bounds()

	// then
	assert.Equal(t, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.September, 30, 23, 59, 59, 999999999, time.UTC), end)
}

func TestPeriod_Bounds_leapFebruary(t *testing.T) {
	// given
	p := Period{Year: 2024, Month: time.February}

	// when
	_, end := p.Bounds()

	// then
	assert.Equal(t, 29, end.Day())
}

func TestPeriod_String(t *testing.T) {
	assert.Equal(t, "2025-09", Period{Year: 2025, Month: time.September}.String())
	assert.Equal(t, "2025-12", Period{Year: 2025, Month: time.December}.String())
}

func TestPeriod_Prev(t *testing.T) {
	assert.Equal(t, Period{Year: 2025, Month: time.August}, Period{Year: 2025, Month: time.September}.Prev())
	assert.Equal(t, Period{Year: 2024, Month: time.December}, Period{Year: 2025, Month: time.January}.Prev())
}

func TestPeriod_Contains(t *testing.T) {
	p := Period{Year: 2025, Month: time.September}
	assert.True(t, p.Contains(time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2025, time.September, 30, 23, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPeriod_Before(t *testing.T) {
	assert.True(t, Period{Year: 2025, Month: time.August}.Before(Period{Year: 2025, Month: time.September}))
	assert.True(t, Period{Year: 2024, Month: time.December}.Before(Period{Year: 2025, Month: time.January}))
	assert.False(t, Period{Year: 2025, Month: time.September}.Before(Period{Year: 2025, Month: time.September}))
}
