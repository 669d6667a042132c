package period

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const label = "2006-01"

var ErrInvalidPeriod = errors.New("invalid billing period")

// Period identifies one calendar month of billing activity.
type Period struct {
	Year  int
	Month time.Month
}

func New(year int, month int) (Period, error) {
	p := Period{Year: year, Month: time.Month(month)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Parse reads a period label in YYYY-MM form.
func Parse(s string) (Period, error) {
	t, err := time.Parse(label, s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return New(t.Year(), int(t.Month()))
}

// FromParts reads a period from separate year and month arguments,
// as passed on the command line.
func FromParts(year string, month string) (Period, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return Period{}, fmt.Errorf("%w: year %q", ErrInvalidPeriod, year)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return Period{}, fmt.Errorf("%w: month %q", ErrInvalidPeriod, month)
	}
	return New(y, m)
}

func FromDate(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) Validate() error {
	if p.Year < 2020 || p.Year > 2100 {
		return fmt.Errorf("%w: year %d out of range 2020-2100", ErrInvalidPeriod, p.Year)
	}
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidPeriod, int(p.Month))
	}
	return nil
}

// String renders the canonical YYYY-MM label used in artifact names,
// archive directories and warehouse rows.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Bounds returns the first and last instant of the period.
func (p Period) Bounds() (time.Time, time.Time) {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-1 * time.Nanosecond)
	return start, end
}

// Contains reports whether the date falls inside the period. Only the
// calendar day matters, the time of day and location are ignored.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

func (p Period) Prev() Period {
	start, _ := p.Bounds()
	return FromDate(start.AddDate(0, -1, 0))
}

func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}
