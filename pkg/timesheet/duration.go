package timesheet

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyDuration   = errors.New("empty duration")
	ErrInvalidDuration = errors.New("invalid duration")
)

var (
	// Elapsed time, not time of day: hours are unbounded, minutes and
	// seconds must stay below 60. "129:45" is valid, "2:75" is not.
	colonPattern   = regexp.MustCompile(`^(\d+):([0-5]?\d)(?::([0-5]?\d))?$`)
	decimalPattern = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	humanPattern   = regexp.MustCompile(`^(?:(\d+)\s*h)?\s*(?:(\d+)\s*m)?$`)
)

// ParseDuration reads one raw duration cell from a time-tracking export.
// Three shapes are recognized, tried in order: colon separated elapsed time
// ("2:30", "2:30:00"), decimal hours ("2.5") and the compact human form
// ("2h 30m", "45m"). Anything else, including an empty cell, is an error;
// a row with an unreadable duration must be excluded, never counted as zero.
func ParseDuration(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrEmptyDuration
	}
	if m := colonPattern.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		seconds := 0
		if m[3] != "" {
			seconds, _ = strconv.Atoi(m[3])
		}
		return time.Duration(hours)*time.Hour +
			time.Duration(minutes)*time.Minute +
			time.Duration(seconds)*time.Second, nil
	}
	if decimalPattern.MatchString(s) {
		hours, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
		}
		return time.Duration(hours * float64(time.Hour)), nil
	}
	if m := humanPattern.FindStringSubmatch(s); m != nil && (m[1] != "" || m[2] != "") {
		var d time.Duration
		if m[1] != "" {
			hours, _ := strconv.Atoi(m[1])
			d += time.Duration(hours) * time.Hour
		}
		if m[2] != "" {
			minutes, _ := strconv.Atoi(m[2])
			d += time.Duration(minutes) * time.Minute
		}
		return d, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
}
