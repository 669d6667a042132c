package utils

import "time"

// Clock abstracts time.Now so report timestamps can be pinned in tests.
// Rendering the same run twice must produce byte identical artifacts, and
// that only holds with an injected clock.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant until moved with SetNow.
type FixedClock struct {
	FixedNow time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.FixedNow
}

func (c *FixedClock) SetNow(now time.Time) {
	c.FixedNow = now
}
