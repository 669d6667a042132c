package timesheet

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoMapping = errors.New("no category mapping configured")

// Mapping resolves raw category tags from the time tracker to canonical
// client names. Lookup is exact and case sensitive: tags are operator
// controlled vocabulary, and a tag that differs only in case is treated as
// a new, unmapped tag so it surfaces as a warning instead of silently
// landing on the wrong client.
type Mapping map[string]string

func (m Mapping) Resolve(rawCategory string) (string, bool) {
	client, ok := m[rawCategory]
	return client, ok
}

func (m Mapping) Validate() error {
	if len(m) == 0 {
		return ErrNoMapping
	}
	for tag, client := range m {
		if strings.TrimSpace(client) == "" {
			return fmt.Errorf("category %q maps to an empty client name", tag)
		}
	}
	return nil
}
