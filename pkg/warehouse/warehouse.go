package warehouse

import "time"

// EntryRow is one time entry in the bronze layer. Category keeps the raw
// tag exactly as exported, so unmapped rows lose nothing on the way in;
// Client is the resolved name and empty when the tag had no mapping.
type EntryRow struct {
	Date     time.Time
	Client   string
	Category string
	Person   string
	Hours    float64
	Task     string
	TaskID   string
}

// ClientPeriodRow is one client's priced aggregate for a period. Only
// clients whose rate was known are loaded; unpriced hours must never feed
// the burn rate history.
type ClientPeriodRow struct {
	Client string
	Hours  float64
	Amount float64
}
