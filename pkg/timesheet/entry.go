package timesheet

import "time"

// TimeEntry is one raw row from a time-tracking export. Values are kept
// exactly as found in the file; nothing is parsed yet.
type TimeEntry struct {
	Person      string
	RawDate     string
	RawDuration string
	RawCategory string
	Task        string
	TaskID      string
	Line        int
}

// CleanEntry is a normalized entry ready for billing. Client is empty when
// the category tag had no mapping to a canonical client.
type CleanEntry struct {
	Person   string
	Date     time.Time
	Duration time.Duration
	Client   string
	Task     string
	TaskID   string
}

func (e CleanEntry) Hours() float64 {
	return e.Duration.Hours()
}

func (e CleanEntry) Mapped() bool {
	return e.Client != ""
}
