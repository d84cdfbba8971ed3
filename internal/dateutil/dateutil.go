package dateutil

import (
	"time"

	"github.com/araddon/dateparse"
)

const (
	InvalidDate = "Invalid date"

	dateLayout     = "Jan 02, 2006"
	dateTimeLayout = "Jan 02, 2006 at 3:04 PM"
)

// FormatDate renders an ISO-ish date string as "Mar 01, 2024".
func FormatDate(s string) string {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return InvalidDate
	}
	return t.Format(dateLayout)
}

// FormatDateWithTime renders a timestamp string as "Mar 01, 2024 at 9:30 AM".
func FormatDateWithTime(s string) string {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return InvalidDate
	}
	return t.Format(dateTimeLayout)
}

// Format is FormatDate for values that are already parsed. Nil or zero
// times are reported as invalid.
func Format(t *time.Time) string {
	if t == nil || t.IsZero() {
		return InvalidDate
	}
	return t.Format(dateLayout)
}
