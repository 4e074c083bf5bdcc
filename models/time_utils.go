package models

import "time"

// DateLayout is the day format used in API paths and log file names
const DateLayout = "2006-01-02"

// FormatDate renders t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeEpoch converts a nanosecond, microsecond or millisecond
// timestamp down to seconds.
func NormalizeEpoch(ts int64) int64 {
	if ts <= 0 {
		return 0
	}
	for ts > 1e12 {
		ts /= 1000
	}
	return ts
}

// CompletedDayRange returns the window of completed daily bars ending
// yesterday, padded to cover weekends and holidays.
func CompletedDayRange(asOf time.Time, days int) (time.Time, time.Time) {
	end := asOf.AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -days*2)
	return start, end
}
