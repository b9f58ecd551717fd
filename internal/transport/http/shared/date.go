package shared

import "time"

// ParseDate reads a calendar date. Cycle windows are civil dates, so
// timestamps with a clock or zone are refused.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, value)
}
