package core

import (
	"strconv"
	"strings"
	"time"
)

// MonthRange is the half-open interval [Start, End) covering one calendar month.
// A zero-length range matches nothing.
type MonthRange struct {
	Year  int
	Month int
	Start time.Time
	End   time.Time
}

// NewMonthRange builds the UTC range for month (1-12) of year. Any other month
// yields an empty range so malformed input filters to no records.
func NewMonthRange(year, month int) MonthRange {
	if month < 1 || month > 12 {
		return MonthRange{Year: year, Month: month}
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return MonthRange{
		Year:  year,
		Month: month,
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

// ParseMonth accepts "3" or "03". ok is false for anything outside 1-12.
func ParseMonth(s string) (month int, ok bool) {
	m, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

// IsEmpty reports whether the range can match any instant.
func (r MonthRange) IsEmpty() bool {
	return !r.Start.Before(r.End)
}

// Contains reports whether t falls inside the range.
func (r MonthRange) Contains(t time.Time) bool {
	if r.IsEmpty() {
		return false
	}
	return !t.Before(r.Start) && t.Before(r.End)
}

// Key identifies the range in caches and logs.
func (r MonthRange) Key() string {
	if r.IsEmpty() {
		return strconv.Itoa(r.Year) + "-invalid"
	}
	return r.Start.Format("2006-01")
}
