package dateutil

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var monthAbbrev = map[int]string{
	1:  "Jan",
	2:  "Fev",
	3:  "Mar",
	4:  "Abr",
	5:  "Mai",
	6:  "Jun",
	7:  "Jul",
	8:  "Ago",
	9:  "Set",
	10: "Out",
	11: "Nov",
	12: "Dez",
}

// MonthAbbrev returns the Portuguese three-letter month name the calendar
// header shows, or an error for an out-of-range month.
func MonthAbbrev(month int) (string, error) {
	name, ok := monthAbbrev[month]
	if !ok {
		return "", fmt.Errorf("invalid month %d", month)
	}
	return name, nil
}

// ParseDate parses a wire-format calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// IsStrictlyFuture reports whether the date falls after today. Today
// itself is not a valid date for a new schedule.
func IsStrictlyFuture(value string, now time.Time) bool {
	date, err := ParseDate(value)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return date.After(today)
}

// FormatDisplay renders a wire-format date as dd/mm/yyyy.
func FormatDisplay(value string) string {
	date, err := ParseDate(value)
	if err != nil {
		return value
	}
	return date.Format("02/01/2006")
}
