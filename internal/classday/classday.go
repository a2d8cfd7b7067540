// Package classday decides whether a calendar date is one of the two
// weekly class days. Sessions run on Sundays and Wednesdays; every other
// weekday is a non-class day and rejects presence marking.
package classday

import "time"

// Day is the class-day classification of a date.
type Day string

const (
	// Sunday is the primary weekly class day.
	Sunday Day = "Sunday"
	// Wednesday is the secondary weekly class day.
	Wednesday Day = "Wednesday"
	// None marks dates with no session.
	None Day = ""
)

// DateLayout is the wire format for dates throughout the API.
const DateLayout = "2006-01-02"

// Classify maps a date to its class-day type. Pure function of the
// weekday; holidays and timezones are out of scope, the date is treated
// as a local midnight instant.
func Classify(t time.Time) Day {
	switch t.Weekday() {
	case time.Sunday:
		return Sunday
	case time.Wednesday:
		return Wednesday
	default:
		return None
	}
}

// ClassifyDate classifies a wire-format date string. The second return
// is false when the string does not parse.
func ClassifyDate(date string) (Day, bool) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return None, false
	}
	return Classify(t), true
}

// IsClassDay reports whether presence may be marked on the date.
func (d Day) IsClassDay() bool {
	return d == Sunday || d == Wednesday
}

// ParseDate parses a wire-format date.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}
