// Package month handles the YYYY-MM billing period format used across
// reservations, usage aggregates, and invoices.
package month

import (
	"errors"
	"time"
)

const layout = "2006-01"

var ErrInvalidMonth = errors.New("invalid_month")

// Month is a calendar month in UTC.
type Month struct {
	t time.Time
}

// Parse validates a YYYY-MM string.
func Parse(value string) (Month, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{t: t.UTC()}, nil
}

// FromDate returns the month containing the given date.
func FromDate(date time.Time) Month {
	date = date.UTC()
	return Month{t: time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)}
}

// Start is the first instant of the month.
func (m Month) Start() time.Time {
	return m.t
}

// End is the first instant of the next month (exclusive bound).
func (m Month) End() time.Time {
	return m.t.AddDate(0, 1, 0)
}

// Contains reports whether the date falls inside the month.
func (m Month) Contains(date time.Time) bool {
	date = date.UTC()
	return !date.Before(m.Start()) && date.Before(m.End())
}

func (m Month) String() string {
	return m.t.Format(layout)
}

func (m Month) IsZero() bool {
	return m.t.IsZero()
}
