package core

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date. Ledger dates and due dates carry no time of day
// and no timezone; they compare as calendar dates.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errors.New("invalid date, want YYYY-MM-DD")
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// IsEmpty reports whether an optional date was left unset.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int in 1..12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonths returns the date n calendar months later, clamping the day to
// the last day of the target month when the source day does not exist there
// (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonths(n int) Date {
	year, month, day := d.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

// AddYears returns the date n years later with the same day clamping as
// AddMonths (Feb 29 + 1 year = Feb 28).
func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

// Before reports whether d falls on an earlier calendar date than other.
func (d Date) Before(other Date) bool {
	return d.String() < other.String()
}

// After reports whether d falls on a later calendar date than other.
func (d Date) After(other Date) bool {
	return d.String() > other.String()
}

// OnOrBefore reports whether d is no later than other.
func (d Date) OnOrBefore(other Date) bool {
	return !d.After(other)
}

// DaysUntil returns the number of whole days from d to other; negative when
// other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

// MonthsUntil returns the number of whole calendar months from d to other,
// never less than zero. Used for goal monthly-amount suggestions.
func (d Date) MonthsUntil(other Date) int {
	months := (other.Year()-d.Year())*12 + other.Month() - d.Month()
	if months < 0 {
		return 0
	}
	return months
}
