package core

import "fmt"

// Period is a symbolic reporting window resolved against a reference date.
type Period string

const (
	PeriodToday   Period = "today"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	}
	return false
}

// DateRange is an inclusive calendar-date range.
type DateRange struct {
	Start Date
	End   Date
}

// Days returns the length of the range in days, inclusive of both ends.
func (r DateRange) Days() int {
	return r.Start.DaysUntil(r.End) + 1
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Previous returns the range of equal length immediately before this one,
// used for trend comparison.
func (r DateRange) Previous() DateRange {
	return DateRange{
		Start: r.Start.AddDays(-r.Days()),
		End:   r.Start.AddDays(-1),
	}
}

// ResolvePeriod maps a symbolic period and a reference date to its range.
// The end is always the reference date itself.
func ResolvePeriod(p Period, today Date) (DateRange, error) {
	var start Date
	switch p {
	case PeriodToday:
		start = today
	case PeriodWeek:
		start = today.AddDays(-7)
	case PeriodMonth:
		start = NewDate(today.Year(), today.Month(), 1)
	case PeriodQuarter:
		start = today.AddMonths(-3)
	case PeriodYear:
		start = NewDate(today.Year(), 1, 1)
	default:
		return DateRange{}, fmt.Errorf("unknown period: %s", p)
	}
	return DateRange{Start: start, End: today}, nil
}

// TrendDirection compares a period total with the prior period's.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// Trend is the change of a period total versus the previous period of equal
// length.
type Trend struct {
	Direction  TrendDirection
	ChangePct  float64
	PriorCents int64
}

// CompareTrend derives the trend of current against previous. When the
// previous total is zero the change is reported as 0% regardless of the
// current total; direction still reflects the exact comparison.
func CompareTrend(currentCents, previousCents int64) Trend {
	t := Trend{Direction: TrendStable, PriorCents: previousCents}
	switch {
	case currentCents > previousCents:
		t.Direction = TrendUp
	case currentCents < previousCents:
		t.Direction = TrendDown
	}
	if previousCents != 0 {
		t.ChangePct = float64(currentCents-previousCents) / float64(previousCents) * 100
	}
	return t
}
