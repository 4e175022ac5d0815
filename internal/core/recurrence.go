package core

import "fmt"

// Advance returns the due date one recurrence step after d.
//
// Weekly and biweekly steps are exact day counts. Monthly, quarterly and
// yearly steps are calendar steps: the day of month is kept, clamped to the
// last day of the target month when it does not exist there, so Jan 31
// advanced monthly lands on Feb 28 (29 in leap years).
func Advance(d Date, f Frequency) (Date, error) {
	switch f {
	case Weekly:
		return d.AddDays(7), nil
	case Biweekly:
		return d.AddDays(14), nil
	case Monthly:
		return d.AddMonths(1), nil
	case Quarterly:
		return d.AddMonths(3), nil
	case Yearly:
		return d.AddYears(1), nil
	default:
		return Date{}, fmt.Errorf("unknown recurrence frequency: %s", f)
	}
}

// InstallmentAmounts splits a principal into n near-equal parts. Integer
// division leaves up to n-1 remainder cents; those land one each on the
// earliest installments so the parts always sum to the principal exactly.
func InstallmentAmounts(principal Money, n int) []Money {
	if n < 1 {
		n = 1
	}
	base := principal.Cents / int64(n)
	rem := principal.Cents % int64(n)
	out := make([]Money, n)
	for i := range out {
		out[i] = Money{Cents: base}
		if int64(i) < rem {
			out[i].Cents++
		}
	}
	return out
}

// InstallmentDueDates returns n monthly-spaced due dates starting at start.
func InstallmentDueDates(start Date, n int) []Date {
	if n < 1 {
		n = 1
	}
	out := make([]Date, n)
	for i := range out {
		out[i] = start.AddMonths(i)
	}
	return out
}
