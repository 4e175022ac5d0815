package core

// Progress is a target-versus-accumulated projection, shared by goals
// (contributions), debts (payments made) and loans (payments received).
type Progress struct {
	CurrentCents   int64
	RemainingCents int64
	Percent        float64
}

// ProjectProgress derives progress toward a positive target from the
// accumulated linked-entry sum. The percentage is clamped to [0, 100] and
// reaches exactly 100 once the accumulated amount meets the target;
// remaining never goes below zero.
func ProjectProgress(target Money, accumulatedCents int64) Progress {
	p := Progress{CurrentCents: accumulatedCents}
	if target.Cents <= 0 {
		return p
	}
	if accumulatedCents < target.Cents {
		p.RemainingCents = target.Cents - accumulatedCents
	}
	if accumulatedCents >= target.Cents {
		p.Percent = 100
	} else if accumulatedCents > 0 {
		p.Percent = float64(accumulatedCents) / float64(target.Cents) * 100
	}
	return p
}

// Complete reports whether the target has been reached.
func (p Progress) Complete() bool {
	return p.Percent >= 100
}

// DeriveDebtStatus refreshes a debt's repayment status from its projected
// progress. Overdue is user-recorded and only cleared by full repayment.
func DeriveDebtStatus(current DebtStatus, p Progress) DebtStatus {
	switch {
	case p.Complete():
		return DebtPaid
	case current == DebtOverdue:
		return current
	case p.CurrentCents > 0:
		return DebtPartial
	default:
		return DebtActive
	}
}

// DeriveLoanStatus is the loan counterpart. Forgiven loans are never
// touched.
func DeriveLoanStatus(current LoanStatus, p Progress) LoanStatus {
	if current == LoanForgiven {
		return current
	}
	switch {
	case p.Complete():
		return LoanPaid
	case current == LoanOverdue:
		return current
	case p.CurrentCents > 0:
		return LoanPartial
	default:
		return LoanActive
	}
}

// SuggestedMonthlyCents spreads the remaining amount over the whole months
// left until the target date, with a floor of one month so a past or
// imminent date suggests the full remainder.
func (p Progress) SuggestedMonthlyCents(today, targetDate Date) int64 {
	if targetDate.IsEmpty() || p.RemainingCents == 0 {
		return 0
	}
	months := today.MonthsUntil(targetDate)
	if months < 1 {
		months = 1
	}
	return p.RemainingCents / int64(months)
}
