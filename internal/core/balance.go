package core

// Aggregate is the result of summing ledger entries under a filter. An empty
// match is a zero aggregate, never an error.
type Aggregate struct {
	TotalCents int64
	Count      int64
}

// Add merges another aggregate into this one. Sums are commutative, so the
// order entries were read in never matters.
func (a Aggregate) Add(b Aggregate) Aggregate {
	return Aggregate{TotalCents: a.TotalCents + b.TotalCents, Count: a.Count + b.Count}
}

// DebitMode names which entry types count as money leaving an account.
//
// The two modes answer different questions and both are part of the model:
// the per-account view reports narrow spending, the portfolio-wide balance
// reports true cash position. Callers pick the mode by name so the intent is
// visible at the call site.
type DebitMode int

const (
	// NarrowDebit counts expense entries only: "what did I spend from
	// this account".
	NarrowDebit DebitMode = iota

	// AllOutflow counts every outflow type (expense, debt payment, goal
	// contribution, loan payment): "how much money is actually here".
	AllOutflow
)

// DebitTypes returns the entry types the mode aggregates.
func (m DebitMode) DebitTypes() []EntryType {
	if m == AllOutflow {
		return OutflowTypes
	}
	return []EntryType{EntryExpense}
}

// AccountActivity is the per-account ledger activity an implementation has
// summed up for balance projection. Transfer fees debit the source account
// on top of the transferred amount.
type AccountActivity struct {
	IncomeCents       int64
	DebitCents        int64 // per the chosen DebitMode
	TransfersInCents  int64
	TransfersOutCents int64
	TransferFeeCents  int64
}

// ProjectBalance derives an account's current balance from its stored
// initial balance and its ledger activity:
//
//	initial + income - debits + transfers in - (transfers out + fees)
//
// An account with no activity reports exactly its initial balance.
func ProjectBalance(initial Money, act AccountActivity) Money {
	cents := initial.Cents +
		act.IncomeCents -
		act.DebitCents +
		act.TransfersInCents -
		(act.TransfersOutCents + act.TransferFeeCents)
	return Money{Cents: cents}
}
