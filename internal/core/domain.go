package core

import (
	"errors"
	"strings"
	"time"
)

// EntryType is the typed purpose of a ledger entry. Amounts are stored
// positive; the type decides whether an entry credits or debits an account.
type EntryType string

const (
	EntryIncome           EntryType = "income"
	EntryExpense          EntryType = "expense"
	EntryDebtPayment      EntryType = "debt_payment"
	EntryGoalContribution EntryType = "goal_contribution"
	EntryLoanPayment      EntryType = "loan_payment"
)

// OutflowTypes are the entry types that move money out of an account.
var OutflowTypes = []EntryType{EntryExpense, EntryDebtPayment, EntryGoalContribution, EntryLoanPayment}

func (t EntryType) Valid() bool {
	switch t {
	case EntryIncome, EntryExpense, EntryDebtPayment, EntryGoalContribution, EntryLoanPayment:
		return true
	}
	return false
}

// IsOutflow reports whether entries of this type debit their account.
func (t EntryType) IsOutflow() bool {
	return t != EntryIncome
}

// PaymentStatus is the lifecycle state of a scheduled payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentOverdue   PaymentStatus = "overdue"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentCancelled, PaymentOverdue:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentPaid || s == PaymentCancelled
}

// CanSettle reports whether a payment in this status may be marked paid.
func (s PaymentStatus) CanSettle() bool {
	return s == PaymentPending || s == PaymentOverdue
}

// CanCancel reports whether a payment in this status may be cancelled.
// Cancelling an already-cancelled payment is rejected like any other
// transition out of a terminal state.
func (s PaymentStatus) CanCancel() bool {
	return s == PaymentPending || s == PaymentOverdue
}

// Priority orders scheduled payments for display.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Frequency is the recurrence cadence of a scheduled payment.
type Frequency string

const (
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// DebtStatus and LoanStatus track repayment state as recorded by the user.
// Progress itself is always derived from the ledger, never from the status.
type DebtStatus string

const (
	DebtActive  DebtStatus = "active"
	DebtPaid    DebtStatus = "paid"
	DebtOverdue DebtStatus = "overdue"
	DebtPartial DebtStatus = "partial"
)

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanPaid     LoanStatus = "paid"
	LoanOverdue  LoanStatus = "overdue"
	LoanPartial  LoanStatus = "partial"
	LoanForgiven LoanStatus = "forgiven"
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrNameTooLong     = errors.New("name too long (max 200 characters)")
	ErrEmptyAccount    = errors.New("account id required")
	ErrSameAccount     = errors.New("transfer accounts must differ")
	ErrInvalidType     = errors.New("invalid entry type")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidFreq     = errors.New("invalid recurrence frequency")
)

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > 200 {
		return ErrNameTooLong
	}
	return nil
}

// Account holds money. Its balance is never stored; it is derived from the
// initial balance plus the signed sum of ledger activity on every read.
type Account struct {
	ID             string
	OwnerID        string
	Name           string
	Currency       string
	InitialBalance Money // signed: an account may open in the red
	IncludeInTotal bool
	IsActive       bool
	CreatedAt      time.Time
}

func (a Account) Validate() error {
	if a.OwnerID == "" {
		return ErrMissingOwner
	}
	return validateName(a.Name)
}

// Category labels transactions for breakdown views.
type Category struct {
	ID      string
	OwnerID string
	Name    string
	Kind    EntryType // income or expense; breakdowns filter on it
}

func (c Category) Validate() error {
	if c.OwnerID == "" {
		return ErrMissingOwner
	}
	if c.Kind != EntryIncome && c.Kind != EntryExpense {
		return ErrInvalidType
	}
	return validateName(c.Name)
}

// Transaction is one immutable ledger entry. The optional back-references
// link it to the plan it serves (a goal, a debt, a loan, a scheduled
// payment); projections sum over those links.
type Transaction struct {
	ID                 string
	OwnerID            string
	AccountID          string
	CategoryID         string
	Type               EntryType
	Amount             Money
	Date               Date
	Description        string
	DebtID             string
	LoanID             string
	GoalID             string
	ScheduledPaymentID string
	CreatedAt          time.Time
}

func (t Transaction) Validate() error {
	if t.OwnerID == "" {
		return ErrMissingOwner
	}
	if t.AccountID == "" {
		return ErrEmptyAccount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return t.Date.Validate()
}

// Transfer moves money between two accounts of the same owner. It is its own
// entity, not a pair of ledger entries, and is aggregated through its own
// query path: the source account is debited amount+fee, the destination is
// credited amount.
type Transfer struct {
	ID            string
	OwnerID       string
	FromAccountID string
	ToAccountID   string
	Amount        Money
	Fee           Money // optional, zero when absent
	Date          Date
	Description   string
	CreatedAt     time.Time
}

func (t Transfer) Validate() error {
	if t.OwnerID == "" {
		return ErrMissingOwner
	}
	if t.FromAccountID == "" || t.ToAccountID == "" {
		return ErrEmptyAccount
	}
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Fee.Cents < 0 {
		return ErrInvalidAmount
	}
	return t.Date.Validate()
}

// Debt is money the user owes. Paid progress is the sum of linked
// debt_payment entries.
type Debt struct {
	ID                string
	OwnerID           string
	Name              string
	Creditor          string
	Principal         Money
	Currency          string
	Status            DebtStatus
	StartDate         Date
	DueDate           Date // optional
	TotalInstallments int  // 1 when the debt is not split into installments
	CreatedAt         time.Time
}

func (d Debt) Validate() error {
	if d.OwnerID == "" {
		return ErrMissingOwner
	}
	if err := validateName(d.Name); err != nil {
		return err
	}
	if err := d.Principal.Validate(); err != nil {
		return err
	}
	if d.TotalInstallments < 1 {
		return errors.New("installment count must be at least 1")
	}
	return d.StartDate.Validate()
}

// InstallmentStart is the first due date of a debt's installment plan: the
// due date when one is set, the start date otherwise.
func (d Debt) InstallmentStart() Date {
	if !d.DueDate.IsEmpty() {
		return d.DueDate
	}
	return d.StartDate
}

// Loan is money owed to the user. Received progress is the sum of linked
// loan_payment entries.
type Loan struct {
	ID        string
	OwnerID   string
	Name      string
	Borrower  string
	Principal Money
	Currency  string
	Status    LoanStatus
	StartDate Date
	DueDate   Date // optional
	CreatedAt time.Time
}

func (l Loan) Validate() error {
	if l.OwnerID == "" {
		return ErrMissingOwner
	}
	if err := validateName(l.Name); err != nil {
		return err
	}
	if err := l.Principal.Validate(); err != nil {
		return err
	}
	return l.StartDate.Validate()
}

// Goal is a savings target. Current progress is the sum of linked
// goal_contribution entries.
type Goal struct {
	ID          string
	OwnerID     string
	Name        string
	Target      Money
	Currency    string
	TargetDate  Date // optional
	IsActive    bool
	IsCompleted bool
	CreatedAt   time.Time
}

func (g Goal) Validate() error {
	if g.OwnerID == "" {
		return ErrMissingOwner
	}
	if err := validateName(g.Name); err != nil {
		return err
	}
	return g.Target.Validate()
}

// ScheduledPayment is a planned future outflow with a lifecycle:
// pending -> overdue (lazily, once the due date passes), and from either
// state to paid or cancelled. Paid and cancelled are terminal.
type ScheduledPayment struct {
	ID       string
	OwnerID  string
	Name     string
	Amount   Money
	Currency string
	DueDate  Date
	Status   PaymentStatus
	Priority Priority

	// Optional links.
	CategoryID string
	AccountID  string
	DebtID     string
	LoanID     string

	Notes        string
	Tags         []string
	ReminderDays int

	IsRecurring bool
	Frequency   Frequency // set only when IsRecurring

	// Set on settlement only.
	PaidDate   Date
	PaidAmount Money

	CreatedAt time.Time
}

func (p ScheduledPayment) Validate() error {
	if p.OwnerID == "" {
		return ErrMissingOwner
	}
	if err := validateName(p.Name); err != nil {
		return err
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if err := p.DueDate.Validate(); err != nil {
		return err
	}
	if !p.Priority.Valid() {
		return ErrInvalidPriority
	}
	if p.IsRecurring && !p.Frequency.Valid() {
		return ErrInvalidFreq
	}
	return nil
}

// NextOccurrence clones the payment for its next due date after settlement.
// The clone starts a fresh pending lifecycle and carries no settlement
// fields. Only recurring payments have a next occurrence.
func (p ScheduledPayment) NextOccurrence(id string) (ScheduledPayment, bool) {
	if !p.IsRecurring {
		return ScheduledPayment{}, false
	}
	next, err := Advance(p.DueDate, p.Frequency)
	if err != nil {
		return ScheduledPayment{}, false
	}
	return ScheduledPayment{
		ID:           id,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Amount:       p.Amount,
		Currency:     p.Currency,
		DueDate:      next,
		Status:       PaymentPending,
		Priority:     p.Priority,
		CategoryID:   p.CategoryID,
		AccountID:    p.AccountID,
		DebtID:       p.DebtID,
		LoanID:       p.LoanID,
		Notes:        p.Notes,
		Tags:         p.Tags,
		ReminderDays: p.ReminderDays,
		IsRecurring:  true,
		Frequency:    p.Frequency,
	}, true
}
