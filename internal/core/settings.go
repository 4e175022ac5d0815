package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DashboardConfig is the per-user dashboard configuration, stored as a
// versioned JSON document. Unknown keys are rejected on decode so a typo in
// a client patch surfaces instead of silently vanishing.
type DashboardConfig struct {
	Version                 int       `json:"version"`
	ExpensesPeriod          Period    `json:"expensesPeriod"`
	IncomePeriod            Period    `json:"incomePeriod"`
	RecentTransactionsLimit int       `json:"recentTransactionsLimit"`
	BalanceAccountIDs       []string  `json:"balanceAccountIds"`
	ShowScheduledPayments   bool      `json:"showScheduledPayments"`
	ScheduledPaymentsDays   int       `json:"scheduledPaymentsDays"`
	FeaturedGoalID          string    `json:"featuredGoalId"`
	WidgetsOrder            []string  `json:"widgetsOrder"`
	CategoryBreakdownPeriod Period    `json:"categoryBreakdownPeriod"`
	CategoryBreakdownType   EntryType `json:"categoryBreakdownType"`
}

const dashboardConfigVersion = 1

// DefaultWidgets is the default dashboard widget ordering.
var DefaultWidgets = []string{"balance", "income", "expenses", "scheduled", "goals", "recent", "categories"}

// DefaultDashboardConfig returns the configuration a user gets before they
// ever save one.
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		Version:                 dashboardConfigVersion,
		ExpensesPeriod:          PeriodMonth,
		IncomePeriod:            PeriodMonth,
		RecentTransactionsLimit: 5,
		ShowScheduledPayments:   true,
		ScheduledPaymentsDays:   7,
		WidgetsOrder:            DefaultWidgets,
		CategoryBreakdownPeriod: PeriodMonth,
		CategoryBreakdownType:   EntryExpense,
	}
}

func (c DashboardConfig) Validate() error {
	if !c.ExpensesPeriod.Valid() {
		return fmt.Errorf("%w: expensesPeriod %q", ErrInvalidConfig, c.ExpensesPeriod)
	}
	if !c.IncomePeriod.Valid() {
		return fmt.Errorf("%w: incomePeriod %q", ErrInvalidConfig, c.IncomePeriod)
	}
	if !c.CategoryBreakdownPeriod.Valid() {
		return fmt.Errorf("%w: categoryBreakdownPeriod %q", ErrInvalidConfig, c.CategoryBreakdownPeriod)
	}
	if c.CategoryBreakdownType != EntryExpense && c.CategoryBreakdownType != EntryIncome {
		return fmt.Errorf("%w: categoryBreakdownType %q", ErrInvalidConfig, c.CategoryBreakdownType)
	}
	if c.RecentTransactionsLimit < 1 || c.RecentTransactionsLimit > 50 {
		return fmt.Errorf("%w: recentTransactionsLimit %d out of range", ErrInvalidConfig, c.RecentTransactionsLimit)
	}
	if c.ScheduledPaymentsDays < 1 || c.ScheduledPaymentsDays > 90 {
		return fmt.Errorf("%w: scheduledPaymentsDays %d out of range", ErrInvalidConfig, c.ScheduledPaymentsDays)
	}
	return nil
}

// DecodeDashboardConfig parses a stored or patched configuration document.
// Unknown keys are an error; missing documents fall back to defaults at the
// service layer, not here.
func DecodeDashboardConfig(data []byte) (DashboardConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	cfg := DefaultDashboardConfig()
	if err := dec.Decode(&cfg); err != nil {
		return DashboardConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.Version == 0 {
		cfg.Version = dashboardConfigVersion
	}
	if err := cfg.Validate(); err != nil {
		return DashboardConfig{}, err
	}
	return cfg, nil
}

// ApplyPatch merges a partial JSON document over the current configuration.
// Absent keys keep their current values; unknown keys are rejected.
func (c DashboardConfig) ApplyPatch(data []byte) (DashboardConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	patched := c
	if err := dec.Decode(&patched); err != nil {
		return DashboardConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	patched.Version = dashboardConfigVersion
	if err := patched.Validate(); err != nil {
		return DashboardConfig{}, err
	}
	return patched, nil
}

// Encode serializes the configuration for storage.
func (c DashboardConfig) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// UserSettings is the per-owner singleton wrapping the dashboard
// configuration. It is created lazily with defaults on first read.
type UserSettings struct {
	OwnerID   string
	Dashboard DashboardConfig
	UpdatedAt time.Time
}
