// Package services orchestrates the derivation engine over storage: balance
// and progress projection on read, the scheduled-payment lifecycle on write,
// and dashboard assembly.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintra/internal/amqp"
	"fintra/internal/core"
	"fintra/internal/log"
	"fintra/internal/metrics"
	"fintra/internal/storage"
)

// LedgerService owns the ledger write path and every balance projection.
type LedgerService struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewLedgerService(repo *storage.SQLiteRepository, events *amqp.Client, m *metrics.Metrics) *LedgerService {
	return &LedgerService{
		storage: repo,
		events:  events,
		metrics: m,
		now:     time.Now,
	}
}

func (s *LedgerService) today() core.Date {
	return core.DateOf(s.now())
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		// Local write already succeeded; downstream consumers catch up later.
		log.FromContext(ctx).Warn("Failed to publish event",
			"kind", event.Kind, log.FieldError, err)
	}
}

// CreateAccount stores a new account for the owner.
func (s *LedgerService) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.ID = uuid.NewString()
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.storage.CreateAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

// Account returns one of the owner's accounts.
func (s *LedgerService) Account(ctx context.Context, ownerID, id string) (core.Account, error) {
	return s.storage.GetAccount(ctx, ownerID, id)
}

// UpdateAccount rewrites the mutable fields of an existing account.
func (s *LedgerService) UpdateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.storage.UpdateAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

// CreateCategory stores a new category for the owner.
func (s *LedgerService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = uuid.NewString()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.storage.CreateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// ListCategories returns the owner's categories.
func (s *LedgerService) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, ownerID)
}

// CreateTransaction posts one ledger entry. The referenced account must
// exist for the owner; links to goals, debts and loans are checked the same
// way so a cross-owner reference reads as absent.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	if t.Date.IsEmpty() {
		t.Date = s.today()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.storage.GetAccount(ctx, t.OwnerID, t.AccountID); err != nil {
		return core.Transaction{}, fmt.Errorf("account %s: %w", t.AccountID, err)
	}
	if t.GoalID != "" {
		if _, err := s.storage.GetGoal(ctx, t.OwnerID, t.GoalID); err != nil {
			return core.Transaction{}, fmt.Errorf("goal %s: %w", t.GoalID, err)
		}
	}
	if t.DebtID != "" {
		if _, err := s.storage.GetDebt(ctx, t.OwnerID, t.DebtID); err != nil {
			return core.Transaction{}, fmt.Errorf("debt %s: %w", t.DebtID, err)
		}
	}
	if t.LoanID != "" {
		if _, err := s.storage.GetLoan(ctx, t.OwnerID, t.LoanID); err != nil {
			return core.Transaction{}, fmt.Errorf("loan %s: %w", t.LoanID, err)
		}
	}

	if err := s.storage.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	if s.metrics != nil {
		s.metrics.LedgerEntriesTotal.WithLabelValues(string(t.Type)).Inc()
	}
	s.publish(ctx, amqp.NewEvent(amqp.KindEntryPosted, t.OwnerID, t.ID))

	if t.Type == core.EntryGoalContribution && t.GoalID != "" {
		s.refreshGoalCompletion(ctx, t.OwnerID, t.GoalID)
	}
	return t, nil
}

// refreshGoalCompletion re-derives a goal's completion flag after a
// contribution lands. Failure here is logged, not surfaced: the flag is a
// convenience mirror of the projection, which stays correct regardless.
func (s *LedgerService) refreshGoalCompletion(ctx context.Context, ownerID, goalID string) {
	goal, err := s.storage.GetGoal(ctx, ownerID, goalID)
	if err != nil {
		return
	}
	agg, err := s.storage.SumEntries(ctx, ownerID, storage.EntryFilter{
		Types:  []core.EntryType{core.EntryGoalContribution},
		GoalID: goalID,
	})
	if err != nil {
		return
	}
	complete := core.ProjectProgress(goal.Target, agg.TotalCents).Complete()
	if complete != goal.IsCompleted {
		if err := s.storage.MarkGoalCompleted(ctx, ownerID, goalID, complete); err != nil {
			log.FromContext(ctx).Warn("Failed to update goal completion",
				log.FieldGoalID, goalID, log.FieldError, err)
		}
	}
}

// DeleteTransaction hard-deletes an entry; derived balances change on the
// next read.
func (s *LedgerService) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	t, err := s.storage.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteTransaction(ctx, ownerID, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewEvent(amqp.KindEntryDeleted, ownerID, id))
	if t.Type == core.EntryGoalContribution && t.GoalID != "" {
		s.refreshGoalCompletion(ctx, ownerID, t.GoalID)
	}
	return nil
}

// ListTransactions returns the owner's entries under the filter.
func (s *LedgerService) ListTransactions(ctx context.Context, ownerID string, f storage.EntryFilter, limit int) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, ownerID, f, limit)
}

// CreateTransfer records a transfer between two of the owner's accounts.
func (s *LedgerService) CreateTransfer(ctx context.Context, t core.Transfer) (core.Transfer, error) {
	t.ID = uuid.NewString()
	if t.Date.IsEmpty() {
		t.Date = s.today()
	}
	if err := t.Validate(); err != nil {
		return core.Transfer{}, err
	}
	if _, err := s.storage.GetAccount(ctx, t.OwnerID, t.FromAccountID); err != nil {
		return core.Transfer{}, fmt.Errorf("source account %s: %w", t.FromAccountID, err)
	}
	if _, err := s.storage.GetAccount(ctx, t.OwnerID, t.ToAccountID); err != nil {
		return core.Transfer{}, fmt.Errorf("destination account %s: %w", t.ToAccountID, err)
	}
	if err := s.storage.CreateTransfer(ctx, t); err != nil {
		return core.Transfer{}, err
	}
	if s.metrics != nil {
		s.metrics.TransfersTotal.Inc()
	}
	return t, nil
}

// ListTransfers returns the owner's transfers, newest first.
func (s *LedgerService) ListTransfers(ctx context.Context, ownerID string, limit int) ([]core.Transfer, error) {
	return s.storage.ListTransfers(ctx, ownerID, limit)
}

// BalanceView is an account's derived balance with the sums behind it.
type BalanceView struct {
	Account      core.Account
	Balance      core.Money
	IncomeCents  int64
	DebitCents   int64
	TransfersIn  int64
	TransfersOut int64
}

// AccountBalance projects one account's balance under the given debit mode.
// NarrowDebit answers "what did I spend here", AllOutflow answers "how much
// money is actually here"; the asymmetry between the per-account endpoint
// and the portfolio total is deliberate.
func (s *LedgerService) AccountBalance(ctx context.Context, ownerID, accountID string, mode core.DebitMode) (BalanceView, error) {
	account, err := s.storage.GetAccount(ctx, ownerID, accountID)
	if err != nil {
		return BalanceView{}, err
	}
	return s.balanceOf(ctx, account, mode)
}

func (s *LedgerService) balanceOf(ctx context.Context, account core.Account, mode core.DebitMode) (BalanceView, error) {
	income, err := s.storage.SumEntries(ctx, account.OwnerID, storage.EntryFilter{
		AccountID: account.ID,
		Types:     []core.EntryType{core.EntryIncome},
	})
	if err != nil {
		return BalanceView{}, err
	}
	debits, err := s.storage.SumEntries(ctx, account.OwnerID, storage.EntryFilter{
		AccountID: account.ID,
		Types:     mode.DebitTypes(),
	})
	if err != nil {
		return BalanceView{}, err
	}
	in, err := s.storage.SumTransfersIn(ctx, account.OwnerID, account.ID)
	if err != nil {
		return BalanceView{}, err
	}
	out, err := s.storage.SumTransfersOut(ctx, account.OwnerID, account.ID)
	if err != nil {
		return BalanceView{}, err
	}

	activity := core.AccountActivity{
		IncomeCents:       income.TotalCents,
		DebitCents:        debits.TotalCents,
		TransfersInCents:  in.AmountCents,
		TransfersOutCents: out.AmountCents,
		TransferFeeCents:  out.FeeCents,
	}
	return BalanceView{
		Account:      account,
		Balance:      core.ProjectBalance(account.InitialBalance, activity),
		IncomeCents:  income.TotalCents,
		DebitCents:   debits.TotalCents,
		TransfersIn:  in.AmountCents,
		TransfersOut: out.AmountCents + out.FeeCents,
	}, nil
}

// PortfolioView is the total balance across counted accounts.
type PortfolioView struct {
	TotalCents int64
	Accounts   []BalanceView
}

// PortfolioBalance sums AllOutflow balances over active accounts flagged
// includeInTotal, optionally restricted to a configured subset of ids.
func (s *LedgerService) PortfolioBalance(ctx context.Context, ownerID string, restrictTo []string) (PortfolioView, error) {
	accounts, err := s.storage.ListAccounts(ctx, ownerID)
	if err != nil {
		return PortfolioView{}, err
	}

	var allowed map[string]bool
	if len(restrictTo) > 0 {
		allowed = make(map[string]bool, len(restrictTo))
		for _, id := range restrictTo {
			allowed[id] = true
		}
	}

	var view PortfolioView
	for _, account := range accounts {
		if !account.IsActive || !account.IncludeInTotal {
			continue
		}
		if allowed != nil && !allowed[account.ID] {
			continue
		}
		balance, err := s.balanceOf(ctx, account, core.AllOutflow)
		if err != nil {
			return PortfolioView{}, err
		}
		view.TotalCents += balance.Balance.Cents
		view.Accounts = append(view.Accounts, balance)
	}
	return view, nil
}

// PeriodSummary is a period total with its trend against the previous
// period of equal length.
type PeriodSummary struct {
	Period     core.Period
	Range      core.DateRange
	TotalCents int64
	Count      int64
	Trend      core.Trend
}

// SummarizePeriod sums entries of one type over a symbolic period and
// compares against the previous period.
func (s *LedgerService) SummarizePeriod(ctx context.Context, ownerID string, typ core.EntryType, period core.Period) (PeriodSummary, error) {
	rng, err := core.ResolvePeriod(period, s.today())
	if err != nil {
		return PeriodSummary{}, err
	}
	current, err := s.storage.SumEntries(ctx, ownerID, storage.EntryFilter{
		Types: []core.EntryType{typ},
		Range: &rng,
	})
	if err != nil {
		return PeriodSummary{}, err
	}
	prevRange := rng.Previous()
	previous, err := s.storage.SumEntries(ctx, ownerID, storage.EntryFilter{
		Types: []core.EntryType{typ},
		Range: &prevRange,
	})
	if err != nil {
		return PeriodSummary{}, err
	}
	return PeriodSummary{
		Period:     period,
		Range:      rng,
		TotalCents: current.TotalCents,
		Count:      current.Count,
		Trend:      core.CompareTrend(current.TotalCents, previous.TotalCents),
	}, nil
}

// CategoryBreakdown groups one entry type by category over a period.
func (s *LedgerService) CategoryBreakdown(ctx context.Context, ownerID string, typ core.EntryType, period core.Period) ([]storage.CategorySum, error) {
	rng, err := core.ResolvePeriod(period, s.today())
	if err != nil {
		return nil, err
	}
	return s.storage.SumByCategory(ctx, ownerID, typ, rng)
}

// IsNotFound reports whether err is the domain not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
