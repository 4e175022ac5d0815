package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fintra/internal/core"
	"fintra/internal/log"
	"fintra/internal/storage"
)

// DashboardService assembles the dashboard view from the other services
// according to the owner's stored configuration.
type DashboardService struct {
	storage  *storage.SQLiteRepository
	ledger   *LedgerService
	progress *ProgressService
	schedule *ScheduleService
}

func NewDashboardService(repo *storage.SQLiteRepository, ledger *LedgerService, progress *ProgressService, schedule *ScheduleService) *DashboardService {
	return &DashboardService{
		storage:  repo,
		ledger:   ledger,
		progress: progress,
		schedule: schedule,
	}
}

// Settings returns the owner's dashboard configuration, creating it with
// defaults on first read.
func (s *DashboardService) Settings(ctx context.Context, ownerID string) (core.DashboardConfig, error) {
	doc, found, err := s.storage.GetDashboardConfig(ctx, ownerID)
	if err != nil {
		return core.DashboardConfig{}, err
	}
	if !found {
		cfg := core.DefaultDashboardConfig()
		encoded, err := cfg.Encode()
		if err != nil {
			return core.DashboardConfig{}, err
		}
		if err := s.storage.SaveDashboardConfig(ctx, ownerID, encoded); err != nil {
			return core.DashboardConfig{}, err
		}
		return cfg, nil
	}
	cfg, err := core.DecodeDashboardConfig(doc)
	if err != nil {
		// A stored document that no longer validates falls back to
		// defaults rather than breaking every dashboard read.
		log.FromContext(ctx).Warn("Stored dashboard config invalid, using defaults",
			log.FieldOwnerID, ownerID, log.FieldError, err)
		return core.DefaultDashboardConfig(), nil
	}
	return cfg, nil
}

// UpdateSettings applies a partial patch document over the current
// configuration. Unknown keys are rejected.
func (s *DashboardService) UpdateSettings(ctx context.Context, ownerID string, patch []byte) (core.DashboardConfig, error) {
	current, err := s.Settings(ctx, ownerID)
	if err != nil {
		return core.DashboardConfig{}, err
	}
	patched, err := current.ApplyPatch(patch)
	if err != nil {
		return core.DashboardConfig{}, err
	}
	encoded, err := patched.Encode()
	if err != nil {
		return core.DashboardConfig{}, err
	}
	if err := s.storage.SaveDashboardConfig(ctx, ownerID, encoded); err != nil {
		return core.DashboardConfig{}, err
	}
	return patched, nil
}

// DashboardView is everything the dashboard page renders, assembled in one
// round trip.
type DashboardView struct {
	Config             core.DashboardConfig
	Balance            PortfolioView
	Income             PeriodSummary
	Expenses           PeriodSummary
	RecentTransactions []core.Transaction
	UpcomingPayments   []core.ScheduledPayment
	Goals              []GoalView
	FeaturedGoal       *GoalView
	CategoryBreakdown  []storage.CategorySum
}

// Dashboard builds the full view. The widget queries are independent
// aggregations, so they fan out concurrently; the scheduled-payment sweep
// runs first because it is the one write the read path performs.
func (s *DashboardService) Dashboard(ctx context.Context, ownerID string) (DashboardView, error) {
	cfg, err := s.Settings(ctx, ownerID)
	if err != nil {
		return DashboardView{}, err
	}
	if _, err := s.schedule.SweepOverdue(ctx, ownerID); err != nil {
		return DashboardView{}, err
	}

	view := DashboardView{Config: cfg}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		balance, err := s.ledger.PortfolioBalance(gctx, ownerID, cfg.BalanceAccountIDs)
		if err != nil {
			return err
		}
		view.Balance = balance
		return nil
	})
	g.Go(func() error {
		income, err := s.ledger.SummarizePeriod(gctx, ownerID, core.EntryIncome, cfg.IncomePeriod)
		if err != nil {
			return err
		}
		view.Income = income
		return nil
	})
	g.Go(func() error {
		expenses, err := s.ledger.SummarizePeriod(gctx, ownerID, core.EntryExpense, cfg.ExpensesPeriod)
		if err != nil {
			return err
		}
		view.Expenses = expenses
		return nil
	})
	g.Go(func() error {
		recent, err := s.ledger.ListTransactions(gctx, ownerID, storage.EntryFilter{}, cfg.RecentTransactionsLimit)
		if err != nil {
			return err
		}
		view.RecentTransactions = recent
		return nil
	})
	g.Go(func() error {
		goals, err := s.progress.ListGoals(gctx, ownerID)
		if err != nil {
			return err
		}
		view.Goals = goals
		return nil
	})
	g.Go(func() error {
		breakdown, err := s.ledger.CategoryBreakdown(gctx, ownerID, cfg.CategoryBreakdownType, cfg.CategoryBreakdownPeriod)
		if err != nil {
			return err
		}
		view.CategoryBreakdown = breakdown
		return nil
	})
	if cfg.ShowScheduledPayments {
		g.Go(func() error {
			// Sweep already ran; list directly.
			upcoming, err := s.storage.ListScheduledPayments(gctx, ownerID, storage.PaymentFilter{
				Statuses: []core.PaymentStatus{core.PaymentPending, core.PaymentOverdue},
				DueBy:    s.schedule.today().AddDays(cfg.ScheduledPaymentsDays),
			})
			if err != nil {
				return err
			}
			view.UpcomingPayments = upcoming
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return DashboardView{}, err
	}

	if cfg.FeaturedGoalID != "" {
		for i := range view.Goals {
			if view.Goals[i].Goal.ID == cfg.FeaturedGoalID {
				view.FeaturedGoal = &view.Goals[i]
				break
			}
		}
	}
	return view, nil
}
