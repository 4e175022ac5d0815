package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fintra/internal/core"
	"fintra/internal/log"
	"fintra/internal/storage"
)

// ProgressService derives goal, debt and loan progress from linked ledger
// entries. It never writes to the ledger.
type ProgressService struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewProgressService(repo *storage.SQLiteRepository) *ProgressService {
	return &ProgressService{storage: repo, now: time.Now}
}

// GoalView is a goal with its derived progress.
type GoalView struct {
	Goal                  core.Goal
	Progress              core.Progress
	SuggestedMonthlyCents int64
}

// DebtView is a debt with its derived repayment progress.
type DebtView struct {
	Debt     core.Debt
	Progress core.Progress
}

// LoanView is a loan with its derived repayment progress.
type LoanView struct {
	Loan     core.Loan
	Progress core.Progress
}

func (s *ProgressService) sumLinked(ctx context.Context, ownerID string, f storage.EntryFilter) (int64, error) {
	agg, err := s.storage.SumEntries(ctx, ownerID, f)
	if err != nil {
		return 0, err
	}
	return agg.TotalCents, nil
}

// CreateGoal validates and persists a new savings goal.
func (s *ProgressService) CreateGoal(ctx context.Context, goal core.Goal) (core.Goal, error) {
	goal.ID = uuid.NewString()
	if err := goal.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.storage.CreateGoal(ctx, goal); err != nil {
		return core.Goal{}, err
	}
	return goal, nil
}

// CreateDebt validates and persists a new debt.
func (s *ProgressService) CreateDebt(ctx context.Context, debt core.Debt) (core.Debt, error) {
	debt.ID = uuid.NewString()
	if err := debt.Validate(); err != nil {
		return core.Debt{}, err
	}
	if err := s.storage.CreateDebt(ctx, debt); err != nil {
		return core.Debt{}, err
	}
	return debt, nil
}

// CreateLoan validates and persists a new loan given out.
func (s *ProgressService) CreateLoan(ctx context.Context, loan core.Loan) (core.Loan, error) {
	loan.ID = uuid.NewString()
	if err := loan.Validate(); err != nil {
		return core.Loan{}, err
	}
	if err := s.storage.CreateLoan(ctx, loan); err != nil {
		return core.Loan{}, err
	}
	return loan, nil
}

// GoalProgress projects one goal: current contributions, remaining amount,
// clamped percentage and, when a target date is set, the suggested monthly
// contribution.
func (s *ProgressService) GoalProgress(ctx context.Context, ownerID, goalID string) (GoalView, error) {
	goal, err := s.storage.GetGoal(ctx, ownerID, goalID)
	if err != nil {
		return GoalView{}, err
	}
	return s.goalView(ctx, goal)
}

func (s *ProgressService) goalView(ctx context.Context, goal core.Goal) (GoalView, error) {
	sum, err := s.sumLinked(ctx, goal.OwnerID, storage.EntryFilter{
		Types:  []core.EntryType{core.EntryGoalContribution},
		GoalID: goal.ID,
	})
	if err != nil {
		return GoalView{}, err
	}
	progress := core.ProjectProgress(goal.Target, sum)
	return GoalView{
		Goal:                  goal,
		Progress:              progress,
		SuggestedMonthlyCents: progress.SuggestedMonthlyCents(core.DateOf(s.now()), goal.TargetDate),
	}, nil
}

// ListGoals projects every goal of the owner.
func (s *ProgressService) ListGoals(ctx context.Context, ownerID string) ([]GoalView, error) {
	goals, err := s.storage.ListGoals(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]GoalView, 0, len(goals))
	for _, goal := range goals {
		view, err := s.goalView(ctx, goal)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// DebtProgress projects one debt from its linked debt_payment entries.
func (s *ProgressService) DebtProgress(ctx context.Context, ownerID, debtID string) (DebtView, error) {
	debt, err := s.storage.GetDebt(ctx, ownerID, debtID)
	if err != nil {
		return DebtView{}, err
	}
	return s.debtView(ctx, debt)
}

func (s *ProgressService) debtView(ctx context.Context, debt core.Debt) (DebtView, error) {
	sum, err := s.sumLinked(ctx, debt.OwnerID, storage.EntryFilter{
		Types:  []core.EntryType{core.EntryDebtPayment},
		DebtID: debt.ID,
	})
	if err != nil {
		return DebtView{}, err
	}
	progress := core.ProjectProgress(debt.Principal, sum)
	s.refreshDebtStatus(ctx, &debt, progress)
	return DebtView{Debt: debt, Progress: progress}, nil
}

// refreshDebtStatus mirrors the derived repayment status onto the stored
// debt. Failure is logged, not surfaced: the projection stays correct.
func (s *ProgressService) refreshDebtStatus(ctx context.Context, debt *core.Debt, p core.Progress) {
	derived := core.DeriveDebtStatus(debt.Status, p)
	if derived == debt.Status {
		return
	}
	if err := s.storage.UpdateDebtStatus(ctx, debt.OwnerID, debt.ID, derived); err != nil {
		log.FromContext(ctx).Warn("Failed to update debt status",
			log.FieldDebtID, debt.ID, log.FieldError, err)
		return
	}
	debt.Status = derived
}

// ListDebts projects every debt of the owner.
func (s *ProgressService) ListDebts(ctx context.Context, ownerID string) ([]DebtView, error) {
	debts, err := s.storage.ListDebts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]DebtView, 0, len(debts))
	for _, debt := range debts {
		view, err := s.debtView(ctx, debt)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// LoanProgress projects one loan from its linked loan_payment entries.
func (s *ProgressService) LoanProgress(ctx context.Context, ownerID, loanID string) (LoanView, error) {
	loan, err := s.storage.GetLoan(ctx, ownerID, loanID)
	if err != nil {
		return LoanView{}, err
	}
	return s.loanView(ctx, loan)
}

func (s *ProgressService) loanView(ctx context.Context, loan core.Loan) (LoanView, error) {
	sum, err := s.sumLinked(ctx, loan.OwnerID, storage.EntryFilter{
		Types:  []core.EntryType{core.EntryLoanPayment},
		LoanID: loan.ID,
	})
	if err != nil {
		return LoanView{}, err
	}
	progress := core.ProjectProgress(loan.Principal, sum)
	s.refreshLoanStatus(ctx, &loan, progress)
	return LoanView{Loan: loan, Progress: progress}, nil
}

func (s *ProgressService) refreshLoanStatus(ctx context.Context, loan *core.Loan, p core.Progress) {
	derived := core.DeriveLoanStatus(loan.Status, p)
	if derived == loan.Status {
		return
	}
	if err := s.storage.UpdateLoanStatus(ctx, loan.OwnerID, loan.ID, derived); err != nil {
		log.FromContext(ctx).Warn("Failed to update loan status",
			log.FieldLoanID, loan.ID, log.FieldError, err)
		return
	}
	loan.Status = derived
}

// ListLoans projects every loan of the owner.
func (s *ProgressService) ListLoans(ctx context.Context, ownerID string) ([]LoanView, error) {
	loans, err := s.storage.ListLoans(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]LoanView, 0, len(loans))
	for _, loan := range loans {
		view, err := s.loanView(ctx, loan)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
