package services

import (
	"context"
	"testing"
	"time"

	"fintra/internal/core"
	"fintra/internal/metrics"
)

func TestGoalProgress(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewProgressService(repo)
	svc.now = func() time.Time { return testToday }
	ledger := NewLedgerService(repo, nil, metrics.New())
	ctx := context.Background()

	account := createAccount(t, ledger, "user-1", 0)
	goal, err := svc.CreateGoal(ctx, core.Goal{
		OwnerID:    "user-1",
		Name:       "Vacation",
		Target:     core.Money{Cents: 500000},
		Currency:   "EUR",
		TargetDate: mustDate(t, "2025-12-15"),
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	contribute := func(cents int64) {
		_, err := ledger.CreateTransaction(ctx, core.Transaction{
			OwnerID:   "user-1",
			AccountID: account.ID,
			Type:      core.EntryGoalContribution,
			Amount:    core.Money{Cents: cents},
			GoalID:    goal.ID,
			Date:      mustDate(t, "2025-06-01"),
		})
		if err != nil {
			t.Fatalf("contribute: %v", err)
		}
	}
	contribute(120000)
	contribute(80000)

	view, err := svc.GoalProgress(ctx, "user-1", goal.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if view.Progress.CurrentCents != 200000 {
		t.Errorf("expected current 200000, got %d", view.Progress.CurrentCents)
	}
	if view.Progress.RemainingCents != 300000 {
		t.Errorf("expected remaining 300000, got %d", view.Progress.RemainingCents)
	}
	if view.Progress.Percent != 40 {
		t.Errorf("expected 40%%, got %.1f%%", view.Progress.Percent)
	}
	// Six months to the target date: 3000.00 / 6.
	if view.SuggestedMonthlyCents != 50000 {
		t.Errorf("expected suggested 50000, got %d", view.SuggestedMonthlyCents)
	}
}

func TestDebtProgressCountsOnlyLinkedPayments(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewProgressService(repo)
	ledger := NewLedgerService(repo, nil, metrics.New())
	ctx := context.Background()

	account := createAccount(t, ledger, "user-1", 0)
	debt, err := svc.CreateDebt(ctx, core.Debt{
		OwnerID:           "user-1",
		Name:              "Car loan",
		Principal:         core.Money{Cents: 120000},
		Status:            core.DebtActive,
		StartDate:         mustDate(t, "2025-01-01"),
		TotalInstallments: 12,
	})
	if err != nil {
		t.Fatalf("create debt: %v", err)
	}

	// A linked payment and an unlinked one of the same type.
	if _, err := ledger.CreateTransaction(ctx, core.Transaction{
		OwnerID: "user-1", AccountID: account.ID, Type: core.EntryDebtPayment,
		Amount: core.Money{Cents: 30000}, DebtID: debt.ID, Date: mustDate(t, "2025-06-01"),
	}); err != nil {
		t.Fatalf("linked payment: %v", err)
	}
	if _, err := ledger.CreateTransaction(ctx, core.Transaction{
		OwnerID: "user-1", AccountID: account.ID, Type: core.EntryDebtPayment,
		Amount: core.Money{Cents: 99999}, Date: mustDate(t, "2025-06-02"),
	}); err != nil {
		t.Fatalf("unlinked payment: %v", err)
	}

	view, err := svc.DebtProgress(ctx, "user-1", debt.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if view.Progress.CurrentCents != 30000 {
		t.Errorf("only linked payments count, expected 30000, got %d", view.Progress.CurrentCents)
	}
	if view.Progress.Percent != 25 {
		t.Errorf("expected 25%%, got %.1f%%", view.Progress.Percent)
	}
}

func TestLoanProgress(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewProgressService(repo)
	ledger := NewLedgerService(repo, nil, metrics.New())
	ctx := context.Background()

	account := createAccount(t, ledger, "user-1", 0)
	loan, err := svc.CreateLoan(ctx, core.Loan{
		OwnerID:   "user-1",
		Name:      "To Marco",
		Borrower:  "Marco",
		Principal: core.Money{Cents: 50000},
		Status:    core.LoanActive,
		StartDate: mustDate(t, "2025-01-01"),
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}

	if _, err := ledger.CreateTransaction(ctx, core.Transaction{
		OwnerID: "user-1", AccountID: account.ID, Type: core.EntryLoanPayment,
		Amount: core.Money{Cents: 50000}, LoanID: loan.ID, Date: mustDate(t, "2025-06-01"),
	}); err != nil {
		t.Fatalf("repayment: %v", err)
	}

	views, err := svc.ListLoans(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 loan, got %d", len(views))
	}
	if !views[0].Progress.Complete() {
		t.Errorf("fully repaid loan must be complete: %+v", views[0].Progress)
	}
}

func TestDebtStatusRefreshPersists(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewProgressService(repo)
	ledger := NewLedgerService(repo, nil, metrics.New())
	ctx := context.Background()

	account := createAccount(t, ledger, "user-1", 0)
	debt, err := svc.CreateDebt(ctx, core.Debt{
		OwnerID:           "user-1",
		Name:              "Car loan",
		Principal:         core.Money{Cents: 100000},
		Status:            core.DebtActive,
		StartDate:         mustDate(t, "2025-01-01"),
		TotalInstallments: 10,
	})
	if err != nil {
		t.Fatalf("create debt: %v", err)
	}

	pay := func(cents int64) {
		t.Helper()
		if _, err := ledger.CreateTransaction(ctx, core.Transaction{
			OwnerID: "user-1", AccountID: account.ID, Type: core.EntryDebtPayment,
			Amount: core.Money{Cents: cents}, DebtID: debt.ID, Date: mustDate(t, "2025-06-01"),
		}); err != nil {
			t.Fatalf("payment: %v", err)
		}
	}

	pay(40000)
	view, err := svc.DebtProgress(ctx, "user-1", debt.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if view.Debt.Status != core.DebtPartial {
		t.Errorf("expected partial after first payment, got %s", view.Debt.Status)
	}
	stored, err := repo.GetDebt(ctx, "user-1", debt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != core.DebtPartial {
		t.Errorf("partial status not persisted, got %s", stored.Status)
	}

	pay(60000)
	view, err = svc.DebtProgress(ctx, "user-1", debt.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if view.Debt.Status != core.DebtPaid {
		t.Errorf("expected paid after full repayment, got %s", view.Debt.Status)
	}
}
