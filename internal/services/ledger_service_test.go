package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintra/internal/core"
	"fintra/internal/metrics"
	"fintra/internal/storage"
)

var testToday = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestLedger(t *testing.T) (*LedgerService, *storage.SQLiteRepository) {
	t.Helper()
	repo := newTestRepo(t)
	svc := NewLedgerService(repo, nil, metrics.New())
	svc.now = func() time.Time { return testToday }
	return svc, repo
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func createAccount(t *testing.T, svc *LedgerService, owner string, initialCents int64) core.Account {
	t.Helper()
	account, err := svc.CreateAccount(context.Background(), core.Account{
		OwnerID:        owner,
		Name:           "Checking",
		Currency:       "EUR",
		InitialBalance: core.Money{Cents: initialCents},
		IncludeInTotal: true,
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

func postEntry(t *testing.T, svc *LedgerService, owner, accountID string, typ core.EntryType, cents int64, date string) core.Transaction {
	t.Helper()
	entry, err := svc.CreateTransaction(context.Background(), core.Transaction{
		OwnerID:   owner,
		AccountID: accountID,
		Type:      typ,
		Amount:    core.Money{Cents: cents},
		Date:      mustDate(t, date),
	})
	if err != nil {
		t.Fatalf("post %s entry: %v", typ, err)
	}
	return entry
}

func TestCreateTransactionChecksReferences(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()
	account := createAccount(t, svc, "user-1", 0)

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.CreateTransaction(ctx, core.Transaction{
			OwnerID:   "user-1",
			AccountID: "missing",
			Type:      core.EntryExpense,
			Amount:    core.Money{Cents: 100},
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("cross-owner goal link reads as absent", func(t *testing.T) {
		progress := NewProgressService(svc.storage)
		goal, err := progress.CreateGoal(ctx, core.Goal{
			OwnerID: "user-2", Name: "Vacation", Target: core.Money{Cents: 100000}, IsActive: true,
		})
		if err != nil {
			t.Fatalf("create goal: %v", err)
		}
		_, err = svc.CreateTransaction(ctx, core.Transaction{
			OwnerID:   "user-1",
			AccountID: account.ID,
			Type:      core.EntryGoalContribution,
			Amount:    core.Money{Cents: 100},
			GoalID:    goal.ID,
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("date defaults to today", func(t *testing.T) {
		entry, err := svc.CreateTransaction(ctx, core.Transaction{
			OwnerID:   "user-1",
			AccountID: account.ID,
			Type:      core.EntryExpense,
			Amount:    core.Money{Cents: 100},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if entry.Date.String() != "2025-06-15" {
			t.Errorf("expected today, got %s", entry.Date)
		}
	})
}

func TestAccountBalanceModes(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()
	account := createAccount(t, svc, "user-1", 10000)

	postEntry(t, svc, "user-1", account.ID, core.EntryIncome, 250000, "2025-06-01")
	postEntry(t, svc, "user-1", account.ID, core.EntryExpense, 30000, "2025-06-05")
	postEntry(t, svc, "user-1", account.ID, core.EntryDebtPayment, 20000, "2025-06-06")

	narrow, err := svc.AccountBalance(ctx, "user-1", account.ID, core.NarrowDebit)
	if err != nil {
		t.Fatalf("narrow balance: %v", err)
	}
	// Narrow counts the expense only: 100 + 2500 - 300.
	if narrow.Balance.Cents != 230000 {
		t.Errorf("narrow: expected 230000, got %d", narrow.Balance.Cents)
	}

	all, err := svc.AccountBalance(ctx, "user-1", account.ID, core.AllOutflow)
	if err != nil {
		t.Fatalf("all-outflow balance: %v", err)
	}
	// All-outflow also subtracts the debt payment.
	if all.Balance.Cents != 210000 {
		t.Errorf("all-outflow: expected 210000, got %d", all.Balance.Cents)
	}
}

func TestTransferAffectsBothBalances(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()
	source := createAccount(t, svc, "user-1", 100000)
	dest := createAccount(t, svc, "user-1", 0)

	_, err := svc.CreateTransfer(ctx, core.Transfer{
		OwnerID:       "user-1",
		FromAccountID: source.ID,
		ToAccountID:   dest.ID,
		Amount:        core.Money{Cents: 20000},
		Fee:           core.Money{Cents: 500},
		Date:          mustDate(t, "2025-06-10"),
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	from, _ := svc.AccountBalance(ctx, "user-1", source.ID, core.NarrowDebit)
	if from.Balance.Cents != 79500 {
		t.Errorf("source: expected 79500, got %d", from.Balance.Cents)
	}
	to, _ := svc.AccountBalance(ctx, "user-1", dest.ID, core.NarrowDebit)
	// The destination is credited the amount; the fee stays with the source.
	if to.Balance.Cents != 20000 {
		t.Errorf("destination: expected 20000, got %d", to.Balance.Cents)
	}
}

func TestTransferRejectsSameAccount(t *testing.T) {
	svc, _ := newTestLedger(t)
	account := createAccount(t, svc, "user-1", 100000)

	_, err := svc.CreateTransfer(context.Background(), core.Transfer{
		OwnerID:       "user-1",
		FromAccountID: account.ID,
		ToAccountID:   account.ID,
		Amount:        core.Money{Cents: 100},
		Date:          mustDate(t, "2025-06-10"),
	})
	if !errors.Is(err, core.ErrSameAccount) {
		t.Errorf("expected ErrSameAccount, got %v", err)
	}
}

func TestPortfolioBalance(t *testing.T) {
	svc, repo := newTestLedger(t)
	ctx := context.Background()

	counted := createAccount(t, svc, "user-1", 50000)
	excluded, err := svc.CreateAccount(ctx, core.Account{
		OwnerID: "user-1", Name: "Cash jar", Currency: "EUR",
		InitialBalance: core.Money{Cents: 30000}, IncludeInTotal: false, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create excluded account: %v", err)
	}
	inactive := createAccount(t, svc, "user-1", 99999)
	inactive.IsActive = false
	if err := repo.UpdateAccount(ctx, inactive); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	view, err := svc.PortfolioBalance(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("portfolio: %v", err)
	}
	if view.TotalCents != 50000 {
		t.Errorf("expected 50000, got %d", view.TotalCents)
	}
	if len(view.Accounts) != 1 || view.Accounts[0].Account.ID != counted.ID {
		t.Errorf("unexpected counted set: %+v", view.Accounts)
	}
	_ = excluded

	t.Run("restricted to configured subset", func(t *testing.T) {
		view, err := svc.PortfolioBalance(ctx, "user-1", []string{"nope"})
		if err != nil {
			t.Fatalf("portfolio: %v", err)
		}
		if view.TotalCents != 0 || len(view.Accounts) != 0 {
			t.Errorf("expected empty view, got %+v", view)
		}
	})
}

func TestSummarizePeriod(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()
	account := createAccount(t, svc, "user-1", 0)

	// Current month: 300.00 expenses. Previous period: 200.00.
	postEntry(t, svc, "user-1", account.ID, core.EntryExpense, 30000, "2025-06-10")
	postEntry(t, svc, "user-1", account.ID, core.EntryExpense, 20000, "2025-05-20")

	summary, err := svc.SummarizePeriod(ctx, "user-1", core.EntryExpense, core.PeriodMonth)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.TotalCents != 30000 || summary.Count != 1 {
		t.Errorf("expected {30000 1}, got %+v", summary)
	}
	if summary.Trend.Direction != core.TrendUp {
		t.Errorf("expected up trend, got %s", summary.Trend.Direction)
	}
	if summary.Trend.ChangePct != 50 {
		t.Errorf("expected +50%%, got %.1f%%", summary.Trend.ChangePct)
	}

	t.Run("no prior activity reports zero change", func(t *testing.T) {
		summary, err := svc.SummarizePeriod(ctx, "user-1", core.EntryIncome, core.PeriodMonth)
		if err != nil {
			t.Fatalf("summarize: %v", err)
		}
		if summary.Trend.ChangePct != 0 {
			t.Errorf("prior zero must report 0%%, got %.1f%%", summary.Trend.ChangePct)
		}
	})
}

func TestGoalCompletionRefresh(t *testing.T) {
	svc, repo := newTestLedger(t)
	ctx := context.Background()
	account := createAccount(t, svc, "user-1", 0)

	progress := NewProgressService(repo)
	goal, err := progress.CreateGoal(ctx, core.Goal{
		OwnerID: "user-1", Name: "Vacation", Target: core.Money{Cents: 50000}, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	contribute := func(cents int64) core.Transaction {
		entry, err := svc.CreateTransaction(ctx, core.Transaction{
			OwnerID:   "user-1",
			AccountID: account.ID,
			Type:      core.EntryGoalContribution,
			Amount:    core.Money{Cents: cents},
			GoalID:    goal.ID,
			Date:      mustDate(t, "2025-06-10"),
		})
		if err != nil {
			t.Fatalf("contribute: %v", err)
		}
		return entry
	}

	contribute(20000)
	got, _ := repo.GetGoal(ctx, "user-1", goal.ID)
	if got.IsCompleted {
		t.Error("goal must not be completed at 40%")
	}

	last := contribute(30000)
	got, _ = repo.GetGoal(ctx, "user-1", goal.ID)
	if !got.IsCompleted {
		t.Error("goal must be completed once contributions meet the target")
	}

	// Deleting a contribution re-derives the flag.
	if err := svc.DeleteTransaction(ctx, "user-1", last.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = repo.GetGoal(ctx, "user-1", goal.ID)
	if got.IsCompleted {
		t.Error("goal must revert to incomplete after the contribution is removed")
	}
}
