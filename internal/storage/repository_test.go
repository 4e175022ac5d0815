package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintra/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testAccount(owner, id string) core.Account {
	return core.Account{
		ID:             id,
		OwnerID:        owner,
		Name:           "Checking",
		Currency:       "EUR",
		InitialBalance: core.Money{Cents: 100000},
		IncludeInTotal: true,
		IsActive:       true,
	}
}

func TestAccountCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateAccount(ctx, testAccount("user-1", "a1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetAccount(ctx, "user-1", "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Checking" || got.InitialBalance.Cents != 100000 || !got.IsActive {
		t.Errorf("unexpected account: %+v", got)
	}

	got.Name = "Main checking"
	got.IsActive = false
	if err := repo.UpdateAccount(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetAccount(ctx, "user-1", "a1")
	if got.Name != "Main checking" || got.IsActive {
		t.Errorf("update not persisted: %+v", got)
	}

	accounts, err := repo.ListAccounts(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("expected 1 account, got %d", len(accounts))
	}
}

func TestOwnerScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateAccount(ctx, testAccount("user-1", "a1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another owner's record must look exactly like a missing one.
	if _, err := repo.GetAccount(ctx, "user-2", "a1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner get: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetAccount(ctx, "user-1", "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing id get: expected ErrNotFound, got %v", err)
	}

	accounts, err := repo.ListAccounts(ctx, "user-2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("cross-owner list must be empty, got %d", len(accounts))
	}
}

func TestMissingOwnerFailsLoudly(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetAccount(ctx, "", "a1"); !errors.Is(err, core.ErrMissingOwner) {
		t.Errorf("get: expected ErrMissingOwner, got %v", err)
	}
	if _, err := repo.ListAccounts(ctx, ""); !errors.Is(err, core.ErrMissingOwner) {
		t.Errorf("list: expected ErrMissingOwner, got %v", err)
	}
	if _, err := repo.SumEntries(ctx, "", EntryFilter{}); !errors.Is(err, core.ErrMissingOwner) {
		t.Errorf("sum: expected ErrMissingOwner, got %v", err)
	}
}

func TestDashboardConfigUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, found, err := repo.GetDashboardConfig(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("config should not exist yet")
	}

	if err := repo.SaveDashboardConfig(ctx, "user-1", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, found, err := repo.GetDashboardConfig(ctx, "user-1")
	if err != nil || !found {
		t.Fatalf("get after save: found=%v err=%v", found, err)
	}
	if string(doc) != `{"version":1}` {
		t.Errorf("unexpected doc: %s", doc)
	}

	// Saving again replaces, not duplicates.
	if err := repo.SaveDashboardConfig(ctx, "user-1", []byte(`{"version":2}`)); err != nil {
		t.Fatalf("second save: %v", err)
	}
	doc, _, _ = repo.GetDashboardConfig(ctx, "user-1")
	if string(doc) != `{"version":2}` {
		t.Errorf("upsert did not replace: %s", doc)
	}
}
