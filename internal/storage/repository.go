// Package storage implements the durable store on SQLite. Every query is
// owner-scoped; derived values (balances, progress) are computed by the
// aggregation queries in ledger.go, never stored.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintra/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// busy_timeout makes contending writers queue on the lock instead of
	// failing with SQLITE_BUSY, so a settlement race falls through to the
	// conditional update and the loser sees the domain conflict.
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDate(s string) core.Date {
	if s == "" {
		return core.Date{}
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

func dateString(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CreateAccount inserts a new account.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, owner_id, name, currency, initial_balance_cents, include_in_total, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Name, a.Currency, a.InitialBalance.Cents,
		boolInt(a.IncludeInTotal), boolInt(a.IsActive), nowUTC())
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

const accountColumns = `id, owner_id, name, currency, initial_balance_cents, include_in_total, is_active, created_at`

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var (
		a                        core.Account
		includeInTotal, isActive int
		createdAt                string
	)
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Currency, &a.InitialBalance.Cents,
		&includeInTotal, &isActive, &createdAt)
	if err != nil {
		return core.Account{}, err
	}
	a.IncludeInTotal = includeInTotal != 0
	a.IsActive = isActive != 0
	a.CreatedAt = parseTime(createdAt)
	return a, nil
}

// GetAccount returns the owner's account or core.ErrNotFound. An account
// belonging to another owner is reported as absent.
func (r *SQLiteRepository) GetAccount(ctx context.Context, ownerID, id string) (core.Account, error) {
	if ownerID == "" {
		return core.Account{}, core.ErrMissingOwner
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND owner_id = ?`, id, ownerID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// ListAccounts returns all of the owner's accounts, newest first.
func (r *SQLiteRepository) ListAccounts(ctx context.Context, ownerID string) ([]core.Account, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccount rewrites the mutable account fields.
func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	if a.OwnerID == "" {
		return core.ErrMissingOwner
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, currency = ?, initial_balance_cents = ?, include_in_total = ?, is_active = ?
		WHERE id = ? AND owner_id = ?`,
		a.Name, a.Currency, a.InitialBalance.Cents, boolInt(a.IncludeInTotal), boolInt(a.IsActive),
		a.ID, a.OwnerID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// CreateCategory inserts a new category.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, owner_id, name, kind) VALUES (?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, string(c.Kind))
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// ListCategories returns the owner's categories sorted by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, kind FROM categories WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var kind string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.EntryType(kind)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
