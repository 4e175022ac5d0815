package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fintra/internal/core"
)

// EntryFilter narrows a transaction aggregation or listing. The zero filter
// matches every entry of the owner.
type EntryFilter struct {
	AccountID          string
	CategoryID         string
	Types              []core.EntryType
	Range              *core.DateRange
	DebtID             string
	LoanID             string
	GoalID             string
	ScheduledPaymentID string
}

func (f EntryFilter) where(args *[]any) []string {
	conds := []string{}
	if f.AccountID != "" {
		conds = append(conds, "account_id = ?")
		*args = append(*args, f.AccountID)
	}
	if f.CategoryID != "" {
		conds = append(conds, "category_id = ?")
		*args = append(*args, f.CategoryID)
	}
	if len(f.Types) > 0 {
		ph := make([]string, len(f.Types))
		for i, t := range f.Types {
			ph[i] = "?"
			*args = append(*args, string(t))
		}
		conds = append(conds, "type IN ("+strings.Join(ph, ", ")+")")
	}
	if f.Range != nil {
		conds = append(conds, "date >= ? AND date <= ?")
		*args = append(*args, f.Range.Start.String(), f.Range.End.String())
	}
	if f.DebtID != "" {
		conds = append(conds, "debt_id = ?")
		*args = append(*args, f.DebtID)
	}
	if f.LoanID != "" {
		conds = append(conds, "loan_id = ?")
		*args = append(*args, f.LoanID)
	}
	if f.GoalID != "" {
		conds = append(conds, "goal_id = ?")
		*args = append(*args, f.GoalID)
	}
	if f.ScheduledPaymentID != "" {
		conds = append(conds, "scheduled_payment_id = ?")
		*args = append(*args, f.ScheduledPaymentID)
	}
	return conds
}

const transactionColumns = `id, owner_id, account_id, category_id, type, amount_cents, date, description,
	debt_id, loan_id, goal_id, scheduled_payment_id, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t                 core.Transaction
		typ, date, created string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.AccountID, &t.CategoryID, &typ, &t.Amount.Cents,
		&date, &t.Description, &t.DebtID, &t.LoanID, &t.GoalID, &t.ScheduledPaymentID, &created)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.EntryType(typ)
	t.Date = parseDate(date)
	t.CreatedAt = parseTime(created)
	return t, nil
}

// CreateTransaction posts one ledger entry.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	return insertTransaction(ctx, r.db, t)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, db execer, t core.Transaction) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_id, account_id, category_id, type, amount_cents, date, description,
			debt_id, loan_id, goal_id, scheduled_payment_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.AccountID, t.CategoryID, string(t.Type), t.Amount.Cents,
		t.Date.String(), t.Description, t.DebtID, t.LoanID, t.GoalID, t.ScheduledPaymentID, nowUTC())
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// GetTransaction returns the owner's entry or core.ErrNotFound.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	if ownerID == "" {
		return core.Transaction{}, core.ErrMissingOwner
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// DeleteTransaction hard-deletes an entry. Derived balances change on the
// next read; nothing else needs touching.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return core.ErrMissingOwner
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListTransactions returns matching entries, newest first. A limit of zero
// means no limit.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID string, f EntryFilter, limit int) ([]core.Transaction, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}
	args := []any{ownerID}
	conds := append([]string{"owner_id = ?"}, f.where(&args)...)
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY date DESC, created_at DESC`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var entries []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

// SumEntries aggregates amount and count over the owner's matching entries.
// No matches is a zero aggregate, not an error.
func (r *SQLiteRepository) SumEntries(ctx context.Context, ownerID string, f EntryFilter) (core.Aggregate, error) {
	if ownerID == "" {
		return core.Aggregate{}, core.ErrMissingOwner
	}
	args := []any{ownerID}
	conds := append([]string{"owner_id = ?"}, f.where(&args)...)
	query := `SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM transactions WHERE ` +
		strings.Join(conds, " AND ")

	var agg core.Aggregate
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&agg.TotalCents, &agg.Count); err != nil {
		return core.Aggregate{}, fmt.Errorf("sum entries: %w", err)
	}
	return agg, nil
}

// TransferFlow is the aggregated movement of one transfer direction.
type TransferFlow struct {
	AmountCents int64
	FeeCents    int64
	Count       int64
}

// CreateTransfer records a transfer between two accounts.
func (r *SQLiteRepository) CreateTransfer(ctx context.Context, t core.Transfer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transfers (id, owner_id, from_account_id, to_account_id, amount_cents, fee_cents, date, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.FromAccountID, t.ToAccountID, t.Amount.Cents, t.Fee.Cents,
		t.Date.String(), t.Description, nowUTC())
	if err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

// ListTransfers returns the owner's transfers, newest first.
func (r *SQLiteRepository) ListTransfers(ctx context.Context, ownerID string, limit int) ([]core.Transfer, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}
	query := `SELECT id, owner_id, from_account_id, to_account_id, amount_cents, fee_cents, date, description, created_at
		FROM transfers WHERE owner_id = ? ORDER BY date DESC, created_at DESC`
	args := []any{ownerID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []core.Transfer
	for rows.Next() {
		var t core.Transfer
		var date, created string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.FromAccountID, &t.ToAccountID,
			&t.Amount.Cents, &t.Fee.Cents, &date, &t.Description, &created); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		t.Date = parseDate(date)
		t.CreatedAt = parseTime(created)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// SumTransfersOut aggregates transfers leaving an account: the transferred
// amounts and the fees, which both debit the source.
func (r *SQLiteRepository) SumTransfersOut(ctx context.Context, ownerID, accountID string) (TransferFlow, error) {
	return r.sumTransfers(ctx, ownerID, accountID, "from_account_id")
}

// SumTransfersIn aggregates transfers arriving at an account. Fees stay with
// the source account and are reported here only for completeness.
func (r *SQLiteRepository) SumTransfersIn(ctx context.Context, ownerID, accountID string) (TransferFlow, error) {
	return r.sumTransfers(ctx, ownerID, accountID, "to_account_id")
}

func (r *SQLiteRepository) sumTransfers(ctx context.Context, ownerID, accountID, column string) (TransferFlow, error) {
	if ownerID == "" {
		return TransferFlow{}, core.ErrMissingOwner
	}
	var flow TransferFlow
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COALESCE(SUM(fee_cents), 0), COUNT(*)
		 FROM transfers WHERE owner_id = ? AND `+column+` = ?`,
		ownerID, accountID).Scan(&flow.AmountCents, &flow.FeeCents, &flow.Count)
	if err != nil {
		return TransferFlow{}, fmt.Errorf("sum transfers: %w", err)
	}
	return flow, nil
}

// CategorySum is one row of a category breakdown.
type CategorySum struct {
	CategoryID string
	Name       string
	TotalCents int64
	Count      int64
}

// SumByCategory groups the owner's entries of one type within a range by
// category, largest first. Uncategorized entries group under an empty id.
func (r *SQLiteRepository) SumByCategory(ctx context.Context, ownerID string, typ core.EntryType, rng core.DateRange) ([]CategorySum, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.category_id, COALESCE(c.name, ''), SUM(t.amount_cents), COUNT(*)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id AND c.owner_id = t.owner_id
		WHERE t.owner_id = ? AND t.type = ? AND t.date >= ? AND t.date <= ?
		GROUP BY t.category_id, c.name
		ORDER BY SUM(t.amount_cents) DESC`,
		ownerID, string(typ), rng.Start.String(), rng.End.String())
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	var sums []CategorySum
	for rows.Next() {
		var s CategorySum
		if err := rows.Scan(&s.CategoryID, &s.Name, &s.TotalCents, &s.Count); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}
