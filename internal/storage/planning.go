package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintra/internal/core"
)

// CreateDebt inserts a new debt.
func (r *SQLiteRepository) CreateDebt(ctx context.Context, d core.Debt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO debts (id, owner_id, name, creditor, principal_cents, currency, status, start_date, due_date, total_installments, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.OwnerID, d.Name, d.Creditor, d.Principal.Cents, d.Currency, string(d.Status),
		d.StartDate.String(), dateString(d.DueDate), d.TotalInstallments, nowUTC())
	if err != nil {
		return fmt.Errorf("create debt: %w", err)
	}
	return nil
}

const debtColumns = `id, owner_id, name, creditor, principal_cents, currency, status, start_date, due_date, total_installments, created_at`

func scanDebt(row interface{ Scan(...any) error }) (core.Debt, error) {
	var (
		d                       core.Debt
		status, start, due, created string
	)
	err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Creditor, &d.Principal.Cents, &d.Currency,
		&status, &start, &due, &d.TotalInstallments, &created)
	if err != nil {
		return core.Debt{}, err
	}
	d.Status = core.DebtStatus(status)
	d.StartDate = parseDate(start)
	d.DueDate = parseDate(due)
	d.CreatedAt = parseTime(created)
	return d, nil
}

// GetDebt returns the owner's debt or core.ErrNotFound.
func (r *SQLiteRepository) GetDebt(ctx context.Context, ownerID, id string) (core.Debt, error) {
	if ownerID == "" {
		return core.Debt{}, core.ErrMissingOwner
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE id = ? AND owner_id = ?`, id, ownerID)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debt{}, core.ErrNotFound
	}
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt: %w", err)
	}
	return d, nil
}

// ListDebts returns the owner's debts, newest first.
func (r *SQLiteRepository) ListDebts(ctx context.Context, ownerID string) ([]core.Debt, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE owner_id = ? ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var debts []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// UpdateDebtStatus records the user-visible repayment status.
func (r *SQLiteRepository) UpdateDebtStatus(ctx context.Context, ownerID, id string, status core.DebtStatus) error {
	if ownerID == "" {
		return core.ErrMissingOwner
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE debts SET status = ? WHERE id = ? AND owner_id = ?`, string(status), id, ownerID)
	if err != nil {
		return fmt.Errorf("update debt status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update debt status: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// CreateLoan inserts a new loan.
func (r *SQLiteRepository) CreateLoan(ctx context.Context, l core.Loan) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO loans (id, owner_id, name, borrower, principal_cents, currency, status, start_date, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.OwnerID, l.Name, l.Borrower, l.Principal.Cents, l.Currency, string(l.Status),
		l.StartDate.String(), dateString(l.DueDate), nowUTC())
	if err != nil {
		return fmt.Errorf("create loan: %w", err)
	}
	return nil
}

const loanColumns = `id, owner_id, name, borrower, principal_cents, currency, status, start_date, due_date, created_at`

func scanLoan(row interface{ Scan(...any) error }) (core.Loan, error) {
	var (
		l                           core.Loan
		status, start, due, created string
	)
	err := row.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Borrower, &l.Principal.Cents, &l.Currency,
		&status, &start, &due, &created)
	if err != nil {
		return core.Loan{}, err
	}
	l.Status = core.LoanStatus(status)
	l.StartDate = parseDate(start)
	l.DueDate = parseDate(due)
	l.CreatedAt = parseTime(created)
	return l, nil
}

// GetLoan returns the owner's loan or core.ErrNotFound.
func (r *SQLiteRepository) GetLoan(ctx context.Context, ownerID, id string) (core.Loan, error) {
	if ownerID == "" {
		return core.Loan{}, core.ErrMissingOwner
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = ? AND owner_id = ?`, id, ownerID)
	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Loan{}, core.ErrNotFound
	}
	if err != nil {
		return core.Loan{}, fmt.Errorf("get loan: %w", err)
	}
	return l, nil
}

// ListLoans returns the owner's loans, newest first.
func (r *SQLiteRepository) ListLoans(ctx context.Context, ownerID string) ([]core.Loan, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE owner_id = ? ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []core.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// UpdateLoanStatus records the user-visible repayment status.
func (r *SQLiteRepository) UpdateLoanStatus(ctx context.Context, ownerID, id string, status core.LoanStatus) error {
	if ownerID == "" {
		return core.ErrMissingOwner
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE loans SET status = ? WHERE id = ? AND owner_id = ?`, string(status), id, ownerID)
	if err != nil {
		return fmt.Errorf("update loan status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update loan status: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// CreateGoal inserts a new goal.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, owner_id, name, target_cents, currency, target_date, is_active, is_completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Name, g.Target.Cents, g.Currency, dateString(g.TargetDate),
		boolInt(g.IsActive), boolInt(g.IsCompleted), nowUTC())
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

const goalColumns = `id, owner_id, name, target_cents, currency, target_date, is_active, is_completed, created_at`

func scanGoal(row interface{ Scan(...any) error }) (core.Goal, error) {
	var (
		g                     core.Goal
		targetDate, created   string
		isActive, isCompleted int
	)
	err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Target.Cents, &g.Currency,
		&targetDate, &isActive, &isCompleted, &created)
	if err != nil {
		return core.Goal{}, err
	}
	g.TargetDate = parseDate(targetDate)
	g.IsActive = isActive != 0
	g.IsCompleted = isCompleted != 0
	g.CreatedAt = parseTime(created)
	return g, nil
}

// GetGoal returns the owner's goal or core.ErrNotFound.
func (r *SQLiteRepository) GetGoal(ctx context.Context, ownerID, id string) (core.Goal, error) {
	if ownerID == "" {
		return core.Goal{}, core.ErrMissingOwner
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND owner_id = ?`, id, ownerID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, core.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// ListGoals returns the owner's goals, newest first.
func (r *SQLiteRepository) ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE owner_id = ? ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// MarkGoalCompleted flips the completion flag once contributions reach the
// target.
func (r *SQLiteRepository) MarkGoalCompleted(ctx context.Context, ownerID, id string, completed bool) error {
	if ownerID == "" {
		return core.ErrMissingOwner
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE goals SET is_completed = ? WHERE id = ? AND owner_id = ?`,
		boolInt(completed), id, ownerID)
	if err != nil {
		return fmt.Errorf("mark goal completed: %w", err)
	}
	return nil
}
