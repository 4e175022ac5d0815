package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fintra/internal/core"
)

const paymentColumns = `id, owner_id, name, amount_cents, currency, due_date, status, priority,
	category_id, account_id, debt_id, loan_id, notes, tags, reminder_days,
	is_recurring, frequency, paid_date, paid_amount_cents, created_at`

func scanPayment(row interface{ Scan(...any) error }) (core.ScheduledPayment, error) {
	var (
		p                            core.ScheduledPayment
		due, status, priority, tags  string
		isRecurring                  int
		frequency, paidDate, created string
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Amount.Cents, &p.Currency, &due, &status, &priority,
		&p.CategoryID, &p.AccountID, &p.DebtID, &p.LoanID, &p.Notes, &tags, &p.ReminderDays,
		&isRecurring, &frequency, &paidDate, &p.PaidAmount.Cents, &created)
	if err != nil {
		return core.ScheduledPayment{}, err
	}
	p.DueDate = parseDate(due)
	p.Status = core.PaymentStatus(status)
	p.Priority = core.Priority(priority)
	p.IsRecurring = isRecurring != 0
	p.Frequency = core.Frequency(frequency)
	p.PaidDate = parseDate(paidDate)
	p.CreatedAt = parseTime(created)
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return core.ScheduledPayment{}, fmt.Errorf("decode tags: %w", err)
		}
	}
	return p, nil
}

func paymentArgs(p core.ScheduledPayment) ([]any, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return []any{
		p.ID, p.OwnerID, p.Name, p.Amount.Cents, p.Currency, p.DueDate.String(),
		string(p.Status), string(p.Priority), p.CategoryID, p.AccountID, p.DebtID, p.LoanID,
		p.Notes, string(encoded), p.ReminderDays, boolInt(p.IsRecurring), string(p.Frequency),
		dateString(p.PaidDate), p.PaidAmount.Cents, nowUTC(),
	}, nil
}

const insertPaymentSQL = `
	INSERT INTO scheduled_payments (` + paymentColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateScheduledPayment inserts one payment.
func (r *SQLiteRepository) CreateScheduledPayment(ctx context.Context, p core.ScheduledPayment) error {
	args, err := paymentArgs(p)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, insertPaymentSQL, args...); err != nil {
		return fmt.Errorf("create scheduled payment: %w", err)
	}
	return nil
}

// CreateScheduledPayments inserts a batch atomically. Used by debt
// installment plans: either the whole plan exists or none of it.
func (r *SQLiteRepository) CreateScheduledPayments(ctx context.Context, payments []core.ScheduledPayment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch insert: %w", err)
	}
	defer tx.Rollback()

	for _, p := range payments {
		args, err := paymentArgs(p)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertPaymentSQL, args...); err != nil {
			return fmt.Errorf("insert scheduled payment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch insert: %w", err)
	}
	return nil
}

// GetScheduledPayment returns the owner's payment or core.ErrNotFound.
func (r *SQLiteRepository) GetScheduledPayment(ctx context.Context, ownerID, id string) (core.ScheduledPayment, error) {
	if ownerID == "" {
		return core.ScheduledPayment{}, core.ErrMissingOwner
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM scheduled_payments WHERE id = ? AND owner_id = ?`, id, ownerID)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ScheduledPayment{}, core.ErrNotFound
	}
	if err != nil {
		return core.ScheduledPayment{}, fmt.Errorf("get scheduled payment: %w", err)
	}
	return p, nil
}

// PaymentFilter narrows a scheduled-payment listing.
type PaymentFilter struct {
	Statuses []core.PaymentStatus
	DueBy    core.Date // inclusive upper bound on due date, when set
	DebtID   string
}

// ListScheduledPayments returns matching payments ordered by due date.
func (r *SQLiteRepository) ListScheduledPayments(ctx context.Context, ownerID string, f PaymentFilter) ([]core.ScheduledPayment, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}
	query := `SELECT ` + paymentColumns + ` FROM scheduled_payments WHERE owner_id = ?`
	args := []any{ownerID}
	if len(f.Statuses) > 0 {
		query += ` AND status IN (?` + strings.Repeat(", ?", len(f.Statuses)-1) + `)`
		for _, s := range f.Statuses {
			args = append(args, string(s))
		}
	}
	if !f.DueBy.IsEmpty() {
		query += ` AND due_date <= ?`
		args = append(args, f.DueBy.String())
	}
	if f.DebtID != "" {
		query += ` AND debt_id = ?`
		args = append(args, f.DebtID)
	}
	query += ` ORDER BY due_date, created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scheduled payments: %w", err)
	}
	defer rows.Close()

	var payments []core.ScheduledPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scheduled payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// SweepOverdue transitions the owner's pending payments whose due date has
// passed into overdue. A single conditional UPDATE makes the sweep
// idempotent: already-overdue rows never match again.
func (r *SQLiteRepository) SweepOverdue(ctx context.Context, ownerID string, today core.Date) (int64, error) {
	if ownerID == "" {
		return 0, core.ErrMissingOwner
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_payments SET status = ? WHERE owner_id = ? AND status = ? AND due_date <= ?`,
		string(core.PaymentOverdue), ownerID, string(core.PaymentPending), today.String())
	if err != nil {
		return 0, fmt.Errorf("sweep overdue: %w", err)
	}
	return res.RowsAffected()
}

// SweepAllOverdue is the worker variant of SweepOverdue, run across every
// owner. The condition is identical, so it shares the idempotence guarantee.
func (r *SQLiteRepository) SweepAllOverdue(ctx context.Context, today core.Date) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_payments SET status = ? WHERE status = ? AND due_date <= ?`,
		string(core.PaymentOverdue), string(core.PaymentPending), today.String())
	if err != nil {
		return 0, fmt.Errorf("sweep overdue: %w", err)
	}
	return res.RowsAffected()
}

// SettlePayment marks a payment paid and, in the same transaction, inserts
// the recurrence clone and the settlement ledger entry when given.
//
// The status change is a conditional UPDATE restricted to settleable states.
// When two callers race, the second one's update matches zero rows and the
// whole transaction rolls back with core.ErrInvalidTransition, so at most
// one ledger entry and one clone ever exist per settlement.
func (r *SQLiteRepository) SettlePayment(ctx context.Context, ownerID, id string, paidDate core.Date, paidAmount core.Money, clone *core.ScheduledPayment, entry *core.Transaction) error {
	if ownerID == "" {
		return core.ErrMissingOwner
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settle: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE scheduled_payments
		SET status = ?, paid_date = ?, paid_amount_cents = ?
		WHERE id = ? AND owner_id = ? AND status IN (?, ?)`,
		string(core.PaymentPaid), paidDate.String(), paidAmount.Cents,
		id, ownerID, string(core.PaymentPending), string(core.PaymentOverdue))
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}
	if n == 0 {
		return core.ErrInvalidTransition
	}

	if clone != nil {
		args, err := paymentArgs(*clone)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertPaymentSQL, args...); err != nil {
			return fmt.Errorf("insert recurrence clone: %w", err)
		}
	}

	if entry != nil {
		if err := insertTransaction(ctx, tx, *entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settle: %w", err)
	}
	return nil
}

// CancelPayment moves a settleable payment to cancelled. Terminal states
// never match the conditional UPDATE and report core.ErrInvalidTransition.
func (r *SQLiteRepository) CancelPayment(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return core.ErrMissingOwner
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_payments SET status = ?
		WHERE id = ? AND owner_id = ? AND status IN (?, ?)`,
		string(core.PaymentCancelled),
		id, ownerID, string(core.PaymentPending), string(core.PaymentOverdue))
	if err != nil {
		return fmt.Errorf("cancel payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel payment: %w", err)
	}
	if n == 0 {
		return core.ErrInvalidTransition
	}
	return nil
}
