package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintra/internal/amqp"
	"fintra/internal/core"
	"fintra/internal/log"
	"fintra/internal/metrics"
	"fintra/internal/storage"
)

// ScheduleService runs the scheduled-payment lifecycle: lazy overdue
// sweeping, settlement with recurrence cloning and ledger posting,
// cancellation, and installment-plan generation from debts.
type ScheduleService struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewScheduleService(repo *storage.SQLiteRepository, events *amqp.Client, m *metrics.Metrics) *ScheduleService {
	return &ScheduleService{
		storage: repo,
		events:  events,
		metrics: m,
		now:     time.Now,
	}
}

func (s *ScheduleService) today() core.Date {
	return core.DateOf(s.now())
}

func (s *ScheduleService) publish(ctx context.Context, event *amqp.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.FromContext(ctx).Warn("Failed to publish event",
			"kind", event.Kind, log.FieldError, err)
	}
}

// Create stores a new scheduled payment in the pending state.
func (s *ScheduleService) Create(ctx context.Context, p core.ScheduledPayment) (core.ScheduledPayment, error) {
	p.ID = uuid.NewString()
	p.Status = core.PaymentPending
	if p.Priority == "" {
		p.Priority = core.PriorityMedium
	}
	if err := p.Validate(); err != nil {
		return core.ScheduledPayment{}, err
	}
	if p.AccountID != "" {
		if _, err := s.storage.GetAccount(ctx, p.OwnerID, p.AccountID); err != nil {
			return core.ScheduledPayment{}, fmt.Errorf("account %s: %w", p.AccountID, err)
		}
	}
	if err := s.storage.CreateScheduledPayment(ctx, p); err != nil {
		return core.ScheduledPayment{}, err
	}
	return p, nil
}

// SweepOverdue lazily transitions the owner's past-due pending payments to
// overdue. It runs before every read that surfaces payments and is safe to
// repeat: a second run finds nothing left to move.
func (s *ScheduleService) SweepOverdue(ctx context.Context, ownerID string) (int64, error) {
	swept, err := s.storage.SweepOverdue(ctx, ownerID, s.today())
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.SweepRuns.Inc()
		s.metrics.SweptOverdue.Add(float64(swept))
	}
	if swept > 0 {
		log.FromContext(ctx).Info("Marked payments overdue",
			log.FieldOwnerID, ownerID, "swept", swept)
	}
	return swept, nil
}

// List sweeps and then returns the owner's payments under the filter.
func (s *ScheduleService) List(ctx context.Context, ownerID string, f storage.PaymentFilter) ([]core.ScheduledPayment, error) {
	if _, err := s.SweepOverdue(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.storage.ListScheduledPayments(ctx, ownerID, f)
}

// Get sweeps and then returns one payment.
func (s *ScheduleService) Get(ctx context.Context, ownerID, id string) (core.ScheduledPayment, error) {
	if _, err := s.SweepOverdue(ctx, ownerID); err != nil {
		return core.ScheduledPayment{}, err
	}
	return s.storage.GetScheduledPayment(ctx, ownerID, id)
}

// Upcoming returns open payments due within the next days, for the
// dashboard widget.
func (s *ScheduleService) Upcoming(ctx context.Context, ownerID string, days int) ([]core.ScheduledPayment, error) {
	return s.List(ctx, ownerID, storage.PaymentFilter{
		Statuses: []core.PaymentStatus{core.PaymentPending, core.PaymentOverdue},
		DueBy:    s.today().AddDays(days),
	})
}

// SettleOptions are the caller-supplied settlement overrides. Zero values
// mean "use the defaults": today's date, the scheduled amount, and a
// recurrence clone for recurring payments.
type SettleOptions struct {
	PaidDate       core.Date
	PaidAmount     core.Money
	SkipRecurrence bool
}

// SettleResult reports what the settlement produced.
type SettleResult struct {
	Payment core.ScheduledPayment
	Next    *core.ScheduledPayment
	Entry   *core.Transaction
}

// Settle marks a pending or overdue payment paid. Settling an already-paid
// or cancelled payment fails with core.ErrInvalidTransition; concurrent
// settlement of the same payment lets exactly one caller through.
//
// On success the payment carries its paid date and amount, a recurring
// payment spawns its next pending occurrence, and a payment linked to an
// account posts one expense entry to the ledger, visible to every
// subsequent balance projection.
func (s *ScheduleService) Settle(ctx context.Context, ownerID, id string, opts SettleOptions) (SettleResult, error) {
	payment, err := s.storage.GetScheduledPayment(ctx, ownerID, id)
	if err != nil {
		return SettleResult{}, err
	}
	if !payment.Status.CanSettle() {
		if s.metrics != nil {
			s.metrics.SettlementConflicts.Inc()
		}
		return SettleResult{}, fmt.Errorf("payment is %s: %w", payment.Status, core.ErrInvalidTransition)
	}

	paidDate := opts.PaidDate
	if paidDate.IsEmpty() {
		paidDate = s.today()
	}
	paidAmount := opts.PaidAmount
	if paidAmount.IsZero() {
		paidAmount = payment.Amount
	}
	if err := paidAmount.Validate(); err != nil {
		return SettleResult{}, err
	}

	var clone *core.ScheduledPayment
	if !opts.SkipRecurrence {
		if next, ok := payment.NextOccurrence(uuid.NewString()); ok {
			clone = &next
		}
	}

	var entry *core.Transaction
	if payment.AccountID != "" {
		entry = &core.Transaction{
			ID:                 uuid.NewString(),
			OwnerID:            ownerID,
			AccountID:          payment.AccountID,
			CategoryID:         payment.CategoryID,
			Type:               core.EntryExpense,
			Amount:             paidAmount,
			Date:               paidDate,
			Description:        payment.Name,
			DebtID:             payment.DebtID,
			LoanID:             payment.LoanID,
			ScheduledPaymentID: payment.ID,
		}
	}

	if err := s.storage.SettlePayment(ctx, ownerID, id, paidDate, paidAmount, clone, entry); err != nil {
		if s.metrics != nil && core.IsConflict(err) {
			s.metrics.SettlementConflicts.Inc()
		}
		return SettleResult{}, err
	}

	if s.metrics != nil {
		s.metrics.SettlementsTotal.Inc()
		if clone != nil {
			s.metrics.PaymentsGenerated.Inc()
		}
		if entry != nil {
			s.metrics.LedgerEntriesTotal.WithLabelValues(string(core.EntryExpense)).Inc()
		}
	}
	s.publish(ctx, amqp.NewEvent(amqp.KindPaymentSettled, ownerID, id))
	if entry != nil {
		s.publish(ctx, amqp.NewEvent(amqp.KindEntryPosted, ownerID, entry.ID))
	}

	payment.Status = core.PaymentPaid
	payment.PaidDate = paidDate
	payment.PaidAmount = paidAmount
	log.FromContext(ctx).Info("Settled scheduled payment",
		log.FieldPaymentID, id,
		log.FieldAmountCents, paidAmount.Cents,
		"recurrence_cloned", clone != nil,
		"ledger_posted", entry != nil)
	return SettleResult{Payment: payment, Next: clone, Entry: entry}, nil
}

// Cancel moves a pending or overdue payment to cancelled. Paid payments
// cannot be cancelled.
func (s *ScheduleService) Cancel(ctx context.Context, ownerID, id string) (core.ScheduledPayment, error) {
	payment, err := s.storage.GetScheduledPayment(ctx, ownerID, id)
	if err != nil {
		return core.ScheduledPayment{}, err
	}
	if !payment.Status.CanCancel() {
		return core.ScheduledPayment{}, fmt.Errorf("payment is %s: %w", payment.Status, core.ErrInvalidTransition)
	}
	if err := s.storage.CancelPayment(ctx, ownerID, id); err != nil {
		return core.ScheduledPayment{}, err
	}
	s.publish(ctx, amqp.NewEvent(amqp.KindPaymentCancelled, ownerID, id))
	payment.Status = core.PaymentCancelled
	return payment, nil
}

// GenerateFromDebt expands a debt's installment plan into scheduled
// payments: totalInstallments near-equal amounts, monthly-spaced from the
// debt's due date (start date when no due date is set), each linked to the
// debt at high priority, all pending, inserted in one atomic batch.
func (s *ScheduleService) GenerateFromDebt(ctx context.Context, ownerID, debtID string) ([]core.ScheduledPayment, error) {
	debt, err := s.storage.GetDebt(ctx, ownerID, debtID)
	if err != nil {
		return nil, err
	}
	count := debt.TotalInstallments
	if count < 1 {
		count = 1
	}
	amounts := core.InstallmentAmounts(debt.Principal, count)
	dueDates := core.InstallmentDueDates(debt.InstallmentStart(), count)

	payments := make([]core.ScheduledPayment, count)
	for i := range payments {
		payments[i] = core.ScheduledPayment{
			ID:       uuid.NewString(),
			OwnerID:  ownerID,
			Name:     fmt.Sprintf("%s (%d/%d)", debt.Name, i+1, count),
			Amount:   amounts[i],
			Currency: debt.Currency,
			DueDate:  dueDates[i],
			Status:   core.PaymentPending,
			Priority: core.PriorityHigh,
			DebtID:   debt.ID,
		}
	}
	if err := s.storage.CreateScheduledPayments(ctx, payments); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.PaymentsGenerated.Add(float64(count))
	}
	log.FromContext(ctx).Info("Generated installment plan",
		log.FieldDebtID, debtID, "installments", count)
	return payments, nil
}
