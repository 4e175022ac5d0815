package http

import (
	"net/http"

	"fintra/internal/core"
	"fintra/internal/services"
	"fintra/internal/storage"
)

type paymentResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Amount       string   `json:"amount"`
	Currency     string   `json:"currency"`
	DueDate      string   `json:"dueDate"`
	Status       string   `json:"status"`
	Priority     string   `json:"priority"`
	CategoryID   string   `json:"categoryId,omitempty"`
	AccountID    string   `json:"accountId,omitempty"`
	DebtID       string   `json:"debtId,omitempty"`
	LoanID       string   `json:"loanId,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	ReminderDays int      `json:"reminderDays,omitempty"`
	IsRecurring  bool     `json:"isRecurring"`
	Frequency    string   `json:"frequency,omitempty"`
	PaidDate     string   `json:"paidDate,omitempty"`
	PaidAmount   string   `json:"paidAmount,omitempty"`
}

func paymentJSON(p core.ScheduledPayment) paymentResponse {
	out := paymentResponse{
		ID:           p.ID,
		Name:         p.Name,
		Amount:       p.Amount.String(),
		Currency:     p.Currency,
		DueDate:      p.DueDate.String(),
		Status:       string(p.Status),
		Priority:     string(p.Priority),
		CategoryID:   p.CategoryID,
		AccountID:    p.AccountID,
		DebtID:       p.DebtID,
		LoanID:       p.LoanID,
		Notes:        p.Notes,
		Tags:         p.Tags,
		ReminderDays: p.ReminderDays,
		IsRecurring:  p.IsRecurring,
		Frequency:    string(p.Frequency),
	}
	if !p.PaidDate.IsEmpty() {
		out.PaidDate = p.PaidDate.String()
		out.PaidAmount = p.PaidAmount.String()
	}
	return out
}

func paymentsJSON(payments []core.ScheduledPayment) []paymentResponse {
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentJSON(p))
	}
	return out
}

type createPaymentRequest struct {
	Name         string   `json:"name"`
	Amount       string   `json:"amount"`
	Currency     string   `json:"currency"`
	DueDate      string   `json:"dueDate"`
	Priority     string   `json:"priority"`
	CategoryID   string   `json:"categoryId"`
	AccountID    string   `json:"accountId"`
	DebtID       string   `json:"debtId"`
	LoanID       string   `json:"loanId"`
	Notes        string   `json:"notes"`
	Tags         []string `json:"tags"`
	ReminderDays int      `json:"reminderDays"`
	IsRecurring  bool     `json:"isRecurring"`
	Frequency    string   `json:"frequency"`
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid amount")
		return
	}
	dueDate, err := core.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid dueDate")
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	payment := core.ScheduledPayment{
		OwnerID:      ownerID(r),
		Name:         req.Name,
		Amount:       amount,
		Currency:     currency,
		DueDate:      dueDate,
		Priority:     core.Priority(req.Priority),
		CategoryID:   req.CategoryID,
		AccountID:    req.AccountID,
		DebtID:       req.DebtID,
		LoanID:       req.LoanID,
		Notes:        req.Notes,
		Tags:         req.Tags,
		ReminderDays: req.ReminderDays,
		IsRecurring:  req.IsRecurring,
		Frequency:    core.Frequency(req.Frequency),
	}
	created, err := s.schedule.Create(r.Context(), payment)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentJSON(created))
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	var filter storage.PaymentFilter
	if status := r.URL.Query().Get("status"); status != "" {
		ps := core.PaymentStatus(status)
		if !ps.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid status")
			return
		}
		filter.Statuses = []core.PaymentStatus{ps}
	}
	if days := queryInt(r, "upcomingDays", 0); days > 0 {
		payments, err := s.schedule.Upcoming(r.Context(), ownerID(r), days)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"scheduledPayments": paymentsJSON(payments)})
		return
	}
	payments, err := s.schedule.List(r.Context(), ownerID(r), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scheduledPayments": paymentsJSON(payments)})
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.schedule.Get(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentJSON(payment))
}

type settlePaymentRequest struct {
	PaidDate       string `json:"paidDate"`
	PaidAmount     string `json:"paidAmount"`
	SkipRecurrence bool   `json:"skipRecurrence"`
}

func (s *Server) handleSettlePayment(w http.ResponseWriter, r *http.Request) {
	var req settlePaymentRequest
	if r.ContentLength > 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}
	var opts services.SettleOptions
	opts.SkipRecurrence = req.SkipRecurrence
	if req.PaidDate != "" {
		d, err := core.ParseDate(req.PaidDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid paidDate")
			return
		}
		opts.PaidDate = d
	}
	if req.PaidAmount != "" {
		amount, err := parseAmount(req.PaidAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid paidAmount")
			return
		}
		opts.PaidAmount = amount
	}

	result, err := s.schedule.Settle(r.Context(), ownerID(r), r.PathValue("id"), opts)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := map[string]any{"payment": paymentJSON(result.Payment)}
	if result.Next != nil {
		out["next"] = paymentJSON(*result.Next)
	}
	if result.Entry != nil {
		out["entry"] = transactionJSON(*result.Entry)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.schedule.Cancel(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentJSON(payment))
}

func (s *Server) handleGenerateFromDebt(w http.ResponseWriter, r *http.Request) {
	payments, err := s.schedule.GenerateFromDebt(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"scheduledPayments": paymentsJSON(payments)})
}
