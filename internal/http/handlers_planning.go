package http

import (
	"net/http"

	"fintra/internal/core"
	"fintra/internal/services"
)

type progressResponse struct {
	Current   string  `json:"current"`
	Remaining string  `json:"remaining"`
	Percent   float64 `json:"percent"`
}

func progressJSON(p core.Progress) progressResponse {
	return progressResponse{
		Current:   core.Money{Cents: p.CurrentCents}.String(),
		Remaining: core.Money{Cents: p.RemainingCents}.String(),
		Percent:   p.Percent,
	}
}

type createGoalRequest struct {
	Name       string `json:"name"`
	Target     string `json:"target"`
	Currency   string `json:"currency"`
	TargetDate string `json:"targetDate"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	target, err := parseAmount(req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid target")
		return
	}
	targetDate, err := parseOptionalDate(req.TargetDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	goal := core.Goal{
		OwnerID:    ownerID(r),
		Name:       req.Name,
		Target:     target,
		Currency:   currency,
		TargetDate: targetDate,
		IsActive:   true,
	}
	created, err := s.progress.CreateGoal(r.Context(), goal)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, goalViewJSON(services.GoalView{Goal: created}))
}

func goalViewJSON(v services.GoalView) map[string]any {
	out := map[string]any{
		"id":          v.Goal.ID,
		"name":        v.Goal.Name,
		"target":      v.Goal.Target.String(),
		"currency":    v.Goal.Currency,
		"isActive":    v.Goal.IsActive,
		"isCompleted": v.Goal.IsCompleted,
		"progress":    progressJSON(v.Progress),
	}
	if !v.Goal.TargetDate.IsEmpty() {
		out["targetDate"] = v.Goal.TargetDate.String()
		out["suggestedMonthly"] = core.Money{Cents: v.SuggestedMonthlyCents}.String()
	}
	return out
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	views, err := s.progress.ListGoals(r.Context(), ownerID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(views))
	for _, v := range views {
		out = append(out, goalViewJSON(v))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	view, err := s.progress.GoalProgress(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goalViewJSON(view))
}

type createDebtRequest struct {
	Name              string `json:"name"`
	Creditor          string `json:"creditor"`
	Principal         string `json:"principal"`
	Currency          string `json:"currency"`
	StartDate         string `json:"startDate"`
	DueDate           string `json:"dueDate"`
	TotalInstallments int    `json:"totalInstallments"`
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req createDebtRequest
	if !decodeBody(w, r, &req) {
		return
	}
	principal, err := parseAmount(req.Principal)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid principal")
		return
	}
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if startDate.IsEmpty() {
		startDate = core.DateOf(timeNow())
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	installments := req.TotalInstallments
	if installments == 0 {
		installments = 1
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	debt := core.Debt{
		OwnerID:           ownerID(r),
		Name:              req.Name,
		Creditor:          req.Creditor,
		Principal:         principal,
		Currency:          currency,
		Status:            core.DebtActive,
		StartDate:         startDate,
		DueDate:           dueDate,
		TotalInstallments: installments,
	}
	created, err := s.progress.CreateDebt(r.Context(), debt)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, debtViewJSON(services.DebtView{Debt: created}))
}

func debtViewJSON(v services.DebtView) map[string]any {
	out := map[string]any{
		"id":                v.Debt.ID,
		"name":              v.Debt.Name,
		"creditor":          v.Debt.Creditor,
		"principal":         v.Debt.Principal.String(),
		"currency":          v.Debt.Currency,
		"status":            string(v.Debt.Status),
		"startDate":         v.Debt.StartDate.String(),
		"totalInstallments": v.Debt.TotalInstallments,
		"progress":          progressJSON(v.Progress),
	}
	if !v.Debt.DueDate.IsEmpty() {
		out["dueDate"] = v.Debt.DueDate.String()
	}
	return out
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	views, err := s.progress.ListDebts(r.Context(), ownerID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(views))
	for _, v := range views {
		out = append(out, debtViewJSON(v))
	}
	writeJSON(w, http.StatusOK, map[string]any{"debts": out})
}

func (s *Server) handleDebtProgress(w http.ResponseWriter, r *http.Request) {
	view, err := s.progress.DebtProgress(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debtViewJSON(view))
}

type createLoanRequest struct {
	Name      string `json:"name"`
	Borrower  string `json:"borrower"`
	Principal string `json:"principal"`
	Currency  string `json:"currency"`
	StartDate string `json:"startDate"`
	DueDate   string `json:"dueDate"`
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	principal, err := parseAmount(req.Principal)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid principal")
		return
	}
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if startDate.IsEmpty() {
		startDate = core.DateOf(timeNow())
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	loan := core.Loan{
		OwnerID:   ownerID(r),
		Name:      req.Name,
		Borrower:  req.Borrower,
		Principal: principal,
		Currency:  currency,
		Status:    core.LoanActive,
		StartDate: startDate,
		DueDate:   dueDate,
	}
	created, err := s.progress.CreateLoan(r.Context(), loan)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, loanViewJSON(services.LoanView{Loan: created}))
}

func loanViewJSON(v services.LoanView) map[string]any {
	out := map[string]any{
		"id":        v.Loan.ID,
		"name":      v.Loan.Name,
		"borrower":  v.Loan.Borrower,
		"principal": v.Loan.Principal.String(),
		"currency":  v.Loan.Currency,
		"status":    string(v.Loan.Status),
		"startDate": v.Loan.StartDate.String(),
		"progress":  progressJSON(v.Progress),
	}
	if !v.Loan.DueDate.IsEmpty() {
		out["dueDate"] = v.Loan.DueDate.String()
	}
	return out
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	views, err := s.progress.ListLoans(r.Context(), ownerID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(views))
	for _, v := range views {
		out = append(out, loanViewJSON(v))
	}
	writeJSON(w, http.StatusOK, map[string]any{"loans": out})
}

func (s *Server) handleLoanProgress(w http.ResponseWriter, r *http.Request) {
	view, err := s.progress.LoanProgress(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loanViewJSON(view))
}
