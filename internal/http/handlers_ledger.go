package http

import (
	"net/http"

	"fintra/internal/core"
	"fintra/internal/storage"
)

type transactionResponse struct {
	ID                 string `json:"id"`
	AccountID          string `json:"accountId"`
	CategoryID         string `json:"categoryId,omitempty"`
	Type               string `json:"type"`
	Amount             string `json:"amount"`
	AmountCents        int64  `json:"amountCents"`
	Date               string `json:"date"`
	Description        string `json:"description,omitempty"`
	DebtID             string `json:"debtId,omitempty"`
	LoanID             string `json:"loanId,omitempty"`
	GoalID             string `json:"goalId,omitempty"`
	ScheduledPaymentID string `json:"scheduledPaymentId,omitempty"`
}

func transactionJSON(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:                 t.ID,
		AccountID:          t.AccountID,
		CategoryID:         t.CategoryID,
		Type:               string(t.Type),
		Amount:             t.Amount.String(),
		AmountCents:        t.Amount.Cents,
		Date:               t.Date.String(),
		Description:        t.Description,
		DebtID:             t.DebtID,
		LoanID:             t.LoanID,
		GoalID:             t.GoalID,
		ScheduledPaymentID: t.ScheduledPaymentID,
	}
}

type createTransactionRequest struct {
	AccountID   string `json:"accountId"`
	CategoryID  string `json:"categoryId"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	DebtID      string `json:"debtId"`
	LoanID      string `json:"loanId"`
	GoalID      string `json:"goalId"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid amount")
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), core.Transaction{
		OwnerID:     ownerID(r),
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        core.EntryType(req.Type),
		Amount:      amount,
		Date:        date,
		Description: req.Description,
		DebtID:      req.DebtID,
		LoanID:      req.LoanID,
		GoalID:      req.GoalID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionJSON(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := storage.EntryFilter{
		AccountID:  r.URL.Query().Get("accountId"),
		CategoryID: r.URL.Query().Get("categoryId"),
	}
	if typ := r.URL.Query().Get("type"); typ != "" {
		entryType := core.EntryType(typ)
		if !entryType.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid type filter")
			return
		}
		filter.Types = []core.EntryType{entryType}
	}
	if period := r.URL.Query().Get("period"); period != "" {
		rng, err := core.ResolvePeriod(core.Period(period), core.DateOf(timeNow()))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		filter.Range = &rng
	}

	entries, err := s.ledger.ListTransactions(r.Context(), ownerID(r), filter, queryInt(r, "limit", 0))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(entries))
	for _, t := range entries {
		out = append(out, transactionJSON(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createTransferRequest struct {
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId"`
	Amount        string `json:"amount"`
	Fee           string `json:"fee"`
	Date          string `json:"date"`
	Description   string `json:"description"`
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid amount")
		return
	}
	var fee core.Money
	if req.Fee != "" {
		// Zero is a valid explicit fee; negatives are caught by validation.
		cents, err := core.ParseSignedDecimalToCents(req.Fee)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid fee")
			return
		}
		fee = core.Money{Cents: cents}
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	created, err := s.ledger.CreateTransfer(r.Context(), core.Transfer{
		OwnerID:       ownerID(r),
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        amount,
		Fee:           fee,
		Date:          date,
		Description:   req.Description,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transferJSON(created))
}

type transferResponse struct {
	ID            string `json:"id"`
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId"`
	Amount        string `json:"amount"`
	Fee           string `json:"fee"`
	Date          string `json:"date"`
	Description   string `json:"description,omitempty"`
}

func transferJSON(t core.Transfer) transferResponse {
	return transferResponse{
		ID:            t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount.String(),
		Fee:           t.Fee.String(),
		Date:          t.Date.String(),
		Description:   t.Description,
	}
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := s.ledger.ListTransfers(r.Context(), ownerID(r), queryInt(r, "limit", 0))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]transferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, transferJSON(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transfers": out})
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type createCategoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := s.ledger.CreateCategory(r.Context(), core.Category{
		OwnerID: ownerID(r),
		Name:    req.Name,
		Kind:    core.EntryType(req.Kind),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{ID: created.ID, Name: created.Name, Kind: string(created.Kind)})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context(), ownerID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Kind: string(c.Kind)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}
