package http

import (
	"net/http"

	"fintra/internal/core"
)

type accountResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initialBalance"`
	IncludeInTotal bool   `json:"includeInTotal"`
	IsActive       bool   `json:"isActive"`
}

func accountJSON(a core.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Currency:       a.Currency,
		InitialBalance: a.InitialBalance.String(),
		IncludeInTotal: a.IncludeInTotal,
		IsActive:       a.IsActive,
	}
}

type createAccountRequest struct {
	Name           string `json:"name"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initialBalance"`
	IncludeInTotal *bool  `json:"includeInTotal"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var initial core.Money
	if req.InitialBalance != "" {
		cents, err := core.ParseSignedDecimalToCents(req.InitialBalance)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid initialBalance")
			return
		}
		initial = core.Money{Cents: cents}
	}
	includeInTotal := true
	if req.IncludeInTotal != nil {
		includeInTotal = *req.IncludeInTotal
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	account, err := s.ledger.CreateAccount(r.Context(), core.Account{
		OwnerID:        ownerID(r),
		Name:           req.Name,
		Currency:       currency,
		InitialBalance: initial,
		IncludeInTotal: includeInTotal,
		IsActive:       true,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountJSON(account))
}

type updateAccountRequest struct {
	Name           *string `json:"name"`
	Currency       *string `json:"currency"`
	InitialBalance *string `json:"initialBalance"`
	IncludeInTotal *bool   `json:"includeInTotal"`
	IsActive       *bool   `json:"isActive"`
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account, err := s.ledger.Account(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Currency != nil {
		account.Currency = *req.Currency
	}
	if req.InitialBalance != nil {
		cents, err := core.ParseSignedDecimalToCents(*req.InitialBalance)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid initialBalance")
			return
		}
		account.InitialBalance = core.Money{Cents: cents}
	}
	if req.IncludeInTotal != nil {
		account.IncludeInTotal = *req.IncludeInTotal
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}

	updated, err := s.ledger.UpdateAccount(r.Context(), account)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accountJSON(updated))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	view, err := s.ledger.PortfolioBalance(r.Context(), ownerID(r), nil)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	accounts := make([]map[string]any, 0, len(view.Accounts))
	for _, b := range view.Accounts {
		accounts = append(accounts, map[string]any{
			"account": accountJSON(b.Account),
			"balance": b.Balance.String(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":    core.Money{Cents: view.TotalCents}.String(),
		"accounts": accounts,
	})
}

// handleAccountBalance reports one account's balance. The default debit
// mode is narrow (spending only); mode=all_outflow switches to the cash
// position the portfolio total uses.
func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	mode := core.NarrowDebit
	switch r.URL.Query().Get("mode") {
	case "", "narrow":
	case "all_outflow":
		mode = core.AllOutflow
	default:
		writeError(w, http.StatusBadRequest, "invalid_input", "mode must be narrow or all_outflow")
		return
	}

	view, err := s.ledger.AccountBalance(r.Context(), ownerID(r), r.PathValue("id"), mode)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account":      accountJSON(view.Account),
		"balance":      view.Balance.String(),
		"balanceCents": view.Balance.Cents,
		"income":       core.Money{Cents: view.IncomeCents}.String(),
		"debits":       core.Money{Cents: view.DebitCents}.String(),
		"transfersIn":  core.Money{Cents: view.TransfersIn}.String(),
		"transfersOut": core.Money{Cents: view.TransfersOut}.String(),
	})
}
