// Package http is the JSON transport over the services layer. It owns no
// domain semantics: handlers decode, delegate and encode.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"fintra/internal/log"
	"fintra/internal/metrics"
	"fintra/internal/services"
)

type Server struct {
	ledger    *services.LedgerService
	progress  *services.ProgressService
	schedule  *services.ScheduleService
	dashboard *services.DashboardService
	metrics   *metrics.Metrics
	started   time.Time
}

// NewServer wires the handlers and returns an http.Server ready to listen.
func NewServer(addr string, logger *log.Logger, ledger *services.LedgerService, progress *services.ProgressService, schedule *services.ScheduleService, dashboard *services.DashboardService, m *metrics.Metrics) *http.Server {
	s := &Server{
		ledger:    ledger,
		progress:  progress,
		schedule:  schedule,
		dashboard: dashboard,
		metrics:   m,
		started:   time.Now(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", m.Handler())

	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("GET /api/accounts/{id}/balance", s.handleAccountBalance)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /api/transfers", s.handleCreateTransfer)
	mux.HandleFunc("GET /api/transfers", s.handleListTransfers)

	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)

	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("GET /api/goals/{id}", s.handleGoalProgress)

	mux.HandleFunc("POST /api/debts", s.handleCreateDebt)
	mux.HandleFunc("GET /api/debts", s.handleListDebts)
	mux.HandleFunc("GET /api/debts/{id}", s.handleDebtProgress)
	mux.HandleFunc("POST /api/debts/{id}/schedule", s.handleGenerateFromDebt)

	mux.HandleFunc("POST /api/loans", s.handleCreateLoan)
	mux.HandleFunc("GET /api/loans", s.handleListLoans)
	mux.HandleFunc("GET /api/loans/{id}", s.handleLoanProgress)

	mux.HandleFunc("POST /api/scheduled-payments", s.handleCreatePayment)
	mux.HandleFunc("GET /api/scheduled-payments", s.handleListPayments)
	mux.HandleFunc("GET /api/scheduled-payments/{id}", s.handleGetPayment)
	mux.HandleFunc("POST /api/scheduled-payments/{id}/settle", s.handleSettlePayment)
	mux.HandleFunc("POST /api/scheduled-payments/{id}/cancel", s.handleCancelPayment)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PATCH /api/settings", s.handlePatchSettings)

	handler := log.Middleware(logger)(requireOwner(mux))

	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}

// requireOwner rejects API requests without a verified user identity.
// Health and metrics stay open for probes and scrapers.
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		if ownerID(r) == "" {
			writeError(w, http.StatusUnauthorized, "missing_identity", "missing "+ownerHeader+" header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}
