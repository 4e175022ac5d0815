package http

import (
	"io"
	"net/http"

	"fintra/internal/core"
	"fintra/internal/services"
	"fintra/internal/storage"
)

func summaryJSON(s services.PeriodSummary) map[string]any {
	return map[string]any{
		"period": string(s.Period),
		"from":   s.Range.Start.String(),
		"to":     s.Range.End.String(),
		"total":  core.Money{Cents: s.TotalCents}.String(),
		"count":  s.Count,
		"trend": map[string]any{
			"direction": string(s.Trend.Direction),
			"changePct": s.Trend.ChangePct,
		},
	}
}

func breakdownJSON(sums []storage.CategorySum) []map[string]any {
	out := make([]map[string]any, 0, len(sums))
	for _, c := range sums {
		out = append(out, map[string]any{
			"categoryId": c.CategoryID,
			"name":       c.Name,
			"total":      core.Money{Cents: c.TotalCents}.String(),
			"count":      c.Count,
		})
	}
	return out
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.dashboard.Dashboard(r.Context(), ownerID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	recent := make([]transactionResponse, 0, len(view.RecentTransactions))
	for _, t := range view.RecentTransactions {
		recent = append(recent, transactionJSON(t))
	}
	goals := make([]map[string]any, 0, len(view.Goals))
	for _, g := range view.Goals {
		goals = append(goals, goalViewJSON(g))
	}

	out := map[string]any{
		"config":             view.Config,
		"balance":            core.Money{Cents: view.Balance.TotalCents}.String(),
		"income":             summaryJSON(view.Income),
		"expenses":           summaryJSON(view.Expenses),
		"recentTransactions": recent,
		"goals":              goals,
		"categoryBreakdown":  breakdownJSON(view.CategoryBreakdown),
	}
	if view.Config.ShowScheduledPayments {
		out["upcomingPayments"] = paymentsJSON(view.UpcomingPayments)
	}
	if view.FeaturedGoal != nil {
		out["featuredGoal"] = goalViewJSON(*view.FeaturedGoal)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.dashboard.Settings(r.Context(), ownerID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	patch, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "unreadable body")
		return
	}
	cfg, err := s.dashboard.UpdateSettings(r.Context(), ownerID(r), patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
