package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"fintra/internal/log"
	"fintra/internal/metrics"
	"fintra/internal/services"
	"fintra/internal/storage"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	m := metrics.New()
	ledger := services.NewLedgerService(repo, nil, m)
	progress := services.NewProgressService(repo)
	schedule := services.NewScheduleService(repo, nil, m)
	dashboard := services.NewDashboardService(repo, ledger, progress, schedule)
	logger := log.New(log.Config{Level: slog.LevelError, Format: "text", Component: log.ComponentHTTP})

	return NewServer(":0", logger, ledger, progress, schedule, dashboard, m).Handler
}

func doJSON(t *testing.T, h http.Handler, method, path, owner, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if owner != "" {
		req.Header.Set(ownerHeader, owner)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad response body %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestRequireOwner(t *testing.T) {
	h := newTestServer(t)

	if rr := doJSON(t, h, "GET", "/api/accounts", "", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("no identity: expected 401, got %d", rr.Code)
	}
	if rr := doJSON(t, h, "GET", "/healthz", "", ""); rr.Code != http.StatusOK {
		t.Errorf("healthz must stay open, got %d", rr.Code)
	}
	if rr := doJSON(t, h, "GET", "/metrics", "", ""); rr.Code != http.StatusOK {
		t.Errorf("metrics must stay open, got %d", rr.Code)
	}
}

func TestAccountFlow(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "POST", "/api/accounts", "user-1",
		`{"name":"Checking","initialBalance":"1000.00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body)
	}
	created := decode(t, rr)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("created account has no id")
	}

	rr = doJSON(t, h, "GET", "/api/accounts/"+id+"/balance", "user-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("balance: expected 200, got %d: %s", rr.Code, rr.Body)
	}
	if got := decode(t, rr)["balance"]; got != "1000.00" {
		t.Errorf("expected balance 1000.00, got %v", got)
	}

	t.Run("other owners cannot see it", func(t *testing.T) {
		rr := doJSON(t, h, "GET", "/api/accounts/"+id+"/balance", "user-2", "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("unknown balance mode", func(t *testing.T) {
		rr := doJSON(t, h, "GET", "/api/accounts/"+id+"/balance?mode=wide", "user-1", "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

func TestTransactionValidation(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "POST", "/api/accounts", "user-1", `{"name":"Checking"}`)
	id, _ := decode(t, rr)["id"].(string)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"valid", `{"accountId":"` + id + `","type":"expense","amount":"12.34"}`, http.StatusCreated},
		{"zero amount", `{"accountId":"` + id + `","type":"expense","amount":"0"}`, http.StatusBadRequest},
		{"negative amount", `{"accountId":"` + id + `","type":"expense","amount":"-5"}`, http.StatusBadRequest},
		{"bad type", `{"accountId":"` + id + `","type":"refund","amount":"12.34"}`, http.StatusBadRequest},
		{"unknown account", `{"accountId":"missing","type":"expense","amount":"12.34"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, h, "POST", "/api/transactions", "user-1", tc.body)
			if rr.Code != tc.code {
				t.Errorf("expected %d, got %d: %s", tc.code, rr.Code, rr.Body)
			}
		})
	}
}

func TestSettleConflictStatus(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "POST", "/api/scheduled-payments", "user-1",
		`{"name":"Rent","amount":"850.00","dueDate":"2030-01-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body)
	}
	id, _ := decode(t, rr)["id"].(string)

	if rr := doJSON(t, h, "POST", "/api/scheduled-payments/"+id+"/settle", "user-1", ""); rr.Code != http.StatusOK {
		t.Fatalf("settle: expected 200, got %d: %s", rr.Code, rr.Body)
	}
	rr = doJSON(t, h, "POST", "/api/scheduled-payments/"+id+"/settle", "user-1", "")
	if rr.Code != http.StatusConflict {
		t.Errorf("second settle: expected 409, got %d: %s", rr.Code, rr.Body)
	}
	if got := decode(t, rr)["reason"]; got != "invalid_transition" {
		t.Errorf("expected reason invalid_transition, got %v", got)
	}
}

func TestSettingsPatch(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "GET", "/api/settings", "user-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}
	if got := decode(t, rr)["expensesPeriod"]; got != "month" {
		t.Errorf("expected default period month, got %v", got)
	}

	rr = doJSON(t, h, "PATCH", "/api/settings", "user-1", `{"expensesPeriod":"week"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d: %s", rr.Code, rr.Body)
	}
	if got := decode(t, rr)["expensesPeriod"]; got != "week" {
		t.Errorf("expected week after patch, got %v", got)
	}

	t.Run("unknown key is a client error", func(t *testing.T) {
		rr := doJSON(t, h, "PATCH", "/api/settings", "user-1", `{"theme":"dark"}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d: %s", rr.Code, rr.Body)
		}
	})
}

func TestDebtScheduleEndpoint(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "POST", "/api/debts", "user-1",
		`{"name":"Car loan","creditor":"Bank","principal":"1200.00","startDate":"2030-01-01","totalInstallments":12}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create debt: expected 201, got %d: %s", rr.Code, rr.Body)
	}
	id, _ := decode(t, rr)["id"].(string)

	rr = doJSON(t, h, "POST", "/api/debts/"+id+"/schedule", "user-1", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("schedule: expected 201, got %d: %s", rr.Code, rr.Body)
	}
	payments, _ := decode(t, rr)["scheduledPayments"].([]any)
	if len(payments) != 12 {
		t.Errorf("expected 12 installments, got %d", len(payments))
	}
}

func TestDashboardEndpoint(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "GET", "/api/dashboard", "user-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body)
	}
	body := decode(t, rr)
	if _, ok := body["balance"]; !ok {
		t.Error("dashboard missing balance")
	}
	if _, ok := body["config"]; !ok {
		t.Error("dashboard missing config")
	}
}

func TestCategoryEndpoints(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "POST", "/api/categories", "user-1", `{"name":"Groceries","kind":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body)
	}
	if rr := doJSON(t, h, "POST", "/api/categories", "user-1", `{"name":"Bad","kind":"transfer"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("non income/expense kind: expected 400, got %d", rr.Code)
	}

	rr = doJSON(t, h, "GET", "/api/categories", "user-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	categories, _ := decode(t, rr)["categories"].([]any)
	if len(categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(categories))
	}

	rr = doJSON(t, h, "GET", "/api/categories", "user-2", "")
	if got, _ := decode(t, rr)["categories"].([]any); len(got) != 0 {
		t.Errorf("categories must not leak across owners, got %d", len(got))
	}
}

func TestTransferEndpoints(t *testing.T) {
	h := newTestServer(t)

	mkAccount := func(name string) string {
		t.Helper()
		rr := doJSON(t, h, "POST", "/api/accounts", "user-1",
			`{"name":"`+name+`","initialBalance":"500.00"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("account: expected 201, got %d: %s", rr.Code, rr.Body)
		}
		id, _ := decode(t, rr)["id"].(string)
		return id
	}
	from := mkAccount("Checking")
	to := mkAccount("Savings")

	rr := doJSON(t, h, "POST", "/api/transfers", "user-1",
		`{"fromAccountId":"`+from+`","toAccountId":"`+to+`","amount":"100.00","fee":"1.50"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("transfer: expected 201, got %d: %s", rr.Code, rr.Body)
	}

	rr = doJSON(t, h, "GET", "/api/transfers", "user-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	transfers, _ := decode(t, rr)["transfers"].([]any)
	if len(transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(transfers))
	}
	first, _ := transfers[0].(map[string]any)
	if first["amount"] != "100.00" || first["fee"] != "1.50" {
		t.Errorf("unexpected transfer payload: %v", first)
	}
}

func TestUpdateAccount(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "POST", "/api/accounts", "user-1",
		`{"name":"Checking","initialBalance":"1000.00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body)
	}
	id, _ := decode(t, rr)["id"].(string)

	rr = doJSON(t, h, "PUT", "/api/accounts/"+id, "user-1",
		`{"name":"Main checking","includeInTotal":false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rr.Code, rr.Body)
	}
	updated := decode(t, rr)
	if updated["name"] != "Main checking" {
		t.Errorf("expected renamed account, got %v", updated["name"])
	}
	if updated["includeInTotal"] != false {
		t.Errorf("expected includeInTotal false, got %v", updated["includeInTotal"])
	}
	if updated["initialBalance"] != "1000.00" {
		t.Errorf("absent fields must keep their values, got %v", updated["initialBalance"])
	}

	if rr := doJSON(t, h, "PUT", "/api/accounts/"+id, "user-2", `{"name":"X"}`); rr.Code != http.StatusNotFound {
		t.Errorf("cross-owner update: expected 404, got %d", rr.Code)
	}
}

func TestTransferFeeEdgeCases(t *testing.T) {
	h := newTestServer(t)

	mkAccount := func(name string) string {
		t.Helper()
		rr := doJSON(t, h, "POST", "/api/accounts", "user-1",
			`{"name":"`+name+`","initialBalance":"500.00"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("account: expected 201, got %d: %s", rr.Code, rr.Body)
		}
		id, _ := decode(t, rr)["id"].(string)
		return id
	}
	from := mkAccount("Checking")
	to := mkAccount("Savings")

	rr := doJSON(t, h, "POST", "/api/transfers", "user-1",
		`{"fromAccountId":"`+from+`","toAccountId":"`+to+`","amount":"100.00","fee":"0.00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("explicit zero fee must behave like an omitted fee, got %d: %s", rr.Code, rr.Body)
	}
	if got := decode(t, rr)["fee"]; got != "0.00" {
		t.Errorf("expected fee 0.00, got %v", got)
	}

	rr = doJSON(t, h, "POST", "/api/transfers", "user-1",
		`{"fromAccountId":"`+from+`","toAccountId":"`+to+`","amount":"100.00","fee":"-1.00"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("negative fee: expected 400, got %d", rr.Code)
	}
}
