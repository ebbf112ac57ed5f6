package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/handler"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/cache"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/idgen"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/journal"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/observability"
	"github.com/boddenberg/openbanking-ledger-go/internal/service"

	"go.uber.org/zap"
)

type testServer struct {
	router  http.Handler
	bank    *service.BankService
	tokens  *service.TokenService
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, withAuth bool) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	j := journal.New(logger)
	c := cache.New[*domain.Customer](time.Minute)
	t.Cleanup(c.Close)

	bank := service.NewBankService(idgen.NewAccountSequence(), idgen.NewCardSequence(), j, metrics, logger)
	svc := handler.Services{
		Bank:      bank,
		Payments:  service.NewPaymentService(bank, j, metrics, logger),
		Customers: service.NewCustomerDirectory(nil, c, metrics, logger),
	}
	if withAuth {
		svc.Tokens = service.NewTokenService("test-secret", time.Minute)
	}
	return &testServer{
		router:  handler.NewRouter(svc, metrics, logger),
		bank:    bank,
		tokens:  svc.Tokens,
		metrics: metrics,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rec.Body.String())
	}
	return v
}

func TestHealthz(t *testing.T) {
	router := handler.NewRouter(handler.Services{}, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHealthz_ReportsRegistryCounts(t *testing.T) {
	s := newTestServer(t, false)
	s.do(t, http.MethodPost, "/v1/accounts", `{"customer_id":"c1","customer_name":"Alice"}`)
	s.do(t, http.MethodPost, "/v1/cards", `{"customer_id":"c1","customer_name":"Alice"}`)

	rec := s.do(t, http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	health := decode[domain.HealthStatus](t, rec)
	if health.Accounts != 1 || health.Cards != 1 {
		t.Errorf("expected 1 account and 1 card, got %d/%d", health.Accounts, health.Cards)
	}
	if len(health.Services) != 1 || health.Services[0].Name != "ledger-api" {
		t.Errorf("unexpected services: %+v", health.Services)
	}
}

func TestReadyz(t *testing.T) {
	s := newTestServer(t, false)
	s.do(t, http.MethodPost, "/v1/accounts", `{"customer_id":"c1","customer_name":"Alice"}`)

	rec := s.do(t, http.MethodGet, "/readyz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["accounts"] != float64(1) {
		t.Errorf("expected 1 account, got %v", body["accounts"])
	}
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, false)
	s.do(t, http.MethodPost, "/v1/accounts", `{"customer_id":"c1","customer_name":"Alice"}`)

	rec := s.do(t, http.MethodGet, "/metrics", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ledger_operations_total") {
		t.Error("expected ledger_operations_total in exposition")
	}
}

func TestPing(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodGet, "/ping", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestLedgerMetrics(t *testing.T) {
	s := newTestServer(t, false)
	s.do(t, http.MethodPost, "/v1/accounts", `{"customer_id":"c1","customer_name":"Alice"}`)
	s.do(t, http.MethodPost, "/v1/accounts/ACC1001/withdraw", `{"amount":"5.00"}`)

	rec := s.do(t, http.MethodGet, "/v1/metrics/ledger", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	m := decode[domain.LedgerMetrics](t, rec)
	if m.AccountsOpened != 1 || m.RejectedOps != 1 {
		t.Errorf("expected 1 opened and 1 rejected, got %+v", m)
	}
}
