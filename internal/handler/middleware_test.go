package handler_test

import (
	"net/http"
	"strings"
	"testing"
)

func TestAuth_ReadsArePublic(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodGet, "/v1/customers/c1/accounts", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_WritesNeedToken(t *testing.T) {
	s := newTestServer(t, true)
	body := `{"customer_id":"c1","customer_name":"Alice"}`

	tests := []struct {
		name    string
		headers []string
	}{
		{"no header", nil},
		{"wrong scheme", []string{"Authorization", "Basic abc"}},
		{"garbage token", []string{"Authorization", "Bearer nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/v1/accounts", body, tt.headers...)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Errorf("expected JSON error body, got %s", rec.Body.String())
			}
		})
	}
}

func TestAuth_ValidTokenAndOwnership(t *testing.T) {
	s := newTestServer(t, true)

	alice, err := s.tokens.Sign("c1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	bob, err := s.tokens.Sign("c2")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rec := s.do(t, http.MethodPost, "/v1/accounts", `{"customer_id":"c1","customer_name":"Alice"}`,
		"Authorization", "Bearer "+alice)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/v1/accounts", `{"customer_id":"c1","customer_name":"Alice"}`,
		"Authorization", "Bearer "+bob)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 opening for another customer, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/v1/accounts/ACC1001/deposit", `{"amount":"5"}`,
		"Authorization", "Bearer "+bob)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 depositing into another customer's account, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/v1/accounts/ACC1001/deposit", `{"amount":"5"}`,
		"Authorization", "Bearer "+alice)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_UnauthorizedMessages(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name    string
		headers []string
		want    string
	}{
		{"no header", nil, "missing bearer token"},
		{"empty bearer", []string{"Authorization", "Bearer "}, "invalid authorization header"},
		{"expired or forged", []string{"Authorization", "Bearer a.b.c"}, "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/v1/payments", `{"from_account":"ACC1001","to_account":"ACC1002","amount":"1"}`, tt.headers...)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("expected %q in body, got %s", tt.want, rec.Body.String())
			}
		})
	}
}

func TestAuth_OwnershipAcrossEntities(t *testing.T) {
	s := newTestServer(t, true)

	alice, err := s.tokens.Sign("c1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	bob, err := s.tokens.Sign("c2")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	asAlice := []string{"Authorization", "Bearer " + alice}
	asBob := []string{"Authorization", "Bearer " + bob}

	s.do(t, http.MethodPost, "/v1/accounts", `{"customer_id":"c1","customer_name":"Alice"}`, asAlice...)
	s.do(t, http.MethodPost, "/v1/accounts", `{"customer_id":"c2","customer_name":"Bob"}`, asBob...)
	s.do(t, http.MethodPost, "/v1/accounts/ACC1001/deposit", `{"amount":"50"}`, asAlice...)
	rec := s.do(t, http.MethodPost, "/v1/cards", `{"customer_id":"c1","customer_name":"Alice"}`, asAlice...)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected card issued, got %d: %s", rec.Code, rec.Body.String())
	}

	forbidden := []struct {
		name string
		path string
		body string
	}{
		{"withdraw", "/v1/accounts/ACC1001/withdraw", `{"amount":"1"}`},
		{"close", "/v1/accounts/ACC1001/close", ""},
		{"suspend card", "/v1/cards/CARD5001/suspend", ""},
		{"report stolen", "/v1/cards/CARD5001/report-stolen", ""},
		{"pay from another account", "/v1/payments", `{"from_account":"ACC1001","to_account":"ACC1002","amount":"1"}`},
		{"issue card for another customer", "/v1/cards", `{"customer_id":"c1","customer_name":"Alice"}`},
	}

	for _, tt := range forbidden {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, tt.path, tt.body, asBob...)
			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), "customer c2 may not act for customer c1") {
				t.Errorf("unexpected body: %s", rec.Body.String())
			}
		})
	}

	if got := balanceOf(t, s, "ACC1001"); got != "50.00" {
		t.Errorf("expected balance untouched at 50.00, got %s", got)
	}

	rec = s.do(t, http.MethodPost, "/v1/cards/CARD5001/suspend", "", asAlice...)
	if rec.Code != http.StatusOK {
		t.Errorf("expected owner to suspend card, got %d", rec.Code)
	}
}
