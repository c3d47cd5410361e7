//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/adapter"
	"webharbour/internal/domain/ports/repository"
	"webharbour/internal/infra/payment"
	"webharbour/internal/usecase"
)

func webhookPayload() []byte {
	return []byte(`{
		"type": "payment_intent.succeeded",
		"data": {
			"id": "pay_wh_1",
			"amount": 4999,
			"currency": "usd",
			"metadata": {"user_id": "user-1", "product_id": "prod-1"}
		}
	}`)
}

func postWebhook(t *testing.T, url string, body []byte, signature string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/api/payments/webhook", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("posting webhook: %v", err)
	}
	return resp
}

func TestWebhookHandler(t *testing.T) {
	t.Run("acknowledges a verified event", func(t *testing.T) {
		ts, m := newTestServer(t)
		body := webhookPayload()

		resp := postWebhook(t, ts.URL, body, payment.Sign(testWebhookSecret, body))
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var ack map[string]bool
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
			t.Fatalf("decoding ack: %v", err)
		}
		if !ack["received"] {
			t.Errorf("expected {\"received\": true}, got %v", ack)
		}
		if len(m.reconcile.Events) != 1 || m.reconcile.Events[0].ProviderPaymentID != "pay_wh_1" {
			t.Errorf("reconciler saw wrong events: %+v", m.reconcile.Events)
		}
	})

	t.Run("rejects a bad signature before any business logic", func(t *testing.T) {
		ts, m := newTestServer(t)

		resp := postWebhook(t, ts.URL, webhookPayload(), "deadbeef")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		if len(m.reconcile.Events) != 0 {
			t.Error("reconciler must not run for an unverified event")
		}
	})

	t.Run("rejects a missing signature", func(t *testing.T) {
		ts, _ := newTestServer(t)

		resp := postWebhook(t, ts.URL, webhookPayload(), "")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("rejects a signed but malformed payload", func(t *testing.T) {
		ts, _ := newTestServer(t)
		body := []byte(`{"type": "charge.dispute.created", "data": {"id": "x"}}`)

		resp := postWebhook(t, ts.URL, body, payment.Sign(testWebhookSecret, body))
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("still acknowledges when the grant failed", func(t *testing.T) {
		ts, m := newTestServer(t)
		m.reconcile.ReconcileFunc = func(ctx context.Context, event adapter.PaymentEvent) (usecase.ReconcileResult, error) {
			return usecase.ReconcileEntitlementFailed, nil
		}
		body := webhookPayload()

		resp := postWebhook(t, ts.URL, body, payment.Sign(testWebhookSecret, body))
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("grant failure must still be acknowledged, got %d", resp.StatusCode)
		}
	})

	t.Run("acknowledges a duplicate delivery", func(t *testing.T) {
		ts, m := newTestServer(t)
		m.reconcile.ReconcileFunc = func(ctx context.Context, event adapter.PaymentEvent) (usecase.ReconcileResult, error) {
			return usecase.ReconcileAlreadyProcessed, nil
		}
		body := webhookPayload()

		resp := postWebhook(t, ts.URL, body, payment.Sign(testWebhookSecret, body))
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("withholds the ack on a storage failure", func(t *testing.T) {
		ts, m := newTestServer(t)
		m.reconcile.ReconcileFunc = func(ctx context.Context, event adapter.PaymentEvent) (usecase.ReconcileResult, error) {
			return "", errors.New("connection refused")
		}
		body := webhookPayload()

		resp := postWebhook(t, ts.URL, body, payment.Sign(testWebhookSecret, body))
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("expected 500 so the provider redelivers, got %d", resp.StatusCode)
		}
	})
}

func TestAuthRouting(t *testing.T) {
	t.Run("protected routes reject anonymous callers", func(t *testing.T) {
		ts, _ := newTestServer(t)

		resp, err := http.Get(ts.URL + "/api/auth/me")
		if err != nil {
			t.Fatalf("GET /me: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("a minted token is accepted", func(t *testing.T) {
		ts, m := newTestServer(t)
		tok := mintToken(t, m.authMgr, "user-1", model.RoleUser)

		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET /me: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("admin routes reject regular users", func(t *testing.T) {
		ts, m := newTestServer(t)
		tok := mintToken(t, m.authMgr, "user-1", model.RoleUser)

		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET /admin/stats: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("admin routes accept admins", func(t *testing.T) {
		ts, m := newTestServer(t)
		tok := mintToken(t, m.authMgr, "admin-1", model.RoleAdmin)

		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET /admin/stats: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("login failures surface as 401", func(t *testing.T) {
		ts, _ := newTestServer(t)

		resp, err := http.Post(ts.URL+"/api/auth/login", "application/json",
			strings.NewReader(`{"email": "ghost@example.com", "password": "nope"}`))
		if err != nil {
			t.Fatalf("POST /login: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})
}

func TestProductListOptionalAuth(t *testing.T) {
	t.Run("an admin bearer token carries the admin role into the listing", func(t *testing.T) {
		// Arrange
		ts, m := newTestServer(t)
		var gotRole model.Role
		var gotFilter repository.ProductFilter
		m.products.ListFunc = func(ctx context.Context, f repository.ProductFilter, role model.Role) ([]*model.Product, int, error) {
			gotRole = role
			gotFilter = f
			return nil, 0, nil
		}
		tok := mintToken(t, m.authMgr, "admin-1", model.RoleAdmin)

		// Act
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/products/?status=pending", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET /products: %v", err)
		}
		defer resp.Body.Close()

		// Assert
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if gotRole != model.RoleAdmin {
			t.Fatalf("expected admin role to reach the use case, got %q", gotRole)
		}
		if gotFilter.Status != model.ProductStatusPending {
			t.Fatalf("expected pending status filter to survive, got %q", gotFilter.Status)
		}
	})

	t.Run("anonymous callers list with the user role", func(t *testing.T) {
		ts, m := newTestServer(t)
		var gotRole model.Role
		m.products.ListFunc = func(ctx context.Context, f repository.ProductFilter, role model.Role) ([]*model.Product, int, error) {
			gotRole = role
			return nil, 0, nil
		}

		resp, err := http.Get(ts.URL + "/api/products/")
		if err != nil {
			t.Fatalf("GET /products: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if gotRole != model.RoleUser {
			t.Fatalf("expected the user role for anonymous callers, got %q", gotRole)
		}
	})

	t.Run("a garbage token does not block the public listing", func(t *testing.T) {
		ts, m := newTestServer(t)
		var gotRole model.Role
		m.products.ListFunc = func(ctx context.Context, f repository.ProductFilter, role model.Role) ([]*model.Product, int, error) {
			gotRole = role
			return nil, 0, nil
		}

		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/products/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET /products: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if gotRole != model.RoleUser {
			t.Fatalf("expected the user role for a bad token, got %q", gotRole)
		}
	})
}

func TestCreateIntentHandler(t *testing.T) {
	t.Run("returns the intent for an authenticated buyer", func(t *testing.T) {
		ts, m := newTestServer(t)
		m.orders.CreateIntentFunc = func(ctx context.Context, userID, productID string) (adapter.Intent, error) {
			return adapter.Intent{ProviderPaymentID: "pay_1", ClientSecret: "cs_1", Amount: 1900, Currency: "usd"}, nil
		}
		tok := mintToken(t, m.authMgr, "user-1", model.RoleUser)

		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/payments/create-intent",
			strings.NewReader(`{"product_id": "prod-1"}`))
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST /create-intent: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decoding intent: %v", err)
		}
		if out["client_secret"] != "cs_1" {
			t.Errorf("wrong intent body: %v", out)
		}
	})

	t.Run("maps a repeat purchase to 409", func(t *testing.T) {
		ts, m := newTestServer(t)
		m.orders.CreateIntentFunc = func(ctx context.Context, userID, productID string) (adapter.Intent, error) {
			return adapter.Intent{}, domain.ErrAlreadyPurchased
		}
		tok := mintToken(t, m.authMgr, "user-1", model.RoleUser)

		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/payments/create-intent",
			strings.NewReader(`{"product_id": "prod-1"}`))
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST /create-intent: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.StatusCode)
		}
	})
}
