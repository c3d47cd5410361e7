package web

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"webharbour/internal/domain/model"
	"webharbour/internal/infra/logging"
	"webharbour/internal/infra/metrics"
	"webharbour/internal/infra/redis"
	"webharbour/internal/usecase"
)

// Provider payloads are small; anything bigger is hostile.
const maxWebhookBody = 1 << 20

type createIntentRequest struct {
	ProductID string `json:"product_id"`
}

func (s *Server) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	intent, err := s.orderUC.CreateIntent(r.Context(), claims.Subject, req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		PaymentID    string `json:"payment_id"`
		ClientSecret string `json:"client_secret"`
		Amount       int64  `json:"amount"`
		Currency     string `json:"currency"`
	}{intent.ProviderPaymentID, intent.ClientSecret, intent.Amount, intent.Currency})
}

// handleWebhook is the gateway-facing reconciliation endpoint. Order of
// operations matters: verify the signature before any business logic, then
// acknowledge every verified event with 200 even when the entitlement grant
// failed. Only a storage failure withholds the ack so the provider redelivers.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil {
		ip, _, _ := net.SplitHostPort(r.RemoteAddr)
		ok, err := s.limiter.Allow(r.Context(), redis.WebhookKey(ip), 120, time.Minute)
		if err == nil && !ok {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Unreadable body", http.StatusBadRequest)
		return
	}

	event, err := s.gateway.VerifyWebhook(body, r.Header.Get("X-Signature"))
	if err != nil {
		metrics.IncWebhookEvent("rejected")
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("webhook rejected")
		writeError(w, err)
		return
	}

	ctx := logging.WithProviderPaymentID(r.Context(), event.ProviderPaymentID)
	result, err := s.reconcileUC.Reconcile(ctx, event)
	if err != nil {
		// No ack: the provider will redeliver and the insert is idempotent.
		metrics.IncWebhookEvent("error")
		writeError(w, err)
		return
	}

	switch result {
	case usecase.ReconcileCompleted:
		metrics.IncWebhookEvent("processed")
		metrics.IncPayment(string(model.PaymentStatusCompleted))
		metrics.AddPaymentRevenue(event.Currency, event.Amount)
	case usecase.ReconcileRecordedFailure:
		metrics.IncWebhookEvent("processed")
		metrics.IncPayment(string(model.PaymentStatusFailed))
	case usecase.ReconcileAlreadyProcessed:
		metrics.IncWebhookEvent("duplicate")
	case usecase.ReconcileEntitlementFailed:
		metrics.IncWebhookEvent("processed")
		metrics.IncPayment(string(model.PaymentStatusCompleted))
		metrics.AddPaymentRevenue(event.Currency, event.Amount)
		metrics.IncEntitlementFailure()
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

type orderView struct {
	ID                string    `json:"id"`
	OrderNumber       string    `json:"order_number"`
	UserID            string    `json:"user_id"`
	ProductID         string    `json:"product_id"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	PaymentMethod     string    `json:"payment_method,omitempty"`
	Status            string    `json:"status"`
	ProviderPaymentID string    `json:"provider_payment_id,omitempty"`
	ReceiptURL        string    `json:"receipt_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func toOrderView(o *model.Order) orderView {
	return orderView{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		UserID:            o.UserID,
		ProductID:         o.ProductID,
		Amount:            o.Amount,
		Currency:          o.Currency,
		PaymentMethod:     o.PaymentMethod,
		Status:            string(o.Status),
		ProviderPaymentID: o.ProviderPaymentID,
		ReceiptURL:        o.ReceiptURL,
		CreatedAt:         o.CreatedAt,
	}
}

func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	orders, err := s.orderUC.ListByUser(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOrderGet(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	order, err := s.orderUC.Get(r.Context(), claims.Subject, model.Role(claims.Role), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderView(order))
}
