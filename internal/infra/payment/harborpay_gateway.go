package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"webharbour/internal/domain"
	"webharbour/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*HarborPayGateway)(nil)

// HarborPayGateway talks to the HarborPay REST API for intent creation and
// verifies its webhook deliveries. Checkout metadata rides along on the intent
// and is echoed back in webhook events, which is how reconciliation knows the
// user and product.
type HarborPayGateway struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	client        *http.Client
}

func NewHarborPayGateway(baseURL, apiKey, webhookSecret string, sandbox bool) (*HarborPayGateway, error) {
	if apiKey == "" {
		return nil, errors.New("api key empty")
	}
	if webhookSecret == "" {
		return nil, errors.New("webhook secret empty")
	}
	if baseURL == "" {
		baseURL = "https://api.harborpay.dev/v1"
		if sandbox {
			baseURL = "https://sandbox.harborpay.dev/v1"
		}
	}
	return &HarborPayGateway{
		baseURL:       baseURL,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		client:        &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *HarborPayGateway) Name() string { return "harborpay" }

// CreateIntent calls POST /payment_intents and returns the provider payment id
// plus the client secret the browser needs to finish the charge.
func (g *HarborPayGateway) CreateIntent(ctx context.Context, amount int64, currency string, meta map[string]string) (adapter.Intent, error) {
	payload := map[string]any{
		"amount":   amount,
		"currency": currency,
	}
	if meta != nil {
		payload["metadata"] = meta
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payment_intents", bytes.NewReader(b))
	if err != nil {
		return adapter.Intent{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return adapter.Intent{}, err
	}
	defer resp.Body.Close()

	var out struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
		Amount       int64  `json:"amount"`
		Currency     string `json:"currency"`
		Error        string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.Intent{}, err
	}
	if resp.StatusCode != http.StatusOK || out.ID == "" {
		return adapter.Intent{}, fmt.Errorf("harborpay intent failed: status=%d error=%s", resp.StatusCode, out.Error)
	}
	return adapter.Intent{
		ProviderPaymentID: out.ID,
		ClientSecret:      out.ClientSecret,
		Amount:            out.Amount,
		Currency:          out.Currency,
	}, nil
}

// VerifyWebhook verifies the signature before any decoding happens, then
// normalizes the provider payload into a PaymentEvent.
func (g *HarborPayGateway) VerifyWebhook(payload []byte, signature string) (adapter.PaymentEvent, error) {
	if !VerifySignature(g.webhookSecret, payload, signature) {
		return adapter.PaymentEvent{}, domain.ErrInvalidSignature
	}
	return DecodeEvent(payload)
}
