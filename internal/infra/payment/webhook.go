package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"webharbour/internal/domain"
	"webharbour/internal/domain/ports/adapter"
)

// VerifySignature checks the X-Signature header value: lowercase hex
// HMAC-SHA256 of the raw request body keyed with the shared webhook secret.
func VerifySignature(secret string, payload []byte, signature string) bool {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	expected := hex.EncodeToString(h.Sum(nil))

	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(expected)
	return hmac.Equal(got, want)
}

// Sign produces the signature value for a payload. Used by tests and by the
// provider simulator in dev mode.
func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

const (
	eventIntentSucceeded = "payment_intent.succeeded"
	eventIntentFailed    = "payment_intent.payment_failed"
)

type wireEvent struct {
	Type string `json:"type"`
	Data struct {
		ID            string            `json:"id"`
		Amount        int64             `json:"amount"`
		Currency      string            `json:"currency"`
		Customer      string            `json:"customer"`
		PaymentMethod string            `json:"payment_method"`
		ReceiptURL    string            `json:"receipt_url"`
		Metadata      map[string]string `json:"metadata"`
	} `json:"data"`
}

// DecodeEvent normalizes a verified provider payload into a PaymentEvent.
// Events of unknown type or with missing routing metadata come back as
// domain.ErrUnparseableEvent; they are terminal for the request.
func DecodeEvent(payload []byte) (adapter.PaymentEvent, error) {
	var we wireEvent
	if err := json.Unmarshal(payload, &we); err != nil {
		return adapter.PaymentEvent{}, domain.ErrUnparseableEvent
	}

	var kind adapter.EventKind
	switch we.Type {
	case eventIntentSucceeded:
		kind = adapter.EventSucceeded
	case eventIntentFailed:
		kind = adapter.EventFailed
	default:
		return adapter.PaymentEvent{}, domain.ErrUnparseableEvent
	}

	if we.Data.ID == "" {
		return adapter.PaymentEvent{}, domain.ErrUnparseableEvent
	}
	userID := we.Data.Metadata["user_id"]
	productID := we.Data.Metadata["product_id"]
	if userID == "" || productID == "" {
		return adapter.PaymentEvent{}, domain.ErrUnparseableEvent
	}

	return adapter.PaymentEvent{
		Kind:               kind,
		ProviderPaymentID:  we.Data.ID,
		Amount:             we.Data.Amount,
		Currency:           we.Data.Currency,
		UserID:             userID,
		ProductID:          productID,
		ProviderCustomerID: we.Data.Customer,
		PaymentMethod:      we.Data.PaymentMethod,
		ReceiptURL:         we.Data.ReceiptURL,
	}, nil
}
