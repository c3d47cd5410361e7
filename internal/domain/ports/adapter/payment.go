package adapter

import "context"

type EventKind string

const (
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
)

// PaymentEvent is the normalized form of an asynchronous provider event. The
// user/product fields come from metadata we attached at intent-creation time;
// reconciliation trusts them because the payload signature has already been
// verified.
type PaymentEvent struct {
	Kind               EventKind
	ProviderPaymentID  string
	Amount             int64 // minor units
	Currency           string
	UserID             string
	ProductID          string
	ProviderCustomerID string
	PaymentMethod      string
	ReceiptURL         string
}

// Intent is the provider-side payment intent returned at checkout.
type Intent struct {
	ProviderPaymentID string
	ClientSecret      string
	Amount            int64
	Currency          string
}

// PaymentGateway is the hex port for payment providers.
type PaymentGateway interface {
	Name() string

	// CreateIntent registers a payment intent with the provider. The metadata is
	// echoed back verbatim in webhook events.
	CreateIntent(ctx context.Context, amount int64, currency string, meta map[string]string) (Intent, error)

	// VerifyWebhook checks the signature header against the raw payload and, on
	// success, decodes the payload into a normalized PaymentEvent.
	// Returns domain.ErrInvalidSignature or domain.ErrUnparseableEvent on failure;
	// both are terminal for the request.
	VerifyWebhook(payload []byte, signature string) (PaymentEvent, error)
}
