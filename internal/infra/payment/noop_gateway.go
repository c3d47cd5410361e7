package payment

import (
	"context"
	"fmt"
	"sync"

	"webharbour/internal/domain"
	"webharbour/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway is a simple in-memory gateway to use in tests and dev mode.
type NoopGateway struct {
	mu            sync.Mutex
	seq           int64
	intents       map[string]map[string]string // provider payment id -> metadata
	webhookSecret string
}

func NewNoopGateway(webhookSecret string) *NoopGateway {
	return &NoopGateway{
		intents:       make(map[string]map[string]string),
		webhookSecret: webhookSecret,
	}
}

func (g *NoopGateway) Name() string { return "noop" }

func (g *NoopGateway) CreateIntent(ctx context.Context, amount int64, currency string, meta map[string]string) (adapter.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	id := fmt.Sprintf("pay_noop_%d", g.seq)
	g.intents[id] = meta
	return adapter.Intent{
		ProviderPaymentID: id,
		ClientSecret:      id + "_secret",
		Amount:            amount,
		Currency:          currency,
	}, nil
}

func (g *NoopGateway) VerifyWebhook(payload []byte, signature string) (adapter.PaymentEvent, error) {
	if !VerifySignature(g.webhookSecret, payload, signature) {
		return adapter.PaymentEvent{}, domain.ErrInvalidSignature
	}
	return DecodeEvent(payload)
}
