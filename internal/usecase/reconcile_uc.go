package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/adapter"
	"webharbour/internal/domain/ports/repository"
)

// ReconcileResult classifies what a webhook delivery did.
type ReconcileResult string

const (
	// ReconcileCompleted: a new completed order was recorded and the
	// entitlement granted.
	ReconcileCompleted ReconcileResult = "completed"
	// ReconcileRecordedFailure: a new failed order was recorded.
	ReconcileRecordedFailure ReconcileResult = "recorded_failure"
	// ReconcileAlreadyProcessed: a duplicate delivery; nothing was mutated.
	ReconcileAlreadyProcessed ReconcileResult = "already_processed"
	// ReconcileEntitlementFailed: the order was recorded as completed but the
	// grant failed. The payment is kept (money already moved at the gateway);
	// the entitlement needs manual remediation. Deliberately not retried:
	// redelivery cannot fix a non-transient grant failure and a blind retry
	// could double-grant after a partial failure.
	ReconcileEntitlementFailed ReconcileResult = "entitlement_failed"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileUseCase is the coordinator invoked once per verified gateway event.
// It may run concurrently with itself for duplicate deliveries of the same
// event; correctness rests on the unique constraint over
// orders.provider_payment_id, not on any in-process locking.
type ReconcileUseCase interface {
	Reconcile(ctx context.Context, event adapter.PaymentEvent) (ReconcileResult, error)
}

type reconcileUC struct {
	orders      repository.OrderRepository
	entitlement EntitlementUseCase
	log         *zerolog.Logger
}

func NewReconcileUseCase(orders repository.OrderRepository, entitlement EntitlementUseCase, logger *zerolog.Logger) *reconcileUC {
	return &reconcileUC{orders: orders, entitlement: entitlement, log: logger}
}

func (u *reconcileUC) Reconcile(ctx context.Context, event adapter.PaymentEvent) (ReconcileResult, error) {
	if event.ProviderPaymentID == "" || event.UserID == "" || event.ProductID == "" {
		return "", domain.ErrUnparseableEvent
	}

	status := model.PaymentStatusCompleted
	if event.Kind == adapter.EventFailed {
		status = model.PaymentStatusFailed
	}

	now := time.Now()
	order := &model.Order{
		ID:                 uuid.NewString(),
		OrderNumber:        model.NewOrderNumber(now),
		UserID:             event.UserID,
		ProductID:          event.ProductID,
		Amount:             event.Amount,
		Currency:           event.Currency,
		PaymentMethod:      event.PaymentMethod,
		Status:             status,
		ProviderPaymentID:  event.ProviderPaymentID,
		ProviderCustomerID: event.ProviderCustomerID,
		ReceiptURL:         event.ReceiptURL,
		CreatedAt:          now,
	}

	// One atomic insert attempt. The conflict branch is the idempotency guard:
	// at-least-once delivery means the same event can arrive twice, including
	// concurrently, and only the first insert wins.
	outcome, err := u.orders.Create(ctx, repository.NoTX, order)
	if err != nil {
		// Nothing was recorded; let the caller not acknowledge so the gateway
		// redelivers once storage is healthy again.
		return "", err
	}
	if outcome == repository.OutcomeAlreadyExists {
		u.log.Debug().
			Str("provider_payment_id", event.ProviderPaymentID).
			Msg("duplicate payment event ignored")
		return ReconcileAlreadyProcessed, nil
	}

	if status == model.PaymentStatusFailed {
		u.log.Info().
			Str("provider_payment_id", event.ProviderPaymentID).
			Str("order_id", order.ID).
			Msg("failed payment recorded")
		return ReconcileRecordedFailure, nil
	}

	if err := u.entitlement.Grant(ctx, repository.NoTX, event.UserID, event.ProductID); err != nil {
		// The order stays completed: a recorded payment with a missing
		// entitlement beats a lost payment. Surfaced for manual remediation.
		u.log.Error().Err(err).
			Str("provider_payment_id", event.ProviderPaymentID).
			Str("order_id", order.ID).
			Str("user_id", event.UserID).
			Str("product_id", event.ProductID).
			Msg("entitlement grant failed after order persisted")
		return ReconcileEntitlementFailed, nil
	}

	u.log.Info().
		Str("provider_payment_id", event.ProviderPaymentID).
		Str("order_id", order.ID).
		Int64("amount", event.Amount).
		Str("currency", event.Currency).
		Msg("payment reconciled")
	return ReconcileCompleted, nil
}
