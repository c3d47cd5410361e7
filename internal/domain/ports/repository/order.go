package repository

import (
	"context"

	"webharbour/internal/domain/model"
)

// CreateOutcome is the tagged result of an atomic insert attempt keyed by the
// provider payment id. AlreadyExists means a row for that id was present (or a
// concurrent delivery won the insert race); it is not an error.
type CreateOutcome int

const (
	OutcomeCreated CreateOutcome = iota
	OutcomeAlreadyExists
)

type OrderRepository interface {
	// Create performs a single INSERT attempt. A unique-constraint violation on
	// provider_payment_id is mapped to OutcomeAlreadyExists, never surfaced as an
	// error: that collapse is what makes webhook reconciliation idempotent under
	// concurrent duplicate delivery.
	Create(ctx context.Context, tx Tx, o *model.Order) (CreateOutcome, error)

	FindByID(ctx context.Context, tx Tx, id string) (*model.Order, error)
	FindByProviderPaymentID(ctx context.Context, tx Tx, providerPaymentID string) (*model.Order, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Order, error)

	// MarkRefunded flips a completed order to refunded. Returns false when the
	// order was not in completed (the guard lives in the WHERE clause).
	MarkRefunded(ctx context.Context, tx Tx, id string) (bool, error)

	// SumCompletedByPeriod totals completed-order revenue since the start of the
	// given date_trunc period ("week", "month", "year").
	SumCompletedByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
