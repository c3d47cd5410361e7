package model

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"webharbour/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // reserved for manually-initiated orders; webhook flow never persists it
	PaymentStatusCompleted PaymentStatus = "completed" // gateway reported success
	PaymentStatusFailed    PaymentStatus = "failed"    // gateway reported failure
	PaymentStatusRefunded  PaymentStatus = "refunded"  // administrative refund of a completed order
)

// CanTransition reports whether the payment-status state machine allows s -> to.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return to == PaymentStatusCompleted || to == PaymentStatusFailed
	case PaymentStatusCompleted:
		return to == PaymentStatusRefunded
	default:
		return false
	}
}

// Order records one purchase attempt/result. Rows are append-only: statuses move
// forward through the state machine but orders are never deleted (audit trail).
type Order struct {
	ID                 string // UUID, storage key
	OrderNumber        string // public "ORD..." identifier shown to users
	UserID             string
	ProductID          string
	Amount             int64 // minor currency units (cents), to avoid float errors
	Currency           string
	PaymentMethod      string
	Status             PaymentStatus
	ProviderPaymentID  string // idempotency key; unique when non-empty
	ProviderCustomerID string
	ReceiptURL         string
	CreatedAt          time.Time
}

// NewOrderNumber generates a public order identifier. ULIDs sort by creation
// time, which keeps support lookups sane.
func NewOrderNumber(t time.Time) string {
	return fmt.Sprintf("ORD%s", ulid.MustNew(ulid.Timestamp(t), rand.Reader).String())
}

func (o *Order) Validate() error {
	if o.UserID == "" || o.ProductID == "" {
		return domain.ErrInvalidArgument
	}
	if o.Amount < 0 {
		return domain.ErrInvalidArgument
	}
	switch o.Status {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
	default:
		return domain.ErrInvalidArgument
	}
	return nil
}
