package usecase

import (
	"context"
	"fmt"

	"webharbour/internal/domain/ports/repository"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// EntitlementUseCase marks a product as owned by a user after a confirmed
// payment.
type EntitlementUseCase interface {
	// Grant adds the product to the user's purchased set (set semantics, no-op
	// when already present) and bumps the product's download counter. The
	// counter increment is not the idempotency boundary; the order uniqueness
	// upstream is. Failures are reported, never swallowed.
	Grant(ctx context.Context, tx repository.Tx, userID, productID string) error
}

type entitlementUC struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

func NewEntitlementUseCase(users repository.UserRepository, products repository.ProductRepository) *entitlementUC {
	return &entitlementUC{users: users, products: products}
}

func (u *entitlementUC) Grant(ctx context.Context, tx repository.Tx, userID, productID string) error {
	if err := u.users.AddPurchase(ctx, tx, userID, productID); err != nil {
		return fmt.Errorf("add purchase for user %s: %w", userID, err)
	}
	if err := u.products.IncrementDownloads(ctx, tx, productID); err != nil {
		return fmt.Errorf("increment downloads for product %s: %w", productID, err)
	}
	return nil
}
