package usecase

import (
	"context"
	"errors"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/adapter"
	"webharbour/internal/domain/ports/repository"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

type OrderUseCase interface {
	// CreateIntent starts a checkout: validates the product, rejects repeat
	// purchases, and registers a payment intent with the gateway. The intent
	// metadata carries the user/product ids the webhook needs later.
	CreateIntent(ctx context.Context, userID, productID string) (adapter.Intent, error)
	// ListByUser returns the caller's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	// Get fetches one order; only the owner or an admin may read it.
	Get(ctx context.Context, callerID string, callerRole model.Role, orderID string) (*model.Order, error)
	// Refund flips a completed order to refunded (admin action).
	Refund(ctx context.Context, orderID string) error
}

type orderUC struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	gateway  adapter.PaymentGateway
	currency string
}

func NewOrderUseCase(orders repository.OrderRepository, products repository.ProductRepository, users repository.UserRepository, gateway adapter.PaymentGateway, currency string) *orderUC {
	return &orderUC{orders: orders, products: products, users: users, gateway: gateway, currency: currency}
}

func (u *orderUC) CreateIntent(ctx context.Context, userID, productID string) (adapter.Intent, error) {
	product, err := u.products.FindByID(ctx, repository.NoTX, productID)
	if err != nil {
		return adapter.Intent{}, err
	}
	if !product.Purchasable() {
		return adapter.Intent{}, domain.ErrProductNotApproved
	}

	owned, err := u.users.HasPurchase(ctx, repository.NoTX, userID, productID)
	if err != nil {
		return adapter.Intent{}, err
	}
	if owned {
		return adapter.Intent{}, domain.ErrAlreadyPurchased
	}

	meta := map[string]string{
		"user_id":       userID,
		"product_id":    productID,
		"product_title": product.Title,
	}
	return u.gateway.CreateIntent(ctx, product.SaleAmount(), u.currency, meta)
}

func (u *orderUC) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	return u.orders.ListByUser(ctx, repository.NoTX, userID)
}

func (u *orderUC) Get(ctx context.Context, callerID string, callerRole model.Role, orderID string) (*model.Order, error) {
	order, err := u.orders.FindByID(ctx, repository.NoTX, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != callerID && callerRole != model.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (u *orderUC) Refund(ctx context.Context, orderID string) error {
	ok, err := u.orders.MarkRefunded(ctx, repository.NoTX, orderID)
	if err != nil {
		return err
	}
	if !ok {
		// Either missing or not in completed; disambiguate for the caller.
		if _, err := u.orders.FindByID(ctx, repository.NoTX, orderID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		return domain.ErrInvalidTransition
	}
	return nil
}
