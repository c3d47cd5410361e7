package repository

import (
	"context"

	"webharbour/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.User, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
	UpdateRole(ctx context.Context, tx Tx, id string, role model.Role) error

	// Entitlement surface. AddPurchase has set semantics: adding a product the
	// user already owns is a no-op, expressed as ON CONFLICT DO NOTHING at the
	// storage layer so it stays correct under concurrent grants.
	AddPurchase(ctx context.Context, tx Tx, userID, productID string) error
	HasPurchase(ctx context.Context, tx Tx, userID, productID string) (bool, error)
	ListPurchases(ctx context.Context, tx Tx, userID string) ([]string, error)
}
