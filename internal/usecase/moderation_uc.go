package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
)

var _ ModerationUseCase = (*moderationUC)(nil)

// ModerationUseCase is the admin surface: product review queue, user
// administration and refunds.
type ModerationUseCase interface {
	PendingProducts(ctx context.Context, offset, limit int) ([]*model.Product, int, error)
	// Approve moves a pending product to approved. A product that is not
	// pending yields domain.ErrInvalidTransition.
	Approve(ctx context.Context, adminID, productID string) error
	// Reject moves a pending product to rejected. The reason is mandatory and
	// must carry at least 10 characters.
	Reject(ctx context.Context, adminID, productID, reason string) error

	ListUsers(ctx context.Context, offset, limit int) ([]*model.User, int, error)
	UpdateUserRole(ctx context.Context, adminID, userID, role string) error
}

type moderationUC struct {
	products repository.ProductRepository
	users    repository.UserRepository
	log      *zerolog.Logger
}

func NewModerationUseCase(products repository.ProductRepository, users repository.UserRepository, log *zerolog.Logger) *moderationUC {
	return &moderationUC{products: products, users: users, log: log}
}

func (u *moderationUC) PendingProducts(ctx context.Context, offset, limit int) ([]*model.Product, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	f := repository.ProductFilter{
		Status: model.ProductStatusPending,
		SortBy: "created_at",
		Offset: offset,
		Limit:  limit,
	}
	items, err := u.products.List(ctx, repository.NoTX, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.products.Count(ctx, repository.NoTX, f)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (u *moderationUC) Approve(ctx context.Context, adminID, productID string) error {
	ok, err := u.products.UpdateStatusIfPending(ctx, repository.NoTX, productID, model.ProductStatusApproved, "", adminID)
	if err != nil {
		return err
	}
	if !ok {
		return u.notPending(ctx, productID)
	}
	u.log.Info().Str("product_id", productID).Str("admin_id", adminID).Msg("product approved")
	return nil
}

func (u *moderationUC) Reject(ctx context.Context, adminID, productID, reason string) error {
	if len(strings.TrimSpace(reason)) < 10 {
		return domain.ErrInvalidArgument
	}
	ok, err := u.products.UpdateStatusIfPending(ctx, repository.NoTX, productID, model.ProductStatusRejected, reason, adminID)
	if err != nil {
		return err
	}
	if !ok {
		return u.notPending(ctx, productID)
	}
	u.log.Info().Str("product_id", productID).Str("admin_id", adminID).Msg("product rejected")
	return nil
}

// notPending disambiguates a zero-row conditional update: missing product vs.
// product already moderated.
func (u *moderationUC) notPending(ctx context.Context, productID string) error {
	if _, err := u.products.FindByID(ctx, repository.NoTX, productID); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

func (u *moderationUC) ListUsers(ctx context.Context, offset, limit int) ([]*model.User, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := u.users.List(ctx, repository.NoTX, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (u *moderationUC) UpdateUserRole(ctx context.Context, adminID, userID, role string) error {
	if adminID == userID {
		// admins cannot demote themselves out of the admin panel
		return domain.ErrForbidden
	}
	r, err := model.ParseRole(role)
	if err != nil {
		return err
	}
	if err := u.users.UpdateRole(ctx, repository.NoTX, userID, r); err != nil {
		return err
	}
	u.log.Info().Str("user_id", userID).Str("role", role).Str("admin_id", adminID).Msg("user role updated")
	return nil
}
