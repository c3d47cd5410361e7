package usecase

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
)

var _ ReviewUseCase = (*reviewUC)(nil)

type ReviewUseCase interface {
	// Create stores a review and refreshes the product's denormalized rating.
	// Only buyers may review; one review per (product, user).
	Create(ctx context.Context, userID, productID string, rating int, title, comment string) (*model.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]*model.Review, error)
}

type reviewUC struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	users    repository.UserRepository
	txm      repository.TransactionManager
	log      *zerolog.Logger
}

func NewReviewUseCase(reviews repository.ReviewRepository, products repository.ProductRepository, users repository.UserRepository, txm repository.TransactionManager, log *zerolog.Logger) *reviewUC {
	return &reviewUC{reviews: reviews, products: products, users: users, txm: txm, log: log}
}

func (u *reviewUC) Create(ctx context.Context, userID, productID string, rating int, title, comment string) (*model.Review, error) {
	if _, err := u.products.FindByID(ctx, repository.NoTX, productID); err != nil {
		return nil, err
	}
	owned, err := u.users.HasPurchase(ctx, repository.NoTX, userID, productID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, domain.ErrForbidden
	}

	r, err := model.NewReview("", productID, userID, rating, title, comment)
	if err != nil {
		return nil, err
	}

	err = u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.reviews.Create(ctx, tx, r); err != nil {
			return err
		}
		agg, err := u.reviews.Aggregate(ctx, tx, productID)
		if err != nil {
			return err
		}
		return u.products.UpdateRating(ctx, tx, productID, agg)
	})
	if err != nil {
		return nil, err
	}

	u.log.Info().
		Str("product_id", productID).
		Str("user_id", userID).
		Int("rating", rating).
		Msg("review created")
	return r, nil
}

func (u *reviewUC) ListByProduct(ctx context.Context, productID string) ([]*model.Review, error) {
	return u.reviews.ListByProduct(ctx, repository.NoTX, productID)
}
