package repository

import (
	"context"

	"webharbour/internal/domain/model"
)

type ReviewRepository interface {
	// Create inserts a review. The unique (product_id, user_id) constraint maps
	// to domain.ErrAlreadyReviewed.
	Create(ctx context.Context, tx Tx, r *model.Review) error
	ListByProduct(ctx context.Context, tx Tx, productID string) ([]*model.Review, error)
	// Aggregate recomputes the average/count for a product from its reviews.
	Aggregate(ctx context.Context, tx Tx, productID string) (model.Rating, error)
}

type CategoryRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Category) error
	ListActive(ctx context.Context, tx Tx) ([]*model.Category, error)
}
