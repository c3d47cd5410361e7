package repository

import (
	"context"

	"webharbour/internal/domain/model"
)

// ProductFilter narrows List queries. Zero values mean "no constraint".
type ProductFilter struct {
	Status      model.ProductStatus
	Category    model.ProductCategory
	DeveloperID string
	Search      string // matched against title/description
	MinPrice    int64
	MaxPrice    int64 // 0 = unbounded
	SortBy      string
	SortAsc     bool
	Offset      int
	Limit       int
}

type ProductRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Product) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Product, error)
	List(ctx context.Context, tx Tx, f ProductFilter) ([]*model.Product, error)
	Count(ctx context.Context, tx Tx, f ProductFilter) (int, error)
	ListFeatured(ctx context.Context, tx Tx, limit int) ([]*model.Product, error)
	Suggest(ctx context.Context, tx Tx, q string, limit int) ([]*model.Product, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.ProductStatus]int, error)

	// IncrementDownloads and IncrementViews are atomic counter updates; the
	// increment happens in SQL, not read-modify-write in the application tier.
	IncrementDownloads(ctx context.Context, tx Tx, id string) error
	IncrementViews(ctx context.Context, tx Tx, id string) error

	// UpdateStatusIfPending moves a pending product to approved/rejected.
	// Returns false when the product was not pending.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.ProductStatus, reason, approvedBy string) (bool, error)

	UpdateRating(ctx context.Context, tx Tx, id string, r model.Rating) error
}
