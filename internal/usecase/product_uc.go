package usecase

import (
	"context"
	"strings"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
)

// Compile-time check
var _ ProductUseCase = (*productUC)(nil)

type ProductUseCase interface {
	// List returns a filtered, paginated page plus the total matching count.
	// Non-admin callers are pinned to approved products.
	List(ctx context.Context, f repository.ProductFilter, callerRole model.Role) ([]*model.Product, int, error)
	// Get fetches one product and bumps its view counter.
	Get(ctx context.Context, id string) (*model.Product, error)
	Featured(ctx context.Context) ([]*model.Product, error)
	ByDeveloper(ctx context.Context, developerID string) ([]*model.Product, error)
	// Suggest returns up to 10 approved products matching a title fragment;
	// queries shorter than 2 characters return nothing.
	Suggest(ctx context.Context, q string) ([]*model.Product, error)
	// Submit creates a product in pending status (developer/admin only).
	Submit(ctx context.Context, caller *model.User, title, description, category string, price int64, thumbnail, fileURL string, fileSize int64, tags []string) (*model.Product, error)
	Categories(ctx context.Context) ([]*model.Category, error)
}

type productUC struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

func NewProductUseCase(products repository.ProductRepository, categories repository.CategoryRepository) *productUC {
	return &productUC{products: products, categories: categories}
}

func (u *productUC) List(ctx context.Context, f repository.ProductFilter, callerRole model.Role) ([]*model.Product, int, error) {
	if callerRole != model.RoleAdmin {
		// admins may browse any status; everyone else only sees the storefront
		f.Status = model.ProductStatusApproved
	} else if f.Status == "" {
		f.Status = model.ProductStatusApproved
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
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

func (u *productUC) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := u.products.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	// View counting is best effort; a miss is not worth failing the read.
	_ = u.products.IncrementViews(ctx, repository.NoTX, id)
	p.Views++
	return p, nil
}

func (u *productUC) Featured(ctx context.Context) ([]*model.Product, error) {
	return u.products.ListFeatured(ctx, repository.NoTX, 10)
}

func (u *productUC) ByDeveloper(ctx context.Context, developerID string) ([]*model.Product, error) {
	return u.products.List(ctx, repository.NoTX, repository.ProductFilter{
		Status:      model.ProductStatusApproved,
		DeveloperID: developerID,
		Limit:       100,
	})
}

func (u *productUC) Suggest(ctx context.Context, q string) ([]*model.Product, error) {
	q = strings.TrimSpace(q)
	if len(q) < 2 {
		return nil, nil
	}
	return u.products.Suggest(ctx, repository.NoTX, q, 10)
}

func (u *productUC) Submit(ctx context.Context, caller *model.User, title, description, category string, price int64, thumbnail, fileURL string, fileSize int64, tags []string) (*model.Product, error) {
	if !caller.CanUpload() {
		return nil, domain.ErrForbidden
	}
	cat, err := model.ParseProductCategory(category)
	if err != nil {
		return nil, err
	}
	p, err := model.NewProduct("", title, description, cat, caller.ID, price, thumbnail, fileURL, fileSize)
	if err != nil {
		return nil, err
	}
	p.Tags = tags
	if err := u.products.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *productUC) Categories(ctx context.Context) ([]*model.Category, error) {
	return u.categories.ListActive(ctx, repository.NoTX)
}
