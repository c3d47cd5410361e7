package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
)

var _ repository.ReviewRepository = (*ReviewRepo)(nil)

type ReviewRepo struct{ pool *pgxpool.Pool }

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

func (r *ReviewRepo) Create(ctx context.Context, tx repository.Tx, rv *model.Review) error {
	const q = `
INSERT INTO reviews (id, product_id, user_id, rating, title, comment, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err := execSQL(ctx, r.pool, tx, q, rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Title, rv.Comment, rv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyReviewed
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ReviewRepo) ListByProduct(ctx context.Context, tx repository.Tx, productID string) ([]*model.Review, error) {
	const q = `SELECT id, product_id, user_id, rating, title, comment, created_at FROM reviews WHERE product_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, productID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Review
	for rows.Next() {
		rv := new(model.Review)
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Title, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, domain.ErrOperationFailed
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *ReviewRepo) Aggregate(ctx context.Context, tx repository.Tx, productID string) (model.Rating, error) {
	const q = `SELECT COALESCE(AVG(rating),0), COUNT(*) FROM reviews WHERE product_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, productID)
	if err != nil {
		return model.Rating{}, err
	}
	var rating model.Rating
	if err := row.Scan(&rating.Average, &rating.Count); err != nil {
		return model.Rating{}, domain.ErrOperationFailed
	}
	return rating, nil
}

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

type CategoryRepo struct{ pool *pgxpool.Pool }

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

func (r *CategoryRepo) Save(ctx context.Context, tx repository.Tx, c *model.Category) error {
	const q = `
INSERT INTO categories (id, name, slug, type, description, icon, is_active, sort_order, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (slug) DO UPDATE SET
  name=$2, type=$4, description=$5, icon=$6, is_active=$7, sort_order=$8;`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Name, c.Slug, c.Type, c.Description, c.Icon, c.IsActive, c.Order, c.CreatedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *CategoryRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Category, error) {
	const q = `SELECT id, name, slug, type, description, icon, is_active, sort_order, created_at FROM categories WHERE is_active ORDER BY sort_order;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Category
	for rows.Next() {
		c := new(model.Category)
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Type, &c.Description, &c.Icon, &c.IsActive, &c.Order, &c.CreatedAt); err != nil {
			return nil, domain.ErrOperationFailed
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
