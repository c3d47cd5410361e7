package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

type ProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `id, title, description, category, developer_id, price, discount_price, thumbnail, file_url, file_size, downloads, views, featured, status, rejection_reason, approved_by, approved_at, rating_average, rating_count, tags, created_at, updated_at`

func (r *ProductRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	const q = `
INSERT INTO products (` + productColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
ON CONFLICT (id) DO UPDATE SET
  title=$2, description=$3, category=$4, price=$6, discount_price=$7,
  thumbnail=$8, file_url=$9, file_size=$10, featured=$13, status=$14,
  rejection_reason=$15, approved_by=$16, approved_at=$17,
  rating_average=$18, rating_count=$19, tags=$20, updated_at=NOW();`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Title, p.Description, p.Category, p.DeveloperID, p.Price, p.DiscountPrice,
		p.Thumbnail, p.FileURL, p.FileSize, p.Downloads, p.Views, p.Featured, p.Status,
		p.RejectionReason, p.ApprovedBy, p.ApprovedAt, p.Rating.Average, p.Rating.Count,
		p.Tags, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanProduct(row)
}

// filterClause builds the WHERE/ORDER BY tail shared by List and Count.
// Only whitelisted sort columns are interpolated; everything else is bound.
func filterClause(f repository.ProductFilter, args *[]interface{}) (where string, orderBy string) {
	var conds []string
	add := func(cond string, v interface{}) {
		*args = append(*args, v)
		conds = append(conds, fmt.Sprintf(cond, len(*args)))
	}
	if f.Status != "" {
		add("status=$%d", f.Status)
	}
	if f.Category != "" {
		add("category=$%d", f.Category)
	}
	if f.DeveloperID != "" {
		add("developer_id=$%d", f.DeveloperID)
	}
	if f.Search != "" {
		*args = append(*args, f.Search)
		n := len(*args)
		conds = append(conds, fmt.Sprintf("(title ILIKE '%%'||$%d||'%%' OR description ILIKE '%%'||$%d||'%%')", n, n))
	}
	if f.MinPrice > 0 {
		add("price >= $%d", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		add("price <= $%d", f.MaxPrice)
	}
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	sortCol := "created_at"
	switch f.SortBy {
	case "price", "downloads", "views", "title", "created_at":
		sortCol = f.SortBy
	case "rating":
		sortCol = "rating_average"
	}
	dir := "DESC"
	if f.SortAsc {
		dir = "ASC"
	}
	orderBy = fmt.Sprintf(" ORDER BY %s %s", sortCol, dir)
	return where, orderBy
}

func (r *ProductRepo) List(ctx context.Context, tx repository.Tx, f repository.ProductFilter) ([]*model.Product, error) {
	var args []interface{}
	where, orderBy := filterClause(f, &args)
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, f.Offset, limit)
	q := `SELECT ` + productColumns + ` FROM products` + where + orderBy +
		fmt.Sprintf(" OFFSET $%d LIMIT $%d;", len(args)-1, len(args))

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *ProductRepo) Count(ctx context.Context, tx repository.Tx, f repository.ProductFilter) (int, error) {
	var args []interface{}
	where, _ := filterClause(f, &args)
	q := `SELECT COUNT(*) FROM products` + where + `;`
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrOperationFailed
	}
	return n, nil
}

func (r *ProductRepo) ListFeatured(ctx context.Context, tx repository.Tx, limit int) ([]*model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `SELECT ` + productColumns + ` FROM products WHERE status='approved' AND featured ORDER BY RANDOM() LIMIT $1;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *ProductRepo) Suggest(ctx context.Context, tx repository.Tx, qstr string, limit int) ([]*model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `SELECT ` + productColumns + ` FROM products WHERE status='approved' AND title ILIKE '%'||$1||'%' ORDER BY downloads DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, qstr, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *ProductRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.ProductStatus]int, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT status, COUNT(*) FROM products GROUP BY status;`)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	out := make(map[model.ProductStatus]int)
	for rows.Next() {
		var s model.ProductStatus
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, domain.ErrOperationFailed
		}
		out[s] = n
	}
	return out, rows.Err()
}

// IncrementDownloads is the sale/delivery counter bump. The increment runs in
// SQL so concurrent grants for different orders stay correct.
func (r *ProductRepo) IncrementDownloads(ctx context.Context, tx repository.Tx, id string) error {
	cmd, err := execSQL(ctx, r.pool, tx, `UPDATE products SET downloads = downloads + 1 WHERE id=$1;`, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) IncrementViews(ctx context.Context, tx repository.Tx, id string) error {
	if _, err := execSQL(ctx, r.pool, tx, `UPDATE products SET views = views + 1 WHERE id=$1;`, id); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ProductRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.ProductStatus, reason, approvedBy string) (bool, error) {
	const q = `
UPDATE products
   SET status=$2, rejection_reason=$3, approved_by=$4, approved_at=NOW(), updated_at=NOW()
 WHERE id=$1 AND status='pending';`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, status, reason, approvedBy)
	if err != nil {
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *ProductRepo) UpdateRating(ctx context.Context, tx repository.Tx, id string, rating model.Rating) error {
	const q = `UPDATE products SET rating_average=$2, rating_count=$3, updated_at=NOW() WHERE id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, q, id, rating.Average, rating.Count); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := new(model.Product)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.DeveloperID, &p.Price, &p.DiscountPrice, &p.Thumbnail, &p.FileURL, &p.FileSize, &p.Downloads, &p.Views, &p.Featured, &p.Status, &p.RejectionReason, &p.ApprovedBy, &p.ApprovedAt, &p.Rating.Average, &p.Rating.Count, &p.Tags, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrOperationFailed
	}
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]*model.Product, error) {
	var out []*model.Product
	for rows.Next() {
		p := new(model.Product)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.DeveloperID, &p.Price, &p.DiscountPrice, &p.Thumbnail, &p.FileURL, &p.FileSize, &p.Downloads, &p.Views, &p.Featured, &p.Status, &p.RejectionReason, &p.ApprovedBy, &p.ApprovedAt, &p.Rating.Average, &p.Rating.Count, &p.Tags, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, domain.ErrOperationFailed
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
