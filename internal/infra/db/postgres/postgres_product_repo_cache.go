package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
	"webharbour/internal/infra/metrics"
	red "webharbour/internal/infra/redis"
)

var _ repository.ProductRepository = (*productRepoCacheDecorator)(nil)

// productRepoCacheDecorator caches single-product reads. Listing queries are
// too filter-shaped to cache usefully; they pass straight through. Counter
// bumps (views/downloads) invalidate so cached copies don't go stale for long.
type productRepoCacheDecorator struct {
	inner repository.ProductRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewProductRepoCacheDecorator(inner repository.ProductRepository, cache red.RedisClient, ttl time.Duration) repository.ProductRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &productRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func productKey(id string) string { return fmt.Sprintf("product:%s", id) }

func (d *productRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	key := productKey(id)
	val, err := d.cache.Get(ctx, key)
	switch {
	case err == nil:
		var p model.Product
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("product", "hit")
			return &p, nil
		}
		// Unreadable cached value; treat as a miss and overwrite below.
		metrics.IncCacheRequest("product", "miss")
	case errors.Is(err, red.Nil):
		metrics.IncCacheRequest("product", "miss")
	default:
		// Redis being down is not a miss; the read falls back to Postgres.
		metrics.IncCacheRequest("product", "error")
	}

	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return p, nil
}

func (d *productRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	_ = d.cache.Del(ctx, productKey(p.ID))
	return d.inner.Save(ctx, tx, p)
}

func (d *productRepoCacheDecorator) IncrementDownloads(ctx context.Context, tx repository.Tx, id string) error {
	_ = d.cache.Del(ctx, productKey(id))
	return d.inner.IncrementDownloads(ctx, tx, id)
}

func (d *productRepoCacheDecorator) IncrementViews(ctx context.Context, tx repository.Tx, id string) error {
	_ = d.cache.Del(ctx, productKey(id))
	return d.inner.IncrementViews(ctx, tx, id)
}

func (d *productRepoCacheDecorator) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.ProductStatus, reason, approvedBy string) (bool, error) {
	_ = d.cache.Del(ctx, productKey(id))
	return d.inner.UpdateStatusIfPending(ctx, tx, id, status, reason, approvedBy)
}

func (d *productRepoCacheDecorator) UpdateRating(ctx context.Context, tx repository.Tx, id string, r model.Rating) error {
	_ = d.cache.Del(ctx, productKey(id))
	return d.inner.UpdateRating(ctx, tx, id, r)
}

// Pass-through reads.

func (d *productRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, f repository.ProductFilter) ([]*model.Product, error) {
	return d.inner.List(ctx, tx, f)
}

func (d *productRepoCacheDecorator) Count(ctx context.Context, tx repository.Tx, f repository.ProductFilter) (int, error) {
	return d.inner.Count(ctx, tx, f)
}

func (d *productRepoCacheDecorator) ListFeatured(ctx context.Context, tx repository.Tx, limit int) ([]*model.Product, error) {
	return d.inner.ListFeatured(ctx, tx, limit)
}

func (d *productRepoCacheDecorator) Suggest(ctx context.Context, tx repository.Tx, q string, limit int) ([]*model.Product, error) {
	return d.inner.Suggest(ctx, tx, q, limit)
}

func (d *productRepoCacheDecorator) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.ProductStatus]int, error) {
	return d.inner.CountByStatus(ctx, tx)
}
