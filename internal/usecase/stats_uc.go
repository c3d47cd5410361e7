package usecase

import (
	"context"

	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

// DashboardStats is the admin dashboard aggregate: user/product totals and
// completed-order revenue per trailing period, in minor currency units.
type DashboardStats struct {
	TotalUsers      int                         `json:"total_users"`
	ProductsByState map[model.ProductStatus]int `json:"products_by_state"`
	RevenueWeek     int64                       `json:"revenue_week"`
	RevenueMonth    int64                       `json:"revenue_month"`
	RevenueYear     int64                       `json:"revenue_year"`
}

type StatsUseCase interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
}

type statsUC struct {
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func NewStatsUseCase(users repository.UserRepository, products repository.ProductRepository, orders repository.OrderRepository) *statsUC {
	return &statsUC{users: users, products: products, orders: orders}
}

func (u *statsUC) Dashboard(ctx context.Context) (*DashboardStats, error) {
	totalUsers, err := u.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	byStatus, err := u.products.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{
		TotalUsers:      totalUsers,
		ProductsByState: byStatus,
	}
	for _, p := range []struct {
		period string
		dst    *int64
	}{
		{"week", &stats.RevenueWeek},
		{"month", &stats.RevenueMonth},
		{"year", &stats.RevenueYear},
	} {
		sum, err := u.orders.SumCompletedByPeriod(ctx, repository.NoTX, p.period)
		if err != nil {
			return nil, err
		}
		*p.dst = sum
	}
	return stats, nil
}
