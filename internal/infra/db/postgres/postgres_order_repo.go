package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

type OrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, order_number, user_id, product_id, amount, currency, payment_method, status, provider_payment_id, provider_customer_id, receipt_url, created_at`

// Create is a single INSERT attempt. Two concurrent deliveries of the same
// provider event race on the partial unique index over provider_payment_id;
// the loser's 23505 comes back as OutcomeAlreadyExists, which closes the
// check-then-insert window without any application-level locking.
func (r *OrderRepo) Create(ctx context.Context, tx repository.Tx, o *model.Order) (repository.CreateOutcome, error) {
	if err := o.Validate(); err != nil {
		return 0, err
	}
	const q = `
INSERT INTO orders (` + orderColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),$10,$11,$12);`

	_, err := execSQL(ctx, r.pool, tx, q,
		o.ID, o.OrderNumber, o.UserID, o.ProductID, o.Amount, o.Currency, o.PaymentMethod,
		o.Status, o.ProviderPaymentID, o.ProviderCustomerID, o.ReceiptURL, o.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.OutcomeAlreadyExists, nil
		}
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return repository.OutcomeCreated, nil
}

func (r *OrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

func (r *OrderRepo) FindByProviderPaymentID(ctx context.Context, tx repository.Tx, providerPaymentID string) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE provider_payment_id=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, providerPaymentID)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

func (r *OrderRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		o := new(model.Order)
		var providerID *string
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.ProductID, &o.Amount, &o.Currency, &o.PaymentMethod, &o.Status, &providerID, &o.ProviderCustomerID, &o.ReceiptURL, &o.CreatedAt); err != nil {
			return nil, domain.ErrOperationFailed
		}
		if providerID != nil {
			o.ProviderPaymentID = *providerID
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MarkRefunded guards the completed->refunded transition in the WHERE clause so
// a concurrent refund cannot apply twice.
func (r *OrderRepo) MarkRefunded(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `UPDATE orders SET status='refunded' WHERE id=$1 AND status='completed';`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *OrderRepo) SumCompletedByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM orders WHERE status='completed' AND created_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrOperationFailed
	}
	return sum, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := new(model.Order)
	var providerID *string
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.ProductID, &o.Amount, &o.Currency, &o.PaymentMethod, &o.Status, &providerID, &o.ProviderCustomerID, &o.ReceiptURL, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrOperationFailed
	}
	if providerID != nil {
		o.ProviderPaymentID = *providerID
	}
	return o, nil
}
