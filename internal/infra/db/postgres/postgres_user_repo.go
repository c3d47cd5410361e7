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

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct{ pool *pgxpool.Pool }

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, username, email, password_hash, role, avatar, created_at`

func (r *UserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (` + userColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  username=$2, email=$3, password_hash=$4, role=$5, avatar=$6;`

	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.Avatar, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1;`
	return r.findOne(ctx, tx, q, id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1;`
	return r.findOne(ctx, tx, q, email)
}

func (r *UserRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username=$1;`
	return r.findOne(ctx, tx, q, username)
}

func (r *UserRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	u := new(model.User)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Avatar, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrOperationFailed
	}
	return u, nil
}

func (r *UserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u := new(model.User)
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Avatar, &u.CreatedAt); err != nil {
			return nil, domain.ErrOperationFailed
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrOperationFailed
	}
	return n, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, tx repository.Tx, id string, role model.Role) error {
	cmd, err := execSQL(ctx, r.pool, tx, `UPDATE users SET role=$2 WHERE id=$1;`, id, role)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddPurchase records an entitlement with set semantics. ON CONFLICT DO NOTHING
// keeps a duplicate grant (retried webhook, concurrent order) from inserting a
// second row.
func (r *UserRepo) AddPurchase(ctx context.Context, tx repository.Tx, userID, productID string) error {
	const q = `INSERT INTO user_purchases (user_id, product_id, purchased_at) VALUES ($1,$2,NOW()) ON CONFLICT (user_id, product_id) DO NOTHING;`
	if _, err := execSQL(ctx, r.pool, tx, q, userID, productID); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *UserRepo) HasPurchase(ctx context.Context, tx repository.Tx, userID, productID string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM user_purchases WHERE user_id=$1 AND product_id=$2);`
	row, err := pickRow(ctx, r.pool, tx, q, userID, productID)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, domain.ErrOperationFailed
	}
	return ok, nil
}

func (r *UserRepo) ListPurchases(ctx context.Context, tx repository.Tx, userID string) ([]string, error) {
	const q = `SELECT product_id FROM user_purchases WHERE user_id=$1 ORDER BY purchased_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.ErrOperationFailed
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
