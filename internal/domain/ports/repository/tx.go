package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls. The
// concrete type is infra-defined (pgx.Tx for Postgres). Repositories MUST
// gracefully accept a nil Tx and fall back to their pool.
type Tx interface{}

// NoTX marks the non-transactional call path at call sites.
var NoTX Tx

// TransactionManager executes a function within a database transaction, passing
// the underlying handle via `tx`. Keeps use-case interfaces free of storage
// types while letting repository implementations detect a tx and use tx-bound
// Exec/Query as needed.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
