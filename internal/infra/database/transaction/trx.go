package transaction

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// Trx is the unit-of-work boundary: every command executes in exactly
// one transaction, and aggregates buffer domain events for
// drain-on-commit dispatch.
type Trx interface {
	WithTx(ctx context.Context, fn func(tx bun.Tx) error) error
	// WithSerializableTx is used for checkout advance/complete, where
	// the order and its line items must be read and written under
	// serializable isolation. The lock scope stays bounded to the one
	// order's row set.
	WithSerializableTx(ctx context.Context, fn func(tx bun.Tx) error) error
}

type TrxImpl struct {
	db *bun.DB
}

func NewTrx(db *bun.DB) *TrxImpl {
	return &TrxImpl{db: db}
}

// WithTx runs fn inside a single transaction. A non-nil return rolls the
// transaction back atomically, so partial state is never visible to
// other commands.
func (t *TrxImpl) WithTx(ctx context.Context, fn func(tx bun.Tx) error) error {
	return t.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(tx)
	})
}

func (t *TrxImpl) WithSerializableTx(ctx context.Context, fn func(tx bun.Tx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	return t.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(tx)
	})
}
