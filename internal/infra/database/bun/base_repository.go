package bun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"cartflow/pkg/logger"
)

// ErrConcurrencyConflict is returned by Update when the row-version WHERE
// clause installed by CoreModel.BeforeUpdate matched zero rows — the row
// was changed by another command since it was loaded. Retry loops treat
// it as retriable before surfacing a typed concurrency error.
var ErrConcurrencyConflict = errors.New("concurrency conflict: row version mismatch")

// IsConcurrencyConflict reports whether err (or anything it wraps) is a
// row-version mismatch, so retry loops can distinguish it from
// non-retriable failures.
func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// BaseRepository is the generic CRUD/scopes layer every aggregate
// repository (order, promotion, stock, shipment, payment) embeds.
type BaseRepository[T any] struct {
	db    *bun.DB
	model *T
}

func NewRepository[T any](db *bun.DB, model *T) *BaseRepository[T] {
	return &BaseRepository[T]{
		db:    db,
		model: model,
	}
}

func (r *BaseRepository[T]) DB() *bun.DB {
	return r.db
}

func (r *BaseRepository[T]) Query(scopes ...QueryScope) *bun.SelectQuery {
	query := r.db.NewSelect().Model(r.model)

	for _, scope := range scopes {
		query = scope(query)
	}

	return query
}

// Find - find by opaque id
func (r *BaseRepository[T]) Find(ctx context.Context, id string) (*T, error) {
	model := new(T)
	err := r.db.NewSelect().
		Model(model).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		return nil, err
	}
	return model, nil
}

// FindBy - find by custom field
func (r *BaseRepository[T]) FindBy(ctx context.Context, field string, value interface{}) (*T, error) {
	model := new(T)
	err := r.db.NewSelect().
		Model(model).
		Where("? = ?", bun.Ident(field), value).
		Scan(ctx)

	if err != nil {
		return nil, err
	}
	return model, nil
}

// All - get all with scopes
func (r *BaseRepository[T]) All(ctx context.Context, scopes ...QueryScope) ([]*T, error) {
	var models []*T
	query := r.Query(scopes...)
	err := query.Scan(ctx, &models)
	return models, err
}

func (r *BaseRepository[T]) PaginateWithCount(ctx context.Context, page, perPage int, scopes ...QueryScope) ([]*T, int, error) {
	var models []*T

	baseQuery := r.Query(scopes...)

	count, err := baseQuery.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	paginatedQuery := r.Query(append(scopes, Paginate(page, perPage))...)
	err = paginatedQuery.Scan(ctx, &models)

	return models, count, err
}

// Create - create new record
func (r *BaseRepository[T]) Create(ctx context.Context, model *T) (*T, error) {
	res, err := r.DB().NewInsert().
		Model(model).
		Exec(ctx)
	if err != nil {
		logger.Errorf("repository create failed with %+v, err: %+v", model, err)
		return nil, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logger.Errorf("error getting rows affected when creating with data: %+v, err: %+v", model, err)
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("no rows inserted")
	}

	logger.Debugf("data created with result: %+v", model)
	return model, nil
}

// CreateTx - create new record inside a caller-supplied transaction,
// the shape every aggregate uses under the one-transaction-per-command
// unit of work.
func (r *BaseRepository[T]) CreateTx(ctx context.Context, tx bun.Tx, model *T) (*T, error) {
	_, err := tx.NewInsert().Model(model).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return model, nil
}

// Update - update existing record; surfaces ErrConcurrencyConflict when
// the row-version WHERE clause matched nothing.
func (r *BaseRepository[T]) Update(ctx context.Context, model *T) (*T, error) {
	res, err := r.db.NewUpdate().
		Model(model).
		OmitZero().
		WherePK().
		Exec(ctx)
	if err != nil {
		logger.Errorf("repository update failed with %+v, err: %+v", model, err)
		return nil, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logger.Errorf("error getting rows affected when updating with data: %+v, err: %+v", model, err)
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrConcurrencyConflict
	}

	logger.Debugf("data updated with result: %+v", model)
	return model, nil
}

// UpdateTx - same as Update, scoped to a caller-supplied transaction.
func (r *BaseRepository[T]) UpdateTx(ctx context.Context, tx bun.Tx, model *T) (*T, error) {
	res, err := tx.NewUpdate().
		Model(model).
		OmitZero().
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrConcurrencyConflict
	}

	return model, nil
}

// SoftDelete - soft delete record
func (r *BaseRepository[T]) SoftDelete(ctx context.Context, id string) error {
	_, err := r.db.NewUpdate().
		Model(r.model).
		Set("deleted_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// Restore - restore soft deleted record
func (r *BaseRepository[T]) Restore(ctx context.Context, id string) error {
	_, err := r.db.NewUpdate().
		Model(r.model).
		Set("deleted_at = NULL").
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// Count - count with scopes
func (r *BaseRepository[T]) Count(ctx context.Context, scopes ...QueryScope) (int, error) {
	query := r.Query(scopes...)
	return query.Count(ctx)
}

// Exists - check if record exists
func (r *BaseRepository[T]) Exists(ctx context.Context, scopes ...QueryScope) (bool, error) {
	count, err := r.Count(ctx, scopes...)
	return count > 0, err
}
