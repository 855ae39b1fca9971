// Package repository is the Bun-backed persistence layer for the order
// aggregate.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	corebun "cartflow/internal/infra/database/bun"
	"cartflow/internal/applications/order/model"
)

type OrderRepository interface {
	Create(ctx context.Context, db bun.IDB, order *model.Order) error
	Update(ctx context.Context, db bun.IDB, order *model.Order) error
	FindByID(ctx context.Context, db bun.IDB, id string) (*model.Order, error)
	FindByOrderNumber(ctx context.Context, db bun.IDB, number string) (*model.Order, error)
	FindCartByUser(ctx context.Context, db bun.IDB, userID, currency string) (*model.Order, error)
	FindCompletedByUser(ctx context.Context, db bun.IDB, userID string) (*model.Order, error)

	CreateLineItem(ctx context.Context, db bun.IDB, li *model.LineItem) error
	UpdateLineItem(ctx context.Context, db bun.IDB, li *model.LineItem) error
	DeleteLineItem(ctx context.Context, db bun.IDB, id string) error
	FindLineItems(ctx context.Context, db bun.IDB, orderID string) ([]*model.LineItem, error)
	FindLineItemByVariant(ctx context.Context, db bun.IDB, orderID, variantID string) (*model.LineItem, error)

	FindAdjustments(ctx context.Context, db bun.IDB, targetType model.TargetType, targetID string) ([]*model.Adjustment, error)
	FindAdjustmentsForOrder(ctx context.Context, db bun.IDB, orderID string, lineItemIDs []string) ([]*model.Adjustment, error)
	// ReplaceAdjustments deletes every existing row for the given target
	// and inserts the supplied set in one pass, so recomputation replaces
	// the target's rows rather than appending.
	ReplaceAdjustments(ctx context.Context, db bun.IDB, targetType model.TargetType, targetID string, adjustments []*model.Adjustment) error
	DeleteAdjustmentsForTarget(ctx context.Context, db bun.IDB, targetType model.TargetType, targetID string) error
	// DeletePromotionAdjustments clears every promotion-sourced
	// adjustment on the order and its line items ahead of a fresh
	// evaluation pass; manual adjustments survive.
	DeletePromotionAdjustments(ctx context.Context, db bun.IDB, orderID string, lineItemIDs []string) error
	CreateAdjustments(ctx context.Context, db bun.IDB, adjustments []*model.Adjustment) error

	CreateHistory(ctx context.Context, db bun.IDB, h *model.OrderHistory) error
}

type orderRepository struct {
	*corebun.BaseRepository[model.Order]
}

func NewOrderRepository(db *bun.DB) OrderRepository {
	return &orderRepository{BaseRepository: corebun.NewRepository(db, &model.Order{})}
}

func (r *orderRepository) Create(ctx context.Context, db bun.IDB, order *model.Order) error {
	_, err := db.NewInsert().Model(order).Exec(ctx)
	return err
}

func (r *orderRepository) Update(ctx context.Context, db bun.IDB, order *model.Order) error {
	res, err := db.NewUpdate().Model(order).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return corebun.ErrConcurrencyConflict
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, db bun.IDB, id string) (*model.Order, error) {
	order := new(model.Order)
	err := db.NewSelect().Model(order).Relation("LineItems").Where("o.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) FindByOrderNumber(ctx context.Context, db bun.IDB, number string) (*model.Order, error) {
	order := new(model.Order)
	err := db.NewSelect().Model(order).Relation("LineItems").Where("o.order_number = ?", number).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// FindCartByUser finds the authenticated user's existing Cart order in
// the same currency during guest-cart association.
func (r *orderRepository) FindCartByUser(ctx context.Context, db bun.IDB, userID, currency string) (*model.Order, error) {
	order := new(model.Order)
	err := db.NewSelect().Model(order).Relation("LineItems").
		Where("o.user_id = ? AND o.state = ? AND o.currency = ?", userID, model.StateCart, currency).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// FindCompletedByUser backs the promotion engine's FirstOrder rule.
func (r *orderRepository) FindCompletedByUser(ctx context.Context, db bun.IDB, userID string) (*model.Order, error) {
	order := new(model.Order)
	err := db.NewSelect().Model(order).
		Where("o.user_id = ? AND o.state = ?", userID, model.StateComplete).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) CreateLineItem(ctx context.Context, db bun.IDB, li *model.LineItem) error {
	_, err := db.NewInsert().Model(li).Exec(ctx)
	return err
}

func (r *orderRepository) UpdateLineItem(ctx context.Context, db bun.IDB, li *model.LineItem) error {
	res, err := db.NewUpdate().Model(li).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return corebun.ErrConcurrencyConflict
	}
	return nil
}

func (r *orderRepository) DeleteLineItem(ctx context.Context, db bun.IDB, id string) error {
	_, err := db.NewDelete().Model((*model.LineItem)(nil)).Where("id = ?", id).ForceDelete().Exec(ctx)
	return err
}

func (r *orderRepository) FindLineItems(ctx context.Context, db bun.IDB, orderID string) ([]*model.LineItem, error) {
	var items []*model.LineItem
	err := db.NewSelect().Model(&items).Where("order_id = ?", orderID).Order("created_at ASC").Scan(ctx)
	return items, err
}

func (r *orderRepository) FindLineItemByVariant(ctx context.Context, db bun.IDB, orderID, variantID string) (*model.LineItem, error) {
	li := new(model.LineItem)
	err := db.NewSelect().Model(li).Where("order_id = ? AND variant_id = ?", orderID, variantID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return li, nil
}

func (r *orderRepository) FindAdjustments(ctx context.Context, db bun.IDB, targetType model.TargetType, targetID string) ([]*model.Adjustment, error) {
	var adjustments []*model.Adjustment
	err := db.NewSelect().Model(&adjustments).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Scan(ctx)
	return adjustments, err
}

// FindAdjustmentsForOrder loads every adjustment touching the order
// itself or any of its current line items, the adjustment_total input.
func (r *orderRepository) FindAdjustmentsForOrder(ctx context.Context, db bun.IDB, orderID string, lineItemIDs []string) ([]*model.Adjustment, error) {
	var adjustments []*model.Adjustment
	query := db.NewSelect().Model(&adjustments)
	if len(lineItemIDs) == 0 {
		query = query.Where("target_type = ? AND target_id = ?", model.TargetOrder, orderID)
	} else {
		query = query.Where(
			"(target_type = ? AND target_id = ?) OR (target_type = ? AND target_id IN (?))",
			model.TargetOrder, orderID, model.TargetLineItem, bun.In(lineItemIDs),
		)
	}
	err := query.Scan(ctx)
	return adjustments, err
}

func (r *orderRepository) DeleteAdjustmentsForTarget(ctx context.Context, db bun.IDB, targetType model.TargetType, targetID string) error {
	_, err := db.NewDelete().Model((*model.Adjustment)(nil)).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		ForceDelete().
		Exec(ctx)
	return err
}

// ReplaceAdjustments deletes whatever currently exists for the target,
// then inserts the fresh set computed this recomputation pass. The
// delete+insert happens in the same transaction as the rest of the
// recomputation, so a crash between them is never observable.
func (r *orderRepository) ReplaceAdjustments(ctx context.Context, db bun.IDB, targetType model.TargetType, targetID string, adjustments []*model.Adjustment) error {
	if err := r.DeleteAdjustmentsForTarget(ctx, db, targetType, targetID); err != nil {
		return err
	}
	if len(adjustments) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&adjustments).Exec(ctx)
	return err
}

func (r *orderRepository) DeletePromotionAdjustments(ctx context.Context, db bun.IDB, orderID string, lineItemIDs []string) error {
	query := db.NewDelete().Model((*model.Adjustment)(nil)).Where("is_promotion = ?", true)
	if len(lineItemIDs) == 0 {
		query = query.Where("target_type = ? AND target_id = ?", model.TargetOrder, orderID)
	} else {
		query = query.Where(
			"(target_type = ? AND target_id = ?) OR (target_type = ? AND target_id IN (?))",
			model.TargetOrder, orderID, model.TargetLineItem, bun.In(lineItemIDs),
		)
	}
	_, err := query.ForceDelete().Exec(ctx)
	return err
}

func (r *orderRepository) CreateAdjustments(ctx context.Context, db bun.IDB, adjustments []*model.Adjustment) error {
	if len(adjustments) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&adjustments).Exec(ctx)
	return err
}

func (r *orderRepository) CreateHistory(ctx context.Context, db bun.IDB, h *model.OrderHistory) error {
	_, err := db.NewInsert().Model(h).Exec(ctx)
	return err
}
