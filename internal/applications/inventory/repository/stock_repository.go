// Package repository is the Bun-backed persistence layer for stock
// locations, stock items, and the movement ledger.
package repository

import (
	"context"

	"github.com/uptrace/bun"

	"cartflow/internal/applications/inventory/model"
	corebun "cartflow/internal/infra/database/bun"
)

type StockRepository interface {
	FindItem(ctx context.Context, db bun.IDB, id string) (*model.StockItem, error)
	FindItemForVariant(ctx context.Context, db bun.IDB, variantID, locationID string) (*model.StockItem, error)
	FindItemsForVariant(ctx context.Context, db bun.IDB, variantID string) ([]*model.StockItem, error)
	UpdateItem(ctx context.Context, db bun.IDB, item *model.StockItem) error
	CreateItem(ctx context.Context, db bun.IDB, item *model.StockItem) error

	FindLocation(ctx context.Context, db bun.IDB, id string) (*model.StockLocation, error)
	ActiveLocations(ctx context.Context, db bun.IDB) ([]*model.StockLocation, error)

	AppendMovement(ctx context.Context, db bun.IDB, movement *model.StockMovement) error
	MovementsForItem(ctx context.Context, db bun.IDB, stockItemID string) ([]*model.StockMovement, error)
}

type stockRepository struct {
	*corebun.BaseRepository[model.StockItem]
}

func NewStockRepository(db *bun.DB) StockRepository {
	return &stockRepository{BaseRepository: corebun.NewRepository(db, &model.StockItem{})}
}

func (r *stockRepository) FindItem(ctx context.Context, db bun.IDB, id string) (*model.StockItem, error) {
	item := new(model.StockItem)
	err := db.NewSelect().Model(item).Where("si.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *stockRepository) FindItemForVariant(ctx context.Context, db bun.IDB, variantID, locationID string) (*model.StockItem, error) {
	item := new(model.StockItem)
	err := db.NewSelect().Model(item).
		Where("si.variant_id = ? AND si.stock_location_id = ?", variantID, locationID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *stockRepository) FindItemsForVariant(ctx context.Context, db bun.IDB, variantID string) ([]*model.StockItem, error) {
	var items []*model.StockItem
	err := db.NewSelect().Model(&items).Where("si.variant_id = ?", variantID).Scan(ctx)
	return items, err
}

func (r *stockRepository) UpdateItem(ctx context.Context, db bun.IDB, item *model.StockItem) error {
	res, err := db.NewUpdate().Model(item).WherePK().Exec(ctx)
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

func (r *stockRepository) CreateItem(ctx context.Context, db bun.IDB, item *model.StockItem) error {
	_, err := db.NewInsert().Model(item).Exec(ctx)
	return err
}

func (r *stockRepository) FindLocation(ctx context.Context, db bun.IDB, id string) (*model.StockLocation, error) {
	location := new(model.StockLocation)
	err := db.NewSelect().Model(location).Where("sl.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return location, nil
}

func (r *stockRepository) ActiveLocations(ctx context.Context, db bun.IDB) ([]*model.StockLocation, error) {
	var locations []*model.StockLocation
	err := db.NewSelect().Model(&locations).
		Where("sl.active = ?", true).
		Order("sl.is_default DESC", "sl.created_at ASC").
		Scan(ctx)
	return locations, err
}

func (r *stockRepository) AppendMovement(ctx context.Context, db bun.IDB, movement *model.StockMovement) error {
	_, err := db.NewInsert().Model(movement).Exec(ctx)
	return err
}

func (r *stockRepository) MovementsForItem(ctx context.Context, db bun.IDB, stockItemID string) ([]*model.StockMovement, error) {
	var movements []*model.StockMovement
	err := db.NewSelect().Model(&movements).
		Where("sm.stock_item_id = ?", stockItemID).
		Order("sm.created_at ASC").
		Scan(ctx)
	return movements, err
}
