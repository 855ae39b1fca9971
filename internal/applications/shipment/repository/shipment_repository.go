// Package repository is the Bun-backed persistence layer for shipments,
// inventory units, and shipping methods.
package repository

import (
	"context"

	"github.com/uptrace/bun"

	"cartflow/internal/applications/shipment/model"
	corebun "cartflow/internal/infra/database/bun"
)

type ShipmentRepository interface {
	Create(ctx context.Context, db bun.IDB, shipment *model.Shipment) error
	Update(ctx context.Context, db bun.IDB, shipment *model.Shipment) error
	FindByID(ctx context.Context, db bun.IDB, id string) (*model.Shipment, error)
	FindByOrder(ctx context.Context, db bun.IDB, orderID string) ([]*model.Shipment, error)

	CreateUnits(ctx context.Context, db bun.IDB, units []*model.InventoryUnit) error
	UpdateUnit(ctx context.Context, db bun.IDB, unit *model.InventoryUnit) error
	FindUnitsByShipment(ctx context.Context, db bun.IDB, shipmentID string) ([]*model.InventoryUnit, error)
	FindBackorderedUnits(ctx context.Context, db bun.IDB, variantID string, limit int) ([]*model.InventoryUnit, error)
	DeleteUnitsForLineItem(ctx context.Context, db bun.IDB, lineItemID string) error

	FindShippingMethod(ctx context.Context, db bun.IDB, id string) (*model.ShippingMethod, error)
}

type shipmentRepository struct {
	*corebun.BaseRepository[model.Shipment]
}

func NewShipmentRepository(db *bun.DB) ShipmentRepository {
	return &shipmentRepository{BaseRepository: corebun.NewRepository(db, &model.Shipment{})}
}

func (r *shipmentRepository) Create(ctx context.Context, db bun.IDB, shipment *model.Shipment) error {
	_, err := db.NewInsert().Model(shipment).Exec(ctx)
	return err
}

func (r *shipmentRepository) Update(ctx context.Context, db bun.IDB, shipment *model.Shipment) error {
	res, err := db.NewUpdate().Model(shipment).WherePK().Exec(ctx)
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

func (r *shipmentRepository) FindByID(ctx context.Context, db bun.IDB, id string) (*model.Shipment, error) {
	shipment := new(model.Shipment)
	err := db.NewSelect().Model(shipment).Relation("InventoryUnits").Where("sh.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

func (r *shipmentRepository) FindByOrder(ctx context.Context, db bun.IDB, orderID string) ([]*model.Shipment, error) {
	var shipments []*model.Shipment
	err := db.NewSelect().Model(&shipments).Relation("InventoryUnits").
		Where("sh.order_id = ?", orderID).
		Order("sh.created_at ASC").
		Scan(ctx)
	return shipments, err
}

func (r *shipmentRepository) CreateUnits(ctx context.Context, db bun.IDB, units []*model.InventoryUnit) error {
	if len(units) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&units).Exec(ctx)
	return err
}

func (r *shipmentRepository) UpdateUnit(ctx context.Context, db bun.IDB, unit *model.InventoryUnit) error {
	res, err := db.NewUpdate().Model(unit).WherePK().Exec(ctx)
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

func (r *shipmentRepository) FindUnitsByShipment(ctx context.Context, db bun.IDB, shipmentID string) ([]*model.InventoryUnit, error) {
	var units []*model.InventoryUnit
	err := db.NewSelect().Model(&units).
		Where("iu.shipment_id = ?", shipmentID).
		Order("iu.created_at ASC").
		Scan(ctx)
	return units, err
}

// FindBackorderedUnits returns the oldest backordered units for a
// variant, used to fulfill arriving stock in first-come order.
func (r *shipmentRepository) FindBackorderedUnits(ctx context.Context, db bun.IDB, variantID string, limit int) ([]*model.InventoryUnit, error) {
	var units []*model.InventoryUnit
	query := db.NewSelect().Model(&units).
		Where("iu.variant_id = ? AND iu.state = ?", variantID, model.UnitBackordered).
		Order("iu.created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(ctx)
	return units, err
}

func (r *shipmentRepository) DeleteUnitsForLineItem(ctx context.Context, db bun.IDB, lineItemID string) error {
	_, err := db.NewDelete().Model((*model.InventoryUnit)(nil)).
		Where("line_item_id = ?", lineItemID).
		ForceDelete().
		Exec(ctx)
	return err
}

func (r *shipmentRepository) FindShippingMethod(ctx context.Context, db bun.IDB, id string) (*model.ShippingMethod, error) {
	method := new(model.ShippingMethod)
	err := db.NewSelect().Model(method).Where("shm.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return method, nil
}
