package service

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	invrepo "cartflow/internal/applications/inventory/repository"
	invservice "cartflow/internal/applications/inventory/service"
	invmodel "cartflow/internal/applications/inventory/model"
	"cartflow/internal/applications/shipment/model"
	"cartflow/internal/applications/shipment/repository"
	"cartflow/internal/eventbus"
	"cartflow/internal/infra/database/transaction"
	apperrors "cartflow/pkg/errors"
	"cartflow/pkg/logger"
)

type ShipmentService interface {
	// AllocateTx creates shipments and inventory units for the order's
	// lines inside the caller's transaction. Either every line reserves
	// or the error leaves shipments untouched.
	AllocateTx(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, orderID string, lines []AllocationLine) ([]*model.Shipment, error)
	SelectShippingMethodTx(ctx context.Context, tx bun.IDB, shipmentID, methodID, currency string) (*model.Shipment, error)
	// PromoteReadyTx moves every Pending shipment whose units are all on
	// hand to Ready, run when the order completes.
	PromoteReadyTx(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, orderID string) error
	// CancelForOrderTx cancels every non-shipped shipment of the order,
	// releasing the reservations each one holds.
	CancelForOrderTx(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, orderID string) error

	Ship(ctx context.Context, shipmentID, trackingNumber string) (*model.Shipment, error)
	MarkDelivered(ctx context.Context, shipmentID string) (*model.Shipment, error)
	Cancel(ctx context.Context, shipmentID, reason string) (*model.Shipment, error)
	// OnStockReceived flips backordered units to on hand as received
	// stock covers them, then promotes shipments that became complete.
	OnStockReceived(ctx context.Context, stockItemID string, quantity int) error
}

type ShipmentServiceImpl struct {
	repo      repository.ShipmentRepository
	stockRepo invrepo.StockRepository
	stock     invservice.StockService
	trx       transaction.Trx
	bus       *eventbus.Bus
}

func NewShipmentService(
	repo repository.ShipmentRepository,
	stockRepo invrepo.StockRepository,
	stock invservice.StockService,
	trx transaction.Trx,
	bus *eventbus.Bus,
) *ShipmentServiceImpl {
	return &ShipmentServiceImpl{repo: repo, stockRepo: stockRepo, stock: stock, trx: trx, bus: bus}
}

func (s *ShipmentServiceImpl) AllocateTx(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, orderID string, lines []AllocationLine) ([]*model.Shipment, error) {
	locations, err := s.stockRepo.ActiveLocations(ctx, tx)
	if err != nil {
		return nil, err
	}

	var items []*invmodel.StockItem
	seen := make(map[string]bool)
	for _, line := range lines {
		if seen[line.VariantID] {
			continue
		}
		seen[line.VariantID] = true
		variantItems, err := s.stockRepo.FindItemsForVariant(ctx, tx, line.VariantID)
		if err != nil {
			return nil, err
		}
		items = append(items, variantItems...)
	}

	plans, err := planAllocation(lines, locations, items)
	if err != nil {
		return nil, err
	}

	var shipments []*model.Shipment
	for _, plan := range plans {
		shipment := &model.Shipment{
			OrderID:         orderID,
			ShipmentNumber:  model.NewShipmentNumber(),
			State:           model.StatePending,
			StockLocationID: plan.LocationID,
		}
		if err := s.repo.Create(ctx, tx, shipment); err != nil {
			return nil, err
		}

		var units []*model.InventoryUnit
		for _, pl := range plan.Lines {
			total := pl.OnHand + pl.Backordered
			if _, err := s.stock.ReserveTx(ctx, tx, uow, pl.StockItemID, total, invservice.Originator{
				Type: invmodel.OriginatorOrder,
				ID:   orderID,
			}); err != nil {
				return nil, err
			}
			for i := 0; i < pl.OnHand; i++ {
				units = append(units, newUnit(pl.Line, shipment.ID, model.UnitOnHand))
			}
			for i := 0; i < pl.Backordered; i++ {
				units = append(units, newUnit(pl.Line, shipment.ID, model.UnitBackordered))
			}
		}
		if err := s.repo.CreateUnits(ctx, tx, units); err != nil {
			return nil, err
		}
		shipment.InventoryUnits = units
		shipments = append(shipments, shipment)
	}
	return shipments, nil
}

func newUnit(line AllocationLine, shipmentID string, state model.UnitState) *model.InventoryUnit {
	sid := shipmentID
	return &model.InventoryUnit{
		VariantID:      line.VariantID,
		LineItemID:     line.LineItemID,
		ShipmentID:     &sid,
		State:          state,
		StateChangedAt: bun.NullTime{Time: time.Now()},
	}
}

func (s *ShipmentServiceImpl) SelectShippingMethodTx(ctx context.Context, tx bun.IDB, shipmentID, methodID, currency string) (*model.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, tx, shipmentID)
	if err != nil {
		return nil, apperrors.ShipmentService(apperrors.ErrCodeShipmentNotFound).
			With("shipment_id", shipmentID).
			Wrap(err)
	}
	if shipment.State != model.StatePending {
		return nil, apperrors.ShipmentService(apperrors.ErrCodeShipmentStateConflict).
			With("current_state", string(shipment.State)).
			Errorf("shipping method can only change while pending")
	}

	method, err := s.repo.FindShippingMethod(ctx, tx, methodID)
	if err != nil {
		return nil, apperrors.ShipmentService(apperrors.ErrCodeShipmentNotFound).
			With("shipping_method_id", methodID).
			Wrap(err)
	}
	if !method.Active {
		return nil, apperrors.ShipmentService(apperrors.ErrCodeShipmentValidation).
			With("shipping_method_id", methodID).
			Errorf("shipping method inactive")
	}
	if method.Currency != currency {
		return nil, apperrors.ShipmentService(apperrors.ErrCodeShipmentValidation).
			With("shipping_method_id", methodID).
			With("method_currency", method.Currency).
			With("order_currency", currency).
			Errorf("shipping method not priced in order currency")
	}

	shipment.ShippingMethodID = &method.ID
	shipment.Cost = method.Amount
	if err := s.repo.Update(ctx, tx, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *ShipmentServiceImpl) PromoteReadyTx(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, orderID string) error {
	shipments, err := s.repo.FindByOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}
	for _, shipment := range shipments {
		if shipment.State != model.StatePending || !shipment.AllUnitsOnHand() {
			continue
		}
		shipment.State = model.StateReady
		shipment.ReadyAt = bun.NullTime{Time: time.Now()}
		if err := s.repo.Update(ctx, tx, shipment); err != nil {
			return err
		}
		uow.Emit(eventbus.Event{
			Type:      eventbus.ShipmentReady,
			OrderID:   orderID,
			EmittedAt: time.Now(),
			Payload:   shipment.ID,
		})
	}
	return nil
}

func (s *ShipmentServiceImpl) CancelForOrderTx(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, orderID string) error {
	shipments, err := s.repo.FindByOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}
	for _, shipment := range shipments {
		switch shipment.State {
		case model.StateShipped, model.StateDelivered, model.StateCanceled:
			continue
		}
		if err := s.cancelTx(ctx, tx, uow, shipment, "order canceled"); err != nil {
			return err
		}
	}
	return nil
}

// cancelTx cancels one shipment: every live unit flips to Canceled and
// the reservations the shipment holds are released, quantity for
// quantity.
func (s *ShipmentServiceImpl) cancelTx(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, shipment *model.Shipment, reason string) error {
	if !model.CanTransition(shipment.State, model.StateCanceled) {
		return apperrors.ShipmentService(apperrors.ErrCodeShipmentStateConflict).
			With("current_state", string(shipment.State)).
			With("attempted_transition", string(model.StateCanceled)).
			Errorf("shipment cannot be canceled")
	}

	releaseByVariant := make(map[string]int)
	for _, unit := range shipment.InventoryUnits {
		if unit.State != model.UnitOnHand && unit.State != model.UnitBackordered {
			continue
		}
		releaseByVariant[unit.VariantID]++
		unit.State = model.UnitCanceled
		unit.StateChangedAt = bun.NullTime{Time: time.Now()}
		if err := s.repo.UpdateUnit(ctx, tx, unit); err != nil {
			return err
		}
	}

	for variantID, quantity := range releaseByVariant {
		item, err := s.stockRepo.FindItemForVariant(ctx, tx, variantID, shipment.StockLocationID)
		if err != nil {
			return err
		}
		if err := s.stock.ReleaseTx(ctx, tx, uow, item.ID, quantity, invservice.Originator{
			Type: invmodel.OriginatorShipment,
			ID:   shipment.ID,
		}); err != nil {
			return err
		}
	}

	shipment.State = model.StateCanceled
	shipment.CanceledAt = bun.NullTime{Time: time.Now()}
	logger.Infof("shipment %s canceled: %s", shipment.ShipmentNumber, reason)
	return s.repo.Update(ctx, tx, shipment)
}

func (s *ShipmentServiceImpl) Ship(ctx context.Context, shipmentID, trackingNumber string) (*model.Shipment, error) {
	var shipment *model.Shipment
	err := s.withUnitOfWork(ctx, func(tx bun.IDB, uow *eventbus.UnitOfWork) error {
		loaded, err := s.repo.FindByID(ctx, tx, shipmentID)
		if err != nil {
			return apperrors.ShipmentService(apperrors.ErrCodeShipmentNotFound).
				With("shipment_id", shipmentID).
				Wrap(err)
		}
		shipment = loaded
		if !model.CanTransition(shipment.State, model.StateShipped) {
			return apperrors.ShipmentService(apperrors.ErrCodeShipmentStateConflict).
				With("current_state", string(shipment.State)).
				With("attempted_transition", string(model.StateShipped)).
				Errorf("shipment is not ready to ship")
		}

		shippedByVariant := make(map[string]int)
		for _, unit := range shipment.InventoryUnits {
			if unit.State != model.UnitOnHand {
				continue
			}
			unit.State = model.UnitShipped
			unit.StateChangedAt = bun.NullTime{Time: time.Now()}
			if err := s.repo.UpdateUnit(ctx, tx, unit); err != nil {
				return err
			}
			shippedByVariant[unit.VariantID]++
		}

		// Goods leaving the building settle both counters: the
		// reservation is consumed and on-hand drops with it.
		for variantID, quantity := range shippedByVariant {
			item, err := s.stockRepo.FindItemForVariant(ctx, tx, variantID, shipment.StockLocationID)
			if err != nil {
				return err
			}
			if err := s.stock.ReleaseTx(ctx, tx, uow, item.ID, quantity, invservice.Originator{
				Type: invmodel.OriginatorShipment,
				ID:   shipment.ID,
			}); err != nil {
				return err
			}
			item, err = s.stockRepo.FindItem(ctx, tx, item.ID)
			if err != nil {
				return err
			}
			item.QuantityOnHand -= quantity
			if err := s.stockRepo.UpdateItem(ctx, tx, item); err != nil {
				return err
			}
			if err := s.stockRepo.AppendMovement(ctx, tx, &invmodel.StockMovement{
				StockItemID:    item.ID,
				Quantity:       -quantity,
				Action:         invmodel.MovementAdjust,
				Reason:         "shipped",
				OriginatorType: invmodel.OriginatorShipment,
				OriginatorID:   shipment.ID,
			}); err != nil {
				return err
			}
		}

		shipment.State = model.StateShipped
		shipment.TrackingNumber = trackingNumber
		shipment.ShippedAt = bun.NullTime{Time: time.Now()}
		if err := s.repo.Update(ctx, tx, shipment); err != nil {
			return err
		}

		uow.Emit(eventbus.Event{
			Type:      eventbus.ShipmentShipped,
			OrderID:   shipment.OrderID,
			EmittedAt: time.Now(),
			Payload:   shipment.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *ShipmentServiceImpl) MarkDelivered(ctx context.Context, shipmentID string) (*model.Shipment, error) {
	var shipment *model.Shipment
	err := s.withUnitOfWork(ctx, func(tx bun.IDB, uow *eventbus.UnitOfWork) error {
		loaded, err := s.repo.FindByID(ctx, tx, shipmentID)
		if err != nil {
			return apperrors.ShipmentService(apperrors.ErrCodeShipmentNotFound).
				With("shipment_id", shipmentID).
				Wrap(err)
		}
		shipment = loaded
		if !model.CanTransition(shipment.State, model.StateDelivered) {
			return apperrors.ShipmentService(apperrors.ErrCodeShipmentStateConflict).
				With("current_state", string(shipment.State)).
				With("attempted_transition", string(model.StateDelivered)).
				Errorf("only shipped shipments can be delivered")
		}
		shipment.State = model.StateDelivered
		shipment.DeliveredAt = bun.NullTime{Time: time.Now()}
		return s.repo.Update(ctx, tx, shipment)
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *ShipmentServiceImpl) Cancel(ctx context.Context, shipmentID, reason string) (*model.Shipment, error) {
	var shipment *model.Shipment
	err := s.withUnitOfWork(ctx, func(tx bun.IDB, uow *eventbus.UnitOfWork) error {
		loaded, err := s.repo.FindByID(ctx, tx, shipmentID)
		if err != nil {
			return apperrors.ShipmentService(apperrors.ErrCodeShipmentNotFound).
				With("shipment_id", shipmentID).
				Wrap(err)
		}
		shipment = loaded
		return s.cancelTx(ctx, tx, uow, shipment, reason)
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *ShipmentServiceImpl) OnStockReceived(ctx context.Context, stockItemID string, quantity int) error {
	return s.withUnitOfWork(ctx, func(tx bun.IDB, uow *eventbus.UnitOfWork) error {
		item, err := s.stockRepo.FindItem(ctx, tx, stockItemID)
		if err != nil {
			return err
		}

		units, err := s.repo.FindBackorderedUnits(ctx, tx, item.VariantID, quantity)
		if err != nil {
			return err
		}

		promoted := make(map[string]bool)
		for _, unit := range units {
			unit.State = model.UnitOnHand
			unit.StateChangedAt = bun.NullTime{Time: time.Now()}
			if err := s.repo.UpdateUnit(ctx, tx, unit); err != nil {
				return err
			}
			if unit.ShipmentID != nil {
				promoted[*unit.ShipmentID] = true
			}
		}

		for shipmentID := range promoted {
			shipment, err := s.repo.FindByID(ctx, tx, shipmentID)
			if err != nil {
				return err
			}
			if shipment.State == model.StatePending && shipment.AllUnitsOnHand() {
				shipment.State = model.StateReady
				shipment.ReadyAt = bun.NullTime{Time: time.Now()}
				if err := s.repo.Update(ctx, tx, shipment); err != nil {
					return err
				}
				uow.Emit(eventbus.Event{
					Type:      eventbus.ShipmentReady,
					OrderID:   shipment.OrderID,
					EmittedAt: time.Now(),
					Payload:   shipment.ID,
				})
			}
		}
		return nil
	})
}

func (s *ShipmentServiceImpl) withUnitOfWork(ctx context.Context, fn func(tx bun.IDB, uow *eventbus.UnitOfWork) error) error {
	uow := s.bus.NewUnitOfWork()
	return s.trx.WithTx(ctx, func(tx bun.Tx) error {
		if err := fn(tx, uow); err != nil {
			return err
		}
		return uow.Drain(ctx)
	})
}
