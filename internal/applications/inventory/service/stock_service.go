// Package service implements the inventory engine: every counter change
// appends a StockMovement and updates the stock item atomically in the
// same transaction. Row-version conflicts are retried with jittered
// backoff before surfacing as a concurrency error.
package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/uptrace/bun"
	"golang.org/x/sync/singleflight"

	"cartflow/internal/applications/inventory/model"
	"cartflow/internal/applications/inventory/repository"
	"cartflow/internal/domain/ids"
	"cartflow/internal/eventbus"
	corebun "cartflow/internal/infra/database/bun"
	"cartflow/internal/infra/database/transaction"
	apperrors "cartflow/pkg/errors"
	"cartflow/pkg/logger"
)

const (
	maxRetries   = 3
	baseBackoff  = 25 * time.Millisecond
	backoffJitter = 25 * time.Millisecond
)

// Originator identifies what caused a movement (order, shipment, manual
// operator action).
type Originator struct {
	Type model.OriginatorType
	ID   string
}

// ReserveResult reports how a reservation was satisfied. Backordered is
// the overage beyond on-hand that was promised against the backorder
// limit; the shipment engine turns it into backordered inventory units.
type ReserveResult struct {
	StockItemID string
	Reserved    int
	Backordered int
}

type StockService interface {
	Adjust(ctx context.Context, stockItemID string, quantity int, reason string) (*model.StockItem, error)
	Reserve(ctx context.Context, stockItemID string, quantity int, originator Originator) (*ReserveResult, error)
	Release(ctx context.Context, stockItemID string, quantity int, originator Originator) (*model.StockItem, error)
	Transfer(ctx context.Context, variantID, srcLocationID, dstLocationID string, quantity int) (string, error)
	Receive(ctx context.Context, stockItemID string, quantity int, transferID string) (*model.StockItem, error)

	// Tx-scoped variants used by the allocation path so an entire
	// order's reservations commit or roll back together.
	ReserveTx(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, stockItemID string, quantity int, originator Originator) (*ReserveResult, error)
	ReleaseTx(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, stockItemID string, quantity int, originator Originator) error
}

type StockServiceImpl struct {
	repo  repository.StockRepository
	trx   transaction.Trx
	bus   *eventbus.Bus
	group singleflight.Group
}

func NewStockService(repo repository.StockRepository, trx transaction.Trx, bus *eventbus.Bus) *StockServiceImpl {
	return &StockServiceImpl{repo: repo, trx: trx, bus: bus}
}

// Adjust changes on_hand by quantity (signed). The resulting on_hand
// must stay non-negative.
func (s *StockServiceImpl) Adjust(ctx context.Context, stockItemID string, quantity int, reason string) (*model.StockItem, error) {
	return s.mutateWithRetry(ctx, stockItemID, func(tx bun.IDB, uow *eventbus.UnitOfWork, item *model.StockItem) error {
		if item.QuantityOnHand+quantity < 0 {
			return apperrors.InventoryService(apperrors.ErrCodeStockNegativeOnHand).
				With("stock_item_id", item.ID).
				With("on_hand", item.QuantityOnHand).
				With("quantity", quantity).
				Errorf("adjust would drive on_hand below zero")
		}
		item.QuantityOnHand += quantity
		return s.writeMovement(ctx, tx, uow, item, &model.StockMovement{
			StockItemID:    item.ID,
			Quantity:       quantity,
			Action:         model.MovementAdjust,
			Reason:         reason,
			OriginatorType: model.OriginatorManual,
		})
	})
}

// Reserve increases reserved by quantity. The reservation must fit
// within on_hand, or within on_hand + backorder_limit when the item is
// backorderable; the overage beyond on_hand is reported as backordered.
// Concurrent reservations against the same item are collapsed through a
// per-item single-flight gate before they reach the row-version retry
// loop.
func (s *StockServiceImpl) Reserve(ctx context.Context, stockItemID string, quantity int, originator Originator) (*ReserveResult, error) {
	result, err, _ := s.group.Do(stockItemID, func() (interface{}, error) {
		var res *ReserveResult
		item, err := s.mutateWithRetry(ctx, stockItemID, func(tx bun.IDB, uow *eventbus.UnitOfWork, item *model.StockItem) error {
			var reserveErr error
			res, reserveErr = applyReserve(item, quantity)
			if reserveErr != nil {
				return reserveErr
			}
			return s.writeMovement(ctx, tx, uow, item, &model.StockMovement{
				StockItemID:    item.ID,
				Quantity:       quantity,
				Action:         model.MovementReserve,
				OriginatorType: originator.Type,
				OriginatorID:   originator.ID,
			})
		})
		if err != nil {
			return nil, err
		}
		res.StockItemID = item.ID
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*ReserveResult), nil
}

// Release decreases reserved by quantity.
func (s *StockServiceImpl) Release(ctx context.Context, stockItemID string, quantity int, originator Originator) (*model.StockItem, error) {
	return s.mutateWithRetry(ctx, stockItemID, func(tx bun.IDB, uow *eventbus.UnitOfWork, item *model.StockItem) error {
		if err := applyRelease(item, quantity); err != nil {
			return err
		}
		return s.writeMovement(ctx, tx, uow, item, &model.StockMovement{
			StockItemID:    item.ID,
			Quantity:       -quantity,
			Action:         model.MovementRelease,
			OriginatorType: originator.Type,
			OriginatorID:   originator.ID,
		})
	})
}

// Transfer moves quantity of a variant between two locations as an
// atomic pair of movements sharing one transfer id. The destination's
// Receive is recorded immediately; arriving goods at the destination use
// Receive directly when the transfer is physical and delayed.
func (s *StockServiceImpl) Transfer(ctx context.Context, variantID, srcLocationID, dstLocationID string, quantity int) (string, error) {
	if quantity <= 0 {
		return "", apperrors.InventoryService(apperrors.ErrCodeStockValidation).
			Errorf("transfer quantity must be positive")
	}
	transferID := ids.New()

	err := s.withUnitOfWork(ctx, func(tx bun.IDB, uow *eventbus.UnitOfWork) error {
		src, err := s.repo.FindItemForVariant(ctx, tx, variantID, srcLocationID)
		if err != nil {
			return apperrors.InventoryService(apperrors.ErrCodeStockNotFound).
				With("variant_id", variantID).
				With("stock_location_id", srcLocationID).
				Wrap(err)
		}
		dst, err := s.repo.FindItemForVariant(ctx, tx, variantID, dstLocationID)
		if err != nil {
			return apperrors.InventoryService(apperrors.ErrCodeStockNotFound).
				With("variant_id", variantID).
				With("stock_location_id", dstLocationID).
				Wrap(err)
		}

		if src.QuantityOnHand-quantity < 0 {
			return apperrors.InventoryService(apperrors.ErrCodeStockNegativeOnHand).
				With("stock_item_id", src.ID).
				Errorf("transfer exceeds on_hand at source")
		}

		src.QuantityOnHand -= quantity
		if err := s.writeMovement(ctx, tx, uow, src, &model.StockMovement{
			StockItemID:    src.ID,
			Quantity:       -quantity,
			Action:         model.MovementTransfer,
			OriginatorType: model.OriginatorTransfer,
			OriginatorID:   transferID,
			TransferID:     transferID,
		}); err != nil {
			return err
		}

		dst.QuantityOnHand += quantity
		return s.writeMovement(ctx, tx, uow, dst, &model.StockMovement{
			StockItemID:    dst.ID,
			Quantity:       quantity,
			Action:         model.MovementReceive,
			OriginatorType: model.OriginatorTransfer,
			OriginatorID:   transferID,
			TransferID:     transferID,
		})
	})
	if err != nil {
		return "", err
	}
	return transferID, nil
}

// Receive increases on_hand at the destination for goods arriving under
// a previously created transfer, and back-fills any backordered
// reservations the shipment engine recorded against this item.
func (s *StockServiceImpl) Receive(ctx context.Context, stockItemID string, quantity int, transferID string) (*model.StockItem, error) {
	if quantity <= 0 {
		return nil, apperrors.InventoryService(apperrors.ErrCodeStockValidation).
			Errorf("receive quantity must be positive")
	}
	return s.mutateWithRetry(ctx, stockItemID, func(tx bun.IDB, uow *eventbus.UnitOfWork, item *model.StockItem) error {
		item.QuantityOnHand += quantity
		return s.writeMovement(ctx, tx, uow, item, &model.StockMovement{
			StockItemID:    item.ID,
			Quantity:       quantity,
			Action:         model.MovementReceive,
			OriginatorType: model.OriginatorTransfer,
			OriginatorID:   transferID,
			TransferID:     transferID,
		})
	})
}

// ReserveTx reserves inside the caller's transaction. No retry loop: the
// caller's command owns conflict handling, so a version mismatch aborts
// the whole order-level reservation, keeping partial reservations from
// persisting.
func (s *StockServiceImpl) ReserveTx(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, stockItemID string, quantity int, originator Originator) (*ReserveResult, error) {
	item, err := s.repo.FindItem(ctx, tx, stockItemID)
	if err != nil {
		return nil, apperrors.InventoryService(apperrors.ErrCodeStockNotFound).
			With("stock_item_id", stockItemID).
			Wrap(err)
	}
	result, err := applyReserve(item, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.writeMovement(ctx, tx, uow, item, &model.StockMovement{
		StockItemID:    item.ID,
		Quantity:       quantity,
		Action:         model.MovementReserve,
		OriginatorType: originator.Type,
		OriginatorID:   originator.ID,
	}); err != nil {
		return nil, err
	}
	result.StockItemID = item.ID
	return result, nil
}

// ReleaseTx releases inside the caller's transaction.
func (s *StockServiceImpl) ReleaseTx(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, stockItemID string, quantity int, originator Originator) error {
	item, err := s.repo.FindItem(ctx, tx, stockItemID)
	if err != nil {
		return apperrors.InventoryService(apperrors.ErrCodeStockNotFound).
			With("stock_item_id", stockItemID).
			Wrap(err)
	}
	if err := applyRelease(item, quantity); err != nil {
		return err
	}
	return s.writeMovement(ctx, tx, uow, item, &model.StockMovement{
		StockItemID:    item.ID,
		Quantity:       -quantity,
		Action:         model.MovementRelease,
		OriginatorType: originator.Type,
		OriginatorID:   originator.ID,
	})
}

// applyReserve validates and applies a reservation against the counters.
func applyReserve(item *model.StockItem, quantity int) (*ReserveResult, error) {
	if quantity <= 0 {
		return nil, apperrors.InventoryService(apperrors.ErrCodeStockValidation).
			Errorf("reserve quantity must be positive")
	}
	newReserved := item.QuantityReserved + quantity
	overage := newReserved - item.QuantityOnHand
	if overage > 0 {
		if !item.Backorderable || overage > item.BackorderLimit {
			return nil, apperrors.InventoryService(apperrors.ErrCodeStockOutOfStock).
				With("variant_id", item.VariantID).
				With("stock_item_id", item.ID).
				With("requested", quantity).
				With("available", item.CountAvailable()).
				Errorf("insufficient stock")
		}
	} else {
		overage = 0
	}
	item.QuantityReserved = newReserved
	return &ReserveResult{Reserved: quantity, Backordered: overage}, nil
}

func applyRelease(item *model.StockItem, quantity int) error {
	if quantity <= 0 {
		return apperrors.InventoryService(apperrors.ErrCodeStockValidation).
			Errorf("release quantity must be positive")
	}
	if item.QuantityReserved-quantity < 0 {
		return apperrors.InventoryService(apperrors.ErrCodeStockInsufficientReserved).
			With("stock_item_id", item.ID).
			With("reserved", item.QuantityReserved).
			With("quantity", quantity).
			Errorf("release exceeds reserved")
	}
	item.QuantityReserved -= quantity
	return nil
}

// writeMovement persists the updated counters and the ledger row
// together and emits StockMoved on the unit of work.
func (s *StockServiceImpl) writeMovement(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, item *model.StockItem, movement *model.StockMovement) error {
	if err := s.repo.UpdateItem(ctx, tx, item); err != nil {
		return err
	}
	if err := s.repo.AppendMovement(ctx, tx, movement); err != nil {
		return err
	}
	if uow != nil {
		uow.Emit(eventbus.Event{
			Type:      eventbus.StockMoved,
			EmittedAt: time.Now(),
			Payload: eventbus.StockMovedPayload{
				StockItemID: item.ID,
				Quantity:    movement.Quantity,
				Action:      string(movement.Action),
			},
		})
	}
	return nil
}

// mutateWithRetry loads the item, applies fn in its own transaction, and
// retries the whole load-mutate-commit cycle on a row-version conflict.
func (s *StockServiceImpl) mutateWithRetry(ctx context.Context, stockItemID string, fn func(tx bun.IDB, uow *eventbus.UnitOfWork, item *model.StockItem) error) (*model.StockItem, error) {
	var item *model.StockItem

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := s.withUnitOfWork(ctx, func(tx bun.IDB, uow *eventbus.UnitOfWork) error {
			loaded, err := s.repo.FindItem(ctx, tx, stockItemID)
			if err != nil {
				return apperrors.InventoryService(apperrors.ErrCodeStockNotFound).
					With("stock_item_id", stockItemID).
					Wrap(err)
			}
			item = loaded
			return fn(tx, uow, item)
		})
		if err == nil {
			return item, nil
		}
		if !corebun.IsConcurrencyConflict(err) {
			return nil, err
		}
		if attempt == maxRetries {
			break
		}

		backoff := baseBackoff*time.Duration(attempt+1) + time.Duration(rand.Int63n(int64(backoffJitter)))
		logger.Debugf("stock item %s version conflict, retry %d after %s", stockItemID, attempt+1, backoff)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, apperrors.InventoryService(apperrors.ErrCodeStockConcurrencyConflict).
		With("stock_item_id", stockItemID).
		Errorf("row version conflict persisted after %d retries", maxRetries)
}

// withUnitOfWork runs fn in one transaction and drains the buffered
// events before commit.
func (s *StockServiceImpl) withUnitOfWork(ctx context.Context, fn func(tx bun.IDB, uow *eventbus.UnitOfWork) error) error {
	uow := s.bus.NewUnitOfWork()
	return s.trx.WithTx(ctx, func(tx bun.Tx) error {
		if err := fn(tx, uow); err != nil {
			return err
		}
		return uow.Drain(ctx)
	})
}
