package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"cartflow/internal/applications/order/model"
	promoservice "cartflow/internal/applications/promotion/service"
	shipmodel "cartflow/internal/applications/shipment/model"
	shipmentservice "cartflow/internal/applications/shipment/service"
	"cartflow/internal/eventbus"
	apperrors "cartflow/pkg/errors"
	"cartflow/pkg/logger"
)

func (s *OrderServiceImpl) ApplyCoupon(ctx context.Context, orderID, code string) (*model.Order, error) {
	return s.mutate(ctx, orderID, func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
		switch order.State {
		case model.StateComplete, model.StateCanceled, model.StateAwaitingReturn, model.StateReturned:
			return stateConflict(order, "apply_coupon")
		}

		promotion, err := s.promotions.FindByCode(ctx, tx, code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.PromotionService(apperrors.ErrCodePromotionInvalidCode).
					With("code", code).
					Errorf("coupon code not found")
			}
			return err
		}
		if expired(promotion.StartsAt.Time, promotion.ExpiresAt.Time) {
			return apperrors.PromotionService(apperrors.ErrCodePromotionExpired).
				With("code", code).
				Errorf("coupon is outside its validity window")
		}

		snapshot, err := s.buildSnapshot(ctx, tx, order)
		if err != nil {
			return err
		}
		if err := s.engine.ValidateCoupon(snapshot, promotion); err != nil {
			return err
		}

		order.PromotionID = &promotion.ID
		order.PromoCode = promotion.Code

		uow.Emit(eventbus.Event{
			Type:      eventbus.PromotionApplied,
			OrderID:   order.ID,
			EmittedAt: time.Now(),
			Payload:   eventbus.PromotionAppliedPayload{PromotionID: promotion.ID},
		})
		return s.recomputeTotals(ctx, tx, order)
	})
}

func (s *OrderServiceImpl) RemoveCoupon(ctx context.Context, orderID string) (*model.Order, error) {
	return s.mutate(ctx, orderID, func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
		switch order.State {
		case model.StateComplete, model.StateCanceled, model.StateAwaitingReturn, model.StateReturned:
			return stateConflict(order, "remove_coupon")
		}
		order.PromotionID = nil
		order.PromoCode = nil
		return s.recomputeTotals(ctx, tx, order)
	})
}

func expired(startsAt, expiresAt time.Time) bool {
	now := time.Now()
	if !startsAt.IsZero() && now.Before(startsAt) {
		return true
	}
	if !expiresAt.IsZero() && !now.Before(expiresAt) {
		return true
	}
	return false
}

// Advance walks the order forward through every transition whose guard
// currently passes, stopping at the first unmet guard. When no transition
// at all is possible, the unmet guard's error is returned and nothing
// changes; from a state with no forward edge it returns the order as is.
func (s *OrderServiceImpl) Advance(ctx context.Context, orderID string) (*model.Order, error) {
	var order *model.Order
	uow := s.bus.NewUnitOfWork()
	err := s.trx.WithSerializableTx(ctx, func(tx bun.Tx) error {
		loaded, err := s.loadOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		order = loaded

		progressed := false
		for {
			advanced, err := s.advanceOne(ctx, tx, uow, order)
			if err != nil {
				// A guard failing after earlier transitions succeeded
				// stops the walk at the furthest reached state rather
				// than rolling the whole advance back.
				if progressed && apperrors.HasCode(err, apperrors.ErrCodeOrderAdvanceGuardFailed) {
					break
				}
				return err
			}
			if !advanced {
				break
			}
			progressed = true
		}
		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}
		return uow.Drain(ctx)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// advanceOne attempts the single next transition for the current state.
// It reports whether a transition happened; every unmet guard is returned
// as an ErrCodeOrderAdvanceGuardFailed error, which Advance swallows once
// an earlier transition of the same walk has succeeded.
func (s *OrderServiceImpl) advanceOne(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) (bool, error) {
	switch order.State {
	case model.StateCart:
		if len(order.LineItems) == 0 {
			return false, apperrors.OrderService(apperrors.ErrCodeOrderAdvanceGuardFailed).
				With("missing", "line_items").
				Errorf("cannot advance an empty cart")
		}
		return true, s.transition(ctx, tx, uow, order, model.StateAddress, "checkout started")

	case model.StateAddress:
		if !order.ShippingAddress.Valid() {
			return false, apperrors.OrderService(apperrors.ErrCodeOrderAdvanceGuardFailed).
				With("missing", "shipping_address").
				Errorf("shipping address required")
		}
		return true, s.transition(ctx, tx, uow, order, model.StateDelivery, "address confirmed")

	case model.StateDelivery:
		if order.SelectedShippingMethodID == nil {
			return false, apperrors.OrderService(apperrors.ErrCodeOrderAdvanceGuardFailed).
				With("missing", "shipping_method").
				Errorf("shipping method required")
		}
		if err := s.ensureShipments(ctx, tx, uow, order); err != nil {
			return false, err
		}
		if err := s.transition(ctx, tx, uow, order, model.StatePayment, "delivery selected"); err != nil {
			return false, err
		}
		return true, s.recomputeTotals(ctx, tx, order)

	case model.StatePayment:
		coverage, err := s.payments.CoverageFor(ctx, tx, order.ID)
		if err != nil {
			return false, err
		}
		if order.GrandTotal > 0 && coverage.AuthorizedOrCompleted < order.GrandTotal {
			return false, apperrors.OrderService(apperrors.ErrCodeOrderAdvanceGuardFailed).
				With("missing", "payment").
				With("covered", coverage.AuthorizedOrCompleted).
				With("grand_total", order.GrandTotal).
				Errorf("payments do not cover the order total")
		}
		// Fully captured already (auto-capture gateways) short-circuits
		// the confirmation step.
		if order.GrandTotal > 0 && coverage.Completed >= order.GrandTotal {
			if err := s.transition(ctx, tx, uow, order, model.StateComplete, "paid in full"); err != nil {
				return false, err
			}
			return true, s.finalizeCompletion(ctx, tx, uow, order)
		}
		return true, s.transition(ctx, tx, uow, order, model.StateConfirm, "payment added")

	case model.StateConfirm:
		coverage, err := s.payments.CoverageFor(ctx, tx, order.ID)
		if err != nil {
			return false, err
		}
		if order.GrandTotal > 0 && coverage.AuthorizedOrCompleted < order.GrandTotal {
			return false, apperrors.OrderService(apperrors.ErrCodeOrderAdvanceGuardFailed).
				With("missing", "payment").
				Errorf("payments do not cover the order total")
		}
		if err := s.transition(ctx, tx, uow, order, model.StateComplete, "order confirmed"); err != nil {
			return false, err
		}
		return true, s.finalizeCompletion(ctx, tx, uow, order)

	default:
		return false, nil
	}
}

// ensureShipments allocates shipments for the order's lines when none
// exist yet and prices them with the selected shipping method. An
// out-of-stock planning failure aborts before any shipment is written.
func (s *OrderServiceImpl) ensureShipments(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
	existing, err := s.shipmentRepo.FindByOrder(ctx, tx, order.ID)
	if err != nil {
		return err
	}
	live := existing[:0]
	for _, shipment := range existing {
		if shipment.State != shipmodel.StateCanceled {
			live = append(live, shipment)
		}
	}
	if len(live) > 0 {
		return nil
	}

	lines := make([]shipmentservice.AllocationLine, 0, len(order.LineItems))
	for _, line := range order.LineItems {
		lines = append(lines, shipmentservice.AllocationLine{
			LineItemID: line.ID,
			VariantID:  line.VariantID,
			Quantity:   line.Quantity,
		})
	}

	shipments, err := s.shipments.AllocateTx(ctx, tx, uow, order.ID, lines)
	if err != nil {
		return err
	}
	for _, shipment := range shipments {
		if _, err := s.shipments.SelectShippingMethodTx(ctx, tx, shipment.ID, *order.SelectedShippingMethodID, order.Currency); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderServiceImpl) Complete(ctx context.Context, orderID string) (*model.Order, error) {
	var order *model.Order
	uow := s.bus.NewUnitOfWork()
	err := s.trx.WithSerializableTx(ctx, func(tx bun.Tx) error {
		loaded, err := s.loadOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		order = loaded

		if order.State != model.StateConfirm {
			return stateConflict(order, "complete")
		}
		coverage, err := s.payments.CoverageFor(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if order.GrandTotal > 0 && coverage.AuthorizedOrCompleted < order.GrandTotal {
			return apperrors.OrderService(apperrors.ErrCodeOrderAdvanceGuardFailed).
				With("missing", "payment").
				Errorf("payments do not cover the order total")
		}

		if err := s.transition(ctx, tx, uow, order, model.StateComplete, "order completed"); err != nil {
			return err
		}
		if err := s.finalizeCompletion(ctx, tx, uow, order); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}
		return uow.Drain(ctx)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// finalizeCompletion runs once the order has entered Complete: the
// completion stamp, promotion usage counting, shipment promotion, and
// the OrderCompleted event.
func (s *OrderServiceImpl) finalizeCompletion(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
	if order.ItemCount() == 0 {
		return apperrors.OrderService(apperrors.ErrCodeOrderValidation).
			Errorf("a completed order must contain items")
	}
	order.CompletedAt = bun.NullTime{Time: time.Now()}

	for _, promotionID := range s.appliedPromotionIDs(ctx, tx, order) {
		if err := s.promotions.IncrementUsage(ctx, tx, promotionID); err != nil {
			return err
		}
	}

	if err := s.shipments.PromoteReadyTx(ctx, tx, uow, order.ID); err != nil {
		return err
	}

	uow.Emit(eventbus.Event{
		Type:      eventbus.OrderCompleted,
		OrderID:   order.ID,
		EmittedAt: time.Now(),
	})
	return nil
}

// appliedPromotionIDs collects the distinct promotions that currently
// hold at least one adjustment against the order or its lines.
func (s *OrderServiceImpl) appliedPromotionIDs(ctx context.Context, tx bun.IDB, order *model.Order) []string {
	lineIDs := make([]string, 0, len(order.LineItems))
	for _, line := range order.LineItems {
		lineIDs = append(lineIDs, line.ID)
	}
	adjustments, err := s.repo.FindAdjustmentsForOrder(ctx, tx, order.ID, lineIDs)
	if err != nil {
		logger.Errorf("loading adjustments for usage counting failed: %v", err)
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, adj := range adjustments {
		if adj.PromotionID == nil || seen[*adj.PromotionID] || adj.Amount == 0 {
			continue
		}
		seen[*adj.PromotionID] = true
		result = append(result, *adj.PromotionID)
	}
	return result
}

func (s *OrderServiceImpl) Cancel(ctx context.Context, orderID, reason string) (*model.Order, error) {
	return s.mutate(ctx, orderID, func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
		if !model.CanTransition(order.State, model.StateCanceled) {
			return stateConflict(order, "cancel")
		}

		coverage, err := s.payments.CoverageFor(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if coverage.NetCaptured > 0 {
			return apperrors.OrderService(apperrors.ErrCodeOrderCannotCancelCaptured).
				With("net_captured", coverage.NetCaptured).
				Errorf("captured payments must be refunded before cancellation")
		}

		wasComplete := order.State == model.StateComplete

		if err := s.shipments.CancelForOrderTx(ctx, tx, uow, order.ID); err != nil {
			return err
		}
		if err := s.transition(ctx, tx, uow, order, model.StateCanceled, reason); err != nil {
			return err
		}
		order.CanceledAt = bun.NullTime{Time: time.Now()}
		order.CancelReason = reason

		if wasComplete {
			for _, promotionID := range s.appliedPromotionIDs(ctx, tx, order) {
				if err := s.promotions.DecrementUsage(ctx, tx, promotionID); err != nil {
					return err
				}
			}
		}

		uow.Emit(eventbus.Event{
			Type:      eventbus.OrderCanceled,
			OrderID:   order.ID,
			EmittedAt: time.Now(),
			Payload:   reason,
		})
		return s.repo.Update(ctx, tx, order)
	})
}

// recomputeTotals re-derives every monetary field after a mutation:
// every promotion adjustment on the order and its lines is deleted and
// re-inserted from a fresh evaluation, line totals refresh, and the
// order-level sums settle.
func (s *OrderServiceImpl) recomputeTotals(ctx context.Context, tx bun.IDB, order *model.Order) error {
	lines, err := s.repo.FindLineItems(ctx, tx, order.ID)
	if err != nil {
		return err
	}
	order.LineItems = lines

	shipmentCost, err := s.liveShipmentCost(ctx, tx, order.ID)
	if err != nil {
		return err
	}
	order.ShipmentTotal = shipmentCost

	snapshot, err := s.buildSnapshot(ctx, tx, order)
	if err != nil {
		return err
	}

	promotions, err := s.promotions.Active(ctx, tx, time.Now())
	if err != nil {
		return err
	}
	couponPromotionID := ""
	if order.PromotionID != nil {
		couponPromotionID = *order.PromotionID
	}
	evaluation := s.engine.Evaluate(snapshot, promotions, couponPromotionID)

	lineIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		lineIDs = append(lineIDs, line.ID)
	}
	if err := s.repo.DeletePromotionAdjustments(ctx, tx, order.ID, lineIDs); err != nil {
		return err
	}

	fresh := make([]*model.Adjustment, 0, len(evaluation.Adjustments))
	for _, result := range evaluation.Adjustments {
		promotionID := result.PromotionID
		adjustment := &model.Adjustment{
			TargetType:  model.TargetType(result.TargetType),
			TargetID:    result.TargetID,
			Amount:      result.Amount,
			Description: result.Description,
			PromotionID: &promotionID,
			ActionKind:  model.ActionKind(result.ActionKind),
			IsPromotion: true,
		}
		fresh = append(fresh, adjustment)
	}
	if err := s.repo.CreateAdjustments(ctx, tx, fresh); err != nil {
		return err
	}

	all, err := s.repo.FindAdjustmentsForOrder(ctx, tx, order.ID, lineIDs)
	if err != nil {
		return err
	}
	orderAdjustments := make([]*model.Adjustment, 0, len(all))
	lineAdjustments := make(map[string][]*model.Adjustment)
	for _, adj := range all {
		if adj.TargetType == model.TargetOrder {
			orderAdjustments = append(orderAdjustments, adj)
		} else {
			lineAdjustments[adj.TargetID] = append(lineAdjustments[adj.TargetID], adj)
		}
	}
	order.Adjustments = orderAdjustments

	computeTotals(totalsInput{
		Order:            order,
		Lines:            lines,
		OrderAdjustments: orderAdjustments,
		LineAdjustments:  lineAdjustments,
		ShipmentCost:     shipmentCost,
	})

	for _, line := range lines {
		line.Adjustments = lineAdjustments[line.ID]
		if err := s.repo.UpdateLineItem(ctx, tx, line); err != nil {
			return err
		}
	}
	return s.repo.Update(ctx, tx, order)
}

func (s *OrderServiceImpl) liveShipmentCost(ctx context.Context, tx bun.IDB, orderID string) (int64, error) {
	shipments, err := s.shipmentRepo.FindByOrder(ctx, tx, orderID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, shipment := range shipments {
		if shipment.State == shipmodel.StateCanceled {
			continue
		}
		total += shipment.Cost
	}
	return total, nil
}

// buildSnapshot assembles the promotion engine's order view: lines with
// taxon classification, the shipment total, and whether the user has a
// prior completed order.
func (s *OrderServiceImpl) buildSnapshot(ctx context.Context, tx bun.IDB, order *model.Order) (promoservice.Snapshot, error) {
	snapshot := promoservice.Snapshot{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Currency:      order.Currency,
		ShipmentTotal: order.ShipmentTotal,
	}

	for _, line := range order.LineItems {
		taxonIDs, err := s.variants.TaxonIDsForVariant(ctx, tx, line.VariantID)
		if err != nil {
			return snapshot, err
		}
		snapshot.Lines = append(snapshot.Lines, promoservice.LineSnapshot{
			LineItemID: line.ID,
			VariantID:  line.VariantID,
			TaxonIDs:   taxonIDs,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		})
	}

	if order.UserID != nil {
		_, err := s.repo.FindCompletedByUser(ctx, tx, *order.UserID)
		switch {
		case err == nil:
			snapshot.HasPriorCompletedOrder = true
		case errors.Is(err, sql.ErrNoRows):
			snapshot.HasPriorCompletedOrder = false
		default:
			return snapshot, err
		}
	}
	return snapshot, nil
}
