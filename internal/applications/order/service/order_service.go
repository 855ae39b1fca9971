// Package service implements the order aggregate and its checkout state
// machine: cart mutation, totals recomputation, phase transitions, and
// the audit history written alongside every transition.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	catalogrepo "cartflow/internal/applications/catalog/repository"
	invrepo "cartflow/internal/applications/inventory/repository"
	"cartflow/internal/applications/order/model"
	"cartflow/internal/applications/order/repository"
	promorepo "cartflow/internal/applications/promotion/repository"
	promoservice "cartflow/internal/applications/promotion/service"
	shipmentservice "cartflow/internal/applications/shipment/service"
	shiprepo "cartflow/internal/applications/shipment/repository"
	shipmodel "cartflow/internal/applications/shipment/model"
	"cartflow/internal/eventbus"
	"cartflow/internal/infra/database/transaction"
	"cartflow/internal/middlewares"
	apperrors "cartflow/pkg/errors"
	"cartflow/pkg/logger"
)

// mergeRepriceWindow bounds how long after a line item is added its
// price snapshot is still considered fresh enough to replace during a
// guest-cart merge.
const mergeRepriceWindow = 10 * time.Minute

type CreateOrderInput struct {
	UserID          *string
	AdhocCustomerID *string
	Currency        string
	Email           string
}

type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*model.Order, error)
	Find(ctx context.Context, orderID string) (*model.Order, error)

	AddLineItem(ctx context.Context, orderID, variantID string, quantity int) (*model.Order, error)
	SetQuantity(ctx context.Context, orderID, lineItemID string, quantity int) (*model.Order, error)
	RemoveLineItem(ctx context.Context, orderID, lineItemID string) (*model.Order, error)
	Empty(ctx context.Context, orderID string) (*model.Order, error)
	SetEmail(ctx context.Context, orderID, email string) (*model.Order, error)
	SetShippingAddress(ctx context.Context, orderID string, address model.Address) (*model.Order, error)
	SelectShippingMethod(ctx context.Context, orderID, methodID string) (*model.Order, error)
	Associate(ctx context.Context, orderID, userID string) (*model.Order, error)

	ApplyCoupon(ctx context.Context, orderID, code string) (*model.Order, error)
	RemoveCoupon(ctx context.Context, orderID string) (*model.Order, error)

	Advance(ctx context.Context, orderID string) (*model.Order, error)
	Complete(ctx context.Context, orderID string) (*model.Order, error)
	Cancel(ctx context.Context, orderID, reason string) (*model.Order, error)
}

type OrderServiceImpl struct {
	repo         repository.OrderRepository
	variants     catalogrepo.VariantRepository
	stockRepo    invrepo.StockRepository
	promotions   promorepo.PromotionRepository
	engine       *promoservice.Engine
	shipments    shipmentservice.ShipmentService
	shipmentRepo shiprepo.ShipmentRepository
	payments     PaymentsView
	trx          transaction.Trx
	bus          *eventbus.Bus
}

func NewOrderService(
	repo repository.OrderRepository,
	variants catalogrepo.VariantRepository,
	stockRepo invrepo.StockRepository,
	promotions promorepo.PromotionRepository,
	engine *promoservice.Engine,
	shipments shipmentservice.ShipmentService,
	shipmentRepo shiprepo.ShipmentRepository,
	payments PaymentsView,
	trx transaction.Trx,
	bus *eventbus.Bus,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		repo:         repo,
		variants:     variants,
		stockRepo:    stockRepo,
		promotions:   promotions,
		engine:       engine,
		shipments:    shipments,
		shipmentRepo: shipmentRepo,
		payments:     payments,
		trx:          trx,
		bus:          bus,
	}
}

func (s *OrderServiceImpl) Create(ctx context.Context, input CreateOrderInput) (*model.Order, error) {
	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	order := &model.Order{
		OrderNumber:     model.NewOrderNumber(),
		UserID:          input.UserID,
		AdhocCustomerID: input.AdhocCustomerID,
		State:           model.StateCart,
		Currency:        currency,
		Email:           input.Email,
	}

	err := s.trx.WithTx(ctx, func(tx bun.Tx) error {
		return s.repo.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("order %s created in %s", order.OrderNumber, order.Currency)
	return order, nil
}

func (s *OrderServiceImpl) Find(ctx context.Context, orderID string) (*model.Order, error) {
	var order *model.Order
	err := s.trx.WithTx(ctx, func(tx bun.Tx) error {
		loaded, err := s.loadOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderServiceImpl) AddLineItem(ctx context.Context, orderID, variantID string, quantity int) (*model.Order, error) {
	if quantity <= 0 {
		return nil, apperrors.OrderService(apperrors.ErrCodeLineItemValidation).
			With("quantity", quantity).
			Errorf("quantity must be positive")
	}

	return s.mutate(ctx, orderID, func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
		if err := requireState(order, model.StateCart); err != nil {
			return err
		}

		variant, err := s.variants.FindVariant(ctx, tx, variantID)
		if err != nil {
			return apperrors.OrderService(apperrors.ErrCodeOrderValidation).
				With("variant_id", variantID).
				Wrap(err)
		}
		if !variant.Sellable() {
			return apperrors.OrderService(apperrors.ErrCodeLineItemValidation).
				With("variant_id", variantID).
				Errorf("variant is not sellable")
		}
		price, ok := variant.PriceIn(order.Currency)
		if !ok {
			return apperrors.OrderService(apperrors.ErrCodeOrderCurrencyMismatch).
				With("variant_id", variantID).
				With("currency", order.Currency).
				Errorf("variant has no price in order currency")
		}

		if err := s.checkAvailability(ctx, tx, variantID, quantity); err != nil {
			return err
		}

		existing, err := s.repo.FindLineItemByVariant(ctx, tx, order.ID, variantID)
		switch {
		case err == nil:
			existing.Quantity += quantity
			if err := s.repo.UpdateLineItem(ctx, tx, existing); err != nil {
				return err
			}
		case errors.Is(err, sql.ErrNoRows):
			line := &model.LineItem{
				OrderID:        order.ID,
				VariantID:      variantID,
				Quantity:       quantity,
				UnitPrice:      price,
				WeightSnapshot: variant.Weight,
				PriceAddedAt:   time.Now().Unix(),
			}
			if createErr := s.repo.CreateLineItem(ctx, tx, line); createErr != nil {
				// A concurrent command may have created the line for
				// this variant between the lookup and the insert; the
				// (order, variant) unique key turns that race into an
				// increment.
				raced, findErr := s.repo.FindLineItemByVariant(ctx, tx, order.ID, variantID)
				if findErr != nil {
					return createErr
				}
				raced.Quantity += quantity
				if err := s.repo.UpdateLineItem(ctx, tx, raced); err != nil {
					return err
				}
			}
		default:
			return err
		}

		uow.Emit(eventbus.Event{
			Type:      eventbus.LineItemAdded,
			OrderID:   order.ID,
			EmittedAt: time.Now(),
			Payload:   variantID,
		})
		return s.recomputeTotals(ctx, tx, order)
	})
}

func (s *OrderServiceImpl) SetQuantity(ctx context.Context, orderID, lineItemID string, quantity int) (*model.Order, error) {
	if quantity < 0 {
		return nil, apperrors.OrderService(apperrors.ErrCodeLineItemValidation).
			With("quantity", quantity).
			Errorf("quantity must not be negative")
	}
	if quantity == 0 {
		return s.RemoveLineItem(ctx, orderID, lineItemID)
	}

	return s.mutate(ctx, orderID, func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
		if err := requireState(order, model.StateCart); err != nil {
			return err
		}
		line, err := s.findLine(order, lineItemID)
		if err != nil {
			return err
		}
		line.Quantity = quantity
		if err := s.repo.UpdateLineItem(ctx, tx, line); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, tx, order)
	})
}

func (s *OrderServiceImpl) RemoveLineItem(ctx context.Context, orderID, lineItemID string) (*model.Order, error) {
	return s.mutate(ctx, orderID, func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
		if err := requireState(order, model.StateCart); err != nil {
			return err
		}
		line, err := s.findLine(order, lineItemID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteAdjustmentsForTarget(ctx, tx, model.TargetLineItem, line.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteLineItem(ctx, tx, line.ID); err != nil {
			return err
		}

		uow.Emit(eventbus.Event{
			Type:      eventbus.LineItemRemoved,
			OrderID:   order.ID,
			EmittedAt: time.Now(),
			Payload:   line.VariantID,
		})
		return s.recomputeTotals(ctx, tx, order)
	})
}

func (s *OrderServiceImpl) Empty(ctx context.Context, orderID string) (*model.Order, error) {
	return s.mutate(ctx, orderID, func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
		switch order.State {
		case model.StateCart, model.StateAddress, model.StateDelivery:
		default:
			return stateConflict(order, "empty")
		}

		for _, line := range order.LineItems {
			if err := s.repo.DeleteAdjustmentsForTarget(ctx, tx, model.TargetLineItem, line.ID); err != nil {
				return err
			}
			if err := s.repo.DeleteLineItem(ctx, tx, line.ID); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteAdjustmentsForTarget(ctx, tx, model.TargetOrder, order.ID); err != nil {
			return err
		}
		if err := s.shipments.CancelForOrderTx(ctx, tx, uow, order.ID); err != nil {
			return err
		}

		order.PromotionID = nil
		order.PromoCode = nil
		if order.State != model.StateCart {
			if err := s.transition(ctx, tx, uow, order, model.StateCart, "cart emptied"); err != nil {
				return err
			}
		}
		return s.recomputeTotals(ctx, tx, order)
	})
}

func (s *OrderServiceImpl) SetEmail(ctx context.Context, orderID, email string) (*model.Order, error) {
	return s.mutate(ctx, orderID, func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
		if order.IsTerminal() {
			return stateConflict(order, "set_email")
		}
		order.Email = email
		return s.repo.Update(ctx, tx, order)
	})
}

func (s *OrderServiceImpl) SetShippingAddress(ctx context.Context, orderID string, address model.Address) (*model.Order, error) {
	if !address.Valid() {
		return nil, apperrors.OrderService(apperrors.ErrCodeOrderValidation).
			Errorf("shipping address requires line1, city and country")
	}

	return s.mutate(ctx, orderID, func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
		switch order.State {
		case model.StateCart, model.StateAddress, model.StateDelivery:
		default:
			return stateConflict(order, "set_shipping_address")
		}
		order.ShippingAddress = &address
		return s.repo.Update(ctx, tx, order)
	})
}

func (s *OrderServiceImpl) SelectShippingMethod(ctx context.Context, orderID, methodID string) (*model.Order, error) {
	return s.mutate(ctx, orderID, func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
		switch order.State {
		case model.StateAddress, model.StateDelivery:
		default:
			return stateConflict(order, "select_shipping_method")
		}

		method, err := s.shipmentRepo.FindShippingMethod(ctx, tx, methodID)
		if err != nil {
			return apperrors.OrderService(apperrors.ErrCodeShipmentNotFound).
				With("shipping_method_id", methodID).
				Wrap(err)
		}
		if !method.Active || method.Currency != order.Currency {
			return apperrors.OrderService(apperrors.ErrCodeShipmentValidation).
				With("shipping_method_id", methodID).
				Errorf("shipping method unavailable for this order")
		}

		order.SelectedShippingMethodID = &method.ID

		// Shipments already allocated pick the method up immediately;
		// otherwise it is applied when allocation runs.
		shipments, err := s.shipmentRepo.FindByOrder(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		for _, shipment := range shipments {
			if shipment.State != shipmodel.StatePending {
				continue
			}
			if _, err := s.shipments.SelectShippingMethodTx(ctx, tx, shipment.ID, method.ID, order.Currency); err != nil {
				return err
			}
		}
		return s.recomputeTotals(ctx, tx, order)
	})
}

func (s *OrderServiceImpl) Associate(ctx context.Context, orderID, userID string) (*model.Order, error) {
	return s.mutate(ctx, orderID, func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error {
		if order.UserID != nil {
			return apperrors.OrderService(apperrors.ErrCodeOrderStateConflict).
				With("order_id", order.ID).
				Errorf("order already belongs to a user")
		}

		existing, err := s.repo.FindCartByUser(ctx, tx, userID, order.Currency)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		order.UserID = &userID

		if existing != nil && existing.ID != order.ID {
			if err := s.mergeCart(ctx, tx, order, existing); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, tx, order)
	})
}

// mergeCart folds the user's previous cart into the associated order:
// quantities for the same variant sum, and a freshly added line is
// re-priced when the variant's current price moved; older snapshots are
// kept. The previous cart is closed out afterwards.
func (s *OrderServiceImpl) mergeCart(ctx context.Context, tx bun.IDB, order *model.Order, previous *model.Order) error {
	linesByVariant := make(map[string]*model.LineItem, len(order.LineItems))
	for _, line := range order.LineItems {
		linesByVariant[line.VariantID] = line
	}

	for _, old := range previous.LineItems {
		target := linesByVariant[old.VariantID]
		if target == nil {
			moved := &model.LineItem{
				OrderID:        order.ID,
				VariantID:      old.VariantID,
				Quantity:       old.Quantity,
				UnitPrice:      old.UnitPrice,
				WeightSnapshot: old.WeightSnapshot,
				PriceAddedAt:   old.PriceAddedAt,
			}
			if err := s.repo.CreateLineItem(ctx, tx, moved); err != nil {
				return err
			}
			order.LineItems = append(order.LineItems, moved)
			linesByVariant[old.VariantID] = moved
			continue
		}

		target.Quantity += old.Quantity
		if time.Since(time.Unix(target.PriceAddedAt, 0)) < mergeRepriceWindow {
			variant, err := s.variants.FindVariant(ctx, tx, target.VariantID)
			if err != nil {
				return err
			}
			if current, ok := variant.PriceIn(order.Currency); ok && current != target.UnitPrice {
				target.UnitPrice = current
			}
		} else if old.PriceAddedAt < target.PriceAddedAt {
			// Keep the older snapshot when both lines carry one.
			target.UnitPrice = old.UnitPrice
			target.PriceAddedAt = old.PriceAddedAt
		}
		if err := s.repo.UpdateLineItem(ctx, tx, target); err != nil {
			return err
		}
	}

	for _, old := range previous.LineItems {
		if err := s.repo.DeleteAdjustmentsForTarget(ctx, tx, model.TargetLineItem, old.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteLineItem(ctx, tx, old.ID); err != nil {
			return err
		}
	}
	if err := s.repo.DeleteAdjustmentsForTarget(ctx, tx, model.TargetOrder, previous.ID); err != nil {
		return err
	}

	previous.State = model.StateCanceled
	previous.CancelReason = "merged into " + order.OrderNumber
	return s.repo.Update(ctx, tx, previous)
}

// checkAvailability verifies at least `quantity` units of the variant
// can be promised somewhere before the cart accepts the line.
func (s *OrderServiceImpl) checkAvailability(ctx context.Context, tx bun.IDB, variantID string, quantity int) error {
	items, err := s.stockRepo.FindItemsForVariant(ctx, tx, variantID)
	if err != nil {
		return err
	}
	available := 0
	for _, item := range items {
		available += item.CountAvailable()
	}
	if available < quantity {
		return apperrors.OrderService(apperrors.ErrCodeStockOutOfStock).
			With("variant_id", variantID).
			With("requested", quantity).
			With("available", available).
			Errorf("insufficient stock")
	}
	return nil
}

func (s *OrderServiceImpl) findLine(order *model.Order, lineItemID string) (*model.LineItem, error) {
	for _, line := range order.LineItems {
		if line.ID == lineItemID {
			return line, nil
		}
	}
	return nil, apperrors.OrderService(apperrors.ErrCodeLineItemNotFound).
		With("line_item_id", lineItemID).
		Errorf("line item not found on order")
}

// loadOrder fetches the order with its lines, translating a missing row
// into the structured not-found error.
func (s *OrderServiceImpl) loadOrder(ctx context.Context, tx bun.IDB, orderID string) (*model.Order, error) {
	order, err := s.repo.FindByID(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.OrderService(apperrors.ErrCodeOrderNotFound).
				With("order_id", orderID).
				Errorf("order not found")
		}
		return nil, err
	}
	return order, nil
}

// mutate is the shared command harness: load the order, apply fn, drain
// the unit of work, all inside one transaction.
func (s *OrderServiceImpl) mutate(ctx context.Context, orderID string, fn func(tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order) error) (*model.Order, error) {
	var order *model.Order
	uow := s.bus.NewUnitOfWork()
	err := s.trx.WithTx(ctx, func(tx bun.Tx) error {
		loaded, err := s.loadOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		order = loaded
		if err := fn(tx, uow, order); err != nil {
			return err
		}
		return uow.Drain(ctx)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func requireState(order *model.Order, state model.State) error {
	if order.State != state {
		return stateConflict(order, "requires "+string(state))
	}
	return nil
}

func stateConflict(order *model.Order, attempted string) error {
	return apperrors.OrderService(apperrors.ErrCodeOrderStateConflict).
		With("current_state", string(order.State)).
		With("attempted", attempted).
		Errorf("operation not allowed in current state")
}

// transition moves the order along one legal state-machine edge, writes
// the audit row, and emits OrderStateChanged.
func (s *OrderServiceImpl) transition(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, order *model.Order, to model.State, description string) error {
	from := order.State
	if !model.CanTransition(from, to) {
		return apperrors.OrderService(apperrors.ErrCodeOrderStateConflict).
			With("current_state", string(from)).
			With("attempted_transition", string(to)).
			Errorf("illegal state transition")
	}
	order.State = to

	triggeredBy, _ := ctx.Value(middlewares.ContextKeyUserID).(string)
	if triggeredBy == "" {
		triggeredBy = "system"
	}
	history := &model.OrderHistory{
		OrderID:     order.ID,
		FromState:   string(from),
		ToState:     string(to),
		Description: description,
		TriggeredBy: triggeredBy,
	}
	if err := s.repo.CreateHistory(ctx, tx, history); err != nil {
		return err
	}

	uow.Emit(eventbus.Event{
		Type:      eventbus.OrderStateChanged,
		OrderID:   order.ID,
		EmittedAt: time.Now(),
		Payload:   eventbus.OrderStateChangedPayload{From: string(from), To: string(to)},
	})
	logger.Infof("order %s: %s -> %s (%s)", order.OrderNumber, from, to, description)
	return nil
}
