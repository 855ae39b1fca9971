package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	ordermodel "cartflow/internal/applications/order/model"
	"cartflow/internal/applications/payment/model"
	"cartflow/internal/eventbus"
	apperrors "cartflow/pkg/errors"
	"cartflow/pkg/logger"
)

// webhookTargets maps provider event types onto the minimal payment
// state each one implies.
var webhookTargets = map[string]model.State{
	"payment_intent.succeeded":                 model.StateCompleted,
	"payment_intent.payment_failed":            model.StateFailed,
	"payment_intent.amount_capturable_updated": model.StateAuthorized,
	"payment_intent.processing":                model.StatePending,
}

// ReceiveWebhook validates a signed gateway notification, applies the
// minimal transition it implies under the row-version check, and, when the event
// settles the order's last outstanding payment, pushes the order from
// confirmation to completion.
func (s *PaymentServiceImpl) ReceiveWebhook(ctx context.Context, methodType model.MethodType, payload []byte, signature string) error {
	processor, err := s.registry.Resolve(methodType)
	if err != nil {
		return err
	}

	var completedOrderID string
	uow := s.bus.NewUnitOfWork()
	err = s.trx.WithTx(ctx, func(tx bun.Tx) error {
		secret, err := s.webhookSecret(ctx, tx, methodType)
		if err != nil {
			return err
		}
		event, err := processor.ValidateWebhook(payload, signature, secret)
		if err != nil {
			return err
		}

		payment, err := s.repo.FindByID(ctx, tx, event.PaymentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.PaymentService(apperrors.ErrCodePaymentNotFound).
					With("payment_id", event.PaymentID).
					Errorf("webhook references an unknown payment")
			}
			return err
		}

		// Events at or below the last applied sequence are stale
		// redeliveries or reorderings; applying them would move the
		// payment backwards.
		if event.Sequence <= payment.LastEventSequence {
			logger.Debugf("ignoring stale webhook seq=%d (last=%d) for payment %s",
				event.Sequence, payment.LastEventSequence, payment.ID)
			return nil
		}

		target, known := webhookTargets[event.Type]
		if !known {
			logger.Debugf("ignoring unhandled webhook type %s for payment %s", event.Type, payment.ID)
			payment.LastEventSequence = event.Sequence
			return s.repo.Update(ctx, tx, payment)
		}

		changed := applyWebhookTarget(payment, target)
		payment.LastEventSequence = event.Sequence
		if err := s.repo.Update(ctx, tx, payment); err != nil {
			return err
		}
		if !changed {
			return nil
		}

		switch payment.State {
		case model.StateCompleted:
			payment.CapturedAt = bun.NullTime{Time: time.Now()}
			uow.Emit(eventbus.Event{
				Type:      eventbus.PaymentCaptured,
				OrderID:   payment.OrderID,
				EmittedAt: time.Now(),
				Payload:   payment.ID,
			})
		case model.StateAuthorized:
			payment.AuthorizedAt = bun.NullTime{Time: time.Now()}
			uow.Emit(eventbus.Event{
				Type:      eventbus.PaymentAuthorized,
				OrderID:   payment.OrderID,
				EmittedAt: time.Now(),
				Payload:   payment.ID,
			})
		case model.StateFailed:
			uow.Emit(eventbus.Event{
				Type:      eventbus.PaymentFailed,
				OrderID:   payment.OrderID,
				EmittedAt: time.Now(),
				Payload:   payment.ID,
			})
		}
		if err := s.repo.Update(ctx, tx, payment); err != nil {
			return err
		}

		// Check whether this settlement finishes the checkout.
		order, err := s.orders.FindByID(ctx, tx, payment.OrderID)
		if err != nil {
			return err
		}
		if order.State == ordermodel.StateConfirm {
			coverage, err := s.repo.CoverageFor(ctx, tx, order.ID)
			if err != nil {
				return err
			}
			if coverage.AuthorizedOrCompleted >= order.GrandTotal {
				completedOrderID = order.ID
			}
		}
		return uow.Drain(ctx)
	})
	if err != nil {
		return err
	}

	// The order advances in its own command transaction, after the
	// payment's reconciliation has committed.
	if completedOrderID != "" && s.orderCompleter != nil {
		if _, err := s.orderCompleter.Complete(ctx, completedOrderID); err != nil {
			return err
		}
	}
	return nil
}

// webhookSecret resolves the signing secret for a gateway type from the
// active payment method's encrypted configuration.
func (s *PaymentServiceImpl) webhookSecret(ctx context.Context, tx bun.IDB, methodType model.MethodType) (string, error) {
	var method model.PaymentMethod
	err := tx.NewSelect().Model(&method).
		Where("pm.type = ? AND pm.active = ?", methodType, true).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return "", apperrors.PaymentService(apperrors.ErrCodePaymentWebhookValidation).
			With("method_type", string(methodType)).
			Errorf("no active payment method for webhook gateway")
	}
	creds, err := s.credentialsFor(ctx, tx, &method)
	if err != nil {
		return "", err
	}
	return creds["webhook_secret"], nil
}

// applyWebhookTarget walks the payment along legal edges toward the
// target state, reporting whether anything moved. Unreachable targets
// (an out-of-order or already-superseded event) leave the payment
// untouched.
func applyWebhookTarget(payment *model.Payment, target model.State) bool {
	if payment.State == target {
		return false
	}
	path := transitionPath(payment.State, target)
	if path == nil {
		return false
	}
	payment.State = target
	return true
}

// transitionPath finds the shortest legal edge sequence from one state
// to another; nil when no path exists.
func transitionPath(from, to model.State) []model.State {
	type node struct {
		state model.State
		path  []model.State
	}
	visited := map[model.State]bool{from: true}
	queue := []node{{state: from}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range []model.State{
			model.StatePending, model.StateAuthorizing, model.StateAuthorized,
			model.StateCapturing, model.StateCompleted, model.StateVoid,
			model.StateFailed, model.StateRefunded,
		} {
			if visited[next] || !model.CanTransition(current.state, next) {
				continue
			}
			path := append(append([]model.State{}, current.path...), next)
			if next == to {
				return path
			}
			visited[next] = true
			queue = append(queue, node{state: next, path: path})
		}
	}
	return nil
}
