// Package service implements payment orchestration: gateway dispatch
// with deterministic idempotency keys, the payment state machine, and
// webhook reconciliation back into the order's checkout flow.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	ordermodel "cartflow/internal/applications/order/model"
	orderrepo "cartflow/internal/applications/order/repository"
	"cartflow/internal/applications/payment/gateway"
	"cartflow/internal/applications/payment/model"
	"cartflow/internal/applications/payment/repository"
	"cartflow/internal/eventbus"
	"cartflow/internal/infra/database/transaction"
	apperrors "cartflow/pkg/errors"
)

// OrderCompleter is the payment orchestrator's narrow window back into
// the order aggregate, used when a webhook settles the final payment of
// an order waiting in confirmation.
type OrderCompleter interface {
	Complete(ctx context.Context, orderID string) (*ordermodel.Order, error)
}

type PaymentService interface {
	Create(ctx context.Context, orderID, methodID string, amount int64) (*model.Payment, error)
	Capture(ctx context.Context, paymentID string) (*model.Payment, error)
	Refund(ctx context.Context, paymentID string, amount int64, reason string) (*model.Payment, error)
	Void(ctx context.Context, paymentID string) (*model.Payment, error)
	ReceiveWebhook(ctx context.Context, methodType model.MethodType, payload []byte, signature string) error
}

type PaymentServiceImpl struct {
	repo           repository.PaymentRepository
	orders         orderrepo.OrderRepository
	registry       *gateway.Registry
	cipher         *gateway.CredentialCipher
	orderCompleter OrderCompleter
	trx            transaction.Trx
	bus            *eventbus.Bus
	gatewayTimeout time.Duration
}

func NewPaymentService(
	repo repository.PaymentRepository,
	orders orderrepo.OrderRepository,
	registry *gateway.Registry,
	cipher *gateway.CredentialCipher,
	trx transaction.Trx,
	bus *eventbus.Bus,
	gatewayTimeout time.Duration,
) *PaymentServiceImpl {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 15 * time.Second
	}
	return &PaymentServiceImpl{
		repo:           repo,
		orders:         orders,
		registry:       registry,
		cipher:         cipher,
		trx:            trx,
		bus:            bus,
		gatewayTimeout: gatewayTimeout,
	}
}

// SetOrderCompleter breaks the wiring-time circle between the order and
// payment services; it is called once during startup.
func (s *PaymentServiceImpl) SetOrderCompleter(completer OrderCompleter) {
	s.orderCompleter = completer
}

func (s *PaymentServiceImpl) Create(ctx context.Context, orderID, methodID string, amount int64) (*model.Payment, error) {
	if amount <= 0 {
		return nil, apperrors.PaymentService(apperrors.ErrCodePaymentStateConflict).
			With("amount", amount).
			Errorf("payment amount must be positive")
	}

	var payment *model.Payment
	uow := s.bus.NewUnitOfWork()
	err := s.trx.WithTx(ctx, func(tx bun.Tx) error {
		order, err := s.orders.FindByID(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.PaymentService(apperrors.ErrCodeOrderNotFound).
					With("order_id", orderID).
					Errorf("order not found")
			}
			return err
		}
		if order.State != ordermodel.StatePayment && order.State != ordermodel.StateConfirm {
			return apperrors.PaymentService(apperrors.ErrCodePaymentStateConflict).
				With("order_state", string(order.State)).
				Errorf("payments are accepted only during payment or confirmation")
		}

		coverage, err := s.repo.CoverageFor(ctx, tx, orderID)
		if err != nil {
			return err
		}
		outstanding := order.GrandTotal - coverage.AuthorizedOrCompleted
		if amount > outstanding {
			return apperrors.PaymentService(apperrors.ErrCodePaymentStateConflict).
				With("amount", amount).
				With("outstanding", outstanding).
				Errorf("payment exceeds the outstanding balance")
		}

		method, err := s.repo.FindMethod(ctx, tx, methodID)
		if err != nil {
			return apperrors.PaymentService(apperrors.ErrCodePaymentNotFound).
				With("payment_method_id", methodID).
				Wrap(err)
		}
		if !method.Active {
			return apperrors.PaymentService(apperrors.ErrCodePaymentStateConflict).
				With("payment_method_id", methodID).
				Errorf("payment method inactive")
		}

		payment = &model.Payment{
			OrderID:           orderID,
			Amount:            amount,
			Currency:          order.Currency,
			State:             model.StatePending,
			PaymentMethodID:   method.ID,
			PaymentMethodType: method.Type,
		}
		if err := s.repo.Create(ctx, tx, payment); err != nil {
			return err
		}

		if err := s.dispatchIntent(ctx, tx, uow, payment, method); err != nil {
			return err
		}
		return uow.Drain(ctx)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// dispatchIntent drives Pending→Authorizing→{Authorized,Failed,Pending}
// and, for auto-capture methods, continues through capture.
func (s *PaymentServiceImpl) dispatchIntent(ctx context.Context, tx bun.IDB, uow *eventbus.UnitOfWork, payment *model.Payment, method *model.PaymentMethod) error {
	processor, err := s.registry.Resolve(payment.PaymentMethodType)
	if err != nil {
		return err
	}
	creds, err := s.credentialsFor(ctx, tx, method)
	if err != nil {
		return err
	}

	if err := s.transition(payment, model.StateAuthorizing); err != nil {
		return err
	}

	key := gateway.DeriveIdempotencyKey(payment.ID, "create_intent", payment.AttemptCount)
	payment.IdempotencyKey = &key

	callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	result, err := processor.CreateIntent(callCtx, payment, payment.Amount, key, creds)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// The provider may still have acted; only its webhook can
			// settle this payment.
			return s.repo.Update(ctx, tx, payment)
		}
		return err
	}

	payment.ProviderReference = result.ProviderRef
	payment.GatewayAuthCode = result.AuthCode
	payment.GatewayErrorCode = result.ErrorCode

	status := result.Status
	// An offline processor answers pending because no provider will ever
	// confirm asynchronously; accepting the order is its authorization.
	if status == gateway.StatusPending && payment.PaymentMethodType == model.MethodCashOnDelivery {
		status = gateway.StatusAuthorized
	}

	switch status {
	case gateway.StatusAuthorized:
		if err := s.markAuthorized(uow, payment); err != nil {
			return err
		}
		if method.AutoCapture {
			if err := s.captureNow(ctx, uow, payment, processor, creds); err != nil {
				return err
			}
		}
	case gateway.StatusRequiresAction, gateway.StatusPending:
		if err := s.transition(payment, model.StatePending); err != nil {
			return err
		}
	case gateway.StatusFailed:
		s.markFailed(uow, payment, result.ErrorCode, "intent declined")
	}

	return s.repo.Update(ctx, tx, payment)
}

func (s *PaymentServiceImpl) markAuthorized(uow *eventbus.UnitOfWork, payment *model.Payment) error {
	if err := s.transition(payment, model.StateAuthorized); err != nil {
		return err
	}
	payment.AuthorizedAt = bun.NullTime{Time: time.Now()}
	uow.Emit(eventbus.Event{
		Type:      eventbus.PaymentAuthorized,
		OrderID:   payment.OrderID,
		EmittedAt: time.Now(),
		Payload:   payment.ID,
	})
	return nil
}

func (s *PaymentServiceImpl) markFailed(uow *eventbus.UnitOfWork, payment *model.Payment, errorCode, reason string) {
	payment.State = model.StateFailed
	payment.GatewayErrorCode = errorCode
	payment.FailureReason = reason
	uow.Emit(eventbus.Event{
		Type:      eventbus.PaymentFailed,
		OrderID:   payment.OrderID,
		EmittedAt: time.Now(),
		Payload:   payment.ID,
	})
}

// captureNow runs Authorized→Capturing→Completed against the gateway.
func (s *PaymentServiceImpl) captureNow(ctx context.Context, uow *eventbus.UnitOfWork, payment *model.Payment, processor gateway.Processor, creds gateway.Credentials) error {
	if err := s.transition(payment, model.StateCapturing); err != nil {
		return err
	}

	payment.AttemptCount++
	key := gateway.DeriveIdempotencyKey(payment.ID, "capture", payment.AttemptCount)
	payment.IdempotencyKey = &key

	callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	if err := processor.Capture(callCtx, payment, key, creds); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil // settle via webhook
		}
		s.markFailed(uow, payment, "capture_failed", err.Error())
		return nil
	}

	if err := s.transition(payment, model.StateCompleted); err != nil {
		return err
	}
	payment.CapturedAt = bun.NullTime{Time: time.Now()}
	uow.Emit(eventbus.Event{
		Type:      eventbus.PaymentCaptured,
		OrderID:   payment.OrderID,
		EmittedAt: time.Now(),
		Payload:   payment.ID,
	})
	return nil
}

func (s *PaymentServiceImpl) Capture(ctx context.Context, paymentID string) (*model.Payment, error) {
	return s.mutate(ctx, paymentID, func(tx bun.IDB, uow *eventbus.UnitOfWork, payment *model.Payment) error {
		if payment.State != model.StateAuthorized {
			return apperrors.PaymentService(apperrors.ErrCodePaymentStateConflict).
				With("current_state", string(payment.State)).
				With("attempted_transition", string(model.StateCapturing)).
				Errorf("only authorized payments can be captured")
		}
		processor, creds, _, err := s.resolveDispatch(ctx, tx, payment)
		if err != nil {
			return err
		}
		if err := s.captureNow(ctx, uow, payment, processor, creds); err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, payment)
	})
}

func (s *PaymentServiceImpl) Refund(ctx context.Context, paymentID string, amount int64, reason string) (*model.Payment, error) {
	return s.mutate(ctx, paymentID, func(tx bun.IDB, uow *eventbus.UnitOfWork, payment *model.Payment) error {
		if payment.State != model.StateCompleted {
			return apperrors.PaymentService(apperrors.ErrCodePaymentStateConflict).
				With("current_state", string(payment.State)).
				Errorf("only completed payments can be refunded")
		}
		if amount <= 0 || amount > payment.Amount-payment.RefundedAmount {
			return apperrors.PaymentService(apperrors.ErrCodePaymentOverRefund).
				With("amount", amount).
				With("refundable", payment.Amount-payment.RefundedAmount).
				Errorf("refund exceeds the refundable balance")
		}

		processor, creds, _, err := s.resolveDispatch(ctx, tx, payment)
		if err != nil {
			return err
		}

		payment.AttemptCount++
		key := gateway.DeriveIdempotencyKey(payment.ID, "refund", payment.AttemptCount)
		payment.IdempotencyKey = &key

		callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
		defer cancel()
		if err := processor.Refund(callCtx, payment, amount, reason, key, creds); err != nil {
			return err
		}

		payment.RefundedAmount += amount
		if payment.RefundedAmount == payment.Amount {
			if err := s.transition(payment, model.StateRefunded); err != nil {
				return err
			}
		}
		return s.repo.Update(ctx, tx, payment)
	})
}

func (s *PaymentServiceImpl) Void(ctx context.Context, paymentID string) (*model.Payment, error) {
	return s.mutate(ctx, paymentID, func(tx bun.IDB, uow *eventbus.UnitOfWork, payment *model.Payment) error {
		if payment.State != model.StateAuthorized {
			return apperrors.PaymentService(apperrors.ErrCodePaymentStateConflict).
				With("current_state", string(payment.State)).
				Errorf("only authorized payments can be voided")
		}
		processor, creds, _, err := s.resolveDispatch(ctx, tx, payment)
		if err != nil {
			return err
		}

		payment.AttemptCount++
		key := gateway.DeriveIdempotencyKey(payment.ID, "void", payment.AttemptCount)
		payment.IdempotencyKey = &key

		callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
		defer cancel()
		if err := processor.Void(callCtx, payment, key, creds); err != nil {
			return err
		}

		if err := s.transition(payment, model.StateVoid); err != nil {
			return err
		}
		payment.VoidedAt = bun.NullTime{Time: time.Now()}
		return s.repo.Update(ctx, tx, payment)
	})
}

func (s *PaymentServiceImpl) resolveDispatch(ctx context.Context, tx bun.IDB, payment *model.Payment) (gateway.Processor, gateway.Credentials, *model.PaymentMethod, error) {
	processor, err := s.registry.Resolve(payment.PaymentMethodType)
	if err != nil {
		return nil, nil, nil, err
	}
	method, err := s.repo.FindMethod(ctx, tx, payment.PaymentMethodID)
	if err != nil {
		return nil, nil, nil, err
	}
	creds, err := s.credentialsFor(ctx, tx, method)
	if err != nil {
		return nil, nil, nil, err
	}
	return processor, creds, method, nil
}

// credentialsFor opens the method's encrypted gateway configuration.
// Methods without one (cash on delivery) dispatch with empty
// credentials.
func (s *PaymentServiceImpl) credentialsFor(ctx context.Context, tx bun.IDB, method *model.PaymentMethod) (gateway.Credentials, error) {
	if method.GatewayConfigurationID == nil {
		return gateway.Credentials{}, nil
	}
	if s.cipher == nil {
		return nil, apperrors.PaymentService(apperrors.ErrCodePaymentGatewayExternal).
			Errorf("credential encryption key not configured")
	}
	configuration, err := s.repo.FindGatewayConfiguration(ctx, tx, *method.GatewayConfigurationID)
	if err != nil {
		return nil, err
	}
	return s.cipher.Open(configuration.EncryptedBlob)
}

func (s *PaymentServiceImpl) transition(payment *model.Payment, to model.State) error {
	if !model.CanTransition(payment.State, to) {
		return apperrors.PaymentService(apperrors.ErrCodePaymentStateConflict).
			With("current_state", string(payment.State)).
			With("attempted_transition", string(to)).
			Errorf("illegal payment transition")
	}
	payment.State = to
	return nil
}

func (s *PaymentServiceImpl) mutate(ctx context.Context, paymentID string, fn func(tx bun.IDB, uow *eventbus.UnitOfWork, payment *model.Payment) error) (*model.Payment, error) {
	var payment *model.Payment
	uow := s.bus.NewUnitOfWork()
	err := s.trx.WithTx(ctx, func(tx bun.Tx) error {
		loaded, err := s.repo.FindByID(ctx, tx, paymentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.PaymentService(apperrors.ErrCodePaymentNotFound).
					With("payment_id", paymentID).
					Errorf("payment not found")
			}
			return err
		}
		payment = loaded
		if err := fn(tx, uow, payment); err != nil {
			return err
		}
		return uow.Drain(ctx)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}
