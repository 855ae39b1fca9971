// Package infra wires the process-wide object graph: infrastructure
// clients, repositories, domain services, the event-bus subscriber
// table, and the payment processor registry. Everything here is
// populated once at startup and read-only afterwards.
package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
	"github.com/uptrace/bun"

	"cartflow/config"
	catalogrepo "cartflow/internal/applications/catalog/repository"
	invmodel "cartflow/internal/applications/inventory/model"
	invrepo "cartflow/internal/applications/inventory/repository"
	invservice "cartflow/internal/applications/inventory/service"
	orderrepo "cartflow/internal/applications/order/repository"
	orderservice "cartflow/internal/applications/order/service"
	paymentgw "cartflow/internal/applications/payment/gateway"
	paymentmodel "cartflow/internal/applications/payment/model"
	paymentrepo "cartflow/internal/applications/payment/repository"
	paymentservice "cartflow/internal/applications/payment/service"
	promorepo "cartflow/internal/applications/promotion/repository"
	promoservice "cartflow/internal/applications/promotion/service"
	shiprepo "cartflow/internal/applications/shipment/repository"
	shipservice "cartflow/internal/applications/shipment/service"
	"cartflow/internal/eventbus"
	"cartflow/internal/infra/cache"
	"cartflow/internal/infra/database"
	"cartflow/internal/infra/database/transaction"
	"cartflow/internal/infra/messaging/rabbitmq"
	"cartflow/pkg/logger"
)

func Setup(injector do.Injector, cfg *config.Config) {
	do.ProvideValue(injector, cfg)

	do.Provide(injector, provideDatabase(cfg))
	do.Provide(injector, provideCache(cfg))
	do.Provide(injector, provideMessaging(cfg))

	do.Provide(injector, func(i do.Injector) (*eventbus.Bus, error) {
		return eventbus.New(), nil
	})
	do.Provide(injector, func(i do.Injector) (transaction.Trx, error) {
		return transaction.NewTrx(do.MustInvoke[*bun.DB](i)), nil
	})

	// Repositories.
	do.Provide(injector, func(i do.Injector) (orderrepo.OrderRepository, error) {
		return orderrepo.NewOrderRepository(do.MustInvoke[*bun.DB](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (catalogrepo.VariantRepository, error) {
		return catalogrepo.NewVariantRepository(do.MustInvoke[*bun.DB](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (invrepo.StockRepository, error) {
		return invrepo.NewStockRepository(do.MustInvoke[*bun.DB](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (promorepo.PromotionRepository, error) {
		inner := promorepo.NewPromotionRepository(do.MustInvoke[*bun.DB](i))
		store := cache.NewCache(do.MustInvoke[*redis.Client](i))
		return promorepo.NewCachedPromotionRepository(inner, store), nil
	})
	do.Provide(injector, func(i do.Injector) (shiprepo.ShipmentRepository, error) {
		return shiprepo.NewShipmentRepository(do.MustInvoke[*bun.DB](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (paymentrepo.PaymentRepository, error) {
		return paymentrepo.NewPaymentRepository(do.MustInvoke[*bun.DB](i)), nil
	})

	// Domain services.
	do.Provide(injector, func(i do.Injector) (*invservice.StockServiceImpl, error) {
		return invservice.NewStockService(
			do.MustInvoke[invrepo.StockRepository](i),
			do.MustInvoke[transaction.Trx](i),
			do.MustInvoke[*eventbus.Bus](i),
		), nil
	})
	do.Provide(injector, func(i do.Injector) (*shipservice.ShipmentServiceImpl, error) {
		return shipservice.NewShipmentService(
			do.MustInvoke[shiprepo.ShipmentRepository](i),
			do.MustInvoke[invrepo.StockRepository](i),
			do.MustInvoke[*invservice.StockServiceImpl](i),
			do.MustInvoke[transaction.Trx](i),
			do.MustInvoke[*eventbus.Bus](i),
		), nil
	})
	do.Provide(injector, func(i do.Injector) (*promoservice.Engine, error) {
		return promoservice.NewEngine(), nil
	})

	do.Provide(injector, providePaymentRegistry(cfg))
	do.Provide(injector, func(i do.Injector) (*paymentservice.PaymentServiceImpl, error) {
		var cipher *paymentgw.CredentialCipher
		if key := cfg.Payment().EncryptionKey; key != "" {
			built, err := paymentgw.NewCredentialCipher(key)
			if err != nil {
				return nil, err
			}
			cipher = built
		}
		return paymentservice.NewPaymentService(
			do.MustInvoke[paymentrepo.PaymentRepository](i),
			do.MustInvoke[orderrepo.OrderRepository](i),
			do.MustInvoke[*paymentgw.Registry](i),
			cipher,
			do.MustInvoke[transaction.Trx](i),
			do.MustInvoke[*eventbus.Bus](i),
			time.Duration(cfg.Payment().GatewayTimeout)*time.Second,
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*orderservice.OrderServiceImpl, error) {
		return orderservice.NewOrderService(
			do.MustInvoke[orderrepo.OrderRepository](i),
			do.MustInvoke[catalogrepo.VariantRepository](i),
			do.MustInvoke[invrepo.StockRepository](i),
			do.MustInvoke[promorepo.PromotionRepository](i),
			do.MustInvoke[*promoservice.Engine](i),
			do.MustInvoke[*shipservice.ShipmentServiceImpl](i),
			do.MustInvoke[shiprepo.ShipmentRepository](i),
			do.MustInvoke[paymentrepo.PaymentRepository](i),
			do.MustInvoke[transaction.Trx](i),
			do.MustInvoke[*eventbus.Bus](i),
		), nil
	})
}

// Wire finishes startup once every provider exists: the payment→order
// completion path and the event-bus subscriber table.
func Wire(injector do.Injector, cfg *config.Config) {
	orders := do.MustInvoke[*orderservice.OrderServiceImpl](injector)
	payments := do.MustInvoke[*paymentservice.PaymentServiceImpl](injector)
	payments.SetOrderCompleter(orders)

	bus := do.MustInvoke[*eventbus.Bus](injector)
	shipments := do.MustInvoke[*shipservice.ShipmentServiceImpl](injector)

	// Received stock fulfills backordered inventory units. The handler
	// runs its own transaction and is idempotent across redelivery.
	bus.Subscribe(eventbus.StockMoved, func(ctx context.Context, event eventbus.Event) error {
		payload, ok := event.Payload.(eventbus.StockMovedPayload)
		if !ok || payload.Action != string(invmodel.MovementReceive) || payload.Quantity <= 0 {
			return nil
		}
		if err := shipments.OnStockReceived(ctx, payload.StockItemID, payload.Quantity); err != nil {
			logger.Errorf("backorder fulfillment after receive failed: %v", err)
		}
		return nil
	})

	// Domain events additionally fan out to external subscribers over
	// RabbitMQ when messaging is enabled. Publication happens while the
	// unit of work drains, before the transaction commits, so a
	// transaction that then fails to commit has still published.
	if cfg.Messaging().Enabled {
		conn := do.MustInvoke[*rabbitmq.Connection](injector)
		if conn == nil {
			return
		}
		producer, err := rabbitmq.NewProducer(conn, cfg.Messaging().RabbitMQ)
		if err != nil {
			logger.Errorf("event fan-out producer unavailable: %v", err)
			return
		}
		for _, eventType := range []eventbus.EventType{
			eventbus.LineItemAdded, eventbus.LineItemRemoved,
			eventbus.OrderStateChanged, eventbus.OrderCompleted, eventbus.OrderCanceled,
			eventbus.PromotionApplied,
			eventbus.PaymentAuthorized, eventbus.PaymentCaptured, eventbus.PaymentFailed,
			eventbus.ShipmentReady, eventbus.ShipmentShipped,
			eventbus.StockMoved,
		} {
			eventType := eventType
			bus.Subscribe(eventType, func(ctx context.Context, event eventbus.Event) error {
				routingKey := "order." + string(event.Type)
				if err := producer.Publish(ctx, routingKey, event, rabbitmq.PublishOptions{}); err != nil {
					// Fan-out is best effort; the in-process
					// subscribers and the order history are the
					// durable record.
					logger.Errorf("event fan-out publish failed: %v", err)
				}
				return nil
			})
		}
	}
}

func providePaymentRegistry(cfg *config.Config) func(do.Injector) (*paymentgw.Registry, error) {
	return func(i do.Injector) (*paymentgw.Registry, error) {
		registry := paymentgw.NewRegistry()
		timeout := time.Duration(cfg.Payment().GatewayTimeout) * time.Second
		if baseURL := cfg.Payment().StripeBaseURL; baseURL != "" {
			registry.Register(paymentmodel.MethodStripe, paymentgw.NewHostedGateway("stripe", baseURL, timeout))
		}
		return registry, nil
	}
}

func provideDatabase(cfg *config.Config) func(do.Injector) (*bun.DB, error) {
	return func(i do.Injector) (*bun.DB, error) {
		db, err := database.NewBunClient(cfg.Database())
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
		logger.Debugf("initialized database")
		return db, nil
	}
}

func provideCache(cfg *config.Config) func(do.Injector) (*redis.Client, error) {
	return func(i do.Injector) (*redis.Client, error) {
		client := cache.New(cfg.Cache())
		if client == nil {
			return nil, fmt.Errorf("failed to create cache")
		}
		logger.Debugf("initialized cache")
		return client, nil
	}
}

func provideMessaging(cfg *config.Config) func(do.Injector) (*rabbitmq.Connection, error) {
	return func(i do.Injector) (*rabbitmq.Connection, error) {
		if !cfg.Messaging().Enabled {
			return nil, nil
		}
		conn, err := rabbitmq.NewConnection(cfg.Messaging().RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		logger.Debugf("initialized messaging")
		return conn, nil
	}
}
