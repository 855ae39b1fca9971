package server

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"cartflow/config"
	"cartflow/internal/applications/payment/consumers"
	paymentservice "cartflow/internal/applications/payment/service"
	"cartflow/internal/infra/messaging/rabbitmq"
	"cartflow/pkg/logger"
)

// StartWebhookConsumer declares the messaging topology and runs the
// payments.webhooks consumer until the context is canceled.
func StartWebhookConsumer(ctx context.Context, injector do.Injector, cfg *config.Config) error {
	conn := do.MustInvoke[*rabbitmq.Connection](injector)
	if conn == nil {
		return nil
	}
	mqConfig := cfg.Messaging().RabbitMQ

	if err := rabbitmq.SetupTopology(conn, mqConfig); err != nil {
		return fmt.Errorf("topology setup failed: %w", err)
	}

	consumerConfig, err := rabbitmq.GetConsumerByName(mqConfig, "payment-webhooks")
	if err != nil || !consumerConfig.Enabled {
		logger.Infof("payment-webhooks consumer not configured, skipping")
		return nil
	}
	exchangeConfig, err := rabbitmq.GetExchangeByName(mqConfig, consumerConfig.ExchangeName)
	if err != nil {
		return err
	}

	consumer, err := rabbitmq.NewConsumer(conn, *consumerConfig, *exchangeConfig)
	if err != nil {
		return fmt.Errorf("webhook consumer setup failed: %w", err)
	}
	defer consumer.Close()

	webhooks := consumers.NewWebhookConsumer(do.MustInvoke[*paymentservice.PaymentServiceImpl](injector))

	logger.Infof("payment webhook consumer running")
	return consumer.Consume(ctx, webhooks.Consume)
}
