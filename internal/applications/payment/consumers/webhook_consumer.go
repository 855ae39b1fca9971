// Package consumers receives out-of-band gateway webhooks delivered
// over the payments.webhooks queue and feeds them into the
// reconciliation path.
package consumers

import (
	"context"
	"encoding/json"

	"cartflow/internal/applications/payment/model"
	"cartflow/internal/applications/payment/service"
	apperrors "cartflow/pkg/errors"
	"cartflow/pkg/logger"
)

// WebhookMessage is the queued envelope: the raw signed payload exactly
// as the gateway sent it, plus its signature header.
type WebhookMessage struct {
	GatewayType string          `json:"gateway_type"`
	Payload     json.RawMessage `json:"payload"`
	Signature   string          `json:"signature"`
}

type WebhookConsumer struct {
	payments service.PaymentService
}

func NewWebhookConsumer(payments service.PaymentService) *WebhookConsumer {
	return &WebhookConsumer{payments: payments}
}

// Consume processes one queued webhook. Malformed messages and
// signature failures are dropped (a redelivery would fail identically);
// transient reconciliation errors are returned so the delivery nacks
// and requeues.
func (c *WebhookConsumer) Consume(ctx context.Context, body []byte) error {
	var message WebhookMessage
	if err := json.Unmarshal(body, &message); err != nil {
		logger.Errorf("webhook consumer: invalid message, dropping: %v", err)
		return nil
	}

	err := c.payments.ReceiveWebhook(ctx, model.MethodType(message.GatewayType), message.Payload, message.Signature)
	if err == nil {
		return nil
	}

	if apperrors.HasCode(err, apperrors.ErrCodePaymentWebhookValidation) ||
		apperrors.HasCode(err, apperrors.ErrCodePaymentNotFound) {
		logger.Errorf("webhook consumer: dropping unprocessable webhook: %v", err)
		return nil
	}

	logger.Warnf("webhook consumer: transient failure, requeueing: %v", err)
	return err
}
