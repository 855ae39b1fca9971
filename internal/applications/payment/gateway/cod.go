package gateway

import (
	"context"

	"cartflow/internal/applications/payment/model"
	apperrors "cartflow/pkg/errors"
)

// CashOnDelivery is the always-registered offline processor: intents
// stay pending until goods are handed over, capture/refund/void always
// succeed, and webhooks are refused because no provider exists to sign
// them.
type CashOnDelivery struct{}

func NewCashOnDelivery() *CashOnDelivery {
	return &CashOnDelivery{}
}

func (c *CashOnDelivery) CreateIntent(ctx context.Context, payment *model.Payment, amount int64, idempotencyKey string, creds Credentials) (*IntentResult, error) {
	return &IntentResult{
		ProviderRef: "cod-" + payment.ID,
		Status:      StatusPending,
	}, nil
}

func (c *CashOnDelivery) Capture(ctx context.Context, payment *model.Payment, idempotencyKey string, creds Credentials) error {
	return nil
}

func (c *CashOnDelivery) Refund(ctx context.Context, payment *model.Payment, amount int64, reason, idempotencyKey string, creds Credentials) error {
	return nil
}

func (c *CashOnDelivery) Void(ctx context.Context, payment *model.Payment, idempotencyKey string, creds Credentials) error {
	return nil
}

func (c *CashOnDelivery) ValidateWebhook(payload []byte, signature string, secret string) (*WebhookEvent, error) {
	return nil, apperrors.PaymentService(apperrors.ErrCodePaymentWebhookValidation).
		Errorf("cash on delivery does not accept webhooks")
}
