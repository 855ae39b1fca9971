package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"resty.dev/v3"

	"cartflow/internal/applications/payment/model"
	apperrors "cartflow/pkg/errors"
)

// HostedGateway talks to a Stripe-style hosted payment provider over
// its REST API. Every mutating call carries the caller's idempotency
// key so provider-side dedupe makes retries safe.
type HostedGateway struct {
	name       string
	httpClient *resty.Client
}

// NewHostedGateway builds a processor for one provider endpoint.
// timeout applies per operation.
func NewHostedGateway(name, baseURL string, timeout time.Duration) *HostedGateway {
	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL)
	httpClient.SetTimeout(timeout)

	return &HostedGateway{name: name, httpClient: httpClient}
}

type intentResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	AuthCode string `json:"auth_code"`
	Error    struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	ClientSecret string `json:"client_secret"`
}

func (g *HostedGateway) CreateIntent(ctx context.Context, payment *model.Payment, amount int64, idempotencyKey string, creds Credentials) (*IntentResult, error) {
	var result intentResponse
	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", idempotencyKey).
		SetHeader("Authorization", "Bearer "+creds["secret_key"]).
		SetBody(map[string]interface{}{
			"amount":   amount,
			"currency": payment.Currency,
			"metadata": map[string]string{"payment_id": payment.ID},
		}).
		SetResult(&result).
		Post("/v1/payment_intents")
	if err != nil {
		return nil, g.external("create_intent", err, true)
	}
	if resp.IsError() {
		return nil, g.externalStatus("create_intent", resp.StatusCode())
	}

	return &IntentResult{
		ProviderRef: result.ID,
		Status:      mapIntentStatus(result.Status),
		AuthCode:    result.AuthCode,
		ErrorCode:   result.Error.Code,
		Aux:         map[string]string{"client_secret": result.ClientSecret},
	}, nil
}

func mapIntentStatus(status string) IntentStatus {
	switch status {
	case "requires_capture", "authorized":
		return StatusAuthorized
	case "requires_action":
		return StatusRequiresAction
	case "processing", "pending":
		return StatusPending
	default:
		return StatusFailed
	}
}

func (g *HostedGateway) Capture(ctx context.Context, payment *model.Payment, idempotencyKey string, creds Credentials) error {
	return g.post(ctx, fmt.Sprintf("/v1/payment_intents/%s/capture", payment.ProviderReference), idempotencyKey, creds, nil)
}

func (g *HostedGateway) Refund(ctx context.Context, payment *model.Payment, amount int64, reason, idempotencyKey string, creds Credentials) error {
	return g.post(ctx, "/v1/refunds", idempotencyKey, creds, map[string]interface{}{
		"payment_intent": payment.ProviderReference,
		"amount":         amount,
		"reason":         reason,
	})
}

func (g *HostedGateway) Void(ctx context.Context, payment *model.Payment, idempotencyKey string, creds Credentials) error {
	return g.post(ctx, fmt.Sprintf("/v1/payment_intents/%s/cancel", payment.ProviderReference), idempotencyKey, creds, nil)
}

func (g *HostedGateway) post(ctx context.Context, path, idempotencyKey string, creds Credentials, body interface{}) error {
	request := g.httpClient.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", idempotencyKey).
		SetHeader("Authorization", "Bearer "+creds["secret_key"])
	if body != nil {
		request = request.SetBody(body)
	}
	resp, err := request.Post(path)
	if err != nil {
		return g.external(path, err, true)
	}
	if resp.IsError() {
		return g.externalStatus(path, resp.StatusCode())
	}
	return nil
}

type webhookEnvelope struct {
	Type     string `json:"type"`
	Sequence int64  `json:"sequence"`
	Data     struct {
		Metadata map[string]string `json:"metadata"`
	} `json:"data"`
}

// ValidateWebhook checks the HMAC-SHA256 signature over the raw payload
// against the stored webhook secret before trusting any field in it.
func (g *HostedGateway) ValidateWebhook(payload []byte, signature string, secret string) (*WebhookEvent, error) {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, apperrors.PaymentService(apperrors.ErrCodePaymentWebhookValidation).
			With("provider", g.name).
			Errorf("webhook signature mismatch")
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, apperrors.PaymentService(apperrors.ErrCodePaymentWebhookValidation).
			With("provider", g.name).
			Wrap(err)
	}
	paymentID := envelope.Data.Metadata["payment_id"]
	if paymentID == "" {
		return nil, apperrors.PaymentService(apperrors.ErrCodePaymentWebhookValidation).
			With("provider", g.name).
			Errorf("webhook carries no payment id")
	}

	return &WebhookEvent{
		Type:      envelope.Type,
		PaymentID: paymentID,
		Sequence:  envelope.Sequence,
	}, nil
}

func (g *HostedGateway) external(operation string, err error, retriable bool) error {
	return apperrors.PaymentService(apperrors.ErrCodePaymentGatewayExternal).
		With("provider", g.name).
		With("operation", operation).
		With("retriable", retriable).
		Wrap(err)
}

func (g *HostedGateway) externalStatus(operation string, status int) error {
	return apperrors.PaymentService(apperrors.ErrCodePaymentGatewayExternal).
		With("provider", g.name).
		With("operation", operation).
		With("status", status).
		With("retriable", status >= 500).
		Errorf("gateway returned %d", status)
}
