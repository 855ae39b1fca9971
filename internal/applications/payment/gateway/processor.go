// Package gateway defines the uniform processor contract every payment
// gateway implements, the process-wide type→implementation registry, and
// the deterministic idempotency keys outbound calls carry.
package gateway

import (
	"context"
	"fmt"
	"sync"

	"cartflow/internal/applications/payment/model"
	apperrors "cartflow/pkg/errors"
)

// IntentStatus is the gateway's answer to create_intent.
type IntentStatus string

const (
	StatusAuthorized     IntentStatus = "authorized"
	StatusRequiresAction IntentStatus = "requires_action"
	StatusPending        IntentStatus = "pending"
	StatusFailed         IntentStatus = "failed"
)

// IntentResult is the normalized outcome of a create_intent dispatch.
type IntentResult struct {
	ProviderRef string
	Status      IntentStatus
	AuthCode    string
	ErrorCode   string
	// Aux carries gateway-specific extras (client secrets, redirect
	// URLs) passed through to the caller, never persisted.
	Aux map[string]string
}

// Credentials is the decrypted gateway configuration handed to a
// processor for one dispatch. It must not escape the call.
type Credentials map[string]string

// Processor is the uniform gateway operation set. Implementations must
// treat the idempotency key as the dedupe token for retried calls.
type Processor interface {
	CreateIntent(ctx context.Context, payment *model.Payment, amount int64, idempotencyKey string, creds Credentials) (*IntentResult, error)
	Capture(ctx context.Context, payment *model.Payment, idempotencyKey string, creds Credentials) error
	Refund(ctx context.Context, payment *model.Payment, amount int64, reason, idempotencyKey string, creds Credentials) error
	Void(ctx context.Context, payment *model.Payment, idempotencyKey string, creds Credentials) error
	// ValidateWebhook verifies payload integrity against the gateway's
	// stored secret and returns the parsed event.
	ValidateWebhook(payload []byte, signature string, secret string) (*WebhookEvent, error)
}

// WebhookEvent is a validated, parsed inbound gateway notification.
type WebhookEvent struct {
	Type      string
	PaymentID string
	Sequence  int64
}

// DeriveIdempotencyKey builds the deterministic key for one outbound
// call. Retries after transient failures advance the attempt counter,
// producing a fresh key; resubmitting the same command does not.
func DeriveIdempotencyKey(paymentID, operation string, attempt int) string {
	return fmt.Sprintf("%s:%s:%d", paymentID, operation, attempt)
}

// Registry is the process-wide type→processor table: populated once at
// startup and read-only while serving requests.
type Registry struct {
	mu         sync.RWMutex
	processors map[model.MethodType]Processor
}

func NewRegistry() *Registry {
	registry := &Registry{processors: make(map[model.MethodType]Processor)}
	// Cash on delivery is always available.
	registry.Register(model.MethodCashOnDelivery, NewCashOnDelivery())
	return registry
}

func (r *Registry) Register(methodType model.MethodType, processor Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[methodType] = processor
}

func (r *Registry) Resolve(methodType model.MethodType) (Processor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	processor, ok := r.processors[methodType]
	if !ok {
		return nil, apperrors.PaymentService(apperrors.ErrCodePaymentNotFound).
			With("payment_method_type", string(methodType)).
			Errorf("no processor registered for method type")
	}
	return processor, nil
}
