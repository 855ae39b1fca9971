// Package model holds the payment orchestrator's persisted shapes: the
// payment with its state machine, the configured payment methods, and
// the encrypted gateway credential blobs.
package model

import (
	"github.com/uptrace/bun"

	corebun "cartflow/internal/infra/database/bun"
)

// State is a payment's lifecycle state.
type State string

const (
	StatePending     State = "pending"
	StateAuthorizing State = "authorizing"
	StateAuthorized  State = "authorized"
	StateCapturing   State = "capturing"
	StateCompleted   State = "completed"
	StateVoid        State = "void"
	StateFailed      State = "failed"
	StateRefunded    State = "refunded"
)

var paymentTransitions = map[State]map[State]bool{
	StatePending:     {StateAuthorizing: true},
	StateAuthorizing: {StateAuthorized: true, StateFailed: true, StatePending: true},
	StateAuthorized:  {StateCapturing: true, StateVoid: true},
	StateCapturing:   {StateCompleted: true, StateFailed: true},
	StateCompleted:   {StateRefunded: true},
}

// CanTransition reports whether from→to is a legal payment edge.
func CanTransition(from, to State) bool {
	return paymentTransitions[from] != nil && paymentTransitions[from][to]
}

// MethodType names a gateway implementation in the processor registry.
type MethodType string

const (
	MethodCashOnDelivery MethodType = "cash_on_delivery"
	MethodStripe         MethodType = "stripe"
	MethodPayPal         MethodType = "paypal"
)

// Payment is a monetary claim against an order. Amount and
// RefundedAmount are minor units in Currency.
type Payment struct {
	corebun.CoreModel `bun:"table:payments,alias:p"`

	OrderID  string `bun:"order_id,notnull" json:"order_id"`
	Amount   int64  `bun:"amount,notnull" json:"amount"`
	Currency string `bun:"currency,notnull" json:"currency"`

	State State `bun:"state,notnull,default:'pending'" json:"state"`

	PaymentMethodID   string     `bun:"payment_method_id,notnull" json:"payment_method_id"`
	PaymentMethodType MethodType `bun:"payment_method_type,notnull" json:"payment_method_type"`

	ProviderReference string `bun:"provider_reference" json:"provider_reference,omitempty"`
	GatewayAuthCode   string `bun:"gateway_auth_code" json:"gateway_auth_code,omitempty"`
	GatewayErrorCode  string `bun:"gateway_error_code" json:"gateway_error_code,omitempty"`
	FailureReason     string `bun:"failure_reason" json:"failure_reason,omitempty"`

	AuthorizedAt bun.NullTime `bun:"authorized_at" json:"authorized_at,omitempty"`
	CapturedAt   bun.NullTime `bun:"captured_at" json:"captured_at,omitempty"`
	VoidedAt     bun.NullTime `bun:"voided_at" json:"voided_at,omitempty"`

	// IdempotencyKey is the most recently issued outbound key; keys are
	// derived from (payment id, operation, attempt counter) and
	// unique-indexed when set.
	IdempotencyKey *string `bun:"idempotency_key" json:"idempotency_key,omitempty"`
	AttemptCount   int     `bun:"attempt_count,notnull,default:0" json:"attempt_count"`

	RefundedAmount int64 `bun:"refunded_amount,notnull,default:0" json:"refunded_amount"`

	// LastEventSequence orders inbound webhooks: an event whose sequence
	// is not greater than this is ignored.
	LastEventSequence int64 `bun:"last_event_sequence,notnull,default:0" json:"last_event_sequence"`
}

func (Payment) TableName() string { return "payments" }

// NetCaptured is the captured amount still held after refunds.
func (p *Payment) NetCaptured() int64 {
	switch p.State {
	case StateCompleted, StateRefunded:
		return p.Amount - p.RefundedAmount
	default:
		return 0
	}
}

// PaymentMethod is gateway configuration selected at payment creation.
type PaymentMethod struct {
	corebun.CoreModel `bun:"table:payment_methods,alias:pm"`

	Name        string     `bun:"name,notnull" json:"name"`
	Type        MethodType `bun:"type,notnull" json:"type"`
	Active      bool       `bun:"active,notnull,default:true" json:"active"`
	AutoCapture bool       `bun:"auto_capture,notnull,default:false" json:"auto_capture"`

	GatewayConfigurationID *string `bun:"gateway_configuration_id" json:"gateway_configuration_id,omitempty"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }

// GatewayConfiguration stores a gateway's credentials encrypted at
// rest. The blob is decrypted only at dispatch time; plaintext secrets
// never reach the event bus or the order aggregate.
type GatewayConfiguration struct {
	corebun.CoreModel `bun:"table:gateway_configurations,alias:gc"`

	Label         string `bun:"label,notnull" json:"label"`
	EncryptedBlob []byte `bun:"encrypted_blob,type:blob" json:"-"`
}

func (GatewayConfiguration) TableName() string { return "gateway_configurations" }
