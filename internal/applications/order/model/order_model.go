// Package model holds the order aggregate: Order, LineItem, Adjustment
// and OrderHistory, plus the checkout state machine's state constants
// and transition table.
package model

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/uptrace/bun"

	corebun "cartflow/internal/infra/database/bun"
)

// NewOrderNumber produces the unique human-readable order number.
func NewOrderNumber() string {
	return fmt.Sprintf("R%d%04d", time.Now().UnixMilli(), rand.Intn(10000))
}

// State is one of the nine checkout states.
type State string

const (
	StateCart           State = "cart"
	StateAddress        State = "address"
	StateDelivery       State = "delivery"
	StatePayment        State = "payment"
	StateConfirm        State = "confirm"
	StateComplete       State = "complete"
	StateCanceled       State = "canceled"
	StateAwaitingReturn State = "awaiting_return"
	StateReturned       State = "returned"
)

// transitions is the closed set of legal (from, to) edges. Every
// mutation that changes Order.State must go through a transition present
// here.
var transitions = map[State]map[State]bool{
	StateCart:           {StateAddress: true, StateCanceled: true},
	StateAddress:        {StateDelivery: true, StateCart: true, StateCanceled: true},
	StateDelivery:       {StatePayment: true, StateCart: true, StateCanceled: true},
	StatePayment:        {StateConfirm: true, StateComplete: true, StateCanceled: true},
	StateConfirm:        {StateComplete: true, StateCanceled: true},
	StateComplete:       {StateAwaitingReturn: true, StateCanceled: true},
	StateAwaitingReturn: {StateReturned: true},
}

// CanTransition reports whether moving from `from` to `to` is a legal
// edge in the checkout state machine.
func CanTransition(from, to State) bool {
	return transitions[from] != nil && transitions[from][to]
}

// Order is the checkout aggregate root. Money fields are minor-unit
// integers in Currency; grand_total is always item_total +
// shipment_total + adjustment_total, recomputed after every mutating
// command.
type Order struct {
	corebun.CoreModel `bun:"table:orders,alias:o"`

	OrderNumber string `bun:"order_number,notnull,unique" json:"order_number"`

	UserID          *string `bun:"user_id" json:"user_id,omitempty"`
	AdhocCustomerID *string `bun:"adhoc_customer_id" json:"adhoc_customer_id,omitempty"`

	State State `bun:"state,notnull,default:'cart'" json:"state"`

	Currency string `bun:"currency,notnull" json:"currency"`

	ItemTotal       int64 `bun:"item_total,notnull,default:0" json:"item_total"`
	ShipmentTotal   int64 `bun:"shipment_total,notnull,default:0" json:"shipment_total"`
	AdjustmentTotal int64 `bun:"adjustment_total,notnull,default:0" json:"adjustment_total"`
	GrandTotal      int64 `bun:"grand_total,notnull,default:0" json:"grand_total"`

	PromotionID *string `bun:"promotion_id" json:"promotion_id,omitempty"`
	PromoCode   *string `bun:"promo_code" json:"promo_code,omitempty"`

	// SelectedShippingMethodID is the method chosen during the Delivery
	// phase; it is applied to every shipment created when the order
	// advances to Payment.
	SelectedShippingMethodID *string `bun:"selected_shipping_method_id" json:"selected_shipping_method_id,omitempty"`

	Email               string `bun:"email" json:"email"`
	SpecialInstructions string `bun:"special_instructions,type:text" json:"special_instructions,omitempty"`

	ShippingAddress *Address `bun:"embed:shipping_address_" json:"shipping_address,omitempty"`

	CompletedAt bun.NullTime `bun:"completed_at" json:"completed_at,omitempty"`
	CanceledAt  bun.NullTime `bun:"canceled_at" json:"canceled_at,omitempty"`
	CancelReason string      `bun:"cancel_reason" json:"cancel_reason,omitempty"`

	LineItems []*LineItem `bun:"rel:has-many,join:id=order_id" json:"line_items,omitempty"`

	// Adjustments targeting the order itself (Adjustment.TargetType ==
	// TargetOrder). Loaded explicitly by the repository rather than
	// through a bun relation tag, since Adjustment is polymorphic over
	// {Order, LineItem} targets.
	Adjustments []*Adjustment `bun:"-" json:"adjustments,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// Address is the validated shipping destination captured during the
// Address checkout phase.
type Address struct {
	Name       string `bun:"name" json:"name,omitempty"`
	Line1      string `bun:"line1" json:"line1,omitempty"`
	Line2      string `bun:"line2" json:"line2,omitempty"`
	City       string `bun:"city" json:"city,omitempty"`
	Province   string `bun:"province" json:"province,omitempty"`
	PostalCode string `bun:"postal_code" json:"postal_code,omitempty"`
	Country    string `bun:"country" json:"country,omitempty"`
	Phone      string `bun:"phone" json:"phone,omitempty"`
}

// Valid reports whether the required address fields are present, the
// Address→Delivery guard.
func (a *Address) Valid() bool {
	return a != nil && a.Line1 != "" && a.City != "" && a.Country != ""
}

// ItemCount returns the total quantity across all line items.
func (o *Order) ItemCount() int {
	count := 0
	for _, li := range o.LineItems {
		count += li.Quantity
	}
	return count
}

// IsTerminal reports whether the order has left the active checkout flow.
func (o *Order) IsTerminal() bool {
	switch o.State {
	case StateCanceled, StateComplete, StateAwaitingReturn, StateReturned:
		return true
	default:
		return false
	}
}
