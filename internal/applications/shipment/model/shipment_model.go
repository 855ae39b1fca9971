// Package model holds the fulfillment shapes: shipments, their
// per-unit inventory units, and the shipping methods a shipment's cost
// is priced from. Both shipments and inventory units carry their own
// small state machines.
package model

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/uptrace/bun"

	corebun "cartflow/internal/infra/database/bun"
)

// State is a shipment's lifecycle state.
type State string

const (
	StatePending   State = "pending"
	StateReady     State = "ready"
	StateShipped   State = "shipped"
	StateDelivered State = "delivered"
	StateCanceled  State = "canceled"
)

var shipmentTransitions = map[State]map[State]bool{
	StatePending: {StateReady: true, StateCanceled: true},
	StateReady:   {StateShipped: true, StateCanceled: true},
	StateShipped: {StateDelivered: true},
}

// CanTransition reports whether from→to is a legal shipment edge.
// A Shipped shipment can no longer be canceled; the return flow is the
// only reverse path.
func CanTransition(from, to State) bool {
	return shipmentTransitions[from] != nil && shipmentTransitions[from][to]
}

// Shipment is one delivery of inventory units from a single stock
// location. Cost is minor units in the order's currency.
type Shipment struct {
	corebun.CoreModel `bun:"table:shipments,alias:sh"`

	OrderID         string `bun:"order_id,notnull" json:"order_id"`
	ShipmentNumber  string `bun:"shipment_number,notnull,unique" json:"shipment_number"`
	State           State  `bun:"state,notnull,default:'pending'" json:"state"`
	StockLocationID string `bun:"stock_location_id,notnull" json:"stock_location_id"`

	ShippingMethodID *string `bun:"shipping_method_id" json:"shipping_method_id,omitempty"`
	Cost             int64   `bun:"cost,notnull,default:0" json:"cost"`

	TrackingNumber string `bun:"tracking_number" json:"tracking_number,omitempty"`

	ReadyAt     bun.NullTime `bun:"ready_at" json:"ready_at,omitempty"`
	ShippedAt   bun.NullTime `bun:"shipped_at" json:"shipped_at,omitempty"`
	DeliveredAt bun.NullTime `bun:"delivered_at" json:"delivered_at,omitempty"`
	CanceledAt  bun.NullTime `bun:"canceled_at" json:"canceled_at,omitempty"`

	InventoryUnits []*InventoryUnit `bun:"rel:has-many,join:id=shipment_id" json:"inventory_units,omitempty"`
}

func (Shipment) TableName() string { return "shipments" }

// NewShipmentNumber produces the human-readable unique shipment number.
func NewShipmentNumber() string {
	return fmt.Sprintf("H%d%04d", time.Now().UnixMilli(), rand.Intn(10000))
}

// AllUnitsOnHand reports whether every non-canceled unit is on hand,
// the Pending→Ready gate.
func (s *Shipment) AllUnitsOnHand() bool {
	any := false
	for _, u := range s.InventoryUnits {
		if u.State == UnitCanceled {
			continue
		}
		any = true
		if u.State != UnitOnHand {
			return false
		}
	}
	return any
}

// UnitState is an inventory unit's lifecycle state.
type UnitState string

const (
	UnitOnHand      UnitState = "on_hand"
	UnitBackordered UnitState = "backordered"
	UnitShipped     UnitState = "shipped"
	UnitReturned    UnitState = "returned"
	UnitCanceled    UnitState = "canceled"
)

var unitTransitions = map[UnitState]map[UnitState]bool{
	UnitOnHand:      {UnitShipped: true, UnitCanceled: true},
	UnitBackordered: {UnitOnHand: true, UnitCanceled: true},
	UnitShipped:     {UnitReturned: true},
}

// CanTransitionUnit reports whether from→to is a legal inventory-unit
// edge.
func CanTransitionUnit(from, to UnitState) bool {
	return unitTransitions[from] != nil && unitTransitions[from][to]
}

// InventoryUnit represents one unit of fulfillment tying a line item to
// a shipment; a line item's quantity equals its count of units.
type InventoryUnit struct {
	corebun.CoreModel `bun:"table:inventory_units,alias:iu"`

	VariantID  string    `bun:"variant_id,notnull" json:"variant_id"`
	LineItemID string    `bun:"line_item_id,notnull" json:"line_item_id"`
	ShipmentID *string   `bun:"shipment_id" json:"shipment_id,omitempty"`
	State      UnitState `bun:"state,notnull,default:'on_hand'" json:"state"`

	StateChangedAt bun.NullTime `bun:"state_changed_at" json:"state_changed_at,omitempty"`
}

func (InventoryUnit) TableName() string { return "inventory_units" }

// ShippingMethod prices a shipment. Amount is minor units in Currency.
type ShippingMethod struct {
	corebun.CoreModel `bun:"table:shipping_methods,alias:shm"`

	Name     string `bun:"name,notnull" json:"name"`
	Amount   int64  `bun:"amount,notnull" json:"amount"`
	Currency string `bun:"currency,notnull" json:"currency"`
	Active   bool   `bun:"active,notnull,default:true" json:"active"`
}

func (ShippingMethod) TableName() string { return "shipping_methods" }
