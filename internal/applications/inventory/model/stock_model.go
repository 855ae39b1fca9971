// Package model holds the inventory engine's persisted shapes: stock
// locations, per-(variant, location) stock items with on-hand/reserved
// counters, and the append-only movement ledger every counter change
// flows through.
package model

import (
	corebun "cartflow/internal/infra/database/bun"
)

// StockLocation is a warehouse or store stock ships from. At most one
// location is marked Default; the allocator prefers it.
type StockLocation struct {
	corebun.CoreModel `bun:"table:stock_locations,alias:sl"`

	InternalName     string `bun:"internal_name,notnull,unique" json:"internal_name"`
	PresentationName string `bun:"presentation_name" json:"presentation_name"`
	Active           bool   `bun:"active,notnull,default:true" json:"active"`
	Default          bool   `bun:"is_default,notnull,default:false" json:"default"`

	AddressLine1 string `bun:"address_line1" json:"address_line1,omitempty"`
	AddressLine2 string `bun:"address_line2" json:"address_line2,omitempty"`
	City         string `bun:"city" json:"city,omitempty"`
	Province     string `bun:"province" json:"province,omitempty"`
	PostalCode   string `bun:"postal_code" json:"postal_code,omitempty"`
	Country      string `bun:"country" json:"country,omitempty"`
}

func (StockLocation) TableName() string { return "stock_locations" }

// StockItem carries the counters for one (variant, location) pair.
// Counters are only ever mutated together with an appended
// StockMovement, inside one transaction.
type StockItem struct {
	corebun.CoreModel `bun:"table:stock_items,alias:si"`

	VariantID       string `bun:"variant_id,notnull" json:"variant_id"`
	StockLocationID string `bun:"stock_location_id,notnull" json:"stock_location_id"`
	SKU             string `bun:"sku" json:"sku"`

	QuantityOnHand   int `bun:"quantity_on_hand,notnull,default:0" json:"quantity_on_hand"`
	QuantityReserved int `bun:"quantity_reserved,notnull,default:0" json:"quantity_reserved"`

	Backorderable  bool `bun:"backorderable,notnull,default:false" json:"backorderable"`
	BackorderLimit int  `bun:"backorder_limit,notnull,default:0" json:"backorder_limit"`
}

func (StockItem) TableName() string { return "stock_items" }

// CountAvailable is max(0, on_hand - reserved) plus the backorder
// headroom when the item is backorderable.
func (s *StockItem) CountAvailable() int {
	available := s.QuantityOnHand - s.QuantityReserved
	if available < 0 {
		available = 0
	}
	if s.Backorderable {
		available += s.BackorderLimit
	}
	return available
}

// InStock reports whether at least one unit can be promised.
func (s *StockItem) InStock() bool {
	return s.CountAvailable() > 0
}

// MovementAction is the kind of counter change a movement records.
type MovementAction string

const (
	MovementAdjust   MovementAction = "adjust"
	MovementReserve  MovementAction = "reserve"
	MovementRelease  MovementAction = "release"
	MovementTransfer MovementAction = "transfer"
	MovementReceive  MovementAction = "receive"
)

// OriginatorType names what caused a movement.
type OriginatorType string

const (
	OriginatorOrder    OriginatorType = "order"
	OriginatorShipment OriginatorType = "shipment"
	OriginatorTransfer OriginatorType = "transfer"
	OriginatorManual   OriginatorType = "manual"
)

// StockMovement is one append-only ledger row. Quantity is signed: an
// Adjust(-2) writes -2. TransferID pairs the outbound Transfer movement
// with its inbound Receive.
type StockMovement struct {
	corebun.CoreModel `bun:"table:stock_movements,alias:sm"`

	StockItemID string `bun:"stock_item_id,notnull" json:"stock_item_id"`
	Quantity    int    `bun:"quantity,notnull" json:"quantity"`

	Action MovementAction `bun:"action,notnull" json:"action"`
	Reason string         `bun:"reason" json:"reason,omitempty"`

	OriginatorType OriginatorType `bun:"originator_type" json:"originator_type,omitempty"`
	OriginatorID   string         `bun:"originator_id" json:"originator_id,omitempty"`

	TransferID string `bun:"transfer_id" json:"transfer_id,omitempty"`
}

func (StockMovement) TableName() string { return "stock_movements" }
