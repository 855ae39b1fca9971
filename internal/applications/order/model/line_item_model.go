package model

import (
	corebun "cartflow/internal/infra/database/bun"
)

// LineItem is a quantity-priced entry referring to one variant.
// UnitPrice is captured at add time and frozen once the order completes;
// LineTotal = UnitPrice*Quantity + Σ adjustments.
type LineItem struct {
	corebun.CoreModel `bun:"table:order_line_items,alias:li"`

	OrderID   string `bun:"order_id,notnull" json:"order_id"`
	VariantID string `bun:"variant_id,notnull" json:"variant_id"`

	Quantity  int   `bun:"quantity,notnull" json:"quantity"`
	UnitPrice int64 `bun:"unit_price,notnull" json:"unit_price"`
	LineTotal int64 `bun:"line_total,notnull,default:0" json:"line_total"`

	WeightSnapshot float64 `bun:"weight_snapshot,default:0" json:"weight_snapshot,omitempty"`

	// PriceAddedAt backs the guest-cart merge rule that re-prices a line
	// added less than ten minutes ago.
	PriceAddedAt int64 `bun:"price_added_at" json:"-"`

	Adjustments []*Adjustment `bun:"-" json:"adjustments,omitempty"`
}

func (LineItem) TableName() string {
	return "order_line_items"
}

// TotalBeforeAdjustments is UnitPrice * Quantity, the base the promotion
// engine's LineItemPercentDiscount action multiplies against.
func (li *LineItem) TotalBeforeAdjustments() int64 {
	return li.UnitPrice * int64(li.Quantity)
}
