package model

import (
	corebun "cartflow/internal/infra/database/bun"
)

// TargetType is the polymorphic discriminator of Adjustment: an
// adjustment applies to the order itself or to one line item.
type TargetType string

const (
	TargetOrder    TargetType = "order"
	TargetLineItem TargetType = "line_item"
)

// ActionKind names which promotion action produced the adjustment.
// Together with TargetID and PromotionID it forms the natural key
// (target_id, promotion_id, action_kind) of a promotion row.
// Recomputation deletes every promotion row and re-inserts the fresh
// set, so rows are replaced rather than appended.
type ActionKind string

const (
	ActionOrderPercentDiscount     ActionKind = "order_percent_discount"
	ActionOrderFlatDiscount        ActionKind = "order_flat_discount"
	ActionLineItemPercentDiscount  ActionKind = "line_item_percent_discount"
	ActionFreeShipping             ActionKind = "free_shipping"
)

// Adjustment is a signed monetary delta applied to an order or line
// item. Amount is typically ≤ 0 (a discount); PromotionID is set and
// IsPromotion is true when the adjustment originates from the promotion
// engine rather than a manual price override.
type Adjustment struct {
	corebun.CoreModel `bun:"table:order_adjustments,alias:adj"`

	TargetType TargetType `bun:"target_type,notnull" json:"target_type"`
	TargetID   string     `bun:"target_id,notnull" json:"target_id"`

	Amount      int64  `bun:"amount,notnull" json:"amount"`
	Description string `bun:"description" json:"description"`

	PromotionID *string    `bun:"promotion_id" json:"promotion_id,omitempty"`
	ActionKind  ActionKind `bun:"action_kind" json:"action_kind,omitempty"`
	IsPromotion bool       `bun:"is_promotion,notnull,default:false" json:"is_promotion"`
}

func (Adjustment) TableName() string {
	return "order_adjustments"
}

// NaturalKey is the (target_id, promotion_id, action_kind) tuple that
// makes promotion-engine recomputation idempotent.
type NaturalKey struct {
	TargetID    string
	PromotionID string
	ActionKind  ActionKind
}

func (a *Adjustment) NaturalKey() NaturalKey {
	promoID := ""
	if a.PromotionID != nil {
		promoID = *a.PromotionID
	}
	return NaturalKey{TargetID: a.TargetID, PromotionID: promoID, ActionKind: a.ActionKind}
}
