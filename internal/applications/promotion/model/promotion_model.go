// Package model holds the promotion engine's persisted shapes:
// Promotion, its tagged-variant Rule children, and its single Action
// child.
package model

import (
	"github.com/uptrace/bun"

	corebun "cartflow/internal/infra/database/bun"
)

// Promotion is a rule-guarded offer that yields adjustments when its
// rules all evaluate true against an order.
type Promotion struct {
	corebun.CoreModel `bun:"table:promotions,alias:promo"`

	Name        string  `bun:"name,notnull,unique" json:"name"`
	Code        *string `bun:"code" json:"code,omitempty"`
	Description string  `bun:"description,type:text" json:"description,omitempty"`

	MinOrderAmount  *int64 `bun:"min_order_amount" json:"min_order_amount,omitempty"`
	MaxDiscountAmount *int64 `bun:"max_discount_amount" json:"max_discount_amount,omitempty"`

	StartsAt  bun.NullTime `bun:"starts_at" json:"starts_at,omitempty"`
	ExpiresAt bun.NullTime `bun:"expires_at" json:"expires_at,omitempty"`

	UsageLimit *int `bun:"usage_limit" json:"usage_limit,omitempty"`
	UsageCount int   `bun:"usage_count,notnull,default:0" json:"usage_count"`

	Active        bool `bun:"active,notnull,default:true" json:"active"`
	RequiresCode  bool `bun:"requires_code,notnull,default:false" json:"requires_code"`

	Rules  []*Rule `bun:"rel:has-many,join:id=promotion_id" json:"rules,omitempty"`
	Action *Action `bun:"rel:has-one,join:id=promotion_id" json:"action,omitempty"`
}

func (Promotion) TableName() string {
	return "promotions"
}

// Priority derives the application ordering (priority descending,
// created-at ascending): coupon-bound promotions sort above
// automatic ones; within a tier, flat discounts sort above percentage
// discounts so percentage sees a stable base. Higher returned value sorts
// first.
func (p *Promotion) Priority(actionKind ActionKind) int {
	tier := 0
	if p.RequiresCode {
		tier = 10
	}
	if actionKind == ActionOrderFlatDiscount {
		tier++
	}
	return tier
}
