package model

import (
	corebun "cartflow/internal/infra/database/bun"
)

// ActionKind is the tagged-variant discriminator for Action.
type ActionKind string

const (
	ActionOrderPercentDiscount    ActionKind = "order_percent_discount"
	ActionOrderFlatDiscount       ActionKind = "order_flat_discount"
	ActionLineItemPercentDiscount ActionKind = "line_item_percent_discount"
	ActionFreeShipping            ActionKind = "free_shipping"
)

// LineItemFilter selects which lines a LineItemPercentDiscount applies
// to: every line, or only lines whose product belongs to the action's
// taxons.
type LineItemFilter string

const (
	FilterAllLines      LineItemFilter = "all_lines"
	FilterSpecificTaxon LineItemFilter = "specific_taxons"
)

// Action is a promotion's single effect. Percent is expressed as a
// percentage (e.g. 20.0 means 20%); FlatAmount is minor units, used only
// by OrderFlatDiscount.
type Action struct {
	corebun.CoreModel `bun:"table:promotion_actions,alias:pa"`

	PromotionID string         `bun:"promotion_id,notnull,unique" json:"promotion_id"`
	Kind        ActionKind     `bun:"kind,notnull" json:"kind"`
	Percent     float64        `bun:"percent,default:0" json:"percent,omitempty"`
	FlatAmount  int64          `bun:"flat_amount,default:0" json:"flat_amount,omitempty"`
	Filter      LineItemFilter `bun:"filter,default:'all_lines'" json:"filter,omitempty"`

	TaxonIDs []*PromotionActionTaxon `bun:"rel:has-many,join:id=action_id" json:"taxon_ids,omitempty"`
}

func (Action) TableName() string { return "promotion_actions" }

// PromotionActionTaxon scopes a LineItemPercentDiscount with
// Filter=specific_taxons to lines whose product is classified under one
// of these taxons.
type PromotionActionTaxon struct {
	corebun.CoreModel `bun:"table:promotion_action_taxons,alias:pat"`
	ActionID string `bun:"action_id,notnull" json:"action_id"`
	TaxonID  string `bun:"taxon_id,notnull" json:"taxon_id"`
}

func (PromotionActionTaxon) TableName() string { return "promotion_action_taxons" }
