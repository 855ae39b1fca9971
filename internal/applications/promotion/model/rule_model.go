package model

import (
	corebun "cartflow/internal/infra/database/bun"
)

// RuleKind is the tagged-variant discriminator for Rule.
type RuleKind string

const (
	RuleUserLoggedIn    RuleKind = "user_logged_in"
	RuleFirstOrder      RuleKind = "first_order"
	RuleMinQuantity     RuleKind = "min_quantity"
	RuleMinOrderAmount  RuleKind = "min_order_amount"
	RuleProductInCart   RuleKind = "product_in_cart"
	RuleTaxonInCart     RuleKind = "taxon_in_cart"
	RuleUserAllowList   RuleKind = "user_allow_list"
)

// Rule carries its scalar parameter in Value (MinQuantity's n,
// MinOrderAmount's minor-unit minimum) and its set parameters in the
// linked child rows below.
type Rule struct {
	corebun.CoreModel `bun:"table:promotion_rules,alias:pr"`

	PromotionID string   `bun:"promotion_id,notnull" json:"promotion_id"`
	Kind        RuleKind `bun:"kind,notnull" json:"kind"`
	Value       int64    `bun:"value,default:0" json:"value,omitempty"`

	Taxons    []*PromotionRuleTaxon   `bun:"rel:has-many,join:id=rule_id" json:"taxons,omitempty"`
	Users     []*PromotionRuleUser    `bun:"rel:has-many,join:id=rule_id" json:"users,omitempty"`
	Variants  []*PromotionRuleVariant `bun:"rel:has-many,join:id=rule_id" json:"variants,omitempty"`
}

func (Rule) TableName() string {
	return "promotion_rules"
}

// PromotionRuleTaxon is a child row of a TaxonInCart rule.
type PromotionRuleTaxon struct {
	corebun.CoreModel `bun:"table:promotion_rule_taxons,alias:prt"`
	RuleID  string `bun:"rule_id,notnull" json:"rule_id"`
	TaxonID string `bun:"taxon_id,notnull" json:"taxon_id"`
}

func (PromotionRuleTaxon) TableName() string { return "promotion_rule_taxons" }

// PromotionRuleUser is a child row of a UserAllowList rule.
type PromotionRuleUser struct {
	corebun.CoreModel `bun:"table:promotion_rule_users,alias:pru"`
	RuleID string `bun:"rule_id,notnull" json:"rule_id"`
	UserID string `bun:"user_id,notnull" json:"user_id"`
}

func (PromotionRuleUser) TableName() string { return "promotion_rule_users" }

// PromotionRuleVariant is a child row of a ProductInCart rule.
type PromotionRuleVariant struct {
	corebun.CoreModel `bun:"table:promotion_rule_variants,alias:prv"`
	RuleID    string `bun:"rule_id,notnull" json:"rule_id"`
	VariantID string `bun:"variant_id,notnull" json:"variant_id"`
}

func (PromotionRuleVariant) TableName() string { return "promotion_rule_variants" }
