// Package model holds the read-side catalog shapes the core consults:
// variants with per-currency prices, and the taxon tree promotion rules
// classify against. Catalog editing itself happens in an external
// system; the core only ever reads these tables.
package model

import (
	corebun "cartflow/internal/infra/database/bun"
)

// Variant is a sellable SKU-level product form.
type Variant struct {
	corebun.CoreModel `bun:"table:variants,alias:v"`

	ProductID    string  `bun:"product_id,notnull" json:"product_id"`
	SKU          string  `bun:"sku,notnull,unique" json:"sku"`
	Active       bool    `bun:"active,notnull,default:true" json:"active"`
	Discontinued bool    `bun:"discontinued,notnull,default:false" json:"discontinued"`
	Weight       float64 `bun:"weight,default:0" json:"weight,omitempty"`

	Prices []*VariantPrice `bun:"rel:has-many,join:id=variant_id" json:"prices,omitempty"`
}

func (Variant) TableName() string { return "variants" }

// Sellable reports whether a line item may be added for this variant.
func (v *Variant) Sellable() bool {
	return v.Active && !v.Discontinued
}

// PriceIn returns the variant's minor-unit price in the given currency,
// or false when the variant is not priceable in it.
func (v *Variant) PriceIn(currency string) (int64, bool) {
	for _, p := range v.Prices {
		if p.Currency == currency {
			return p.Amount, true
		}
	}
	return 0, false
}

// VariantPrice is one (variant, currency) price row. Amount is minor
// units.
type VariantPrice struct {
	corebun.CoreModel `bun:"table:variant_prices,alias:vp"`

	VariantID string `bun:"variant_id,notnull" json:"variant_id"`
	Currency  string `bun:"currency,notnull" json:"currency"`
	Amount    int64  `bun:"amount,notnull" json:"amount"`
}

func (VariantPrice) TableName() string { return "variant_prices" }

// Taxon is one node of the hierarchical product classification.
type Taxon struct {
	corebun.CoreModel `bun:"table:taxons,alias:tx"`

	Name     string  `bun:"name,notnull" json:"name"`
	ParentID *string `bun:"parent_id" json:"parent_id,omitempty"`
}

func (Taxon) TableName() string { return "taxons" }

// ProductTaxon classifies a product under a taxon. Classification is
// transitive through the taxon tree: a product under "sneakers" is also
// under "shoes" when sneakers' parent is shoes.
type ProductTaxon struct {
	corebun.CoreModel `bun:"table:product_taxons,alias:pt"`

	ProductID string `bun:"product_id,notnull" json:"product_id"`
	TaxonID   string `bun:"taxon_id,notnull" json:"taxon_id"`
}

func (ProductTaxon) TableName() string { return "product_taxons" }
