// Package repository is the read-only catalog lookup layer: variant
// price snapshots for the cart and taxon classification for the
// promotion engine.
package repository

import (
	"context"

	"github.com/uptrace/bun"

	"cartflow/internal/applications/catalog/model"
	corebun "cartflow/internal/infra/database/bun"
)

type VariantRepository interface {
	FindVariant(ctx context.Context, db bun.IDB, id string) (*model.Variant, error)
	// TaxonIDsForVariant resolves the variant's product classification,
	// expanded transitively through the taxon tree up to each root.
	TaxonIDsForVariant(ctx context.Context, db bun.IDB, variantID string) ([]string, error)
}

type variantRepository struct {
	*corebun.BaseRepository[model.Variant]
}

func NewVariantRepository(db *bun.DB) VariantRepository {
	return &variantRepository{BaseRepository: corebun.NewRepository(db, &model.Variant{})}
}

func (r *variantRepository) FindVariant(ctx context.Context, db bun.IDB, id string) (*model.Variant, error) {
	variant := new(model.Variant)
	err := db.NewSelect().Model(variant).Relation("Prices").Where("v.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return variant, nil
}

func (r *variantRepository) TaxonIDsForVariant(ctx context.Context, db bun.IDB, variantID string) ([]string, error) {
	variant := new(model.Variant)
	if err := db.NewSelect().Model(variant).Column("product_id").Where("v.id = ?", variantID).Scan(ctx); err != nil {
		return nil, err
	}

	var direct []*model.ProductTaxon
	if err := db.NewSelect().Model(&direct).Where("product_id = ?", variant.ProductID).Scan(ctx); err != nil {
		return nil, err
	}
	if len(direct) == 0 {
		return nil, nil
	}

	var taxons []*model.Taxon
	if err := db.NewSelect().Model(&taxons).Scan(ctx); err != nil {
		return nil, err
	}
	parents := make(map[string]*string, len(taxons))
	for _, t := range taxons {
		parents[t.ID] = t.ParentID
	}

	seen := make(map[string]bool)
	var result []string
	for _, pt := range direct {
		id := pt.TaxonID
		// Walk to the root; the visited set guards against a cyclic tree.
		for id != "" && !seen[id] {
			seen[id] = true
			result = append(result, id)
			parent := parents[id]
			if parent == nil {
				break
			}
			id = *parent
		}
	}
	return result, nil
}
