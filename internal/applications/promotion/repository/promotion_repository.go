// Package repository is the Bun-backed persistence layer for promotions
// and their rule/action children.
package repository

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"cartflow/internal/applications/promotion/model"
	corebun "cartflow/internal/infra/database/bun"
)

type PromotionRepository interface {
	FindByID(ctx context.Context, db bun.IDB, id string) (*model.Promotion, error)
	// Active returns every active promotion inside its validity window,
	// with rules, rule children, and the action preloaded.
	Active(ctx context.Context, db bun.IDB, now time.Time) ([]*model.Promotion, error)
	FindByCode(ctx context.Context, db bun.IDB, code string) (*model.Promotion, error)

	// IncrementUsage / DecrementUsage adjust usage_count atomically in
	// SQL rather than read-modify-write, so concurrent completions never
	// lose a count.
	IncrementUsage(ctx context.Context, db bun.IDB, id string) error
	DecrementUsage(ctx context.Context, db bun.IDB, id string) error
}

type promotionRepository struct {
	*corebun.BaseRepository[model.Promotion]
}

func NewPromotionRepository(db *bun.DB) PromotionRepository {
	return &promotionRepository{BaseRepository: corebun.NewRepository(db, &model.Promotion{})}
}

func (r *promotionRepository) FindByID(ctx context.Context, db bun.IDB, id string) (*model.Promotion, error) {
	promotion := new(model.Promotion)
	err := db.NewSelect().Model(promotion).
		Relation("Rules").
		Relation("Rules.Taxons").
		Relation("Rules.Users").
		Relation("Rules.Variants").
		Relation("Action").
		Relation("Action.TaxonIDs").
		Where("promo.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return promotion, nil
}

func (r *promotionRepository) Active(ctx context.Context, db bun.IDB, now time.Time) ([]*model.Promotion, error) {
	var promotions []*model.Promotion
	err := db.NewSelect().Model(&promotions).
		Relation("Rules").
		Relation("Rules.Taxons").
		Relation("Rules.Users").
		Relation("Rules.Variants").
		Relation("Action").
		Relation("Action.TaxonIDs").
		Where("promo.active = ?", true).
		Where("(promo.starts_at IS NULL OR promo.starts_at <= ?)", now).
		Where("(promo.expires_at IS NULL OR promo.expires_at > ?)", now).
		Order("promo.created_at ASC").
		Scan(ctx)
	return promotions, err
}

func (r *promotionRepository) FindByCode(ctx context.Context, db bun.IDB, code string) (*model.Promotion, error) {
	promotion := new(model.Promotion)
	err := db.NewSelect().Model(promotion).
		Relation("Rules").
		Relation("Rules.Taxons").
		Relation("Rules.Users").
		Relation("Rules.Variants").
		Relation("Action").
		Relation("Action.TaxonIDs").
		Where("LOWER(promo.code) = ?", strings.ToLower(code)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return promotion, nil
}

func (r *promotionRepository) IncrementUsage(ctx context.Context, db bun.IDB, id string) error {
	_, err := db.NewUpdate().Model((*model.Promotion)(nil)).
		Set("usage_count = usage_count + 1").
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *promotionRepository) DecrementUsage(ctx context.Context, db bun.IDB, id string) error {
	_, err := db.NewUpdate().Model((*model.Promotion)(nil)).
		Set("usage_count = usage_count - 1").
		Where("id = ? AND usage_count > 0", id).
		Exec(ctx)
	return err
}
