package repository

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"cartflow/internal/applications/promotion/model"
	"cartflow/internal/infra/cache"
	"cartflow/pkg/logger"
)

const (
	activePromotionsKey = "promotions:active"
	activePromotionsTTL = 60 * time.Second
)

// CachedPromotionRepository decorates the Bun repository with a short
// redis cache over the active candidate set, the hottest read on every
// totals recomputation. Usage-count writes invalidate it so an
// exhausted promotion drops out promptly.
type CachedPromotionRepository struct {
	PromotionRepository
	cache cache.Cache
}

func NewCachedPromotionRepository(inner PromotionRepository, store cache.Cache) *CachedPromotionRepository {
	return &CachedPromotionRepository{PromotionRepository: inner, cache: store}
}

func (r *CachedPromotionRepository) Active(ctx context.Context, db bun.IDB, now time.Time) ([]*model.Promotion, error) {
	var cached []*model.Promotion
	if hit, err := r.cache.Get(ctx, activePromotionsKey, &cached); err == nil && hit != nil {
		return filterWindow(cached, now), nil
	}

	promotions, err := r.PromotionRepository.Active(ctx, db, now)
	if err != nil {
		return nil, err
	}
	if _, err := r.cache.Set(ctx, activePromotionsKey, promotions, cache.Options{Expiration: activePromotionsTTL}); err != nil {
		logger.Warnf("caching active promotions failed: %v", err)
	}
	return promotions, nil
}

func (r *CachedPromotionRepository) IncrementUsage(ctx context.Context, db bun.IDB, id string) error {
	if err := r.PromotionRepository.IncrementUsage(ctx, db, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedPromotionRepository) DecrementUsage(ctx context.Context, db bun.IDB, id string) error {
	if err := r.PromotionRepository.DecrementUsage(ctx, db, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedPromotionRepository) invalidate(ctx context.Context) {
	if _, err := r.cache.Delete(ctx, activePromotionsKey); err != nil {
		logger.Warnf("invalidating promotion cache failed: %v", err)
	}
}

// filterWindow re-applies the validity window to a cached set, since a
// cached entry may straddle a starts-at or expires-at boundary.
func filterWindow(promotions []*model.Promotion, now time.Time) []*model.Promotion {
	result := make([]*model.Promotion, 0, len(promotions))
	for _, p := range promotions {
		if !p.StartsAt.Time.IsZero() && now.Before(p.StartsAt.Time) {
			continue
		}
		if !p.ExpiresAt.Time.IsZero() && !now.Before(p.ExpiresAt.Time) {
			continue
		}
		result = append(result, p)
	}
	return result
}
