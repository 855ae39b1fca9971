package service

import (
	"sort"

	"cartflow/internal/applications/promotion/model"
	"cartflow/internal/domain/money"
	apperrors "cartflow/pkg/errors"
)

// AdjustmentResult is one adjustment the engine wants to exist. The
// order service turns these into its own adjustment rows after deleting
// every prior promotion row of the order and its lines.
type AdjustmentResult struct {
	TargetType  string // "order" or "line_item"
	TargetID    string
	Amount      int64 // signed, a discount is negative
	Description string
	PromotionID string
	ActionKind  string
}

// Evaluation is the engine's full output for one pass.
type Evaluation struct {
	Adjustments []AdjustmentResult
	// AppliedPromotionIDs lists promotions that produced at least one
	// non-zero adjustment, in application order.
	AppliedPromotionIDs []string
}

const (
	TargetOrder    = "order"
	TargetLineItem = "line_item"
)

// Engine evaluates which promotions apply to an order snapshot and what
// adjustments they produce. Evaluation is pure: same snapshot and
// promotion set in, same adjustments out, which is what makes totals
// recomputation idempotent.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs candidate selection, rule evaluation (AND semantics),
// and action application for every promotion. couponPromotionID names
// the promotion attached via coupon, or empty; candidates requiring a
// code only apply when they are that promotion.
func (e *Engine) Evaluate(snapshot Snapshot, promotions []*model.Promotion, couponPromotionID string) *Evaluation {
	candidates := make([]*model.Promotion, 0, len(promotions))
	for _, p := range promotions {
		if !isCandidate(snapshot, p, couponPromotionID) {
			continue
		}
		if CheckRules(snapshot, p) != nil {
			continue
		}
		candidates = append(candidates, p)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		pi := candidates[i].Priority(actionKind(candidates[i]))
		pj := candidates[j].Priority(actionKind(candidates[j]))
		if pi != pj {
			return pi > pj
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	evaluation := &Evaluation{}
	for _, p := range candidates {
		adjustments := applyAction(snapshot, p)
		adjustments = applyCap(p, adjustments)

		applied := false
		for _, a := range adjustments {
			if a.Amount != 0 {
				applied = true
			}
		}
		if !applied {
			continue
		}
		evaluation.Adjustments = append(evaluation.Adjustments, adjustments...)
		evaluation.AppliedPromotionIDs = append(evaluation.AppliedPromotionIDs, p.ID)
	}
	return evaluation
}

// ValidateCoupon checks a coupon-bound promotion against the snapshot
// and returns the structured failure identifying what rejected it.
func (e *Engine) ValidateCoupon(snapshot Snapshot, p *model.Promotion) error {
	if !p.RequiresCode {
		return apperrors.PromotionService(apperrors.ErrCodePromotionInvalidCode).
			With("promotion_id", p.ID).
			Errorf("promotion is not coupon-bound")
	}
	if !p.Active {
		return apperrors.PromotionService(apperrors.ErrCodePromotionInvalidCode).
			With("promotion_id", p.ID).
			Errorf("promotion is inactive")
	}
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return apperrors.PromotionService(apperrors.ErrCodePromotionUsageExhausted).
			With("promotion_id", p.ID).
			Errorf("promotion usage limit reached")
	}
	if p.MinOrderAmount != nil && snapshot.ItemTotal() < *p.MinOrderAmount {
		return apperrors.PromotionService(apperrors.ErrCodePromotionRuleFailed).
			With("promotion_id", p.ID).
			With("rule", "min_order_amount").
			With("minimum", *p.MinOrderAmount).
			With("item_total", snapshot.ItemTotal()).
			Errorf("order total below promotion minimum")
	}
	return CheckRules(snapshot, p)
}

func isCandidate(snapshot Snapshot, p *model.Promotion, couponPromotionID string) bool {
	if !p.Active || p.Action == nil {
		return false
	}
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return false
	}
	if p.RequiresCode && p.ID != couponPromotionID {
		return false
	}
	if p.MinOrderAmount != nil && snapshot.ItemTotal() < *p.MinOrderAmount {
		return false
	}
	return true
}

func actionKind(p *model.Promotion) model.ActionKind {
	if p.Action == nil {
		return ""
	}
	return p.Action.Kind
}

// CheckRules evaluates every rule with AND semantics and returns the
// first failure, identifying the rejecting rule.
func CheckRules(snapshot Snapshot, p *model.Promotion) error {
	for _, rule := range p.Rules {
		if err := checkRule(snapshot, rule); err != nil {
			return err
		}
	}
	return nil
}

func checkRule(snapshot Snapshot, rule *model.Rule) error {
	fail := func(format string, args ...interface{}) error {
		return apperrors.PromotionService(apperrors.ErrCodePromotionRuleFailed).
			With("rule", string(rule.Kind)).
			With("promotion_id", rule.PromotionID).
			Errorf(format, args...)
	}

	switch rule.Kind {
	case model.RuleUserLoggedIn:
		if snapshot.UserID == nil {
			return fail("order has no authenticated user")
		}
	case model.RuleFirstOrder:
		if snapshot.UserID == nil || snapshot.HasPriorCompletedOrder {
			return fail("not the user's first order")
		}
	case model.RuleMinQuantity:
		if int64(snapshot.TotalQuantity()) < rule.Value {
			return fail("cart quantity %d below minimum %d", snapshot.TotalQuantity(), rule.Value)
		}
	case model.RuleMinOrderAmount:
		if snapshot.ItemTotal() < rule.Value {
			return fail("item total %d below minimum %d", snapshot.ItemTotal(), rule.Value)
		}
	case model.RuleProductInCart:
		wanted := make(map[string]bool, len(rule.Variants))
		for _, v := range rule.Variants {
			wanted[v.VariantID] = true
		}
		if !snapshot.hasVariant(wanted) {
			return fail("no qualifying product in cart")
		}
	case model.RuleTaxonInCart:
		wanted := make(map[string]bool, len(rule.Taxons))
		for _, t := range rule.Taxons {
			wanted[t.TaxonID] = true
		}
		if !snapshot.hasTaxon(wanted) {
			return fail("no product from qualifying category in cart")
		}
	case model.RuleUserAllowList:
		if snapshot.UserID == nil {
			return fail("order has no authenticated user")
		}
		for _, u := range rule.Users {
			if u.UserID == *snapshot.UserID {
				return nil
			}
		}
		return fail("user not in allow list")
	default:
		return fail("unknown rule kind")
	}
	return nil
}

// applyAction produces the promotion's raw adjustments before the
// max-discount cap.
func applyAction(snapshot Snapshot, p *model.Promotion) []AdjustmentResult {
	action := p.Action
	currency := snapshot.Currency

	switch action.Kind {
	case model.ActionOrderPercentDiscount:
		itemTotal := money.New(snapshot.ItemTotal(), currency)
		discount := itemTotal.MultiplyRat(money.Percent(action.Percent))
		return []AdjustmentResult{{
			TargetType:  TargetOrder,
			TargetID:    snapshot.OrderID,
			Amount:      -discount.Amount,
			Description: p.Name,
			PromotionID: p.ID,
			ActionKind:  string(action.Kind),
		}}

	case model.ActionOrderFlatDiscount:
		amount := action.FlatAmount
		if amount > snapshot.ItemTotal() {
			amount = snapshot.ItemTotal()
		}
		return []AdjustmentResult{{
			TargetType:  TargetOrder,
			TargetID:    snapshot.OrderID,
			Amount:      -amount,
			Description: p.Name,
			PromotionID: p.ID,
			ActionKind:  string(action.Kind),
		}}

	case model.ActionLineItemPercentDiscount:
		taxonFilter := make(map[string]bool, len(action.TaxonIDs))
		for _, t := range action.TaxonIDs {
			taxonFilter[t.TaxonID] = true
		}

		var results []AdjustmentResult
		for _, line := range snapshot.Lines {
			if action.Filter == model.FilterSpecificTaxon && !lineHasTaxon(line, taxonFilter) {
				continue
			}
			base := money.New(line.TotalBeforeAdjustments(), currency)
			discount := base.MultiplyRat(money.Percent(action.Percent))
			results = append(results, AdjustmentResult{
				TargetType:  TargetLineItem,
				TargetID:    line.LineItemID,
				Amount:      -discount.Amount,
				Description: p.Name,
				PromotionID: p.ID,
				ActionKind:  string(action.Kind),
			})
		}
		return results

	case model.ActionFreeShipping:
		if snapshot.ShipmentTotal == 0 {
			return nil
		}
		return []AdjustmentResult{{
			TargetType:  TargetOrder,
			TargetID:    snapshot.OrderID,
			Amount:      -snapshot.ShipmentTotal,
			Description: p.Name,
			PromotionID: p.ID,
			ActionKind:  string(action.Kind),
		}}
	}
	return nil
}

func lineHasTaxon(line LineSnapshot, wanted map[string]bool) bool {
	for _, t := range line.TaxonIDs {
		if wanted[t] {
			return true
		}
	}
	return false
}

// applyCap scales the promotion's adjustments down proportionally when
// their combined magnitude exceeds the promotion's max discount,
// reconciling minor units by largest remainder.
func applyCap(p *model.Promotion, adjustments []AdjustmentResult) []AdjustmentResult {
	if p.MaxDiscountAmount == nil || len(adjustments) == 0 {
		return adjustments
	}
	limit := *p.MaxDiscountAmount

	var total int64
	weights := make([]int64, len(adjustments))
	for i, a := range adjustments {
		magnitude := a.Amount
		if magnitude < 0 {
			magnitude = -magnitude
		}
		weights[i] = magnitude
		total += magnitude
	}
	if total <= limit {
		return adjustments
	}

	shares := money.AllocateLargestRemainder(limit, weights)
	for i := range adjustments {
		adjustments[i].Amount = -shares[i]
	}
	return adjustments
}
