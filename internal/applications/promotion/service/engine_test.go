package service_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartflow/internal/applications/promotion/model"
	"cartflow/internal/applications/promotion/service"
)

func promotion(id, name string, action *model.Action, rules ...*model.Rule) *model.Promotion {
	p := &model.Promotion{Name: name, Active: true, Rules: rules, Action: action}
	p.ID = id
	p.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if action != nil {
		action.PromotionID = id
	}
	return p
}

func snapshot() service.Snapshot {
	return service.Snapshot{
		OrderID:  "order-1",
		Currency: "USD",
		Lines: []service.LineSnapshot{
			{LineItemID: "l1", VariantID: "v1", Quantity: 2, UnitPrice: 3000},
			{LineItemID: "l2", VariantID: "v2", Quantity: 1, UnitPrice: 4000, TaxonIDs: []string{"shoes"}},
		},
		ShipmentTotal: 500,
	}
}

func TestEvaluate_OrderPercentDiscount(t *testing.T) {
	engine := service.NewEngine()
	p := promotion("p1", "20 off", &model.Action{Kind: model.ActionOrderPercentDiscount, Percent: 20})

	result := engine.Evaluate(snapshot(), []*model.Promotion{p}, "")

	require.Len(t, result.Adjustments, 1)
	// item total 10000, 20% = 2000
	assert.Equal(t, int64(-2000), result.Adjustments[0].Amount)
	assert.Equal(t, service.TargetOrder, result.Adjustments[0].TargetType)
	assert.Equal(t, []string{"p1"}, result.AppliedPromotionIDs)
}

func TestEvaluate_FlatDiscountClampedToItemTotal(t *testing.T) {
	engine := service.NewEngine()
	p := promotion("p1", "big flat", &model.Action{Kind: model.ActionOrderFlatDiscount, FlatAmount: 99999})

	result := engine.Evaluate(snapshot(), []*model.Promotion{p}, "")

	require.Len(t, result.Adjustments, 1)
	assert.Equal(t, int64(-10000), result.Adjustments[0].Amount)
}

func TestEvaluate_MaxDiscountCap(t *testing.T) {
	engine := service.NewEngine()
	p := promotion("p1", "SAVE20", &model.Action{Kind: model.ActionOrderPercentDiscount, Percent: 20})
	p.RequiresCode = true
	limit := int64(1500)
	p.MaxDiscountAmount = &limit

	result := engine.Evaluate(snapshot(), []*model.Promotion{p}, "p1")

	require.Len(t, result.Adjustments, 1)
	assert.Equal(t, int64(-1500), result.Adjustments[0].Amount)
}

func TestEvaluate_CapAllocatesAcrossLineAdjustments(t *testing.T) {
	engine := service.NewEngine()
	p := promotion("p1", "10 off lines", &model.Action{
		Kind:    model.ActionLineItemPercentDiscount,
		Percent: 10,
		Filter:  model.FilterAllLines,
	})
	limit := int64(700)
	p.MaxDiscountAmount = &limit

	result := engine.Evaluate(snapshot(), []*model.Promotion{p}, "")

	// Raw discounts: 600 on l1, 400 on l2 (total 1000, cap 700).
	require.Len(t, result.Adjustments, 2)
	var total int64
	for _, a := range result.Adjustments {
		total += a.Amount
	}
	assert.Equal(t, int64(-700), total)
}

func TestEvaluate_LineItemTaxonFilter(t *testing.T) {
	engine := service.NewEngine()
	action := &model.Action{
		Kind:    model.ActionLineItemPercentDiscount,
		Percent: 10,
		Filter:  model.FilterSpecificTaxon,
		TaxonIDs: []*model.PromotionActionTaxon{
			{TaxonID: "shoes"},
		},
	}
	p := promotion("p1", "shoes deal", action)

	result := engine.Evaluate(snapshot(), []*model.Promotion{p}, "")

	require.Len(t, result.Adjustments, 1)
	assert.Equal(t, "l2", result.Adjustments[0].TargetID)
	assert.Equal(t, int64(-400), result.Adjustments[0].Amount)
}

func TestEvaluate_FreeShipping(t *testing.T) {
	engine := service.NewEngine()
	p := promotion("p1", "free ship", &model.Action{Kind: model.ActionFreeShipping})

	result := engine.Evaluate(snapshot(), []*model.Promotion{p}, "")

	require.Len(t, result.Adjustments, 1)
	assert.Equal(t, int64(-500), result.Adjustments[0].Amount)
}

func TestEvaluate_RulesAreANDed(t *testing.T) {
	engine := service.NewEngine()
	userID := "u1"
	snap := snapshot()
	snap.UserID = &userID

	p := promotion("p1", "strict",
		&model.Action{Kind: model.ActionOrderPercentDiscount, Percent: 10},
		&model.Rule{Kind: model.RuleUserLoggedIn},
		&model.Rule{Kind: model.RuleMinQuantity, Value: 5},
	)

	result := engine.Evaluate(snap, []*model.Promotion{p}, "")

	// MinQuantity(5) fails against total quantity 3, so the logged-in
	// rule passing is not enough.
	assert.Empty(t, result.Adjustments)
}

func TestEvaluate_CouponRequiredPromotionSkippedWithoutCode(t *testing.T) {
	engine := service.NewEngine()
	p := promotion("p1", "SAVE20", &model.Action{Kind: model.ActionOrderPercentDiscount, Percent: 20})
	p.RequiresCode = true

	result := engine.Evaluate(snapshot(), []*model.Promotion{p}, "")

	assert.Empty(t, result.Adjustments)
}

func TestEvaluate_UsageExhaustedPromotionSkipped(t *testing.T) {
	engine := service.NewEngine()
	p := promotion("p1", "limited", &model.Action{Kind: model.ActionOrderPercentDiscount, Percent: 20})
	usageLimit := 3
	p.UsageLimit = &usageLimit
	p.UsageCount = 3

	result := engine.Evaluate(snapshot(), []*model.Promotion{p}, "")

	assert.Empty(t, result.Adjustments)
}

func TestEvaluate_FlatAppliesBeforePercent(t *testing.T) {
	engine := service.NewEngine()
	flat := promotion("p-flat", "flat", &model.Action{Kind: model.ActionOrderFlatDiscount, FlatAmount: 1000})
	percent := promotion("p-pct", "pct", &model.Action{Kind: model.ActionOrderPercentDiscount, Percent: 10})

	result := engine.Evaluate(snapshot(), []*model.Promotion{percent, flat}, "")

	require.Equal(t, []string{"p-flat", "p-pct"}, result.AppliedPromotionIDs)
}

func TestEvaluate_IdempotentRecomputation(t *testing.T) {
	engine := service.NewEngine()
	userID := "u7"
	snap := snapshot()
	snap.UserID = &userID

	limit := int64(900)
	percent := promotion("p1", "deal",
		&model.Action{Kind: model.ActionLineItemPercentDiscount, Percent: 10, Filter: model.FilterAllLines},
		&model.Rule{Kind: model.RuleUserLoggedIn},
	)
	percent.MaxDiscountAmount = &limit
	flat := promotion("p2", "flat", &model.Action{Kind: model.ActionOrderFlatDiscount, FlatAmount: 500})

	first := engine.Evaluate(snap, []*model.Promotion{percent, flat}, "")
	second := engine.Evaluate(snap, []*model.Promotion{percent, flat}, "")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("recomputation diverged (-first +second):\n%s", diff)
	}
}

func TestValidateCoupon_ReportsFailingRule(t *testing.T) {
	engine := service.NewEngine()
	p := promotion("p1", "SAVE20",
		&model.Action{Kind: model.ActionOrderPercentDiscount, Percent: 20},
		&model.Rule{Kind: model.RuleMinQuantity, Value: 10},
	)
	p.RequiresCode = true

	err := engine.ValidateCoupon(snapshot(), p)

	require.Error(t, err)
}

func TestValidateCoupon_MinOrderAmount(t *testing.T) {
	engine := service.NewEngine()
	p := promotion("p1", "SAVE20", &model.Action{Kind: model.ActionOrderPercentDiscount, Percent: 20})
	p.RequiresCode = true
	minimum := int64(50000)
	p.MinOrderAmount = &minimum

	err := engine.ValidateCoupon(snapshot(), p)

	require.Error(t, err)
}
