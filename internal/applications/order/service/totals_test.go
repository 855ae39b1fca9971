package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cartflow/internal/applications/order/model"
)

func line(id string, unitPrice int64, quantity int) *model.LineItem {
	li := &model.LineItem{UnitPrice: unitPrice, Quantity: quantity}
	li.ID = id
	return li
}

func TestComputeTotals_NoAdjustments(t *testing.T) {
	order := &model.Order{Currency: "USD"}
	lines := []*model.LineItem{line("l1", 1999, 2)}

	computeTotals(totalsInput{
		Order:           order,
		Lines:           lines,
		LineAdjustments: map[string][]*model.Adjustment{},
		ShipmentCost:    500,
	})

	assert.Equal(t, int64(3998), order.ItemTotal)
	assert.Equal(t, int64(500), order.ShipmentTotal)
	assert.Equal(t, int64(0), order.AdjustmentTotal)
	assert.Equal(t, int64(4498), order.GrandTotal)
	assert.Equal(t, int64(3998), lines[0].LineTotal)
}

func TestComputeTotals_OrderAdjustment(t *testing.T) {
	order := &model.Order{Currency: "USD"}
	lines := []*model.LineItem{line("l1", 5000, 2)}

	computeTotals(totalsInput{
		Order:            order,
		Lines:            lines,
		OrderAdjustments: []*model.Adjustment{{Amount: -1500}},
		LineAdjustments:  map[string][]*model.Adjustment{},
		ShipmentCost:     500,
	})

	assert.Equal(t, int64(10000), order.ItemTotal)
	assert.Equal(t, int64(-1500), order.AdjustmentTotal)
	assert.Equal(t, int64(9000), order.GrandTotal)
}

func TestComputeTotals_LineAdjustmentCountedOnce(t *testing.T) {
	order := &model.Order{Currency: "USD"}
	lines := []*model.LineItem{line("l1", 3000, 2), line("l2", 4000, 1)}

	computeTotals(totalsInput{
		Order: order,
		Lines: lines,
		LineAdjustments: map[string][]*model.Adjustment{
			"l1": {{Amount: -600}},
		},
		ShipmentCost: 0,
	})

	// The discount shows up in the line's own total and exactly once in
	// the order-level arithmetic.
	assert.Equal(t, int64(5400), lines[0].LineTotal)
	assert.Equal(t, int64(4000), lines[1].LineTotal)
	assert.Equal(t, int64(10000), order.ItemTotal)
	assert.Equal(t, int64(-600), order.AdjustmentTotal)
	assert.Equal(t, int64(9400), order.GrandTotal)
}

func TestComputeTotals_GrandTotalInvariant(t *testing.T) {
	order := &model.Order{Currency: "USD"}
	lines := []*model.LineItem{line("l1", 1250, 3), line("l2", 999, 1)}

	computeTotals(totalsInput{
		Order:            order,
		Lines:            lines,
		OrderAdjustments: []*model.Adjustment{{Amount: -200}, {Amount: -50}},
		LineAdjustments: map[string][]*model.Adjustment{
			"l2": {{Amount: -99}},
		},
		ShipmentCost: 750,
	})

	assert.Equal(t, order.GrandTotal, order.ItemTotal+order.ShipmentTotal+order.AdjustmentTotal)
}
