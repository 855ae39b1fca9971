package service

import (
	"cartflow/internal/applications/order/model"
)

// totalsInput is everything computeTotals needs, loaded by the caller
// inside the command's transaction.
type totalsInput struct {
	Order            *model.Order
	Lines            []*model.LineItem
	OrderAdjustments []*model.Adjustment
	// LineAdjustments maps line item id to its adjustments.
	LineAdjustments map[string][]*model.Adjustment
	// ShipmentCost is the summed cost of non-canceled shipments.
	ShipmentCost int64
}

// computeTotals recalculates every derived monetary field in place.
//
// ItemTotal is the pre-adjustment base (unit price × quantity summed over
// lines); discounts live exclusively in AdjustmentTotal so the grand
// total never counts a line discount twice even though each line's
// stored total folds its own adjustments in.
func computeTotals(in totalsInput) {
	var itemTotal int64
	for _, line := range in.Lines {
		var lineAdjustments int64
		for _, adj := range in.LineAdjustments[line.ID] {
			lineAdjustments += adj.Amount
		}
		line.LineTotal = line.TotalBeforeAdjustments() + lineAdjustments
		itemTotal += line.TotalBeforeAdjustments()
	}

	var adjustmentTotal int64
	for _, adj := range in.OrderAdjustments {
		adjustmentTotal += adj.Amount
	}
	for _, adjustments := range in.LineAdjustments {
		for _, adj := range adjustments {
			adjustmentTotal += adj.Amount
		}
	}

	in.Order.ItemTotal = itemTotal
	in.Order.ShipmentTotal = in.ShipmentCost
	in.Order.AdjustmentTotal = adjustmentTotal
	in.Order.GrandTotal = itemTotal + in.ShipmentCost + adjustmentTotal
}
