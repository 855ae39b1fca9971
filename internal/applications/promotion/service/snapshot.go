// Package service implements the promotion engine: candidate selection,
// AND-semantics rule evaluation, action application with max-discount
// capping, and natural-key based idempotent adjustment recomputation.
//
// The engine never imports the order package's Bun models — it consumes
// a plain Snapshot built by the order service from whatever it currently
// holds in memory, and returns plain AdjustmentResult values the order
// service turns back into its own Adjustment rows. This keeps C5 usable
// against any order representation and avoids an order<->promotion
// import cycle.
package service

// LineSnapshot is one line item's view as the promotion engine sees it.
type LineSnapshot struct {
	LineItemID string
	VariantID  string
	TaxonIDs   []string
	Quantity   int
	UnitPrice  int64
}

// TotalBeforeAdjustments is UnitPrice * Quantity.
func (l LineSnapshot) TotalBeforeAdjustments() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Snapshot is the order-under-evaluation input to Evaluate.
type Snapshot struct {
	OrderID               string
	UserID                *string
	Currency              string
	Lines                 []LineSnapshot
	ShipmentTotal         int64
	HasPriorCompletedOrder bool
}

// ItemTotal is the pre-promotion subtotal: Σ unit_price*quantity over all
// lines. Rules and actions evaluate against this figure rather than the
// order's adjusted item_total, which is what keeps recomputation
// idempotent regardless of how many times the engine has already run
// against this order.
func (s Snapshot) ItemTotal() int64 {
	var total int64
	for _, l := range s.Lines {
		total += l.TotalBeforeAdjustments()
	}
	return total
}

// TotalQuantity is Σ line.Quantity, the MinQuantity rule's input.
func (s Snapshot) TotalQuantity() int {
	var qty int
	for _, l := range s.Lines {
		qty += l.Quantity
	}
	return qty
}

func (s Snapshot) hasVariant(ids map[string]bool) bool {
	for _, l := range s.Lines {
		if ids[l.VariantID] {
			return true
		}
	}
	return false
}

func (s Snapshot) hasTaxon(ids map[string]bool) bool {
	for _, l := range s.Lines {
		for _, t := range l.TaxonIDs {
			if ids[t] {
				return true
			}
		}
	}
	return false
}
