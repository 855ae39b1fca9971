// Package service implements fulfillment: allocating an order's units
// to shipments across stock locations, and driving the shipment and
// inventory-unit state machines.
package service

import (
	"sort"

	invmodel "cartflow/internal/applications/inventory/model"
	apperrors "cartflow/pkg/errors"
)

// AllocationLine is one line item's demand as the allocator sees it.
type AllocationLine struct {
	LineItemID string
	VariantID  string
	Quantity   int
}

// locationPlan is the allocator's decision for one stock location: how
// many units of each line to fulfill there, and how many of those are
// backordered.
type locationPlan struct {
	LocationID string
	Lines      []plannedLine
}

type plannedLine struct {
	Line        AllocationLine
	StockItemID string
	OnHand      int
	Backordered int
}

// planAllocation decides shipment placement without touching storage:
// the caller executes the plan's reservations afterwards, so a planning
// failure leaves shipments untouched.
//
// Locations are tried in preference order: the default location first,
// then by how much of the remaining demand each can satisfy, so the
// number of distinct shipments stays small. Units no location can cover
// on hand are backordered, but only when every short variant has a
// backorderable stock item with enough headroom; otherwise the whole
// allocation fails out of stock.
func planAllocation(lines []AllocationLine, locations []*invmodel.StockLocation, items []*invmodel.StockItem) ([]locationPlan, error) {
	itemsByVariantLocation := make(map[string]map[string]*invmodel.StockItem)
	for _, item := range items {
		byLocation := itemsByVariantLocation[item.VariantID]
		if byLocation == nil {
			byLocation = make(map[string]*invmodel.StockItem)
			itemsByVariantLocation[item.VariantID] = byLocation
		}
		byLocation[item.StockLocationID] = item
	}

	remaining := make(map[string]int, len(lines))
	for _, line := range lines {
		remaining[line.LineItemID] = line.Quantity
	}

	// Hard availability per item, ignoring backorder headroom.
	onHandAvailable := func(item *invmodel.StockItem) int {
		available := item.QuantityOnHand - item.QuantityReserved
		if available < 0 {
			return 0
		}
		return available
	}
	// Consumed tracks what this plan has already promised per item.
	consumed := make(map[string]int)

	satisfiable := func(loc *invmodel.StockLocation) int {
		total := 0
		for _, line := range lines {
			need := remaining[line.LineItemID]
			if need == 0 {
				continue
			}
			if item := itemsByVariantLocation[line.VariantID][loc.ID]; item != nil {
				available := onHandAvailable(item) - consumed[item.ID]
				if available > need {
					available = need
				}
				if available > 0 {
					total += available
				}
			}
		}
		return total
	}

	ordered := make([]*invmodel.StockLocation, len(locations))
	copy(ordered, locations)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Default != ordered[j].Default {
			return ordered[i].Default
		}
		return satisfiable(ordered[i]) > satisfiable(ordered[j])
	})

	var plans []*locationPlan
	planByLocation := make(map[string]*locationPlan)
	addToPlan := func(locationID string, pl plannedLine) {
		plan := planByLocation[locationID]
		if plan == nil {
			plan = &locationPlan{LocationID: locationID}
			plans = append(plans, plan)
			planByLocation[locationID] = plan
		}
		plan.Lines = append(plan.Lines, pl)
	}

	for _, loc := range ordered {
		for _, line := range lines {
			need := remaining[line.LineItemID]
			if need == 0 {
				continue
			}
			item := itemsByVariantLocation[line.VariantID][loc.ID]
			if item == nil {
				continue
			}
			available := onHandAvailable(item) - consumed[item.ID]
			if available <= 0 {
				continue
			}
			take := need
			if take > available {
				take = available
			}
			consumed[item.ID] += take
			remaining[line.LineItemID] -= take
			addToPlan(loc.ID, plannedLine{Line: line, StockItemID: item.ID, OnHand: take})
		}
	}

	// Anything left over must be backorderable everywhere it is short.
	var short []AllocationLine
	for _, line := range lines {
		if remaining[line.LineItemID] > 0 {
			short = append(short, line)
		}
	}
	if len(short) == 0 {
		return mergedPlans(plans), nil
	}

	type backorderSlot struct {
		item *invmodel.StockItem
		qty  int
	}
	slots := make(map[string]backorderSlot, len(short))
	for _, line := range short {
		need := remaining[line.LineItemID]
		var chosen *invmodel.StockItem
		for _, item := range items {
			if item.VariantID != line.VariantID || !item.Backorderable {
				continue
			}
			headroom := item.BackorderLimit - backorderUsed(item, consumed[item.ID])
			if headroom >= need {
				chosen = item
				break
			}
		}
		if chosen == nil {
			return nil, apperrors.ShipmentService(apperrors.ErrCodeStockOutOfStock).
				With("variant_id", line.VariantID).
				With("requested", need).
				Errorf("insufficient stock")
		}
		slots[line.LineItemID] = backorderSlot{item: chosen, qty: need}
	}

	for _, line := range short {
		slot := slots[line.LineItemID]
		consumed[slot.item.ID] += slot.qty
		remaining[line.LineItemID] = 0
		addToPlan(slot.item.StockLocationID, plannedLine{
			Line:        line,
			StockItemID: slot.item.ID,
			Backordered: slot.qty,
		})
	}

	return mergedPlans(plans), nil
}

// backorderUsed is how much of the item's backorder headroom is already
// promised: the part of reserved (plus this plan's consumption) that
// exceeds on_hand.
func backorderUsed(item *invmodel.StockItem, planned int) int {
	used := item.QuantityReserved + planned - item.QuantityOnHand
	if used < 0 {
		return 0
	}
	return used
}

// mergedPlans collapses duplicate (location, line, item) entries that
// arise when a line is satisfied partly on hand and partly backordered
// at the same location.
func mergedPlans(plans []*locationPlan) []locationPlan {
	result := make([]locationPlan, 0, len(plans))
	for _, plan := range plans {
		merged := make([]plannedLine, 0, len(plan.Lines))
		index := make(map[string]int)
		for _, pl := range plan.Lines {
			key := pl.Line.LineItemID + "/" + pl.StockItemID
			if at, ok := index[key]; ok {
				merged[at].OnHand += pl.OnHand
				merged[at].Backordered += pl.Backordered
				continue
			}
			index[key] = len(merged)
			merged = append(merged, pl)
		}
		result = append(result, locationPlan{LocationID: plan.LocationID, Lines: merged})
	}
	return result
}
