package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invmodel "cartflow/internal/applications/inventory/model"
)

func location(id string, isDefault bool) *invmodel.StockLocation {
	loc := &invmodel.StockLocation{InternalName: id, Active: true, Default: isDefault}
	loc.ID = id
	return loc
}

func stockItem(id, variantID, locationID string, onHand, reserved int) *invmodel.StockItem {
	item := &invmodel.StockItem{
		VariantID:        variantID,
		StockLocationID:  locationID,
		QuantityOnHand:   onHand,
		QuantityReserved: reserved,
	}
	item.ID = id
	return item
}

func TestPlanAllocation_SingleLocationSatisfiesAll(t *testing.T) {
	lines := []AllocationLine{
		{LineItemID: "l1", VariantID: "v1", Quantity: 2},
		{LineItemID: "l2", VariantID: "v2", Quantity: 1},
	}
	locations := []*invmodel.StockLocation{location("warehouse", true)}
	items := []*invmodel.StockItem{
		stockItem("si1", "v1", "warehouse", 5, 0),
		stockItem("si2", "v2", "warehouse", 5, 0),
	}

	plans, err := planAllocation(lines, locations, items)

	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "warehouse", plans[0].LocationID)
	assert.Len(t, plans[0].Lines, 2)
}

func TestPlanAllocation_PrefersDefaultLocation(t *testing.T) {
	lines := []AllocationLine{{LineItemID: "l1", VariantID: "v1", Quantity: 1}}
	locations := []*invmodel.StockLocation{
		location("overflow", false),
		location("main", true),
	}
	items := []*invmodel.StockItem{
		stockItem("si1", "v1", "overflow", 10, 0),
		stockItem("si2", "v1", "main", 10, 0),
	}

	plans, err := planAllocation(lines, locations, items)

	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "main", plans[0].LocationID)
}

func TestPlanAllocation_SplitsAcrossLocations(t *testing.T) {
	lines := []AllocationLine{{LineItemID: "l1", VariantID: "v1", Quantity: 5}}
	locations := []*invmodel.StockLocation{
		location("main", true),
		location("overflow", false),
	}
	items := []*invmodel.StockItem{
		stockItem("si1", "v1", "main", 3, 0),
		stockItem("si2", "v1", "overflow", 4, 0),
	}

	plans, err := planAllocation(lines, locations, items)

	require.NoError(t, err)
	require.Len(t, plans, 2)

	total := 0
	for _, plan := range plans {
		for _, pl := range plan.Lines {
			total += pl.OnHand
		}
	}
	assert.Equal(t, 5, total)
}

func TestPlanAllocation_ReservedStockIsUnavailable(t *testing.T) {
	lines := []AllocationLine{{LineItemID: "l1", VariantID: "v1", Quantity: 2}}
	locations := []*invmodel.StockLocation{location("main", true)}
	items := []*invmodel.StockItem{stockItem("si1", "v1", "main", 2, 1)}

	_, err := planAllocation(lines, locations, items)

	require.Error(t, err)
}

func TestPlanAllocation_BackordersWithinLimit(t *testing.T) {
	lines := []AllocationLine{{LineItemID: "l1", VariantID: "v1", Quantity: 3}}
	locations := []*invmodel.StockLocation{location("main", true)}
	item := stockItem("si1", "v1", "main", 1, 0)
	item.Backorderable = true
	item.BackorderLimit = 5

	plans, err := planAllocation(lines, locations, []*invmodel.StockItem{item})

	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Len(t, plans[0].Lines, 1)
	assert.Equal(t, 1, plans[0].Lines[0].OnHand)
	assert.Equal(t, 2, plans[0].Lines[0].Backordered)
}

func TestPlanAllocation_OutOfStockWhenNotBackorderable(t *testing.T) {
	lines := []AllocationLine{{LineItemID: "l1", VariantID: "v1", Quantity: 2}}
	locations := []*invmodel.StockLocation{location("main", true)}
	items := []*invmodel.StockItem{stockItem("si1", "v1", "main", 1, 0)}

	_, err := planAllocation(lines, locations, items)

	require.Error(t, err)
}

func TestPlanAllocation_BackorderLimitExceededFails(t *testing.T) {
	lines := []AllocationLine{{LineItemID: "l1", VariantID: "v1", Quantity: 10}}
	locations := []*invmodel.StockLocation{location("main", true)}
	item := stockItem("si1", "v1", "main", 1, 0)
	item.Backorderable = true
	item.BackorderLimit = 2

	_, err := planAllocation(lines, locations, []*invmodel.StockItem{item})

	require.Error(t, err)
}
