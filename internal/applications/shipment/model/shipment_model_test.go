package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cartflow/internal/applications/shipment/model"
)

func TestShipmentTransitions(t *testing.T) {
	allowed := []struct{ from, to model.State }{
		{model.StatePending, model.StateReady},
		{model.StatePending, model.StateCanceled},
		{model.StateReady, model.StateShipped},
		{model.StateReady, model.StateCanceled},
		{model.StateShipped, model.StateDelivered},
	}
	for _, tr := range allowed {
		assert.True(t, model.CanTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct{ from, to model.State }{
		{model.StateShipped, model.StateCanceled},
		{model.StateDelivered, model.StateCanceled},
		{model.StateCanceled, model.StateReady},
		{model.StatePending, model.StateShipped},
	}
	for _, tr := range denied {
		assert.False(t, model.CanTransition(tr.from, tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}

func TestUnitTransitions(t *testing.T) {
	assert.True(t, model.CanTransitionUnit(model.UnitOnHand, model.UnitShipped))
	assert.True(t, model.CanTransitionUnit(model.UnitBackordered, model.UnitOnHand))
	assert.True(t, model.CanTransitionUnit(model.UnitShipped, model.UnitReturned))
	assert.False(t, model.CanTransitionUnit(model.UnitShipped, model.UnitCanceled))
	assert.False(t, model.CanTransitionUnit(model.UnitCanceled, model.UnitOnHand))
}

func TestAllUnitsOnHand(t *testing.T) {
	shipment := &model.Shipment{InventoryUnits: []*model.InventoryUnit{
		{State: model.UnitOnHand},
		{State: model.UnitCanceled},
	}}
	assert.True(t, shipment.AllUnitsOnHand())

	shipment.InventoryUnits = append(shipment.InventoryUnits, &model.InventoryUnit{State: model.UnitBackordered})
	assert.False(t, shipment.AllUnitsOnHand())

	empty := &model.Shipment{}
	assert.False(t, empty.AllUnitsOnHand())
}
