package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cartflow/internal/applications/order/model"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to model.State }{
		{model.StateCart, model.StateAddress},
		{model.StateCart, model.StateCanceled},
		{model.StateAddress, model.StateDelivery},
		{model.StateAddress, model.StateCart},
		{model.StateDelivery, model.StatePayment},
		{model.StatePayment, model.StateConfirm},
		{model.StatePayment, model.StateComplete},
		{model.StateConfirm, model.StateComplete},
		{model.StateConfirm, model.StateCanceled},
		{model.StateComplete, model.StateAwaitingReturn},
		{model.StateComplete, model.StateCanceled},
		{model.StateAwaitingReturn, model.StateReturned},
	}
	for _, tr := range allowed {
		assert.True(t, model.CanTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct{ from, to model.State }{
		{model.StateCart, model.StateDelivery},
		{model.StateCart, model.StateComplete},
		{model.StateDelivery, model.StateConfirm},
		{model.StateCanceled, model.StateCart},
		{model.StateReturned, model.StateComplete},
		{model.StateComplete, model.StateCart},
	}
	for _, tr := range denied {
		assert.False(t, model.CanTransition(tr.from, tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}

func TestAddressValid(t *testing.T) {
	assert.False(t, (*model.Address)(nil).Valid())
	assert.False(t, (&model.Address{Line1: "1 Main St"}).Valid())
	assert.True(t, (&model.Address{Line1: "1 Main St", City: "Springfield", Country: "US"}).Valid())
}

func TestItemCount(t *testing.T) {
	order := &model.Order{LineItems: []*model.LineItem{
		{Quantity: 2},
		{Quantity: 3},
	}}
	assert.Equal(t, 5, order.ItemCount())
}

func TestIsTerminal(t *testing.T) {
	for _, state := range []model.State{model.StateComplete, model.StateCanceled, model.StateAwaitingReturn, model.StateReturned} {
		assert.True(t, (&model.Order{State: state}).IsTerminal())
	}
	for _, state := range []model.State{model.StateCart, model.StateAddress, model.StateDelivery, model.StatePayment, model.StateConfirm} {
		assert.False(t, (&model.Order{State: state}).IsTerminal())
	}
}
