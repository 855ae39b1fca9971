package eventbus_test

import (
	"context"
	"errors"
	"testing"

	"cartflow/internal/eventbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrain_DispatchesInEmissionOrder(t *testing.T) {
	bus := eventbus.New()
	var observed []eventbus.EventType

	bus.Subscribe(eventbus.LineItemAdded, func(ctx context.Context, e eventbus.Event) error {
		observed = append(observed, e.Type)
		return nil
	})
	bus.Subscribe(eventbus.OrderStateChanged, func(ctx context.Context, e eventbus.Event) error {
		observed = append(observed, e.Type)
		return nil
	})

	uow := bus.NewUnitOfWork()
	uow.Emit(eventbus.Event{Type: eventbus.LineItemAdded, OrderID: "o1"})
	uow.Emit(eventbus.Event{Type: eventbus.OrderStateChanged, OrderID: "o1"})

	require.NoError(t, uow.Drain(context.Background()))
	assert.Equal(t, []eventbus.EventType{eventbus.LineItemAdded, eventbus.OrderStateChanged}, observed)
	assert.Empty(t, uow.Events())
}

func TestDrain_HandlerErrorAbortsDispatch(t *testing.T) {
	bus := eventbus.New()
	var secondCalled bool

	bus.Subscribe(eventbus.LineItemAdded, func(ctx context.Context, e eventbus.Event) error {
		return errors.New("boom")
	})
	bus.Subscribe(eventbus.OrderStateChanged, func(ctx context.Context, e eventbus.Event) error {
		secondCalled = true
		return nil
	})

	uow := bus.NewUnitOfWork()
	uow.Emit(eventbus.Event{Type: eventbus.LineItemAdded})
	uow.Emit(eventbus.Event{Type: eventbus.OrderStateChanged})

	err := uow.Drain(context.Background())

	require.Error(t, err)
	assert.False(t, secondCalled)
}

func TestDrain_NoSubscribersIsNoop(t *testing.T) {
	bus := eventbus.New()
	uow := bus.NewUnitOfWork()
	uow.Emit(eventbus.Event{Type: eventbus.StockMoved})

	assert.NoError(t, uow.Drain(context.Background()))
}
