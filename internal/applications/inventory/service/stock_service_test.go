package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartflow/internal/applications/inventory/model"
)

func TestApplyReserve(t *testing.T) {
	t.Run("reserves within on_hand", func(t *testing.T) {
		item := &model.StockItem{QuantityOnHand: 10, QuantityReserved: 3}

		result, err := applyReserve(item, 5)

		require.NoError(t, err)
		assert.Equal(t, 8, item.QuantityReserved)
		assert.Equal(t, 5, result.Reserved)
		assert.Equal(t, 0, result.Backordered)
	})

	t.Run("overage within backorder limit is backordered", func(t *testing.T) {
		item := &model.StockItem{
			QuantityOnHand: 4,
			Backorderable:  true,
			BackorderLimit: 5,
		}

		result, err := applyReserve(item, 7)

		require.NoError(t, err)
		assert.Equal(t, 7, item.QuantityReserved)
		assert.Equal(t, 3, result.Backordered)
	})

	t.Run("non-backorderable overage fails", func(t *testing.T) {
		item := &model.StockItem{QuantityOnHand: 1}

		_, err := applyReserve(item, 2)

		require.Error(t, err)
		assert.Equal(t, 0, item.QuantityReserved)
	})

	t.Run("overage beyond backorder limit fails", func(t *testing.T) {
		item := &model.StockItem{
			QuantityOnHand: 1,
			Backorderable:  true,
			BackorderLimit: 2,
		}

		_, err := applyReserve(item, 4)

		require.Error(t, err)
		assert.Equal(t, 0, item.QuantityReserved)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		item := &model.StockItem{QuantityOnHand: 10}

		_, err := applyReserve(item, 0)

		require.Error(t, err)
	})
}

func TestApplyRelease(t *testing.T) {
	t.Run("releases reserved units", func(t *testing.T) {
		item := &model.StockItem{QuantityOnHand: 10, QuantityReserved: 4}

		require.NoError(t, applyRelease(item, 4))
		assert.Equal(t, 0, item.QuantityReserved)
	})

	t.Run("release beyond reserved fails", func(t *testing.T) {
		item := &model.StockItem{QuantityOnHand: 10, QuantityReserved: 1}

		err := applyRelease(item, 2)

		require.Error(t, err)
		assert.Equal(t, 1, item.QuantityReserved)
	})
}

func TestCountAvailable(t *testing.T) {
	cases := []struct {
		name string
		item model.StockItem
		want int
	}{
		{"plain", model.StockItem{QuantityOnHand: 10, QuantityReserved: 3}, 7},
		{"fully reserved", model.StockItem{QuantityOnHand: 5, QuantityReserved: 5}, 0},
		{"backorderable adds headroom", model.StockItem{QuantityOnHand: 2, QuantityReserved: 2, Backorderable: true, BackorderLimit: 3}, 3},
		{"reserved above on_hand clamps at zero", model.StockItem{QuantityOnHand: 2, QuantityReserved: 4}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.item.CountAvailable())
		})
	}
}
