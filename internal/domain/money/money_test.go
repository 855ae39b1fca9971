package money_test

import (
	"math/big"
	"testing"

	"cartflow/internal/domain/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	t.Run("same currency sums amounts", func(t *testing.T) {
		a := money.New(1000, "USD")
		b := money.New(250, "USD")

		sum, err := a.Add(b)

		require.NoError(t, err)
		assert.Equal(t, int64(1250), sum.Amount)
		assert.Equal(t, "USD", sum.Currency)
	})

	t.Run("mismatched currency fails", func(t *testing.T) {
		a := money.New(1000, "USD")
		b := money.New(1000, "EUR")

		_, err := a.Add(b)

		require.Error(t, err)
		var mismatch *money.CurrencyMismatch
		assert.ErrorAs(t, err, &mismatch)
	})
}

func TestSub(t *testing.T) {
	a := money.New(1000, "USD")
	b := money.New(400, "USD")

	diff, err := a.Sub(b)

	require.NoError(t, err)
	assert.Equal(t, int64(600), diff.Amount)
}

func TestMultiplyInt(t *testing.T) {
	unit := money.New(1999, "USD")

	total := unit.MultiplyInt(2)

	assert.Equal(t, int64(3998), total.Amount)
}

func TestMultiplyRat_BankersRounding(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		rat    *big.Rat
		want   int64
	}{
		{"exact half rounds to even (down)", 25, big.NewRat(1, 2), 12},
		{"exact half rounds to even (up)", 15, big.NewRat(1, 2), 8},
		{"non-half rounds normally down", 10001, money.Percent(20), 2000},
		{"cap 20pct of 10000", 10000, money.Percent(20), 2000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := money.New(tc.amount, "USD")
			got := m.MultiplyRat(tc.rat)
			assert.Equal(t, tc.want, got.Amount)
		})
	}
}

func TestAllocateLargestRemainder(t *testing.T) {
	t.Run("reconciles to the exact total", func(t *testing.T) {
		shares := money.AllocateLargestRemainder(1500, []int64{3333, 3333, 3334})

		var sum int64
		for _, s := range shares {
			sum += s
		}
		assert.Equal(t, int64(1500), sum)
	})

	t.Run("zero weights yields zero shares", func(t *testing.T) {
		shares := money.AllocateLargestRemainder(1500, []int64{0, 0})
		assert.Equal(t, []int64{0, 0}, shares)
	})
}

func TestSum(t *testing.T) {
	total, err := money.Sum("USD", money.New(100, "USD"), money.New(200, "USD"), money.New(50, "USD"))

	require.NoError(t, err)
	assert.Equal(t, int64(350), total.Amount)
}

func TestGreaterThan(t *testing.T) {
	a := money.New(500, "USD")
	b := money.New(200, "USD")

	gt, err := a.GreaterThan(b)

	require.NoError(t, err)
	assert.True(t, gt)
}
