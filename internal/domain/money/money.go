// Package money implements currency-safe minor-unit arithmetic.
package money

import (
	"fmt"
	"math/big"
	"strconv"
)

// Money is a signed amount in minor units (cents) paired with a 3-letter
// ISO 4217 currency code. Money is a value type: every operation returns
// a new Money rather than mutating the receiver.
type Money struct {
	Amount   int64
	Currency string
}

// Zero returns a zero-value Money in the given currency.
func Zero(currency string) Money {
	return Money{Amount: 0, Currency: currency}
}

// New builds a Money from minor units and a currency code.
func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// CurrencyMismatch is returned whenever two Money values with different
// currencies are combined.
type CurrencyMismatch struct {
	Left  string
	Right string
}

func (e *CurrencyMismatch) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

func (m Money) sameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return &CurrencyMismatch{Left: m.Currency, Right: other.Currency}
	}
	return nil
}

// Add returns m + other. Fails if currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub returns m - other. Fails if currencies differ.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Neg returns the additive inverse of m.
func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// MultiplyInt returns m * n, exact (no rounding needed for integer
// multiplication of an already-integral minor unit).
func (m Money) MultiplyInt(n int64) Money {
	return Money{Amount: m.Amount * n, Currency: m.Currency}
}

// MultiplyRat returns m * rat, rounded to the nearest minor unit using
// banker's rounding (round-half-to-even), used for percentage discounts.
func (m Money) MultiplyRat(rat *big.Rat) Money {
	product := new(big.Rat).Mul(big.NewRat(m.Amount, 1), rat)
	return Money{Amount: roundHalfToEven(product), Currency: m.Currency}
}

// roundHalfToEven rounds a rational number to the nearest integer,
// breaking exact .5 ties toward the even neighbor (banker's rounding).
func roundHalfToEven(r *big.Rat) int64 {
	num := r.Num()
	den := r.Denom()

	quotient := new(big.Int)
	remainder := new(big.Int)
	quotient.QuoRem(num, den, remainder)

	if remainder.Sign() == 0 {
		return quotient.Int64()
	}

	// Compare 2*|remainder| against |den| to find which side of .5 we're on.
	twiceRemainder := new(big.Int).Mul(remainder, big.NewInt(2))
	twiceRemainder.Abs(twiceRemainder)
	absDen := new(big.Int).Abs(den)

	cmp := twiceRemainder.Cmp(absDen)
	roundAwayFromZero := func() {
		if (num.Sign() < 0) != (den.Sign() < 0) {
			quotient.Sub(quotient, big.NewInt(1))
		} else {
			quotient.Add(quotient, big.NewInt(1))
		}
	}

	switch {
	case cmp < 0:
		// remainder is less than half, round toward zero (quotient unchanged).
	case cmp > 0:
		roundAwayFromZero()
	default:
		// Exactly half: round to even.
		if quotient.Bit(0) == 1 {
			roundAwayFromZero()
		}
	}

	return quotient.Int64()
}

// Percent builds a big.Rat representing pct percent, e.g. Percent(20) ==
// 20/100.
func Percent(pct float64) *big.Rat {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(pct, 'f', -1, 64))
	if !ok {
		return new(big.Rat).SetFloat64(pct / 100)
	}
	return r.Quo(r, big.NewRat(100, 1))
}

// Min returns whichever of m, other has the smaller amount. Fails if
// currencies differ.
func Min(m, other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	if m.Amount <= other.Amount {
		return m, nil
	}
	return other, nil
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// IsNegative reports whether the amount is less than zero.
func (m Money) IsNegative() bool {
	return m.Amount < 0
}

// GreaterThan reports whether m > other. Fails if currencies differ.
func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.Amount > other.Amount, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}

// Sum adds a slice of Money together, starting from Zero(currency).
// Fails at the first mismatched currency.
func Sum(currency string, amounts ...Money) (Money, error) {
	total := Zero(currency)
	var err error
	for _, a := range amounts {
		total, err = total.Add(a)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// AllocateLargestRemainder splits total into len(weights) parts
// proportional to weights, reconciling minor-unit rounding error by
// handing the leftover units to the parts with the largest fractional
// remainder first. Used by the promotion engine's max-discount cap.
func AllocateLargestRemainder(total int64, weights []int64) []int64 {
	n := len(weights)
	shares := make([]int64, n)
	if n == 0 || total == 0 {
		return shares
	}

	var weightSum int64
	for _, w := range weights {
		weightSum += w
	}
	if weightSum == 0 {
		return shares
	}

	type remainder struct {
		idx int
		rem *big.Int
	}
	remainders := make([]remainder, n)
	var allocated int64

	for i, w := range weights {
		num := new(big.Int).Mul(big.NewInt(total), big.NewInt(w))
		den := big.NewInt(weightSum)
		q, r := new(big.Int).QuoRem(num, den, new(big.Int))
		shares[i] = q.Int64()
		allocated += shares[i]
		remainders[i] = remainder{idx: i, rem: r}
	}

	leftover := total - allocated
	// Sort indices by remainder descending (stable insertion sort — n is
	// always small: one entry per adjustment row under a single promotion).
	for i := 1; i < n; i++ {
		j := i
		for j > 0 && remainders[j-1].rem.Cmp(remainders[j].rem) < 0 {
			remainders[j-1], remainders[j] = remainders[j], remainders[j-1]
			j--
		}
	}

	for i := int64(0); i < leftover; i++ {
		shares[remainders[i%int64(n)].idx]++
	}

	return shares
}
