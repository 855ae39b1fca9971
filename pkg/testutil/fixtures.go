// Package testutil provides test fixtures and builders for common test data
package testutil

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Time Fixtures
// ============================================================================

// FixedTime returns a fixed time for consistent testing
var FixedTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// FixedTimePtr returns a pointer to a fixed time
func FixedTimePtr() *time.Time {
	t := FixedTime
	return &t
}

// NowUTC returns current time in UTC (wrapper for test consistency)
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ============================================================================
// ID Generators
// ============================================================================

// RandomUUID generates a random UUID string
func RandomUUID() string {
	return uuid.New().String()
}

// RandomEmail generates a random email address for testing
func RandomEmail() string {
	return "user_" + RandomUUID() + "@example.com"
}

// RandomSKU generates a random SKU for testing
func RandomSKU() string {
	return "SKU-" + uuid.New().String()[:8]
}

// ============================================================================
// Order Fixtures
// ============================================================================

// OrderFixture carries the scalar facts most order tests need without
// dragging in the Bun models.
type OrderFixture struct {
	ID          string
	OrderNumber string
	UserID      string
	Currency    string
	State       string
	GrandTotal  int64
	CreatedAt   time.Time
}

// NewOrderFixture creates a new order fixture with random data
func NewOrderFixture() *OrderFixture {
	return &OrderFixture{
		ID:          RandomUUID(),
		OrderNumber: "R" + uuid.New().String()[:12],
		UserID:      RandomUUID(),
		Currency:    "USD",
		State:       "cart",
		CreatedAt:   FixedTime,
	}
}

// WithCurrency sets the order currency
func (o *OrderFixture) WithCurrency(currency string) *OrderFixture {
	o.Currency = currency
	return o
}

// WithState sets the order state
func (o *OrderFixture) WithState(state string) *OrderFixture {
	o.State = state
	return o
}

// WithGrandTotal sets the grand total in minor units
func (o *OrderFixture) WithGrandTotal(total int64) *OrderFixture {
	o.GrandTotal = total
	return o
}

// ============================================================================
// Stock Fixtures
// ============================================================================

// StockItemFixture describes one (variant, location) counter set.
type StockItemFixture struct {
	ID             string
	VariantID      string
	LocationID     string
	SKU            string
	OnHand         int
	Reserved       int
	Backorderable  bool
	BackorderLimit int
}

// NewStockItemFixture creates a stock item fixture with sane counters
func NewStockItemFixture() *StockItemFixture {
	return &StockItemFixture{
		ID:         RandomUUID(),
		VariantID:  RandomUUID(),
		LocationID: RandomUUID(),
		SKU:        RandomSKU(),
		OnHand:     10,
	}
}

// WithOnHand sets the on-hand counter
func (s *StockItemFixture) WithOnHand(quantity int) *StockItemFixture {
	s.OnHand = quantity
	return s
}

// WithBackorder enables backordering up to limit
func (s *StockItemFixture) WithBackorder(limit int) *StockItemFixture {
	s.Backorderable = true
	s.BackorderLimit = limit
	return s
}
