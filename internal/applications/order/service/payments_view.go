package service

import (
	"context"

	"github.com/uptrace/bun"
)

// PaymentCoverage summarizes an order's payments for checkout guards.
// All amounts are minor units in the order's currency.
type PaymentCoverage struct {
	// AuthorizedOrCompleted is the sum over payments currently in the
	// authorized or completed states.
	AuthorizedOrCompleted int64
	// Completed is the sum over completed payments only.
	Completed int64
	// NetCaptured is completed amounts minus what has been refunded;
	// cancellation requires it to be zero.
	NetCaptured int64
}

// PaymentsView is the order aggregate's read-only window into payments,
// implemented by the payment repository and injected at wiring time.
type PaymentsView interface {
	CoverageFor(ctx context.Context, db bun.IDB, orderID string) (*PaymentCoverage, error)
}
