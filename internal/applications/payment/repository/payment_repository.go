// Package repository is the Bun-backed persistence layer for payments,
// payment methods, and gateway configurations. It also answers the
// order aggregate's payment-coverage queries.
package repository

import (
	"context"

	"github.com/uptrace/bun"

	ordersvc "cartflow/internal/applications/order/service"
	"cartflow/internal/applications/payment/model"
	corebun "cartflow/internal/infra/database/bun"
)

type PaymentRepository interface {
	Create(ctx context.Context, db bun.IDB, payment *model.Payment) error
	Update(ctx context.Context, db bun.IDB, payment *model.Payment) error
	FindByID(ctx context.Context, db bun.IDB, id string) (*model.Payment, error)
	FindByOrder(ctx context.Context, db bun.IDB, orderID string) ([]*model.Payment, error)

	FindMethod(ctx context.Context, db bun.IDB, id string) (*model.PaymentMethod, error)
	FindGatewayConfiguration(ctx context.Context, db bun.IDB, id string) (*model.GatewayConfiguration, error)

	CoverageFor(ctx context.Context, db bun.IDB, orderID string) (*ordersvc.PaymentCoverage, error)
}

type paymentRepository struct {
	*corebun.BaseRepository[model.Payment]
}

func NewPaymentRepository(db *bun.DB) PaymentRepository {
	return &paymentRepository{BaseRepository: corebun.NewRepository(db, &model.Payment{})}
}

func (r *paymentRepository) Create(ctx context.Context, db bun.IDB, payment *model.Payment) error {
	_, err := db.NewInsert().Model(payment).Exec(ctx)
	return err
}

func (r *paymentRepository) Update(ctx context.Context, db bun.IDB, payment *model.Payment) error {
	res, err := db.NewUpdate().Model(payment).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return corebun.ErrConcurrencyConflict
	}
	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, db bun.IDB, id string) (*model.Payment, error) {
	payment := new(model.Payment)
	err := db.NewSelect().Model(payment).Where("p.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepository) FindByOrder(ctx context.Context, db bun.IDB, orderID string) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := db.NewSelect().Model(&payments).
		Where("p.order_id = ?", orderID).
		Order("p.created_at ASC").
		Scan(ctx)
	return payments, err
}

func (r *paymentRepository) FindMethod(ctx context.Context, db bun.IDB, id string) (*model.PaymentMethod, error) {
	method := new(model.PaymentMethod)
	err := db.NewSelect().Model(method).Where("pm.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return method, nil
}

func (r *paymentRepository) FindGatewayConfiguration(ctx context.Context, db bun.IDB, id string) (*model.GatewayConfiguration, error) {
	configuration := new(model.GatewayConfiguration)
	err := db.NewSelect().Model(configuration).Where("gc.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return configuration, nil
}

// CoverageFor sums the order's payments into the three figures the
// checkout guards need.
func (r *paymentRepository) CoverageFor(ctx context.Context, db bun.IDB, orderID string) (*ordersvc.PaymentCoverage, error) {
	payments, err := r.FindByOrder(ctx, db, orderID)
	if err != nil {
		return nil, err
	}

	coverage := &ordersvc.PaymentCoverage{}
	for _, payment := range payments {
		switch payment.State {
		case model.StateAuthorized:
			coverage.AuthorizedOrCompleted += payment.Amount
		case model.StateCompleted:
			coverage.AuthorizedOrCompleted += payment.Amount
			coverage.Completed += payment.Amount
		}
		coverage.NetCaptured += payment.NetCaptured()
	}
	return coverage, nil
}
