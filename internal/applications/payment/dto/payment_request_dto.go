// Package dto carries the inbound command shapes for the payment
// surface.
package dto

type CreatePaymentRequest struct {
	OrderID         string `json:"order_id" validate:"required"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
	Amount          int64  `json:"amount" validate:"required,gt=0"`
}

type RefundRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"required"`
}
