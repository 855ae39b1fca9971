// Package dto carries the inbound command shapes for the order surface.
// Validation tags run at the boundary, before any transaction opens.
package dto

type CreateOrderRequest struct {
	UserID          *string `json:"user_id,omitempty"`
	AdhocCustomerID *string `json:"adhoc_customer_id,omitempty"`
	Currency        string  `json:"currency" validate:"omitempty,len=3,uppercase"`
	Email           string  `json:"email" validate:"omitempty,email"`
}

type AddLineItemRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type SetEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AddressRequest struct {
	Name       string `json:"name"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country" validate:"required,len=2,uppercase"`
	Phone      string `json:"phone"`
}

type SelectShippingMethodRequest struct {
	ShippingMethodID string `json:"shipping_method_id" validate:"required"`
}

type AssociateRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type ShipRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required"`
}
