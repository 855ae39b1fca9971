// Package dto carries the inbound command shapes for the stock
// operations surface.
package dto

type AdjustStockRequest struct {
	Quantity int    `json:"quantity" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
}

type TransferStockRequest struct {
	VariantID     string `json:"variant_id" validate:"required"`
	SrcLocationID string `json:"src_location_id" validate:"required"`
	DstLocationID string `json:"dst_location_id" validate:"required,nefield=SrcLocationID"`
	Quantity      int    `json:"quantity" validate:"required,gt=0"`
}

type ReceiveStockRequest struct {
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	TransferID string `json:"transfer_id" validate:"required"`
}
