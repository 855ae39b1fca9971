// Package handler adapts the stock operations onto HTTP for warehouse
// tooling.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cartflow/internal/applications/inventory/dto"
	"cartflow/internal/applications/inventory/service"
	"cartflow/pkg/utils/response"
)

type StockHandler struct {
	service service.StockService
}

func NewStockHandler(service service.StockService) *StockHandler {
	return &StockHandler{service: service}
}

func (h *StockHandler) Adjust(c echo.Context) error {
	var req dto.AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.service.Adjust(c.Request().Context(), c.Param("id"), req.Quantity, req.Reason)
	if err != nil {
		return err
	}
	return response.Success(c, item)
}

func (h *StockHandler) Transfer(c echo.Context) error {
	var req dto.TransferStockRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	transferID, err := h.service.Transfer(c.Request().Context(), req.VariantID, req.SrcLocationID, req.DstLocationID, req.Quantity)
	if err != nil {
		return err
	}
	return response.Success(c, map[string]string{"transfer_id": transferID})
}

func (h *StockHandler) Receive(c echo.Context) error {
	var req dto.ReceiveStockRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.service.Receive(c.Request().Context(), c.Param("id"), req.Quantity, req.TransferID)
	if err != nil {
		return err
	}
	return response.Success(c, item)
}

func (h *StockHandler) RegisterRoutes(serviceName string, e *echo.Echo) {
	group := e.Group("/" + serviceName + "/api/stock-items")

	group.POST("/:id/adjust", h.Adjust)
	group.POST("/:id/receive", h.Receive)
	e.POST("/"+serviceName+"/api/stock-transfers", h.Transfer)
}
