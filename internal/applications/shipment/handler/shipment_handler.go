// Package handler adapts the shipment commands onto HTTP.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	orderdto "cartflow/internal/applications/order/dto"
	"cartflow/internal/applications/shipment/service"
	"cartflow/pkg/utils/response"
)

type ShipmentHandler struct {
	service service.ShipmentService
}

func NewShipmentHandler(service service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

func (h *ShipmentHandler) Ship(c echo.Context) error {
	var req orderdto.ShipRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	shipment, err := h.service.Ship(c.Request().Context(), c.Param("id"), req.TrackingNumber)
	if err != nil {
		return err
	}
	return response.Success(c, shipment)
}

func (h *ShipmentHandler) MarkDelivered(c echo.Context) error {
	shipment, err := h.service.MarkDelivered(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, shipment)
}

func (h *ShipmentHandler) Cancel(c echo.Context) error {
	var req orderdto.CancelRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	shipment, err := h.service.Cancel(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return err
	}
	return response.Success(c, shipment)
}

func (h *ShipmentHandler) RegisterRoutes(serviceName string, e *echo.Echo) {
	group := e.Group("/" + serviceName + "/api/shipments")

	group.POST("/:id/ship", h.Ship)
	group.POST("/:id/deliver", h.MarkDelivered)
	group.POST("/:id/cancel", h.Cancel)
}
