// Package handler adapts the order command surface onto HTTP. It binds
// and validates the inbound DTO, calls the service, and renders the
// typed result or structured error; no business logic lives here.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cartflow/internal/applications/order/dto"
	"cartflow/internal/applications/order/model"
	"cartflow/internal/applications/order/service"
	"cartflow/pkg/utils/response"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) Create(c echo.Context) error {
	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.Create(c.Request().Context(), service.CreateOrderInput{
		UserID:          req.UserID,
		AdhocCustomerID: req.AdhocCustomerID,
		Currency:        req.Currency,
		Email:           req.Email,
	})
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.service.Find(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) AddLineItem(c echo.Context) error {
	var req dto.AddLineItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.AddLineItem(c.Request().Context(), c.Param("id"), req.VariantID, req.Quantity)
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) SetQuantity(c echo.Context) error {
	var req dto.SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.SetQuantity(c.Request().Context(), c.Param("id"), c.Param("line_id"), req.Quantity)
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) RemoveLineItem(c echo.Context) error {
	order, err := h.service.RemoveLineItem(c.Request().Context(), c.Param("id"), c.Param("line_id"))
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) Empty(c echo.Context) error {
	order, err := h.service.Empty(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) SetEmail(c echo.Context) error {
	var req dto.SetEmailRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.SetEmail(c.Request().Context(), c.Param("id"), req.Email)
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) SetShippingAddress(c echo.Context) error {
	var req dto.AddressRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.SetShippingAddress(c.Request().Context(), c.Param("id"), model.Address{
		Name:       req.Name,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		Province:   req.Province,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
	})
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) SelectShippingMethod(c echo.Context) error {
	var req dto.SelectShippingMethodRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.SelectShippingMethod(c.Request().Context(), c.Param("id"), req.ShippingMethodID)
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) Associate(c echo.Context) error {
	var req dto.AssociateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.Associate(c.Request().Context(), c.Param("id"), req.UserID)
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) ApplyCoupon(c echo.Context) error {
	var req dto.ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.ApplyCoupon(c.Request().Context(), c.Param("id"), req.Code)
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) RemoveCoupon(c echo.Context) error {
	order, err := h.service.RemoveCoupon(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) Advance(c echo.Context) error {
	order, err := h.service.Advance(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) Complete(c echo.Context) error {
	order, err := h.service.Complete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	var req dto.CancelRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.Cancel(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return err
	}
	return response.Success(c, order)
}

func (h *OrderHandler) RegisterRoutes(serviceName string, e *echo.Echo) {
	group := e.Group("/" + serviceName + "/api/orders")

	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.POST("/:id/line-items", h.AddLineItem)
	group.PATCH("/:id/line-items/:line_id", h.SetQuantity)
	group.DELETE("/:id/line-items/:line_id", h.RemoveLineItem)
	group.POST("/:id/empty", h.Empty)
	group.PUT("/:id/email", h.SetEmail)
	group.PUT("/:id/address", h.SetShippingAddress)
	group.PUT("/:id/shipping-method", h.SelectShippingMethod)
	group.POST("/:id/associate", h.Associate)
	group.POST("/:id/coupon", h.ApplyCoupon)
	group.DELETE("/:id/coupon", h.RemoveCoupon)
	group.POST("/:id/advance", h.Advance)
	group.POST("/:id/complete", h.Complete)
	group.POST("/:id/cancel", h.Cancel)
}
