// Package handler adapts the payment commands and the inbound webhook
// endpoint onto HTTP.
package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"cartflow/internal/applications/payment/dto"
	"cartflow/internal/applications/payment/model"
	"cartflow/internal/applications/payment/service"
	"cartflow/pkg/utils/response"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(service service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Create(c echo.Context) error {
	var req dto.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	payment, err := h.service.Create(c.Request().Context(), req.OrderID, req.PaymentMethodID, req.Amount)
	if err != nil {
		return err
	}
	return response.Success(c, payment)
}

func (h *PaymentHandler) Capture(c echo.Context) error {
	payment, err := h.service.Capture(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, payment)
}

func (h *PaymentHandler) Refund(c echo.Context) error {
	var req dto.RefundRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	payment, err := h.service.Refund(c.Request().Context(), c.Param("id"), req.Amount, req.Reason)
	if err != nil {
		return err
	}
	return response.Success(c, payment)
}

func (h *PaymentHandler) Void(c echo.Context) error {
	payment, err := h.service.Void(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, payment)
}

// Webhook receives a gateway notification directly over HTTP. The raw
// body is passed through untouched so signature validation sees exactly
// the bytes the provider signed.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.Error(c, http.StatusBadRequest, err)
	}
	signature := c.Request().Header.Get("X-Webhook-Signature")

	if err := h.service.ReceiveWebhook(
		c.Request().Context(),
		model.MethodType(c.Param("gateway")),
		payload,
		signature,
	); err != nil {
		return err
	}
	return response.Success(c, map[string]string{"status": "reconciled"})
}

func (h *PaymentHandler) RegisterRoutes(serviceName string, e *echo.Echo) {
	group := e.Group("/" + serviceName + "/api/payments")

	group.POST("", h.Create)
	group.POST("/:id/capture", h.Capture)
	group.POST("/:id/refund", h.Refund)
	group.POST("/:id/void", h.Void)

	e.POST("/"+serviceName+"/api/webhooks/:gateway", h.Webhook)
}
