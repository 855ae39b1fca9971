package server

import (
	"encoding/json"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"

	"cartflow/config"
	inventoryhandler "cartflow/internal/applications/inventory/handler"
	inventoryservice "cartflow/internal/applications/inventory/service"
	orderhandler "cartflow/internal/applications/order/handler"
	orderservice "cartflow/internal/applications/order/service"
	paymenthandler "cartflow/internal/applications/payment/handler"
	paymentservice "cartflow/internal/applications/payment/service"
	shipmenthandler "cartflow/internal/applications/shipment/handler"
	shipmentservice "cartflow/internal/applications/shipment/service"
)

func SetupRestRoutes(injector do.Injector, e *echo.Echo, cfg *config.Config) {
	serviceName := cfg.App.Name

	orders := orderhandler.NewOrderHandler(do.MustInvoke[*orderservice.OrderServiceImpl](injector))
	orders.RegisterRoutes(serviceName, e)

	shipments := shipmenthandler.NewShipmentHandler(do.MustInvoke[*shipmentservice.ShipmentServiceImpl](injector))
	shipments.RegisterRoutes(serviceName, e)

	payments := paymenthandler.NewPaymentHandler(do.MustInvoke[*paymentservice.PaymentServiceImpl](injector))
	payments.RegisterRoutes(serviceName, e)

	stock := inventoryhandler.NewStockHandler(do.MustInvoke[*inventoryservice.StockServiceImpl](injector))
	stock.RegisterRoutes(serviceName, e)

	// Please register new domain routes before this line
	if cfg.App.Env == "local" {
		generateRouteList(e)
	}
}

func generateRouteList(e *echo.Echo) {
	data, err := json.MarshalIndent(e.Routes(), "", "  ")
	if err != nil {
		panic(err)
	}
	os.WriteFile("routes.json", data, 0644)
}
