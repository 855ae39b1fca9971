package middlewares

import (
	"net/http"

	httpConfig "cartflow/config/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func GetCorsConfig(cors *httpConfig.CorsConfig) middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins: cors.AllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}
}

func Cors(cors *httpConfig.CorsConfig) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(GetCorsConfig(cors))
}
