package middlewares

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cartflow/config"
	httpConfig "cartflow/config/http"
	"cartflow/pkg/logger"
	appValidator "cartflow/pkg/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func Init(e *echo.Echo, mainConfig *config.Config) {
	configLog := mainConfig.Log()
	if configLog.RequestIDConfig.Driver == "builtin" {
		e.Use(middleware.RequestID())
	} else {
		e.Use(AppRequestID())
	}
	if configLog.RequestLogging.Enabled {
		switch configLog.RequestLogging.Driver {
		case "builtin":
			e.Use(middleware.Logger())
		case "internal":
			e.Use(Logger(mainConfig))
		default:
			// no request logging
		}
	}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogLevel:          log.ERROR,
		DisablePrintStack: !e.Debug,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Errorf("PANIC RECOVER: %v, stack trace: %s", err, stack)
			return nil
		},
		DisableErrorHandler: true,
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.Contains(c.Request().URL.Path, "health")
		},
	}))
	e.Use(middleware.Secure())
	e.Use(AppRequestTimeOut(mainConfig.Http()))
	e.Use(Cors(&mainConfig.Http().Cors))
	e.Use(copyRequestID)
	e.Use(RequestContextMiddleware())

	if err := setupValidator(e, *mainConfig.Validator()); err != nil {
		logger.Fatalf("failed to initialize validator: %v", err)
	}
}

func copyRequestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = c.Response().Header().Get(echo.HeaderXRequestID)
		}
		ctx := context.WithValue(c.Request().Context(), echo.HeaderXRequestID, requestID)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func AppRequestTimeOut(configHttp *httpConfig.Config) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(configHttp.Timeout) * time.Second,
	})
}

// setupValidator creates and configures the command-DTO validator.
func setupValidator(e *echo.Echo, config appValidator.Config) error {
	v, err := appValidator.NewValidator(config)
	if err != nil {
		return fmt.Errorf("failed to create validator: %w", err)
	}

	e.Validator = NewValidatorMiddleware(v)

	logger.Debugf("validator initialized")
	return nil
}
