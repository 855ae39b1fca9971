package errors

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/samber/oops"
	"cartflow/pkg/logger"
	"cartflow/pkg/utils/response"
	appValidator "cartflow/pkg/validator"
	"net/http"
	"strings"
)

type OopsErrorHandler struct {
}

func NewOppsHandler() *OopsErrorHandler {
	return &OopsErrorHandler{}
}

func (h *OopsErrorHandler) Handle(err error, c echo.Context) error {
	if c.Response().Committed {
		return nil
	}
	code := http.StatusInternalServerError

	//// Handle Echo HTTP errors
	//var he *echo.HTTPError
	//if errors.As(err, &he) {
	//	code = he.Code
	//	message := fmt.Sprintf("%v", he.Message)
	//}

	// Handle validation errors
	if validationErr := appValidator.GetValidationError(err); validationErr != nil {
		code = http.StatusBadRequest
		logger.Warnf("Validation error: %v", err)
		response.Error(c, code, err)
		return nil
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		code = mapErrorCodeToHTTP(oopsErr.Code())
		instance := logger.GetInstance()
		instance.Logger.
			Error().Stack().Err(err).Msg(err.Error())

	} else {
		// Non-oops errors
		logger.Errorf("Error: %v", err)
	}

	response.Error(c, code, err)
	return nil
}

func mapErrorCodeToHTTP(code interface{}) int {
	codeStr := fmt.Sprintf("%v", code)

	switch codeStr {
	case ErrCodeUserExists:
		return http.StatusConflict // 409
	case ErrCodeInvalidCredentials:
		return http.StatusUnauthorized // 401
	case ErrCodeUserNotFound:
		return http.StatusNotFound // 404
	case ErrCodeInvalidToken:
		return http.StatusUnauthorized // 401
	case ErrCodeValidation:
		return http.StatusBadRequest // 400
	case ErrCodeDatabase:
		return http.StatusInternalServerError // 500
	}

	// The closed taxonomy: the commerce-domain codes (Order.*,
	// LineItem.*, Promotion.*, Stock.*, Shipment.*, Payment.*) end in one
	// of these category suffixes, so new domain codes never need a case
	// added here. PAYMENT_IDEMPOTENCY_REPLAY has no suffix and falls to
	// the default.
	switch {
	case strings.HasSuffix(codeStr, CategoryValidation):
		return http.StatusBadRequest
	case strings.HasSuffix(codeStr, CategoryNotFound):
		return http.StatusNotFound
	case strings.HasSuffix(codeStr, CategoryStateConflict):
		return http.StatusConflict
	case strings.HasSuffix(codeStr, CategoryConcurrencyConflict):
		return http.StatusConflict
	case strings.HasSuffix(codeStr, CategoryBusinessRule):
		return http.StatusUnprocessableEntity
	case strings.HasSuffix(codeStr, CategoryExternal):
		return http.StatusBadGateway
	case strings.HasSuffix(codeStr, CategoryInternal):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError // 500
	}
}
