package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cartflow/pkg/utils/response"
)

// ErrorHandler is one link in the edge error-mapping chain. Returning
// nil means the error was handled and the chain stops.
type ErrorHandler interface {
	Handle(err error, ctx echo.Context) error
}

type Chain []ErrorHandler

func NewChain(handlers ...ErrorHandler) Chain {
	return handlers
}

func (c Chain) Handle(err error, ctx echo.Context) error {
	for _, h := range c {
		if h.Handle(err, ctx) == nil {
			return nil
		}
	}
	return err
}

// EchoHandler adapts the chain to echo's HTTPErrorHandler signature.
func (c Chain) EchoHandler(err error, ctx echo.Context) {
	if remaining := c.Handle(err, ctx); remaining != nil {
		NewGenericHandler().Handle(remaining, ctx)
	}
}

// GenericHandler is the chain's terminal link: anything still
// unclassified surfaces as a 500.
type GenericHandler struct {
}

func NewGenericHandler() *GenericHandler {
	return &GenericHandler{}
}

func (g *GenericHandler) Handle(err error, ctx echo.Context) error {
	if !ctx.Response().Committed {
		response.Error(ctx, http.StatusInternalServerError, err)
	}
	return nil
}
