package http

import (
	"errors"
	"net/http"

	"logistics/internal/adapters/in/http/api"
	"logistics/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// fail writes the error response matching err's kind. Unknown errors are
// logged and reported as 500 without detail.
func (s *Server) fail(ctx echo.Context, err error) error {
	var stateErr *errs.InvalidStateError

	switch {
	case errors.As(err, &stateErr):
		return ctx.JSON(http.StatusConflict, api.Error{
			Code:              http.StatusConflict,
			Message:           err.Error(),
			AllowedNextStates: stateErr.Allowed,
		})
	case errors.Is(err, errs.ErrInvalidState), errors.Is(err, errs.ErrVersionIsInvalid):
		return ctx.JSON(http.StatusConflict, api.Error{Code: http.StatusConflict, Message: err.Error()})
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, api.Error{Code: http.StatusNotFound, Message: err.Error()})
	case isValidation(err):
		return badRequest(ctx, err.Error())
	default:
		s.logger.ErrorContext(ctx.Request().Context(), "request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
		return ctx.JSON(http.StatusInternalServerError, api.Error{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}

func isValidation(err error) bool {
	return errors.Is(err, errs.ErrValueIsInvalid) ||
		errors.Is(err, errs.ErrValueIsRequired) ||
		errors.Is(err, errs.ErrValueIsOutOfRange)
}

func badRequest(ctx echo.Context, msg string) error {
	return ctx.JSON(http.StatusBadRequest, api.Error{Code: http.StatusBadRequest, Message: msg})
}
