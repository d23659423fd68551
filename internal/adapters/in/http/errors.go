package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// writeError maps a use-case error onto the HTTP surface. State transitions
// that lost a race or hit a status precondition are conflicts, never
// retried server-side.
func writeError(ctx echo.Context, err error) error {
	return ctx.JSON(statusOf(err), ErrorResponse{
		Code:    statusOf(err),
		Message: err.Error(),
	})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, commands.ErrOrderNotAssignedToDriver):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConcurrentUpdate),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrDriverAlreadyAssigned):
		return http.StatusConflict
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
