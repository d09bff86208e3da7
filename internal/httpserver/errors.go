package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/transport"
)

// ErrorHandler renders every error as {"success": false, "message": ...}.
// Validation failures carry the rejected fields.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"
	var fields []service.FieldError

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if code < http.StatusInternalServerError {
			msg = fmt.Sprint(he.Message)
		}
		var ve *service.ValidationError
		if he.Internal != nil && errors.As(he.Internal, &ve) {
			fields = ve.Fields
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, transport.ErrorResponse{Success: false, Message: msg, Errors: fields})
}

// serviceError maps a service error to an HTTP error and logs it.
func serviceError(l *slog.Logger, event string, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		l.Warn(event, "status", 400, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation failed").SetInternal(ve)
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", service.Message(err))
		return echo.NewHTTPError(http.StatusBadRequest, service.Message(err))
	case errors.Is(err, service.ErrUnauthorized):
		l.Warn(event, "status", 401, "reason", service.Message(err))
		return echo.NewHTTPError(http.StatusUnauthorized, service.Message(err))
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", 403, "reason", service.Message(err))
		return echo.NewHTTPError(http.StatusForbidden, service.Message(err))
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", service.Message(err))
		return echo.NewHTTPError(http.StatusNotFound, service.Message(err))
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", service.Message(err))
		return echo.NewHTTPError(http.StatusConflict, service.Message(err))
	default:
		l.Error(event, "status", 500, "reason", "unhandled error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}

func invalidBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}
