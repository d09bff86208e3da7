package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/transport"
	middleware "github.com/Skotchmaster/inventory/pkg/middleware/auth"
	"github.com/Skotchmaster/inventory/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "register_error", err)
	}

	res, err := h.Svc.Register(ctx, req.Input())
	if err != nil {
		return serviceError(l, "register_error", err)
	}

	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "login_error", err)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return serviceError(l, "login_failed", err)
	}

	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.profile")

	user, err := h.Svc.GetProfile(ctx, middleware.UserIDFrom(c))
	if err != nil {
		return serviceError(l, "get_profile_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}
