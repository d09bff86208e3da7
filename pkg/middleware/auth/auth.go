package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/pkg/logging"
	"github.com/Skotchmaster/inventory/pkg/tokens"
)

const (
	RoleAdmin = "admin"

	claimsKey = "claims"
	userIDKey = "user_id"
	roleKey   = "role"
)

// ActiveChecker reports whether the account behind a token still exists and is active.
type ActiveChecker interface {
	IsUserActive(ctx context.Context, id string) (bool, error)
}

type Authenticator struct {
	Tokens *tokens.Issuer
	// Users is optional. When nil, a valid signature is enough.
	Users ActiveChecker
}

func NewAuthenticator(issuer *tokens.Issuer, users ActiveChecker) *Authenticator {
	return &Authenticator{Tokens: issuer, Users: users}
}

type ValidatorFunc func(claims *tokens.Claims) error

func (a *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return a.requireAuthWithValidator(next, nil)
}

func (a *Authenticator) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return a.requireAuthWithValidator(next, func(claims *tokens.Claims) error {
		if claims.Role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (a *Authenticator) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		raw, ok := tokens.ExtractFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			l.Warn("auth_failed", "status", 401, "reason", "missing bearer token")
			return echo.NewHTTPError(http.StatusUnauthorized, "access token required")
		}

		claims, err := a.Tokens.Verify(raw)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "token rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		if a.Users != nil {
			active, err := a.Users.IsUserActive(ctx, claims.UserID)
			if err != nil {
				l.Error("auth_failed", "status", 500, "reason", "cannot check account", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "cannot verify account")
			}
			if !active {
				l.Warn("auth_failed", "status", 401, "reason", "account inactive or missing", "user_id", claims.UserID)
				return echo.NewHTTPError(http.StatusUnauthorized, "account deactivated or removed")
			}
		}

		if validator != nil {
			if err := validator(claims); err != nil {
				l.Warn("auth_failed", "status", 403, "reason", "role not allowed", "user_id", claims.UserID, "role", claims.Role)
				return err
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}
