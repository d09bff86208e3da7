package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/pkg/tokens"
)

func setUserContext(c echo.Context, claims *tokens.Claims) {
	c.Set(claimsKey, claims)
	c.Set(userIDKey, claims.UserID)
	c.Set(roleKey, claims.Role)
}

// ClaimsFrom returns the verified claims stored by RequireAuth or RequireAdmin.
func ClaimsFrom(c echo.Context) (*tokens.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*tokens.Claims)
	return claims, ok && claims != nil
}

func UserIDFrom(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(roleKey).(string)
	return role == RoleAdmin
}
