package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/inventory/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler      *AuthHTTP
	EquipmentHandler *EquipmentHTTP
	HealthHandler    *HealthHTTP
	Auth             *middleware.Authenticator
	// AuthRateLimit guards register and login when set.
	AuthRateLimit  echo.MiddlewareFunc
	MetricsHandler http.Handler
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", d.HealthHandler.Live)
	e.GET("/health/ready", d.HealthHandler.Ready)
	if d.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(d.MetricsHandler))
	}

	api := e.Group("/api")
	api.GET("/health", d.HealthHandler.Health)

	auth := api.Group("/auth")
	var limited []echo.MiddlewareFunc
	if d.AuthRateLimit != nil {
		limited = append(limited, d.AuthRateLimit)
	}
	auth.POST("/register", d.AuthHandler.Register, limited...)
	auth.POST("/login", d.AuthHandler.Login, limited...)
	auth.GET("/profile", d.AuthHandler.Profile, d.Auth.RequireAuth)

	equipment := api.Group("/equipment")

	equipment.GET("", d.EquipmentHandler.List, d.Auth.RequireAuth)
	equipment.GET("/my-equipment", d.EquipmentHandler.Mine, d.Auth.RequireAuth)
	equipment.GET("/search", d.EquipmentHandler.Search, d.Auth.RequireAuth)
	equipment.GET("/:id", d.EquipmentHandler.Get, d.Auth.RequireAuth)

	admin := equipment.Group("", d.Auth.RequireAdmin)
	admin.POST("", d.EquipmentHandler.Create)
	admin.PUT("/:id", d.EquipmentHandler.Update)
	admin.DELETE("/:id", d.EquipmentHandler.Delete)
}
