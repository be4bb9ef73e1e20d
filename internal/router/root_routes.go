package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/handler"
	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/model"
)

// RegisterRoot registers the administrator endpoints under /v1/root.
// They require the root_token cookie; agent sessions are rejected.
func RegisterRoot(e *echo.Echo, agents *handler.AgentHandler, reservations *handler.ReservationHandler,
	secret string, revoked middleware.RevocationChecker) {
	g := e.Group(
		"/v1/root",
		middleware.CookieAuth(middleware.RootScheme(secret), revoked),
		middleware.RequireRole(model.RoleRoot),
	)
	g.POST("/agents", agents.Create)
	g.GET("/agents", agents.List)
	g.DELETE("/agents/:id", agents.Delete)

	// Manual payment confirmation, for payments received outside the broker.
	g.POST("/reservations/:id/pay", reservations.MarkPaid)
}
