package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/handler"
	"github.com/iliyamo/hotel-management/internal/metrics"
	"github.com/iliyamo/hotel-management/internal/middleware"
)

// RegisterRoutes registers the operational endpoints: liveness,
// readiness and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, m *metrics.Metrics) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// RegisterAuth registers the login, logout and identity endpoints of both
// schemes.  Login is rate limited; logout and me require the matching
// session cookie.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, agentSecret, rootSecret string,
	revoked middleware.RevocationChecker, limiter echo.MiddlewareFunc) {
	agentAuth := middleware.CookieAuth(middleware.AgentScheme(agentSecret), revoked)
	rootAuth := middleware.CookieAuth(middleware.RootScheme(rootSecret), revoked)

	e.POST("/v1/agent/login", a.AgentLogin, limiter)
	e.POST("/v1/agent/logout", a.AgentLogout, agentAuth)
	e.GET("/v1/agent/me", a.Me, agentAuth)

	e.POST("/v1/root/login", a.RootLogin, limiter)
	e.POST("/v1/root/logout", a.RootLogout, rootAuth)
	e.GET("/v1/root/me", a.Me, rootAuth)
}
