package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/handler"
	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/model"
)

// AgentHandlers groups the handlers mounted behind the agent cookie.
type AgentHandlers struct {
	Customers    *handler.CustomerHandler
	Rooms        *handler.RoomHandler
	Reservations *handler.ReservationHandler
	Invoices     *handler.InvoiceHandler
	Content      *handler.ContentHandler
}

// RegisterAgent registers the staff back office under /v1.  Every route
// requires a valid agent_token cookie.
func RegisterAgent(e *echo.Echo, h AgentHandlers, secret string, revoked middleware.RevocationChecker) {
	g := e.Group(
		"/v1",
		middleware.CookieAuth(middleware.AgentScheme(secret), revoked),
		middleware.RequireRole(model.RoleAgent),
	)

	// ---- Customers ----
	g.POST("/customers", h.Customers.Create)
	g.GET("/customers", h.Customers.List)
	g.GET("/customers/:id", h.Customers.Get)
	g.PUT("/customers/:id", h.Customers.Update)
	g.DELETE("/customers/:id", h.Customers.Delete)
	g.GET("/customers/:id/reservations", h.Customers.ListReservations)

	// ---- Rooms (reads are public) ----
	g.POST("/rooms", h.Rooms.Create)
	g.PUT("/rooms/:id", h.Rooms.Update)
	g.DELETE("/rooms/:id", h.Rooms.Delete)

	// ---- Reservations ----
	g.POST("/reservations", h.Reservations.Create)
	g.GET("/reservations", h.Reservations.List)
	g.GET("/reservations/:id", h.Reservations.Get)
	g.POST("/reservations/:id/cancel", h.Reservations.Cancel)
	g.POST("/reservations/:id/checkout", h.Reservations.Checkout)
	g.GET("/reservations/:id/invoice", h.Reservations.Invoice)

	// ---- Invoices ----
	g.GET("/invoices", h.Invoices.List)
	g.GET("/invoices/:id", h.Invoices.Get)

	// ---- Content ----
	g.POST("/blogs", h.Content.CreateBlog)
	g.PUT("/blogs/:id", h.Content.UpdateBlog)
	g.DELETE("/blogs/:id", h.Content.DeleteBlog)
	g.POST("/faqs", h.Content.CreateFAQ)
	g.PUT("/faqs/:id", h.Content.UpdateFAQ)
	g.DELETE("/faqs/:id", h.Content.DeleteFAQ)
	g.GET("/contacts", h.Content.ListContacts)
	g.PATCH("/contacts/:id/handled", h.Content.MarkContactHandled)
	g.DELETE("/contacts/:id", h.Content.DeleteContact)
}
