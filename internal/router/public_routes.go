package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/handler"
	"github.com/iliyamo/hotel-management/internal/middleware"
)

// RegisterPublic registers the guest-facing catalogue.  Reads are served
// through the Redis response cache; the contact form is rate limited.
func RegisterPublic(e *echo.Echo, rooms *handler.RoomHandler, content *handler.ContentHandler,
	cache *middleware.ResponseCache, limiter echo.MiddlewareFunc) {
	e.GET("/v1/rooms", rooms.List, cache.Middleware(middleware.CacheRooms))
	e.GET("/v1/rooms/:id", rooms.Get, cache.Middleware(middleware.CacheRooms))

	e.GET("/v1/blogs", content.ListBlogs, cache.Middleware(middleware.CacheBlogs))
	e.GET("/v1/blogs/:slug", content.GetBlog, cache.Middleware(middleware.CacheBlogs))

	e.GET("/v1/faqs", content.ListFAQs, cache.Middleware(middleware.CacheFAQs))

	e.POST("/v1/contacts", content.CreateContact, limiter)
}
