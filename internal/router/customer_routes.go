package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restroo/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Customers book
// tables, list their bookings and write reviews; they cannot cancel.
func RegisterCustomer(e *echo.Echo, h Handlers, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.POST("/restaurants/:id/bookings", h.Bookings.Create, limit)
	g.GET("/me/bookings", h.Bookings.Mine)

	g.POST("/restaurants/:id/reviews", h.Reviews.Create, limit)
	g.PUT("/reviews/:id", h.Reviews.Update)
	g.DELETE("/reviews/:id", h.Reviews.Delete)
}
