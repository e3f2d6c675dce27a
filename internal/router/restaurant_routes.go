package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restroo/internal/middleware"
)

// RegisterRestaurant registers restaurant-scoped endpoints.  Restaurants
// see and cancel the bookings made with them and manage their posts and
// photos.  Account endpoints are open to both roles.
func RegisterRestaurant(e *echo.Echo, h Handlers, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("RESTAURANT"),
	)
	g.GET("/restaurant/bookings", h.Bookings.Received)
	g.DELETE("/bookings/:id", h.Bookings.Cancel, limit)

	g.POST("/posts", h.Posts.Create)
	g.PUT("/posts/:id", h.Posts.Update)
	g.DELETE("/posts/:id", h.Posts.Delete)
	g.POST("/media", h.Media.Upload)

	acct := e.Group(
		"/v1/account",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "RESTAURANT"),
	)
	acct.GET("", h.Account.Get)
	acct.PUT("", h.Account.Update)
	acct.POST("/picture", h.Account.Picture)
}
