package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/restroo/internal/handler"
	"github.com/iliyamo/restroo/internal/metrics"
	"github.com/iliyamo/restroo/internal/middleware"
)

// Handlers is everything the routes dispatch to.
type Handlers struct {
	Auth        *handler.AuthHandler
	Account     *handler.AccountHandler
	Bookings    *handler.BookingHandler
	Restaurants *handler.RestaurantHandler
	Posts       *handler.PostHandler
	Reviews     *handler.ReviewHandler
	Media       *handler.MediaHandler
}

// Options carries the cross-cutting pieces shared by the route groups.
type Options struct {
	DB        *sqlx.DB
	JWTSecret string
	Cache     *middleware.ResponseCache
	RateLimit echo.MiddlewareFunc // applied to booking and review writes
	BodyLimit string              // e.g. "4M"; uploads are the largest bodies
}

// New builds the Echo instance with the global middleware stack and every
// route of the API.
func New(h Handlers, opt Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(requestLogConfig()))
	e.Use(metrics.Middleware())
	if opt.BodyLimit != "" {
		e.Use(echomw.BodyLimit(opt.BodyLimit))
	}
	if opt.RateLimit == nil {
		opt.RateLimit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	RegisterRoutes(e, opt.DB)
	RegisterAuth(e, h.Auth, opt.JWTSecret)
	RegisterPublic(e, h, opt.Cache)
	RegisterCustomer(e, h, opt.JWTSecret, opt.RateLimit)
	RegisterRestaurant(e, h, opt.JWTSecret, opt.RateLimit)
	return e
}

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and Prometheus metrics.
func RegisterRoutes(e *echo.Echo, db *sqlx.DB) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the authentication routes.  Register, login,
// refresh and logout live under /v1/auth without a session; /v1/me needs
// a valid access token of either role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)               // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "RESTAURANT"),
	)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints.  Post and
// review listings go through the response cache; table availability never
// does.
func RegisterPublic(e *echo.Echo, h Handlers, cache *middleware.ResponseCache) {
	e.GET("/v1/restaurants", h.Restaurants.List)
	e.GET("/v1/restaurants/:id", h.Restaurants.Get)
	e.GET("/v1/restaurants/:id/tables", h.Bookings.Tables)
	e.GET("/v1/restaurants/:id/media", h.Media.List)

	posts := cache.Middleware(handler.ScopePosts)
	e.GET("/v1/posts", h.Posts.Feed, posts)
	e.GET("/v1/posts/:id", h.Posts.Get, posts)
	e.GET("/v1/users/:username/posts", h.Posts.ByUser, posts)

	reviews := cache.Middleware(handler.ScopeReviews)
	e.GET("/v1/restaurants/:id/reviews", h.Reviews.List, reviews)
	e.GET("/v1/reviews/:id", h.Reviews.Get, reviews)
}

func requestLogConfig() echomw.RequestLoggerConfig {
	return echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			c.Logger().Infof("%s %s %d %s id=%s ip=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID, v.RemoteIP)
			return nil
		},
	}
}
