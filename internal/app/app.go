// Package app wires repositories, the booking core and the handlers into
// an HTTP server.
package app

import (
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restroo/internal/booking"
	"github.com/iliyamo/restroo/internal/config"
	"github.com/iliyamo/restroo/internal/handler"
	"github.com/iliyamo/restroo/internal/middleware"
	"github.com/iliyamo/restroo/internal/repository"
	"github.com/iliyamo/restroo/internal/router"
	"github.com/iliyamo/restroo/internal/sentiment"
	"github.com/iliyamo/restroo/internal/storage"
)

// Deps are the external resources the server runs against.  Redis and
// Events are optional.
type Deps struct {
	DB       *sqlx.DB
	Redis    *redis.Client
	Events   booking.Publisher
	Analyzer *sentiment.Analyzer
}

// New builds the HTTP server.
func New(cfg config.Config, d Deps) *echo.Echo {
	users := repository.NewUserRepo(d.DB)
	tokens := repository.NewTokenRepo(d.DB)
	bookings := repository.NewBookingRepo(d.DB)
	posts := repository.NewPostRepo(d.DB)
	reviews := repository.NewReviewRepo(d.DB)
	media := repository.NewMediaRepo(d.DB)

	inv := booking.NewInventory(repository.NewInventoryRepo(d.DB), cfg.Booking)
	ledger := booking.NewLedger(d.DB, inv, bookings, cfg.Booking, d.Events)

	images := storage.NewImages(cfg.UploadDir)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), d.Redis)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, users, tokens, inv),
		Account:     handler.NewAccountHandler(users, images),
		Bookings:    handler.NewBookingHandler(ledger, inv, users),
		Restaurants: handler.NewRestaurantHandler(users, inv, reviews),
		Posts:       handler.NewPostHandler(posts, users, cache),
		Reviews:     handler.NewReviewHandler(reviews, users, d.Analyzer, cache),
		Media:       handler.NewMediaHandler(media, users, images),
	}
	return router.New(h, router.Options{
		DB:        d.DB,
		JWTSecret: cfg.JWTSecret,
		Cache:     cache,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis),
		BodyLimit: "8M",
	})
}
