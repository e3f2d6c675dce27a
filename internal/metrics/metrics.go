// Package metrics holds the Prometheus collectors of the booking core and
// the HTTP layer.  Collectors are registered once on the default registry
// and exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restroo_bookings_created_total",
		Help: "Total number of bookings created",
	})

	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restroo_bookings_cancelled_total",
		Help: "Total number of bookings cancelled",
	})

	BookingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restroo_bookings_rejected_total",
		Help: "Booking requests refused, by reason",
	}, []string{"reason"})

	TablesBooked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restroo_tables_booked_total",
		Help: "Total number of tables taken by created bookings",
	})

	LedgerRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restroo_ledger_retries_total",
		Help: "Ledger transactions retried after lock contention",
	})

	LedgerTxDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "restroo_ledger_tx_duration_seconds",
		Help:    "Duration of ledger transactions",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	ReviewSentiment = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "restroo_review_sentiment",
		Help:    "Sentiment scores assigned to new reviews",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "restroo_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware observes request latency per matched route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			HTTPRequestDuration.
				WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
