// Package queue defines the booking events exchanged over RabbitMQ and the
// consumer that appends them to the booking log.
package queue

const (
	// BookingQueueName is the durable queue both events are published to.
	BookingQueueName = "booking.events"

	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published after a booking transaction commits.  It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type BookingEvent struct {
	Type         string `json:"type"`
	BookingID    uint64 `json:"booking_id"`
	CustomerID   uint64 `json:"customer_id"`
	RestaurantID uint64 `json:"restaurant_id"`
	TableCount   int    `json:"table_count"`
	Available    int    `json:"available"`
	Total        int    `json:"total"`
	ActorID      uint64 `json:"actor_id"`
	OccurredAt   string `json:"occurred_at"`
}
