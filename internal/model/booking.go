package model

import "time"

// Booking records a customer's claim on TableCount tables at a
// restaurant.  A booking is either active (the row exists) or cancelled
// (the row has been deleted); there is no intermediate state.
type Booking struct {
	ID           uint64    `db:"id" json:"id"`
	CustomerID   uint64    `db:"customer_id" json:"customer_id"`
	RestaurantID uint64    `db:"restaurant_id" json:"restaurant_id"`
	TableCount   int       `db:"table_count" json:"table_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
