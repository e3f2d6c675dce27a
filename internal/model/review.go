package model

import "time"

// Review is a customer's write-up of a restaurant.  Sentiment is scored
// from the content when the review is created and is never recomputed.
type Review struct {
	ID           uint64    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Content      string    `db:"content" json:"content"`
	Sentiment    float64   `db:"sentiment" json:"sentiment"`
	CustomerID   uint64    `db:"customer_id" json:"customer_id"`
	RestaurantID uint64    `db:"restaurant_id" json:"restaurant_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
