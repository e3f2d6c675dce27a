package model

import "time"

// Post is an announcement published by a restaurant.
type Post struct {
	ID           uint64    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Content      string    `db:"content" json:"content"`
	Category     string    `db:"category" json:"category"`
	RestaurantID uint64    `db:"restaurant_id" json:"restaurant_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Media is a photo uploaded by a restaurant.
type Media struct {
	ID           uint64    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	ImageFile    string    `db:"image_file" json:"image_file"`
	RestaurantID uint64    `db:"restaurant_id" json:"restaurant_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
