package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/restroo/internal/model"
)

// MediaRepo stores metadata of restaurant photos; the files themselves
// live in the upload directory.
type MediaRepo struct {
	db *sqlx.DB
}

func NewMediaRepo(db *sqlx.DB) *MediaRepo { return &MediaRepo{db: db} }

// Create inserts a media row and fills in its ID and creation time.
func (r *MediaRepo) Create(ctx context.Context, m *model.Media) error {
	m.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO media (title, image_file, restaurant_id, created_at) VALUES (?, ?, ?, ?)`,
		m.Title, m.ImageFile, m.RestaurantID, m.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListByRestaurant returns a restaurant's photos, newest first.
func (r *MediaRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.Media, error) {
	out := make([]model.Media, 0)
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, title, image_file, restaurant_id, created_at FROM media WHERE restaurant_id = ? ORDER BY created_at DESC, id DESC`,
		restaurantID)
	return out, err
}
