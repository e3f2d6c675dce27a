package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/restroo/internal/model"
)

// ReviewRepo stores customer reviews.  The sentiment column is written
// once by Create; Update leaves it untouched.
type ReviewRepo struct {
	db *sqlx.DB
}

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewColumns = `id, title, content, sentiment, customer_id, restaurant_id, created_at`

// Create inserts a scored review and fills in its ID and creation time.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	rv.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (title, content, sentiment, customer_id, restaurant_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rv.Title, rv.Content, rv.Sentiment, rv.CustomerID, rv.RestaurantID, rv.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// GetByID returns a review or ErrNotFound.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.Review, error) {
	var rv model.Review
	if err := r.db.GetContext(ctx, &rv, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &rv, nil
}

// Update rewrites title and content.  Only the author may update it.
func (r *ReviewRepo) Update(ctx context.Context, id, authorID uint64, title, content string) error {
	if err := r.checkAuthor(ctx, id, authorID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE reviews SET title = ?, content = ? WHERE id = ?`, title, content, id)
	return err
}

// Delete removes a review.  Only the author may delete it.
func (r *ReviewRepo) Delete(ctx context.Context, id, authorID uint64) error {
	if err := r.checkAuthor(ctx, id, authorID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	return err
}

func (r *ReviewRepo) checkAuthor(ctx context.Context, id, authorID uint64) error {
	var owner uint64
	if err := r.db.GetContext(ctx, &owner, `SELECT customer_id FROM reviews WHERE id = ?`, id); err != nil {
		return notFound(err)
	}
	if owner != authorID {
		return ErrForbidden
	}
	return nil
}

// ListByRestaurant returns a page of reviews for a restaurant, newest first.
func (r *ReviewRepo) ListByRestaurant(ctx context.Context, restaurantID uint64, page, perPage int) (Page[model.Review], error) {
	page, perPage, offset := pageBounds(page, perPage)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reviews WHERE restaurant_id = ?`, restaurantID); err != nil {
		return Page[model.Review]{}, err
	}
	items := make([]model.Review, 0, perPage)
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+reviewColumns+` FROM reviews WHERE restaurant_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		restaurantID, perPage, offset)
	if err != nil {
		return Page[model.Review]{}, err
	}
	return newPage(items, page, perPage, total), nil
}

// AverageSentiment returns the mean review score of a restaurant and the
// number of reviews it is based on.
func (r *ReviewRepo) AverageSentiment(ctx context.Context, restaurantID uint64) (float64, int, error) {
	var row struct {
		Avg   float64 `db:"avg"`
		Count int     `db:"cnt"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT COALESCE(AVG(sentiment), 0) AS avg, COUNT(*) AS cnt FROM reviews WHERE restaurant_id = ?`, restaurantID)
	return row.Avg, row.Count, err
}
