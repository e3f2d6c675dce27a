package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/restroo/internal/model"
)

// PostRepo stores restaurant announcements.
type PostRepo struct {
	db *sqlx.DB
}

func NewPostRepo(db *sqlx.DB) *PostRepo { return &PostRepo{db: db} }

const postColumns = `id, title, content, category, restaurant_id, created_at`

// Create inserts a post and fills in its ID and creation time.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	p.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (title, content, category, restaurant_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.Title, p.Content, p.Category, p.RestaurantID, p.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID returns a post or ErrNotFound.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (*model.Post, error) {
	var p model.Post
	if err := r.db.GetContext(ctx, &p, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Update rewrites a post's text.  Only the author may update it.
func (r *PostRepo) Update(ctx context.Context, id, authorID uint64, title, content, category string) error {
	if err := r.checkAuthor(ctx, id, authorID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, category = ? WHERE id = ?`, title, content, category, id)
	return err
}

// Delete removes a post.  Only the author may delete it.
func (r *PostRepo) Delete(ctx context.Context, id, authorID uint64) error {
	if err := r.checkAuthor(ctx, id, authorID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

func (r *PostRepo) checkAuthor(ctx context.Context, id, authorID uint64) error {
	var owner uint64
	if err := r.db.GetContext(ctx, &owner, `SELECT restaurant_id FROM posts WHERE id = ?`, id); err != nil {
		return notFound(err)
	}
	if owner != authorID {
		return ErrForbidden
	}
	return nil
}

// List returns a page of all posts, newest first.
func (r *PostRepo) List(ctx context.Context, page, perPage int) (Page[model.Post], error) {
	page, perPage, offset := pageBounds(page, perPage)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts`); err != nil {
		return Page[model.Post]{}, err
	}
	items := make([]model.Post, 0, perPage)
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, perPage, offset)
	if err != nil {
		return Page[model.Post]{}, err
	}
	return newPage(items, page, perPage, total), nil
}

// ListByRestaurant returns a page of one restaurant's posts, newest first.
func (r *PostRepo) ListByRestaurant(ctx context.Context, restaurantID uint64, page, perPage int) (Page[model.Post], error) {
	page, perPage, offset := pageBounds(page, perPage)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts WHERE restaurant_id = ?`, restaurantID); err != nil {
		return Page[model.Post]{}, err
	}
	items := make([]model.Post, 0, perPage)
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+postColumns+` FROM posts WHERE restaurant_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		restaurantID, perPage, offset)
	if err != nil {
		return Page[model.Post]{}, err
	}
	return newPage(items, page, perPage, total), nil
}
