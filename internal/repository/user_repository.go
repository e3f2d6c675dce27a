package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/utils"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// NewUser carries the registration fields.  Password is the plain text
// value; it is hashed before it reaches the database.
type NewUser struct {
	Name     string
	Username string
	Email    string
	Address  string
	Contact  string
	Role     string
	Password string
}

// ProfileUpdate carries the editable account fields.  Role is absent on
// purpose: it is fixed at registration.
type ProfileUpdate struct {
	Name     string
	Username string
	Email    string
	Address  string
	Contact  string
}

const userColumns = `id, name, username, email, address, contact, role, image_file, password_hash, is_active, created_at, updated_at`

// CreateTx inserts a user within tx and returns its ID.  Registration of a
// restaurant creates the table inventory in the same transaction.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, u NewUser, cost int) (uint64, error) {
	hash, err := utils.HashPassword(u.Password, cost)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, username, email, address, contact, role, image_file, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Username, normalizeEmail(u.Email), u.Address, u.Contact, u.Role, model.DefaultImageFile, hash, now, now)
	if err != nil {
		return 0, uniqueUserErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, normalizeEmail(email))
	return u, notFound(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
	return u, notFound(err)
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE username = ? LIMIT 1`, strings.TrimSpace(username))
	return u, notFound(err)
}

// GetRestaurant fetches a user and fails with ErrNotFound unless the user
// is a restaurant.
func (r *UserRepo) GetRestaurant(ctx context.Context, id uint64) (model.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return u, err
	}
	if !u.IsRestaurant() {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

// UpdateProfile overwrites the editable account fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p ProfileUpdate) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET name = ?, username = ?, email = ?, address = ?, contact = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Username, normalizeEmail(p.Email), p.Address, p.Contact, time.Now().UTC().Truncate(time.Second), id)
	if err != nil {
		return uniqueUserErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateImage points the user's profile picture at a stored file.
func (r *UserRepo) UpdateImage(ctx context.Context, id uint64, file string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET image_file = ?, updated_at = ? WHERE id = ?`,
		file, time.Now().UTC().Truncate(time.Second), id)
	return err
}

// RestaurantSummary is a restaurant with its current table availability.
type RestaurantSummary struct {
	ID        uint64 `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Username  string `db:"username" json:"username"`
	Address   string `db:"address" json:"address"`
	Contact   string `db:"contact" json:"contact"`
	ImageFile string `db:"image_file" json:"image_file"`
	Total     int    `db:"total" json:"total_tables"`
	Available int    `db:"available" json:"available_tables"`
}

// ListRestaurants returns all active restaurants ordered by name.
func (r *UserRepo) ListRestaurants(ctx context.Context) ([]RestaurantSummary, error) {
	out := make([]RestaurantSummary, 0)
	err := r.DB.SelectContext(ctx, &out,
		`SELECT u.id, u.name, u.username, u.address, u.contact, u.image_file, t.total, t.available
		   FROM users u
		   JOIN restaurant_tables t ON t.restaurant_id = u.id
		  WHERE u.role = ? AND u.is_active = TRUE
		  ORDER BY u.name, u.id`, model.RoleRestaurant)
	return out, err
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func uniqueUserErr(err error) error {
	if !isDuplicate(err) {
		return err
	}
	if duplicateColumn(err) == "username" {
		return ErrUsernameExists
	}
	return ErrEmailExists
}
