package model

import "time"

// Roles a user can register with.  The role is chosen once at
// registration and never changes afterwards.
const (
	RoleCustomer   = "CUSTOMER"
	RoleRestaurant = "RESTAURANT"
)

// DefaultImageFile is the profile picture assigned to new accounts.
const DefaultImageFile = "default.jpg"

// User represents an application user record as stored in the
// `users` table.  Restaurants and customers share the table and are
// told apart by Role.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Username     – unique handle used in public URLs.
//	Email        – unique email address.
//	Address      – postal address.
//	Contact      – phone number.
//	Role         – CUSTOMER or RESTAURANT.
//	ImageFile    – profile picture file name under the upload directory.
//	PasswordHash – bcrypt hashed password.
//	IsActive     – whether the account is active.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	Address      string    `db:"address" json:"address"`
	Contact      string    `db:"contact" json:"contact"`
	Role         string    `db:"role" json:"role"`
	ImageFile    string    `db:"image_file" json:"image_file"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsRestaurant reports whether the user owns a table inventory.
func (u User) IsRestaurant() bool { return u.Role == RoleRestaurant }

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA‑256 hash.
type RefreshToken struct {
	ID        uint64     `db:"id"`
	UserID    uint64     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}
