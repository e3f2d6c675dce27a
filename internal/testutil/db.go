// Package testutil opens throwaway SQLite databases that carry the same
// tables as the MySQL schema, so repositories, the ledger and the handlers
// can be exercised without a MySQL server.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/utils"
)

const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  address TEXT NOT NULL,
  contact TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'CUSTOMER' CHECK (role IN ('CUSTOMER','RESTAURANT')),
  image_file TEXT NOT NULL DEFAULT 'default.jpg',
  password_hash TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE refresh_tokens(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  token_hash TEXT NOT NULL UNIQUE,
  expires_at DATETIME NOT NULL,
  revoked_at DATETIME NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE restaurant_tables(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  restaurant_id INTEGER NOT NULL UNIQUE REFERENCES users(id),
  total INTEGER NOT NULL,
  available INTEGER NOT NULL,
  CHECK (total >= 0 AND available >= 0 AND available <= total)
);
CREATE TABLE bookings(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL REFERENCES users(id),
  restaurant_id INTEGER NOT NULL REFERENCES users(id),
  table_count INTEGER NOT NULL CHECK (table_count > 0),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE reviews(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  content TEXT NOT NULL,
  sentiment NUMERIC NOT NULL CHECK (sentiment >= 0 AND sentiment <= 1),
  customer_id INTEGER NOT NULL REFERENCES users(id),
  restaurant_id INTEGER NOT NULL REFERENCES users(id),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE posts(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  content TEXT NOT NULL,
  category TEXT NOT NULL,
  restaurant_id INTEGER NOT NULL REFERENCES users(id),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE media(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  image_file TEXT NOT NULL,
  restaurant_id INTEGER NOT NULL REFERENCES users(id),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// NewDB returns a fresh database in the test's temp directory.  The pool
// is limited to one connection, so concurrent transactions run one after
// another and a read-then-write race cannot show up here.  Tests that need
// to rule one out inspect the statements through NewRecordingDB instead.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", dsn(t))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return prepare(t, db)
}

func dsn(t testing.TB) string {
	path := filepath.Join(t.TempDir(), "restroo.db")
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
}

func prepare(t testing.TB, db *sqlx.DB) *sqlx.DB {
	t.Helper()
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Password is the plain-text password of every seeded user.
const Password = "s3cret-pass"

// SeedUser inserts a user directly and returns its ID.  Restaurants get an
// inventory row with total = available = tables.
func SeedUser(t testing.TB, db *sqlx.DB, username, role string, tables int) uint64 {
	t.Helper()
	hash, err := utils.HashPassword(Password, 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := db.Exec(
		`INSERT INTO users (name, username, email, address, contact, role, image_file, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		username, username, username+"@example.com", "1 Main St", "5550100", role, model.DefaultImageFile, hash, now, now)
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	id, _ := res.LastInsertId()
	if role == model.RoleRestaurant {
		if _, err := db.Exec(`INSERT INTO restaurant_tables (restaurant_id, total, available) VALUES (?, ?, ?)`, id, tables, tables); err != nil {
			t.Fatalf("seed tables for %s: %v", username, err)
		}
	}
	return uint64(id)
}

// Inventory reads a restaurant's counters straight from the table.
func Inventory(t testing.TB, db *sqlx.DB, restaurantID uint64) (total, available int) {
	t.Helper()
	row := db.QueryRowContext(context.Background(),
		`SELECT total, available FROM restaurant_tables WHERE restaurant_id = ?`, restaurantID)
	if err := row.Scan(&total, &available); err != nil {
		t.Fatalf("read inventory of %d: %v", restaurantID, err)
	}
	return total, available
}
