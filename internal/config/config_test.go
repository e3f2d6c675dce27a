package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadBookingConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := LoadBookingConfig()
		assert.Equal(t, BookingConfig{LockTimeout: 3 * time.Second, MaxRetries: 3, RetryBackoff: 50 * time.Millisecond}, cfg)
	})
	t.Run("from env", func(t *testing.T) {
		t.Setenv("BOOKING_LOCK_TIMEOUT", "750ms")
		t.Setenv("BOOKING_MAX_RETRIES", "5")
		t.Setenv("BOOKING_RETRY_BACKOFF", "10ms")
		cfg := LoadBookingConfig()
		assert.Equal(t, BookingConfig{LockTimeout: 750 * time.Millisecond, MaxRetries: 5, RetryBackoff: 10 * time.Millisecond}, cfg)
	})
	t.Run("out of range values are raised", func(t *testing.T) {
		t.Setenv("BOOKING_LOCK_TIMEOUT", "-1s")
		t.Setenv("BOOKING_MAX_RETRIES", "-2")
		t.Setenv("BOOKING_RETRY_BACKOFF", "-5ms")
		cfg := LoadBookingConfig()
		assert.Equal(t, 3*time.Second, cfg.LockTimeout)
		assert.Zero(t, cfg.MaxRetries)
		assert.Zero(t, cfg.RetryBackoff)
	})
	t.Run("garbage falls back to defaults", func(t *testing.T) {
		t.Setenv("BOOKING_LOCK_TIMEOUT", "soon")
		t.Setenv("BOOKING_MAX_RETRIES", "many")
		cfg := LoadBookingConfig()
		assert.Equal(t, 3*time.Second, cfg.LockTimeout)
		assert.Equal(t, 3, cfg.MaxRetries)
	})
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "12")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1m")
	t.Setenv("RATE_LIMIT_ENABLED", "off")

	cfg := LoadRateLimitConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 12, cfg.Capacity)
	assert.Equal(t, 5*time.Minute, cfg.TTL, "ttl covers at least five refills")
	assert.Equal(t, "user_route", cfg.KeyStrategy)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", " get, head ,")
	t.Setenv("CACHE_TTL", "5s")

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, 5*time.Second, cfg.TTL)
}

func TestLoad(t *testing.T) {
	for k, v := range map[string]string{
		"APP_ENV": "test", "APP_PORT": "8080", "DB_USER": "root", "DB_HOST": "localhost",
		"DB_PORT": "3306", "DB_NAME": "restroo", "JWT_SECRET": "s", "ACCESS_TOKEN_TTL_MIN": "15",
		"REFRESH_TOKEN_TTL_DAYS": "7", "BCRYPT_COST": "10",
	} {
		t.Setenv(k, v)
	}
	t.Setenv("UPLOAD_DIR", "/srv/uploads")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, "/srv/uploads", cfg.UploadDir)
	assert.Equal(t, "english", cfg.SentimentLanguage)
	assert.Equal(t, 3*time.Second, cfg.Booking.LockTimeout)
}
