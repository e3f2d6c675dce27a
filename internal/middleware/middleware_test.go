package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restroo/internal/config"
	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/utils"
)

const secret = "test-secret"

func protected() *echo.Echo {
	e := echo.New()
	g := e.Group("/only", JWTAuth(secret), RequireRole(model.RoleRestaurant))
	g.GET("", func(c echo.Context) error {
		id, _ := UserID(c)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "role": Role(c)})
	})
	return e
}

func call(e *echo.Echo, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/only", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRole(t *testing.T) {
	e := protected()
	restaurant, err := utils.NewAccessToken(secret, 7, model.RoleRestaurant, 5)
	require.NoError(t, err)
	customer, err := utils.NewAccessToken(secret, 8, model.RoleCustomer, 5)
	require.NoError(t, err)
	forged, err := utils.NewAccessToken("other-secret", 7, model.RoleRestaurant, 5)
	require.NoError(t, err)

	rec := call(e, "Bearer "+restaurant.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"role":"RESTAURANT"}`, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, call(e, "Bearer "+customer.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, "Bearer "+forged.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, restaurant.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, "").Code)
}

func TestUserIDAnonymous(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := UserID(c)
	assert.False(t, ok)
	assert.Empty(t, Role(c))
	assert.Equal(t, "anon", currentUserID(c))
}

func TestWithoutRedisMiddlewarePassesThrough(t *testing.T) {
	cache := NewResponseCache(config.CacheConfig{Enabled: true}, nil)
	cache.Invalidate(context.Background(), "posts")

	var nilCache *ResponseCache
	nilCache.Invalidate(context.Background(), "posts")

	calls := 0
	e := echo.New()
	e.GET("/feed", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	}, cache.Middleware("posts"), NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 3, calls)
}

func TestCacheKeyIncludesGenerationAndPath(t *testing.T) {
	cfg := config.LoadCacheConfig()
	e := echo.New()
	key := func(path string, gen int64) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
		c.SetPath("/v1/posts/:id")
		return cacheKeyFrom(cfg, "posts", gen, c)
	}
	assert.True(t, strings.HasPrefix(key("/v1/posts/1", 0), cfg.Prefix+":posts:0:"))
	assert.NotEqual(t, key("/v1/posts/1", 0), key("/v1/posts/2", 0))
	assert.NotEqual(t, key("/v1/posts/1", 0), key("/v1/posts/1", 1))
	assert.Equal(t, key("/v1/posts/1", 3), key("/v1/posts/1", 3))
}

func TestPayloadRoundTrip(t *testing.T) {
	h := http.Header{}
	h.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	bs, err := encodePayload(http.StatusOK, h, []byte(`{"items":[]}`))
	require.NoError(t, err)

	status, header, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, header.Get(echo.HeaderContentType))
	assert.Equal(t, `{"items":[]}`, string(body))

	_, _, _, ok = decodePayload([]byte{1, 2})
	assert.False(t, ok)
}
