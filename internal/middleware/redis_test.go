package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/insurance-catalog/internal/config"
	"github.com/iliyamo/insurance-catalog/internal/logging"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisCache_MissThenHit(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled: true,
		Methods: map[string]bool{http.MethodGet: true},
		TTL:     time.Minute,
		Prefix:  "catalog:cache",
	}

	calls := 0
	e := echo.New()
	e.GET("/products", func(c echo.Context) error {
		calls++
		c.Response().Header().Set("X-Catalog", "v1")
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": []string{"prod_001"}})
	}, NewRedisCache(cfg, rdb, logging.Discard()))

	first := get(e, "/products", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, time.Minute, mr.TTL(keys[0]))

	second := get(e, "/products", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "v1", second.Header().Get("X-Catalog"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)
}

func TestRedisCache_SkipsNonOK(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, Prefix: "catalog:cache"}

	calls := 0
	e := echo.New()
	e.GET("/products/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Product not found"})
	}, NewRedisCache(cfg, rdb, logging.Discard()))

	get(e, "/products/prod_999", nil)
	rec := get(e, "/products/prod_999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
	assert.Empty(t, mr.Keys())
}

func TestRedisCache_RedisDownServesFromHandler(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, Prefix: "catalog:cache"}

	calls := 0
	e := echo.New()
	e.GET("/products", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}, NewRedisCache(cfg, rdb, logging.Discard()))

	assert.Equal(t, http.StatusOK, get(e, "/products", nil).Code)
	assert.Equal(t, http.StatusOK, get(e, "/products", nil).Code)
	assert.Equal(t, 2, calls)
}

func TestTokenBucket_Redis(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "test:rl",
	}
	e := echo.New()
	e.POST("/oauth/token", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewTokenBucket(cfg, rdb, logging.Discard()))

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/oauth/token", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := post()
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, http.StatusNoContent, post().Code)

	rec = post()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"too_many_requests","message":"rate limit exceeded","retry_after":3600}`, rec.Body.String())

	key := "test:rl:ip:10.0.0.1:route:POST /oauth/token"
	require.True(t, mr.Exists(key))
	assert.Equal(t, "0", mr.HGet(key, "tokens"))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestTokenBucket_RedisErrorFallsBackToLocal(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour}

	e := echo.New()
	e.POST("/oauth/token", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewTokenBucket(cfg, rdb, logging.Discard()))

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/oauth/token", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}
