package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_USER", "catalog")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_NAME", "catalog")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, DefaultTokenTTL, cfg.TokenTTL)
	assert.Equal(t, int64(31536000), int64(cfg.TokenTTL.Seconds()))
	assert.Equal(t, "test_client:test_secret", cfg.OAuthClients)
	assert.True(t, cfg.DBMigrate)
	assert.False(t, cfg.DBSeed)
	assert.Equal(t, "none", cfg.Events.Bus)
	assert.Equal(t, "auth.events", cfg.Events.Subject)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_USER", "catalog")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "catalog")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("DB_SEED", "yes")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.DBSeed)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "amqp://u:p@broker:5672/", cfg.Events.RabbitURL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	t.Setenv("CACHE_TTL", "1m")

	cfg := LoadCacheConfig()

	require.Len(t, cfg.Methods, 2)
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.Equal(t, time.Minute, cfg.TTL)
}

func TestRateLimitConfig_Normalize(t *testing.T) {
	cfg := RateLimitConfig{Capacity: 0, RefillTokens: -1, RefillInterval: 0, TTL: time.Second}.Normalize()

	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.Equal(t, 5*time.Second, cfg.TTL)
}

func TestLoadRateLimitConfig_Burst(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "25")
	t.Setenv("RATE_LIMIT_ENABLED", "off")

	cfg := LoadRateLimitConfig()

	assert.Equal(t, 25, cfg.Capacity)
	assert.False(t, cfg.Enabled)
}
