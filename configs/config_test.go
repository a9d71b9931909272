package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	for _, k := range []string{"HTTP_PORT", "DB_DRIVER", "DB_PORT", "TOKEN_TTL", "REDIS_HOST", "RATE_LIMIT_MAX"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, 3004, cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.True(t, cfg.UsesPostgres())
	assert.False(t, cfg.UsesRedis())
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 100, cfg.RateLimitMax)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("TOKEN_TTL", "90")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("REDIS_HOST", "cache")

	cfg := LoadConfig()
	assert.False(t, cfg.UsesPostgres())
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, 90*time.Second, cfg.TokenTTL)
	assert.Equal(t, 8080, cfg.HTTPPort)
}

func TestGetenvDurationRejectsGarbage(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	assert.Equal(t, time.Hour, getenvDuration("TOKEN_TTL", time.Hour))

	t.Setenv("TOKEN_TTL", "30m")
	assert.Equal(t, 30*time.Minute, getenvDuration("TOKEN_TTL", time.Hour))
}

func TestInsecureJWTSecret(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "production")

	cfg := LoadConfig()
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.InsecureJWTSecret())

	cfg.AppEnv = "test"
	assert.False(t, cfg.InsecureJWTSecret())

	t.Setenv("JWT_SECRET", "a-long-random-value")
	assert.False(t, LoadConfig().InsecureJWTSecret())
}
