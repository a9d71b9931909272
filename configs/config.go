package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. It is only fit for
// local development and tests.
const DefaultJWTSecret = "secret"

type Config struct {
	AppEnv   string
	HTTPPort int

	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBNameTest string
	SQLitePath string

	RedisHost     string
	RedisPort     int
	RedisPassword string

	JWTSecret string
	TokenTTL  time.Duration

	CORSOrigins  string
	RateLimitMax int
	LogDir       string
}

// UsesPostgres reports whether the configured store is PostgreSQL.
func (c Config) UsesPostgres() bool {
	return c.DBDriver != "sqlite"
}

// UsesRedis reports whether a Redis host is configured for token revocation.
func (c Config) UsesRedis() bool {
	return c.RedisHost != ""
}

// InsecureJWTSecret reports a default secret outside the test environment.
func (c Config) InsecureJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret && c.AppEnv != "test"
}

func LoadConfig() Config {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	return Config{
		AppEnv:   getenv("APP_ENV", "dev"),
		HTTPPort: getenvInt("HTTP_PORT", 3004),

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenvInt("DB_PORT", 5432),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBNameTest: os.Getenv("DB_NAME_TEST"),
		SQLitePath: getenv("SQLITE_PATH", "data/todo.db"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getenvInt("REDIS_PORT", 6379),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: getenv("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:  getenvDuration("TOKEN_TTL", 24*time.Hour),

		CORSOrigins:  getenv("CORS_ORIGINS", "*"),
		RateLimitMax: getenvInt("RATE_LIMIT_MAX", 100),
		LogDir:       os.Getenv("LOG_DIR"),
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return n
}

// getenvDuration accepts "90m", "24h" or a bare number of seconds.
func getenvDuration(k string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(k))
	if raw == "" {
		return def
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
