package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port        string
	Environment string
	LogLevel    string

	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string
	MetricsPort    string

	RateLimitEnabled bool
	RateLimitConfigs map[string]RateLimitConfig

	EnforceHTTPS bool

	Store StoreConfig

	TodoKey        string
	TodoIDStrategy string

	SessionTTL time.Duration
	SeedSample bool
}

// StoreConfig selects the key-value backend the todo repository writes to.
type StoreConfig struct {
	Driver         string
	SQLitePath     string
	PostgresURL    string
	RedisURL       string
	MigrationsPath string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Port:           "8080",
		Environment:    "development",
		LogLevel:       "info",
		ServiceName:    "userdir",
		ServiceVersion: "1.0.0",

		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"/users": {
				Requests: 120,
				Window:   time.Minute,
			},
			"/sessions": {
				Requests: 120,
				Window:   time.Minute,
			},
			"/todos": {
				Requests: 60,
				Window:   time.Minute,
			},
		},
		EnforceHTTPS: false,

		Store: StoreConfig{
			Driver:         "memory",
			SQLitePath:     "db/userdir.db",
			MigrationsPath: "db/migrations",
		},

		TodoKey:        "todos",
		TodoIDStrategy: "length",

		SessionTTL: 30 * time.Minute,
	}
}

// Load reads a .env file when present and overlays USERDIR_* variables on
// the defaults.
func Load() *AppConfig {
	_ = godotenv.Load()

	cfg := GetDefaultConfig()

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("USERDIR_ENV", cfg.Environment)
	cfg.LogLevel = getEnv("USERDIR_LOG_LEVEL", cfg.LogLevel)
	cfg.OTLPEndpoint = getEnv("USERDIR_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.MetricsPort = getEnv("USERDIR_METRICS_PORT", cfg.MetricsPort)

	cfg.RateLimitEnabled = getBool("USERDIR_RATE_LIMIT", cfg.RateLimitEnabled)
	cfg.EnforceHTTPS = getBool("USERDIR_ENFORCE_HTTPS", cfg.EnforceHTTPS)

	cfg.Store.Driver = strings.ToLower(getEnv("USERDIR_KV_DRIVER", cfg.Store.Driver))
	cfg.Store.SQLitePath = getEnv("DATABASE_PATH", cfg.Store.SQLitePath)
	cfg.Store.PostgresURL = getEnv("DATABASE_URL", cfg.Store.PostgresURL)
	cfg.Store.RedisURL = getEnv("REDIS_URL", cfg.Store.RedisURL)
	cfg.Store.MigrationsPath = getEnv("MIGRATIONS_PATH", cfg.Store.MigrationsPath)

	cfg.TodoKey = getEnv("USERDIR_TODO_KEY", cfg.TodoKey)
	cfg.TodoIDStrategy = getEnv("USERDIR_TODO_IDS", cfg.TodoIDStrategy)

	cfg.SessionTTL = getDuration("USERDIR_SESSION_TTL", cfg.SessionTTL)
	cfg.SeedSample = getBool("USERDIR_SEED_SAMPLE", cfg.SeedSample)

	if cfg.Environment == "production" {
		cfg.EnforceHTTPS = true
	}

	return cfg
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return def
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))

	if err != nil {
		return def
	}

	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))

	if err != nil || v <= 0 {
		return def
	}

	return v
}
