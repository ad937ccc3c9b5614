package config

import (
	"os"
	"strconv"
	"time"
)

// Identity configures the upstream user API. BaseURL and Token may be empty;
// the identity client degrades to empty results rather than failing startup.
type Identity struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Database holds the persona store connection. An empty URL selects the
// in-memory store so the dashboard still renders without postgres.
type Database struct {
	URL string
}

// Redis configures the optional identity page cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Config is the full service configuration.
type Config struct {
	Addr     string
	Identity Identity
	Database Database
	Redis    Redis
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("PERSONADESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Config{
		Addr: addr,
		Identity: Identity{
			BaseURL:  os.Getenv("IDENTITY_API_BASE_URL"),
			Token:    os.Getenv("IDENTITY_API_TOKEN"),
			Timeout:  envDuration("IDENTITY_TIMEOUT", 10*time.Second),
			CacheTTL: envDuration("IDENTITY_CACHE_TTL", time.Hour),
		},
		Database: Database{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return fallback
}
