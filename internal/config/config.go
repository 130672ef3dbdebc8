package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	KeySetURL                  string
	KeySetCacheTTLSeconds      int
	KeySetCacheMaxStaleSeconds int
	FetchTimeoutSeconds        int

	PolicyBundlePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:                   addr,
		PostgresDSN:                os.Getenv("POSTGRES_DSN"),
		LogLevel:                   envDefault("LOG_LEVEL", "info"),
		KeySetURL:                  os.Getenv("KEY_SET_URL"),
		KeySetCacheTTLSeconds:      envIntDefault("KEY_SET_CACHE_TTL_SECONDS", 300),
		KeySetCacheMaxStaleSeconds: envIntDefault("KEY_SET_CACHE_MAX_STALE_SECONDS", 900),
		FetchTimeoutSeconds:        envIntDefault("FETCH_TIMEOUT_SECONDS", 5),
		PolicyBundlePath:           os.Getenv("POLICY_BUNDLE_PATH"),
		RedisAddr:                  os.Getenv("REDIS_ADDR"),
		RedisPassword:              os.Getenv("REDIS_PASSWORD"),
		RedisDB:                    envIntDefault("REDIS_DB", 0),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func (c Config) KeySetCacheTTL() time.Duration {
	return time.Duration(c.KeySetCacheTTLSeconds) * time.Second
}

func (c Config) KeySetCacheMaxStale() time.Duration {
	return time.Duration(c.KeySetCacheMaxStaleSeconds) * time.Second
}

func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}
