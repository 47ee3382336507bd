package config

import (
	"log"
	"os"
	"time"
)

// Config holds all infrastructure configuration loaded from
// environment variables. The four external-service credentials are
// not here — they live in the runtime-mutable settings store.
type Config struct {
	// Servers
	APIAddr     string
	MetricsAddr string

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	SettingsPath  string

	// Provider
	ProviderBaseURL string
	ProviderTimeout time.Duration

	// Scheduler
	TickInterval time.Duration
	NotifyDelay  time.Duration
	CacheTTL     time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		APIAddr:     getEnv("API_ADDR", ":8080"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/signals.db"),
		SettingsPath:  getEnv("SETTINGS_PATH", "config.json"),

		ProviderBaseURL: getEnv("DHAN_BASE_URL", ""),
		ProviderTimeout: getDuration("DHAN_TIMEOUT", 10*time.Second),

		TickInterval: getDuration("ALERT_TICK_INTERVAL", 60*time.Second),
		NotifyDelay:  getDuration("ALERT_NOTIFY_DELAY", 5*time.Second),
		CacheTTL:     getDuration("BAR_CACHE_TTL", 45*time.Second),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] invalid duration for %s: %q (using %v)", key, v, fallback)
		return fallback
	}
	return d
}
