package config

import (
	"os"
	"strconv"
	"time"
)

// CacheConfig controls the read cache in front of the public schedule
// catalogue.  Entries expire after TTL; a response whose body exceeds
// MaxBody is served normally but never stored.
type CacheConfig struct {
	Enabled     bool
	TTL         time.Duration
	Prefix      string
	MaxBody     int
	VaryOnQuery bool
}

// LoadCacheConfig reads CACHE_* variables.  The catalogue changes rarely,
// so a short TTL keeps it fresh without hammering the database.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:     getenv("CACHE_ENABLED", "true") == "true",
		TTL:         parseDur(getenv("CACHE_TTL", "30s")),
		Prefix:      getenv("CACHE_PREFIX", "respcache"),
		MaxBody:     atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
		VaryOnQuery: getenv("CACHE_VARY_QUERY", "true") == "true",
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
