package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the public response cache. Only
// the read-only reference endpoints are fronted by it, so the config
// surface is small: a switch, a TTL, a key prefix and a response size
// cap. Caching is disabled whenever Redis is unavailable.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      strings.EqualFold(envStr("CACHE_ENABLED", "true"), "true"),
		TTL:          envDur("CACHE_TTL", 5*time.Minute),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
