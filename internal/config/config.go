package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	CatalogFile    string        // optional yaml/toml overriding the built-in catalog (empty = built-in)
	CatalogWatch   bool          // reload the catalog file as soon as it changes on disk
	ReloadInterval time.Duration // interval to reload the catalog file (default: 24h)

	// Sessions
	SessionStore     string        // "memory" | "redis"
	SessionTTL       time.Duration // idle lifetime of a session (default: 12h)
	GCInterval       time.Duration // how often idle memory sessions are swept (default: 10m)
	CookieHashKey    string        // HMAC key for the session cookie (empty => random per process)
	CookieBlockKey   string        // optional AES key (16, 24 or 32 bytes) to encrypt the cookie
	CookieSecure     bool          // set the Secure flag on the session cookie
	RateBurst        int           // per-IP burst on /api routes
	RateRefillPerMin int           // per-IP tokens refilled per minute on /api routes

	// Redis (only when SessionStore == "redis")
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict /reload to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("UTMGEN_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("UTMGEN_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("UTMGEN_LOG_LEVEL", "info"),
		PrettyLog: mustBool("UTMGEN_PRETTY_LOG", true),

		// Catalog
		CatalogFile:    getenv("UTMGEN_CATALOG_FILE", ""),
		CatalogWatch:   mustBool("UTMGEN_CATALOG_WATCH", true),
		ReloadInterval: mustDuration("UTMGEN_RELOAD_INTERVAL", 24*time.Hour),

		// Sessions
		SessionStore:     mustOneOf("UTMGEN_SESSION_STORE", StoreMemory, StoreMemory, StoreRedis),
		SessionTTL:       mustDuration("UTMGEN_SESSION_TTL", 12*time.Hour),
		GCInterval:       mustDuration("UTMGEN_GC_INTERVAL", 10*time.Minute),
		CookieHashKey:    getenv("UTMGEN_COOKIE_HASH_KEY", ""),
		CookieBlockKey:   getenv("UTMGEN_COOKIE_BLOCK_KEY", ""),
		CookieSecure:     mustBool("UTMGEN_COOKIE_SECURE", false),
		RateBurst:        getenvInt("UTMGEN_RATE_BURST", 30),
		RateRefillPerMin: getenvInt("UTMGEN_RATE_PER_MIN", 120),

		// Access restrictions
		AllowedHosts: parseList(getenv("UTMGEN_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseList(getenv("UTMGEN_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("UTMGEN_TRUST_PROXY", true),
	}

	if cfg.SessionStore == StoreRedis {
		cfg.RedisAddr = requireEnv("UTMGEN_REDIS_ADDR")
		cfg.RedisUser = getenv("UTMGEN_REDIS_USERNAME", "default")
		cfg.RedisPasswordRequired = mustBool("UTMGEN_REDIS_PASSWORD_REQUIRED", true)
		cfg.RedisPassword = getenv("UTMGEN_REDIS_PASSWORD", "")
		cfg.RedisDB = getenvInt("UTMGEN_REDIS_DB", 0)
		cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
		cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
		cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
		cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
		cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
		cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
		cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
		cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
		cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: UTMGEN_REDIS_PASSWORD is required when UTMGEN_REDIS_PASSWORD_REQUIRED=true")
		}
	}

	// Tickers panic on non-positive periods
	for key, d := range map[string]time.Duration{
		"UTMGEN_RELOAD_INTERVAL": cfg.ReloadInterval,
		"UTMGEN_GC_INTERVAL":     cfg.GCInterval,
	} {
		if d <= 0 {
			panic(fmt.Sprintf("❌ FATAL: %s must be positive, got %s", key, d))
		}
	}

	if n := len(cfg.CookieBlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		panic(fmt.Sprintf("❌ FATAL: UTMGEN_COOKIE_BLOCK_KEY must be 16, 24 or 32 bytes, got %d", n))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = redact(cfg.RedisPassword)
		cfgCopy.RedisUser = redact(cfg.RedisUser)
		cfgCopy.CookieHashKey = redact(cfg.CookieHashKey)
		cfgCopy.CookieBlockKey = redact(cfg.CookieBlockKey)
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func redact(v string) string {
	if v == "" {
		return ""
	}
	return "***REDACTED***"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// mustOneOf returns the lowercased value of key (or def) and panics when it is not allowed.
func mustOneOf(key, def string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(getenv(key, def)))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	panic(fmt.Sprintf("❌ FATAL: %s must be one of %v, got %q", key, allowed, v))
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
