package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Capture   CaptureConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent captures).
	MaxPages int // default: 4

	// DefaultProxy is the default proxy URL for all requests.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// CaptureConfig controls the scroll-capture-and-merge pipeline.
type CaptureConfig struct {
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout time.Duration // default: 120s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 600s

	// TileHeight is the nominal height of each captured tile in the
	// tiled strategy. Independent of the measured page height.
	TileHeight int // default: 15000

	// TileThreshold is the page height above which the tiled strategy
	// replaces the single-shot capture.
	TileThreshold int // default: 15000

	// SettleDelay is the pause after every scroll/resize so lazy content
	// can finish rendering.
	SettleDelay time.Duration // default: 2s

	// FallbackHeight substitutes for the page height when every probe
	// reading is zero.
	FallbackHeight int // default: 22000

	// MaxProbeIterations bounds the height stabilization loop.
	MaxProbeIterations int // default: 10
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the screenshot response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses. Screenshots
	// are large; keep this small.
	MaxEntries int // default: 100
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PAGECAPTURE_HOST", "0.0.0.0"),
			Port: envIntOr("PAGECAPTURE_PORT", 8080),
			Mode: envOr("PAGECAPTURE_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("PAGECAPTURE_HEADLESS", true),
			MaxPages:     envIntOr("PAGECAPTURE_MAX_PAGES", 4),
			DefaultProxy: os.Getenv("PAGECAPTURE_PROXY"),
			NoSandbox:    envBoolOr("PAGECAPTURE_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("PAGECAPTURE_BROWSER_BIN"),
		},
		Capture: CaptureConfig{
			DefaultTimeout:     envDurationOr("PAGECAPTURE_DEFAULT_TIMEOUT", 120*time.Second),
			MaxTimeout:         envDurationOr("PAGECAPTURE_MAX_TIMEOUT", 600*time.Second),
			TileHeight:         envIntOr("PAGECAPTURE_TILE_HEIGHT", 15000),
			TileThreshold:      envIntOr("PAGECAPTURE_TILE_THRESHOLD", 15000),
			SettleDelay:        envDurationOr("PAGECAPTURE_SETTLE_DELAY", 2*time.Second),
			FallbackHeight:     envIntOr("PAGECAPTURE_FALLBACK_HEIGHT", 22000),
			MaxProbeIterations: envIntOr("PAGECAPTURE_MAX_PROBE_ITERATIONS", 10),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PAGECAPTURE_AUTH_ENABLED", true),
			APIKeys: envSliceOr("PAGECAPTURE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PAGECAPTURE_RATE_RPS", 2.0),
			Burst:             envIntOr("PAGECAPTURE_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("PAGECAPTURE_CACHE_MAX_ENTRIES", 100),
		},
		Log: LogConfig{
			Level:  envOr("PAGECAPTURE_LOG_LEVEL", "info"),
			Format: envOr("PAGECAPTURE_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
