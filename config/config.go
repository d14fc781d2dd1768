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
	Extractor ExtractorConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls how browser sessions are launched.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// Proxy is the proxy URL for all sessions.
	Proxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// Bin overrides the Chromium binary path.
	Bin string

	// Stealth injects anti-bot-detection JS into every new page.
	Stealth bool // default: false

	// CDPURL, when set, connects sessions to an existing browser over
	// the Chrome DevTools Protocol instead of launching a local one.
	CDPURL string

	// ExtraHeaders are additional HTTP headers sent with every page
	// request, as "Name: Value" pairs.
	ExtraHeaders []string
}

// ExtractorConfig controls extraction behavior.
type ExtractorConfig struct {
	// NavigationTimeout is the max time for loading a page.
	NavigationTimeout time.Duration // default: 30s

	// ElementTimeout is the max time a routine waits for a single
	// element to appear.
	ElementTimeout time.Duration // default: 5s

	// MaxTimeout is the maximum allowed timeout from an API client.
	MaxTimeout time.Duration // default: 120s

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
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
			Host: envOr("PAGELIFT_HOST", "0.0.0.0"),
			Port: envIntOr("PAGELIFT_PORT", 8080),
			Mode: envOr("PAGELIFT_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("PAGELIFT_HEADLESS", true),
			Proxy:        os.Getenv("PAGELIFT_PROXY"),
			NoSandbox:    envBoolOr("PAGELIFT_NO_SANDBOX", false),
			Bin:          os.Getenv("PAGELIFT_BROWSER_BIN"),
			Stealth:      envBoolOr("PAGELIFT_STEALTH", false),
			CDPURL:       os.Getenv("PAGELIFT_CDP_URL"),
			ExtraHeaders: envSliceOr("PAGELIFT_EXTRA_HEADERS", nil),
		},
		Extractor: ExtractorConfig{
			NavigationTimeout: envDurationOr("PAGELIFT_NAV_TIMEOUT", 30*time.Second),
			ElementTimeout:    envDurationOr("PAGELIFT_ELEMENT_TIMEOUT", 5*time.Second),
			MaxTimeout:        envDurationOr("PAGELIFT_MAX_TIMEOUT", 120*time.Second),
			BlockedResourceTypes: envSliceOr("PAGELIFT_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PAGELIFT_AUTH_ENABLED", false),
			APIKeys: envSliceOr("PAGELIFT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PAGELIFT_RATE_RPS", 5.0),
			Burst:             envIntOr("PAGELIFT_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("PAGELIFT_LOG_LEVEL", "info"),
			Format: envOr("PAGELIFT_LOG_FORMAT", "json"),
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
