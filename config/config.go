package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	RateLimit RateLimitConfig
	Browser   BrowserConfig
	Harness   HarnessConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the static content server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3005
	Mode string // "debug", "release", "test"; default: "release"

	// Root is the directory files are served from.
	Root string // default: "."

	// Entry is the file served for "/", relative to Root.
	Entry string // default: "index.html"

	// NoCacheExtensions lists the file extensions whose responses must never be cached.
	NoCacheExtensions []string // default: [".html", ".css", ".js"]
}

// RateLimitConfig controls per-client rate limiting on the static server.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP. Zero disables limiting.
	RequestsPerSecond float64 // default: 0

	// Burst is the maximum burst size per client IP.
	Burst int // default: 20
}

// BrowserConfig controls the browser launched for every check.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// ViewportWidth and ViewportHeight set the default page viewport.
	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080
}

// HarnessConfig controls check execution.
type HarnessConfig struct {
	// BaseURL resolves check URLs that are given as paths.
	BaseURL string // default: "http://localhost:3005"

	// ReadyTimeout bounds navigation plus the readiness wait.
	ReadyTimeout time.Duration // default: 10s

	// ActionTimeout is the per-interaction deadline.
	ActionTimeout time.Duration // default: 10s

	// RunTimeout bounds a whole check, launch to cleanup.
	RunTimeout time.Duration // default: 60s

	// OutputDir receives screenshots with relative paths.
	OutputDir string // default: "test-results"
}

// WebhookConfig controls delivery of run summaries by pagecheck.
type WebhookConfig struct {
	// URL receives a POST after every run. Empty disables delivery.
	URL string

	// Secret signs the body with HMAC-SHA256 when set.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json" (LoadCLI: "text")
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:  envOr("LANDING_HOST", "0.0.0.0"),
			Port:  envIntOr("PORT", 3005),
			Mode:  envOr("LANDING_MODE", "release"),
			Root:  envOr("LANDING_ROOT", "."),
			Entry: envOr("LANDING_ENTRY", "index.html"),
			NoCacheExtensions: envSliceOr("LANDING_NOCACHE_EXTS", []string{
				".html", ".css", ".js",
			}),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("LANDING_RATE_RPS", 0),
			Burst:             envIntOr("LANDING_RATE_BURST", 20),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("PAGECHECK_HEADLESS", true),
			NoSandbox:      envBoolOr("PAGECHECK_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("PAGECHECK_BROWSER_BIN"),
			ViewportWidth:  envIntOr("PAGECHECK_VIEWPORT_WIDTH", 1920),
			ViewportHeight: envIntOr("PAGECHECK_VIEWPORT_HEIGHT", 1080),
		},
		Harness: HarnessConfig{
			BaseURL:       envOr("PAGECHECK_BASE_URL", "http://localhost:3005"),
			ReadyTimeout:  envDurationOr("PAGECHECK_READY_TIMEOUT", 10*time.Second),
			ActionTimeout: envDurationOr("PAGECHECK_ACTION_TIMEOUT", 10*time.Second),
			RunTimeout:    envDurationOr("PAGECHECK_RUN_TIMEOUT", 60*time.Second),
			OutputDir:     envOr("PAGECHECK_OUTPUT_DIR", "test-results"),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("PAGECHECK_WEBHOOK_URL"),
			Secret: os.Getenv("PAGECHECK_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}
}

// LoadCLI is Load for command-line tools, whose logs go to a terminal's
// stderr: LOG_FORMAT defaults to text instead of json.
func LoadCLI() *Config {
	cfg := Load()
	cfg.Log.Format = envOr("LOG_FORMAT", "text")
	return cfg
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

// InitLogger installs the default slog logger. Servers log to stdout; tools
// whose stdout carries reports or protocol traffic pass stderr.
func InitLogger(cfg LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
