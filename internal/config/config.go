// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings such as the
// bot token, storage path, search policy, admin server timeouts, logging, and
// observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"docbot/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings for the admin API.
type CORSConfig struct {
	AllowedOrigins []string
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Telegram
	BotToken    string        // BOT_TOKEN (required)
	Trigger     string        // search-trigger command, e.g. "/search"
	PollTimeout time.Duration // long-poll timeout per getUpdates call

	// Admin HTTP server
	Port              string // just the number
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// App
	DBPath       string        // SQLite path
	FileSuffix   string        // accepted file-type suffix, e.g. ".pdf"
	SearchWindow time.Duration // trailing recency window for searches

	// Outbound reply rate limiting
	ReplyRPS   float64 // sends per second (>= 0)
	ReplyBurst int     // bucket size (>= 1)

	CORS CORSConfig
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Telegram
		BotToken:    getenv("BOT_TOKEN", ""),
		Trigger:     getenv("TRIGGER_COMMAND", "/search"),
		PollTimeout: getdur("POLL_TIMEOUT", 30*time.Second),

		// Admin HTTP server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// App
		DBPath:       getenv("DB_PATH", "documents.db"),
		FileSuffix:   strings.ToLower(getenv("FILE_SUFFIX", ".pdf")),
		SearchWindow: getdur("SEARCH_WINDOW", 7*24*time.Hour),

		// Outbound rate limiting
		ReplyRPS:   getfloat("REPLY_RPS", 25.0),
		ReplyBurst: getint("REPLY_BURST", 5),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "docbot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if !strings.HasPrefix(cfg.Trigger, "/") {
		cfg.Trigger = "/" + cfg.Trigger
	}
	if !strings.HasPrefix(cfg.FileSuffix, ".") {
		cfg.FileSuffix = "." + cfg.FileSuffix
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.SearchWindow <= 0 {
		return cfg, errors.New("SEARCH_WINDOW must be a positive duration")
	}
	if cfg.PollTimeout <= 0 {
		return cfg, errors.New("POLL_TIMEOUT must be a positive duration")
	}
	if len(cfg.Trigger) < 2 {
		return cfg, errors.New("TRIGGER_COMMAND must not be empty")
	}
	if cfg.ReplyRPS < 0 {
		return cfg, errors.New("REPLY_RPS must be >= 0")
	}
	if cfg.ReplyBurst < 1 {
		return cfg, errors.New("REPLY_BURST must be >= 1")
	}

	return cfg, nil
}

// --- env helpers ---

func getenv(key, def string) string {
	return sysutil.FirstNonEmpty(os.Getenv(key), def)
}

func getdur(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

func getint(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

func getbool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if sysutil.IsTruthy(v) {
			return true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
