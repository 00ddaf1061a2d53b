package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ConsolePort string
	LogLevel    string

	ClassifyEndpoint        string
	ClassifyTimeoutSeconds  int
	ClassifyErrorPrecedence string

	MaxUploadMB           int
	TextPreviewMaxKB      int
	SessionIdleTTLMinutes int
	SessionSweepSeconds   int

	APIRateLimitRPS       float64
	APIRateLimitBurst     int
	APIMaxInFlight        int
	APIBackpressureWaitMS int

	BreakerEnabled         bool
	BreakerMinRequests     int
	BreakerFailureRatio    float64
	BreakerOpenTimeoutSecs int

	NATSURL     string
	NATSSubject string
}

// Load reads .env (when present), then the YAML file named by
// CONSOLE_CONFIG_FILE, then the process environment. The environment wins.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "error", err)
	}

	src := source{}
	if path := os.Getenv("CONSOLE_CONFIG_FILE"); path != "" {
		values, err := readYAML(path)
		if err != nil {
			slog.Warn("config_file_ignored", "path", path, "error", err)
		} else {
			src.file = values
		}
	}
	return src.load()
}

func (s source) load() Config {
	return Config{
		ConsolePort: s.mustEnv("CONSOLE_PORT", "3000"),
		LogLevel:    s.mustEnv("LOG_LEVEL", "info"),

		ClassifyEndpoint:        s.mustEnv("CLASSIFY_ENDPOINT", "http://localhost:8000/classify"),
		ClassifyTimeoutSeconds:  s.mustEnvInt("CLASSIFY_TIMEOUT_SECONDS", 120),
		ClassifyErrorPrecedence: s.mustEnv("CLASSIFY_ERROR_PRECEDENCE", "generic"),

		MaxUploadMB:           s.mustEnvInt("MAX_UPLOAD_MB", 50),
		TextPreviewMaxKB:      s.mustEnvInt("TEXT_PREVIEW_MAX_KB", 2048),
		SessionIdleTTLMinutes: s.mustEnvInt("SESSION_IDLE_TTL_MINUTES", 30),
		SessionSweepSeconds:   s.mustEnvInt("SESSION_SWEEP_SECONDS", 60),

		APIRateLimitRPS:       s.mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:     s.mustEnvInt("API_RATE_LIMIT_BURST", 0),
		APIMaxInFlight:        s.mustEnvInt("API_MAX_IN_FLIGHT", 0),
		APIBackpressureWaitMS: s.mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),

		BreakerEnabled:         s.mustEnvBool("BREAKER_ENABLED", true),
		BreakerMinRequests:     s.mustEnvInt("BREAKER_MIN_REQUESTS", 5),
		BreakerFailureRatio:    s.mustEnvFloat("BREAKER_FAILURE_RATIO", 0.5),
		BreakerOpenTimeoutSecs: s.mustEnvInt("BREAKER_OPEN_TIMEOUT_SECONDS", 30),

		NATSURL:     s.mustEnv("NATS_URL", ""),
		NATSSubject: s.mustEnv("NATS_SUBJECT", "classifier.console.submissions"),
	}
}

// source resolves a key from the environment, then from the config file.
type source struct {
	file map[string]string
}

func readYAML(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	values := make(map[string]string, len(doc))
	for key, value := range doc {
		if value == nil {
			continue
		}
		values[strings.ToUpper(strings.TrimSpace(key))] = fmt.Sprint(value)
	}
	return values, nil
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

func (s source) mustEnv(key, fallback string) string {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	return v
}

func (s source) mustEnvInt(key string, fallback int) int {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) mustEnvFloat(key string, fallback float64) float64 {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) mustEnvBool(key string, fallback bool) bool {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
