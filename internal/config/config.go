package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const DefaultPort = "3000"

type Config struct {
	Port           string
	AllowedOrigins []string
	StaticDir      string
	LogLevel       string
	LogFormat      string
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	MessageRate    float64
	MessageBurst   int
	VerifyWins     bool
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Port:      get("PORT", DefaultPort),
		StaticDir: get("STATIC_DIR", ""),
		LogLevel:  get("LOG_LEVEL", "info"),
		LogFormat: get("LOG_FORMAT", "console"),
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("PORT: invalid port %q", cfg.Port)
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("LOG_FORMAT: must be console or json, got %q", cfg.LogFormat)
	}

	for _, origin := range strings.Split(get("ALLOWED_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	var err error
	if cfg.ReadTimeout, err = positiveDuration("READ_TIMEOUT", get("READ_TIMEOUT", "60s")); err != nil {
		return Config{}, err
	}
	if cfg.PingInterval, err = positiveDuration("PING_INTERVAL", get("PING_INTERVAL", "30s")); err != nil {
		return Config{}, err
	}
	if cfg.PingInterval >= cfg.ReadTimeout {
		return Config{}, fmt.Errorf("PING_INTERVAL (%s) must be shorter than READ_TIMEOUT (%s)", cfg.PingInterval, cfg.ReadTimeout)
	}

	if cfg.MessageRate, err = strconv.ParseFloat(get("MESSAGE_RATE", "10"), 64); err != nil || cfg.MessageRate <= 0 {
		return Config{}, errors.New("MESSAGE_RATE: must be a positive number")
	}
	if cfg.MessageBurst, err = strconv.Atoi(get("MESSAGE_BURST", "20")); err != nil || cfg.MessageBurst < 1 {
		return Config{}, errors.New("MESSAGE_BURST: must be a positive integer")
	}
	if cfg.VerifyWins, err = strconv.ParseBool(get("VERIFY_WINS", "false")); err != nil {
		return Config{}, fmt.Errorf("VERIFY_WINS: %w", err)
	}
	return cfg, nil
}

func positiveDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}
	return d, nil
}
