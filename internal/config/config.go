package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Common errors
var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")
	ErrInvalidPort        = errors.New("PORT must be between 1 and 65535")
	ErrInvalidPool        = errors.New("database pool sizes must be positive")
)

// Config holds the API server configuration.
type Config struct {
	Port         int           `yaml:"port"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"`

	Database  Database  `yaml:"database"`
	RateLimit RateLimit `yaml:"rate_limit"`
}

// Database holds connection and pool settings.
type Database struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	SlowThreshold   time.Duration `yaml:"slow_threshold"`
}

// RateLimit throttles requests per second across the process. QPS 0 disables it.
type RateLimit struct {
	QPS   float64 `yaml:"qps"`
	Burst int     `yaml:"burst"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:         5050,
		QueryTimeout: 15 * time.Second,
		CORSOrigins: []string{
			"http://localhost:5173",
			"http://localhost:5174",
		},
		Database: Database{
			MaxOpenConns:    20,
			MaxIdleConns:    20,
			ConnMaxLifetime: 30 * time.Minute,
			SlowThreshold:   100 * time.Millisecond,
		},
	}
}

// Load reads the optional YAML file named by GM_CONFIG, then applies
// environment overrides.
//
// Environment variables:
//   - GM_CONFIG: path to a YAML config file (optional)
//   - PORT: listen port (default: 5050)
//   - DATABASE_URL: Postgres DSN (required)
//   - DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS: pool sizes (default: 20)
//   - DB_CONN_MAX_LIFETIME: e.g. "30m"
//   - DB_SLOW_THRESHOLD: slow query log threshold, e.g. "100ms"
//   - QUERY_TIMEOUT: per-query timeout, e.g. "15s"; 0 disables it
//   - RATE_LIMIT_QPS, RATE_LIMIT_BURST: request rate limit (default: off)
//   - CORS_ORIGINS: comma separated allow-list
func Load() (Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("GM_CONFIG")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	var err error
	setInt := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" && err == nil {
			n, e := strconv.Atoi(v)
			if e != nil {
				err = fmt.Errorf("invalid %s: %w", key, e)
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := strings.TrimSpace(getenv(key)); v != "" && err == nil {
			d, e := time.ParseDuration(v)
			if e != nil {
				err = fmt.Errorf("invalid %s: %w", key, e)
				return
			}
			*dst = d
		}
	}

	setFloat := func(key string, dst *float64) {
		if v := strings.TrimSpace(getenv(key)); v != "" && err == nil {
			f, e := strconv.ParseFloat(v, 64)
			if e != nil {
				err = fmt.Errorf("invalid %s: %w", key, e)
				return
			}
			*dst = f
		}
	}

	setInt("PORT", &cfg.Port)
	if v := strings.TrimSpace(getenv("DATABASE_URL")); v != "" {
		cfg.Database.URL = v
	}
	setInt("DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	setInt("DB_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns)
	setDuration("DB_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime)
	setDuration("DB_SLOW_THRESHOLD", &cfg.Database.SlowThreshold)
	setDuration("QUERY_TIMEOUT", &cfg.QueryTimeout)
	setFloat("RATE_LIMIT_QPS", &cfg.RateLimit.QPS)
	setInt("RATE_LIMIT_BURST", &cfg.RateLimit.Burst)
	if v := strings.TrimSpace(getenv("CORS_ORIGINS")); v != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	return err
}

// Validate checks that the configuration can start a server.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}
	if c.Port <= 0 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Database.MaxOpenConns <= 0 || c.Database.MaxIdleConns <= 0 {
		return ErrInvalidPool
	}
	return nil
}
