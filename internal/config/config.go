// Package config handles application configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Database   DatabaseConfig  `yaml:"database"`
	Auth       AuthConfig      `yaml:"auth"`
	RateLimits RateLimitConfig `yaml:"rate_limits"`
	Logging    LoggingConfig   `yaml:"logging"`
	Lexicon    LexiconConfig   `yaml:"lexicon"`
	Samples    SamplesConfig   `yaml:"samples"`
	Scoring    ScoringConfig   `yaml:"scoring"`
	Batch      BatchConfig     `yaml:"batch"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	PingMessage string   `yaml:"ping_message"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, memory
	Path   string `yaml:"path"`   // for sqlite
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
	// BootstrapKey is seeded as an API key at startup so the admin
	// endpoints are reachable once auth is on. SENTINEL_BOOTSTRAP_KEY wins.
	BootstrapKey string `yaml:"bootstrap_key"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"default_requests_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type LexiconConfig struct {
	Path string `yaml:"path"` // empty uses the built-in tables
}

type SamplesConfig struct {
	Dir string `yaml:"dir"` // empty uses the embedded fixtures
}

type ScoringConfig struct {
	Weights    WeightsConfig    `yaml:"weights"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
}

type WeightsConfig struct {
	Keyword     float64 `yaml:"keyword"`
	Urgency     float64 `yaml:"urgency"`
	Domain      float64 `yaml:"domain"`
	CallerSpoof float64 `yaml:"caller_spoof"`
	Deepfake    float64 `yaml:"deepfake"`
}

type ThresholdsConfig struct {
	MinBlinkRatePerMin float64 `yaml:"min_blink_rate_per_min"`
	MinLipSyncScore    float64 `yaml:"min_lip_sync_score"`
}

type BatchConfig struct {
	MaxItems int `yaml:"max_items"`
	Workers  int `yaml:"workers"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"*"},
			PingMessage: "ping",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/sentinel.db",
		},
		RateLimits: RateLimitConfig{
			RequestsPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Scoring: ScoringConfig{
			Weights: WeightsConfig{
				Keyword:     0.25,
				Urgency:     0.15,
				Domain:      0.20,
				CallerSpoof: 0.25,
				Deepfake:    0.25,
			},
			Thresholds: ThresholdsConfig{
				MinBlinkRatePerMin: 6,
				MinLipSyncScore:    0.7,
			},
		},
		Batch: BatchConfig{
			MaxItems: 500,
			Workers:  4,
		},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run with --generate-config to create one)", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Interpolate environment variables
	content := interpolateEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// GenerateSample creates a sample configuration file.
func GenerateSample(path string) error {
	sample := `# Sentinel Configuration

server:
  port: 8080
  cors_origins: ["*"]
  ping_message: ping  # PING_MESSAGE overrides

database:
  driver: sqlite  # sqlite or memory
  path: ./data/sentinel.db

auth:
  enabled: false  # require Bearer API keys on /api/fraud/*, /api/audit and /api/admin/*
  bootstrap_key: ""  # first admin key; prefer SENTINEL_BOOTSTRAP_KEY

rate_limits:
  default_requests_per_minute: 120

logging:
  level: info  # debug, info, warn, error
  format: json # json or text

lexicon:
  path: ""     # optional YAML file with keywords, urgency, suspicious_domains, caller_id_prefixes

samples:
  dir: ""      # optional directory with text/voice/video_samples.json

scoring:
  weights:
    keyword: 0.25
    urgency: 0.15
    domain: 0.20
    caller_spoof: 0.25
    deepfake: 0.25
  thresholds:
    min_blink_rate_per_min: 6
    min_lip_sync_score: 0.7

batch:
  max_items: 500
  workers: 4
`
	return os.WriteFile(path, []byte(sample), 0644)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if k := c.Auth.BootstrapKey; k != "" && len(k) < 16 {
		return fmt.Errorf("auth.bootstrap_key must be at least 16 characters")
	}

	if c.RateLimits.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limits.default_requests_per_minute must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("unsupported log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}

	w := c.Scoring.Weights
	for name, v := range map[string]float64{
		"keyword":      w.Keyword,
		"urgency":      w.Urgency,
		"domain":       w.Domain,
		"caller_spoof": w.CallerSpoof,
		"deepfake":     w.Deepfake,
	} {
		if v < 0 {
			return fmt.Errorf("scoring.weights.%s must not be negative", name)
		}
	}

	if c.Batch.MaxItems < 1 {
		return fmt.Errorf("batch.max_items must be at least 1")
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1")
	}

	return nil
}

// applyEnvOverrides applies the few settings the environment wins on.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PING_MESSAGE"); v != "" {
		c.Server.PingMessage = v
	}
	if v := os.Getenv("SENTINEL_BOOTSTRAP_KEY"); v != "" {
		c.Auth.BootstrapKey = v
	}
}

// interpolateEnvVars replaces ${VAR_NAME} with environment variable values.
func interpolateEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // Keep original if not set
	})
}
