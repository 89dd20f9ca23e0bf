package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Market  MarketConfig  `yaml:"market"`
	Session SessionConfig `yaml:"session"`
	Insight InsightConfig `yaml:"insight"`
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type StoreConfig struct {
	Sqlite SqliteConfig `yaml:"sqlite"`
}

// SqliteConfig holds the lookup log location. An empty path disables it.
type SqliteConfig struct {
	Path string `yaml:"path"`
}

type MarketConfig struct {
	BaseURL           string             `yaml:"base_url" validate:"omitempty,url"`
	APIKey            string             `yaml:"api_key"`
	TimeoutMs         int                `yaml:"timeout_ms" validate:"gte=0"`
	RequestsPerMinute int                `yaml:"requests_per_minute" validate:"gte=0"`
	DefaultTimeframe  string             `yaml:"default_timeframe" validate:"oneof=1M 3M 1Y 5Y"`
	ParseFailure      ParseFailureConfig `yaml:"parse_failure"`
}

// ParseFailureConfig picks what unparseable numeric fields become, per
// record type: "nan" or "zero".
type ParseFailureConfig struct {
	Quote        string `yaml:"quote" validate:"oneof=nan zero"`
	Fundamentals string `yaml:"fundamentals" validate:"oneof=nan zero"`
	Series       string `yaml:"series" validate:"oneof=nan zero"`
}

type SessionConfig struct {
	MaxSessions int `yaml:"max_sessions" validate:"gte=0"`
}

type InsightConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Backend         string  `yaml:"backend" validate:"oneof=gemini openai"`
	Model           string  `yaml:"model"`
	APIKey          string  `yaml:"api_key"`
	BaseURL         string  `yaml:"base_url" validate:"omitempty,url"`
	ByAzure         bool    `yaml:"by_azure"`
	APIVersion      string  `yaml:"api_version"`
	TimeoutMs       int     `yaml:"timeout_ms" validate:"gte=0"`
	Temperature     float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	TopK            int     `yaml:"top_k" validate:"gte=0"`
	TopP            float32 `yaml:"top_p" validate:"gte=0,lte=1"`
	MaxOutputTokens int     `yaml:"max_output_tokens" validate:"gte=0"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
		Store: StoreConfig{
			Sqlite: SqliteConfig{Path: "data/lookups.db"},
		},
		Market: MarketConfig{
			BaseURL:          "https://www.alphavantage.co/query",
			DefaultTimeframe: "1M",
			ParseFailure: ParseFailureConfig{
				Quote:        "nan",
				Fundamentals: "zero",
				Series:       "nan",
			},
		},
		Session: SessionConfig{MaxSessions: 1000},
		Insight: InsightConfig{
			Enabled:         false,
			Backend:         "gemini",
			TimeoutMs:       20000,
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 1024,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.Market.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.Sqlite.Path = v
	}
	switch strings.ToLower(cfg.Insight.Backend) {
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.Insight.APIKey = v
		}
	default:
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			cfg.Insight.APIKey = v
		}
	}
	return nil
}

func normalize(cfg *Config) {
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Market.DefaultTimeframe = strings.ToUpper(strings.TrimSpace(cfg.Market.DefaultTimeframe))
	cfg.Market.ParseFailure.Quote = strings.ToLower(strings.TrimSpace(cfg.Market.ParseFailure.Quote))
	cfg.Market.ParseFailure.Fundamentals = strings.ToLower(strings.TrimSpace(cfg.Market.ParseFailure.Fundamentals))
	cfg.Market.ParseFailure.Series = strings.ToLower(strings.TrimSpace(cfg.Market.ParseFailure.Series))
	cfg.Insight.Backend = strings.ToLower(strings.TrimSpace(cfg.Insight.Backend))
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
