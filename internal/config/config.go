// Package config loads application configuration from environment
// variables with an optional YAML file underlay. Environment variables
// win; the file fills in what the environment leaves unset.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces every environment variable, e.g. ERP_SERVER_PORT.
const envPrefix = "ERP"

// Config is the complete application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Upload     UploadConfig     `yaml:"upload" envconfig:"UPLOAD"`
	Analysis   AnalysisConfig   `yaml:"analysis" envconfig:"ANALYSIS"`
	Enrichment EnrichmentConfig `yaml:"enrichment" envconfig:"ENRICHMENT"`
	WebSocket  WebSocketConfig  `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	AnalysisTimeout time.Duration `yaml:"analysis_timeout" envconfig:"ANALYSIS_TIMEOUT" default:"5m"`
}

// SecurityConfig contains CORS and rate limiting configuration.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig throttles the API per client IP.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration. Output is always JSON.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`
}

// UploadConfig bounds file intake.
type UploadConfig struct {
	MaxFileBytes int64 `yaml:"max_file_bytes" envconfig:"MAX_FILE_BYTES" default:"26214400"`
	MaxFiles     int   `yaml:"max_files" envconfig:"MAX_FILES" default:"10"`
	MaxRows      int   `yaml:"max_rows" envconfig:"MAX_ROWS" default:"200000"`
}

// AnalysisConfig carries the aging windows used by the analyzers.
type AnalysisConfig struct {
	DeadStockDays int `yaml:"dead_stock_days" envconfig:"DEAD_STOCK_DAYS" default:"180"`
	OverstockDays int `yaml:"overstock_days" envconfig:"OVERSTOCK_DAYS" default:"90"`
	AgedStockDays int `yaml:"aged_stock_days" envconfig:"AGED_STOCK_DAYS" default:"90"`
}

// EnrichmentConfig selects the optional LLM summary polish endpoint.
// Enrichment is off when BaseURL or APIKey is empty.
type EnrichmentConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL"`
	APIKey  string        `yaml:"api_key" envconfig:"API_KEY"`
	Model   string        `yaml:"model" envconfig:"MODEL" default:"gpt-4o-mini"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"10s"`
}

// WebSocketConfig contains live status stream configuration.
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// Load builds the configuration from the environment plus an optional
// config file.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if path := configFilePath(); path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays env values onto the file values. Only fields the
// environment left at zero fall back to the file.
func merge(fileCfg, envCfg Config) Config {
	if envCfg.Server.Port == 0 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if envCfg.Server.ReadTimeout == 0 {
		envCfg.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if envCfg.Server.WriteTimeout == 0 {
		envCfg.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if envCfg.Server.AnalysisTimeout == 0 {
		envCfg.Server.AnalysisTimeout = fileCfg.Server.AnalysisTimeout
	}
	if envCfg.Upload.MaxFileBytes == 0 {
		envCfg.Upload.MaxFileBytes = fileCfg.Upload.MaxFileBytes
	}
	if envCfg.Enrichment.BaseURL == "" {
		envCfg.Enrichment.BaseURL = fileCfg.Enrichment.BaseURL
	}
	if envCfg.Enrichment.APIKey == "" {
		envCfg.Enrichment.APIKey = fileCfg.Enrichment.APIKey
	}
	if envCfg.Analysis.DeadStockDays == 0 {
		envCfg.Analysis.DeadStockDays = fileCfg.Analysis.DeadStockDays
	}
	if envCfg.Analysis.OverstockDays == 0 {
		envCfg.Analysis.OverstockDays = fileCfg.Analysis.OverstockDays
	}
	if envCfg.Analysis.AgedStockDays == 0 {
		envCfg.Analysis.AgedStockDays = fileCfg.Analysis.AgedStockDays
	}
	return envCfg
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Upload.MaxFileBytes <= 0 {
		return fmt.Errorf("upload max file bytes must be positive")
	}
	if c.Upload.MaxFiles <= 0 {
		return fmt.Errorf("upload max files must be positive")
	}
	if c.Analysis.DeadStockDays <= 0 || c.Analysis.OverstockDays <= 0 || c.Analysis.AgedStockDays <= 0 {
		return fmt.Errorf("analysis aging windows must be positive")
	}

	// Structured JSON output only.
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	return nil
}

// configFilePath finds the optional YAML file in the conventional
// locations, nearest first.
func configFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Default returns the built-in configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			AnalysisTimeout: 5 * time.Minute,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Upload: UploadConfig{
			MaxFileBytes: 25 << 20,
			MaxFiles:     10,
			MaxRows:      200_000,
		},
		Analysis: AnalysisConfig{
			DeadStockDays: 180,
			OverstockDays: 90,
			AgedStockDays: 90,
		},
		Enrichment: EnrichmentConfig{
			Model:   "gpt-4o-mini",
			Timeout: 10 * time.Second,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
