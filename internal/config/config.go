package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/pdfocr/internal/domain"
)

// Config holds the pdfocr API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Fetch      FetchConfig      `yaml:"fetch"`
	OCR        OCRConfig        `yaml:"ocr"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// Enabled reports whether at least one non-empty API key is configured.
func (a AuthConfig) Enabled() bool {
	for _, k := range a.APIKeys {
		if k != "" {
			return true
		}
	}
	return false
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// DatabaseConfig holds database connection settings.
// The database only backs rate limiting and is off unless Enabled is set.
type DatabaseConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RateLimitConfig holds fixed-window rate limit settings.
type RateLimitConfig struct {
	RequestsPerWindow int    `yaml:"requests_per_window"` // 0 = disabled
	WindowSec         int    `yaml:"window_sec"`
	KeyPrefix         string `yaml:"key_prefix"`
}

// FetchConfig holds document download settings.
type FetchConfig struct {
	TimeoutSec       int    `yaml:"timeout_sec"`
	MaxBytes         int64  `yaml:"max_bytes"`
	UserAgent        string `yaml:"user_agent"`
	MaxRetries       int    `yaml:"max_retries"`
	InitialBackoffMs int    `yaml:"initial_backoff_ms"`
}

// OCRConfig selects and configures the recognition engine.
type OCRConfig struct {
	Engine string       `yaml:"engine"` // tesseract (default), openai
	OpenAI OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig holds vision model settings for the openai engine.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// ExtractionConfig holds document pipeline settings.
type ExtractionConfig struct {
	MaxPages           int    `yaml:"max_pages"` // at most 10
	PageTimeoutSec     int    `yaml:"page_timeout_sec"`
	RequestTimeoutSec  int    `yaml:"request_timeout_sec"`
	OnRecognitionError string `yaml:"on_recognition_error"` // degrade (default), fail
	ValidateStructure  bool   `yaml:"validate_structure"`
}

// Engines.
const (
	EngineTesseract = "tesseract"
	EngineOpenAI    = "openai"
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expanding ${VAR} references, then applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 180
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 60
	}
	if c.RateLimit.KeyPrefix == "" {
		c.RateLimit.KeyPrefix = "pdfocr:"
	}
	if c.Fetch.TimeoutSec <= 0 {
		c.Fetch.TimeoutSec = 30
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = 50 << 20
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "Mozilla/5.0"
	}
	if c.Fetch.MaxRetries < 0 {
		c.Fetch.MaxRetries = 0
	}
	if c.Fetch.InitialBackoffMs <= 0 {
		c.Fetch.InitialBackoffMs = 200
	}
	if c.OCR.Engine == "" {
		c.OCR.Engine = EngineTesseract
	}
	if c.Extraction.MaxPages <= 0 {
		c.Extraction.MaxPages = domain.MaxPages
	}
	if c.Extraction.PageTimeoutSec <= 0 {
		c.Extraction.PageTimeoutSec = 60
	}
	if c.Extraction.RequestTimeoutSec <= 0 {
		c.Extraction.RequestTimeoutSec = 170
	}
	if c.Extraction.OnRecognitionError == "" {
		c.Extraction.OnRecognitionError = "degrade"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.Enabled {
		switch c.Database.Driver {
		case "valkey", "redis":
		default:
			return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
		}
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required when database is enabled")
		}
	}
	if c.RateLimit.RequestsPerWindow < 0 {
		return fmt.Errorf("rate_limit.requests_per_window must not be negative, got %d", c.RateLimit.RequestsPerWindow)
	}
	switch c.OCR.Engine {
	case EngineTesseract:
	case EngineOpenAI:
		if c.OCR.OpenAI.Model == "" {
			return fmt.Errorf("ocr.openai.model is required for the openai engine")
		}
	default:
		return fmt.Errorf("ocr.engine must be %q or %q, got %q", EngineTesseract, EngineOpenAI, c.OCR.Engine)
	}
	if c.Extraction.MaxPages < 1 || c.Extraction.MaxPages > domain.MaxPages {
		return fmt.Errorf("extraction.max_pages must be between 1 and %d, got %d", domain.MaxPages, c.Extraction.MaxPages)
	}
	switch c.Extraction.OnRecognitionError {
	case "degrade", "fail":
	default:
		return fmt.Errorf(
			"extraction.on_recognition_error must be \"degrade\" or \"fail\", got %q",
			c.Extraction.OnRecognitionError,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
