// Package config provides unified configuration loading for makanbot.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/foodkaki/makanbot/internal/session"
)

// Config contains all makanbot configuration settings.
type Config struct {
	// LLM contains settings for the generate-text capability.
	LLM LLMConfig `json:"llm" yaml:"llm"`

	// Catalog contains settings for the place catalog store.
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`

	// Server contains settings for the HTTP chat API.
	Server ServerConfig `json:"server" yaml:"server"`

	// Session contains settings for conversation tracking.
	Session session.Config `json:"session" yaml:"session"`

	// Recommend contains settings for the recommendation pipeline.
	Recommend RecommendConfig `json:"recommend" yaml:"recommend"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// LoggingConfig configures makanbot's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to <data_dir>/decisions.jsonl.
	// "trace" additionally includes full LLM prompt/response content.
	Level string `json:"level" yaml:"level"`
}

// LLMConfig configures the generate-text backend used by the gap-filler
// and the result ranker.
type LLMConfig struct {
	// Provider identifies the backend: "gemini", "openai", or "" for disabled.
	Provider string `json:"provider" yaml:"provider"`

	// APIKey is the API key for the provider. Supports ${VAR} syntax for env vars.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint. Used for OpenAI-compatible endpoints.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Model is the model identifier for generation requests.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Timeout is the maximum duration to wait for LLM responses.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// RedactedAPIKey returns the API key with most characters masked.
// Shows first 4 and last 4 characters, e.g., "AIza...xyz9".
// Returns "" for empty keys and "(set)" for keys shorter than 12 chars.
func (c LLMConfig) RedactedAPIKey() string {
	if c.APIKey == "" {
		return ""
	}
	if len(c.APIKey) < 12 {
		return "(set)"
	}
	return c.APIKey[:4] + "..." + c.APIKey[len(c.APIKey)-4:]
}

// String implements fmt.Stringer to prevent accidental API key logging.
// It returns a representation with the API key redacted.
func (c LLMConfig) String() string {
	return fmt.Sprintf("LLMConfig{Provider:%s, APIKey:%s, Model:%s}",
		c.Provider, c.RedactedAPIKey(), c.Model)
}

// CatalogConfig configures the place catalog store.
type CatalogConfig struct {
	// Path is the SQLite database file path.
	Path string `json:"path" yaml:"path"`

	// PageSize caps candidates fetched per retrieval path.
	PageSize int `json:"page_size" yaml:"page_size"`
}

// ServerConfig configures the HTTP chat API.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr" yaml:"addr"`

	// DataDir holds session snapshots and decision logs.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// RecommendConfig configures the recommendation pipeline.
type RecommendConfig struct {
	// SuggestLimit caps fuzzy area-name suggestions in diagnostics.
	SuggestLimit int `json:"suggest_limit" yaml:"suggest_limit"`

	// GenerateTimeout bounds each generate-text call in the pipeline.
	GenerateTimeout time.Duration `json:"generate_timeout" yaml:"generate_timeout"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "",
			APIKey:   "",
			Model:    "gemini-2.5-flash-lite",
			Timeout:  15 * time.Second,
		},
		Catalog: CatalogConfig{
			Path:     "makanbot.db",
			PageSize: 10,
		},
		Server: ServerConfig{
			Addr:    ":8080",
			DataDir: ".makanbot",
		},
		Session: session.DefaultConfig(),
		Recommend: RecommendConfig{
			SuggestLimit:    3,
			GenerateTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.makanbot/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	// Try to load from default config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".makanbot", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in API key
	config.LLM.APIKey = expandEnvVars(config.LLM.APIKey)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	validProviders := map[string]bool{"": true, "gemini": true, "openai": true}
	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid provider: %s (valid: gemini, openai, or empty)", c.LLM.Provider)
	}

	if c.LLM.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", c.LLM.Timeout)
	}

	if c.Catalog.PageSize < 0 {
		return fmt.Errorf("page_size must be non-negative, got %d", c.Catalog.PageSize)
	}

	if c.Session.TTL < 0 {
		return fmt.Errorf("session ttl must be non-negative, got %v", c.Session.TTL)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MAKANBOT_LLM_PROVIDER"); v != "" {
		config.LLM.Provider = v
	}

	if v := os.Getenv("GOOGLE_API_KEY"); v != "" && config.LLM.Provider == "gemini" {
		config.LLM.APIKey = v
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" && config.LLM.Provider == "openai" {
		config.LLM.APIKey = v
	}

	if v := os.Getenv("MAKANBOT_LLM_MODEL"); v != "" {
		config.LLM.Model = v
	}

	if v := os.Getenv("MAKANBOT_DB_PATH"); v != "" {
		config.Catalog.Path = v
	}

	if v := os.Getenv("MAKANBOT_ADDR"); v != "" {
		config.Server.Addr = v
	}

	if v := os.Getenv("MAKANBOT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Catalog.PageSize = n
		}
	}

	if v := os.Getenv("MAKANBOT_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
