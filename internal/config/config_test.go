package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	config := Default()

	// LLM defaults
	if config.LLM.Provider != "" {
		t.Errorf("expected empty Provider, got '%s'", config.LLM.Provider)
	}
	if config.LLM.Timeout != 15*time.Second {
		t.Errorf("expected Timeout 15s, got %v", config.LLM.Timeout)
	}
	if config.LLM.Model != "gemini-2.5-flash-lite" {
		t.Errorf("expected Model 'gemini-2.5-flash-lite', got '%s'", config.LLM.Model)
	}

	// Catalog defaults
	if config.Catalog.Path != "makanbot.db" {
		t.Errorf("expected Catalog.Path 'makanbot.db', got '%s'", config.Catalog.Path)
	}
	if config.Catalog.PageSize != 10 {
		t.Errorf("expected PageSize 10, got %d", config.Catalog.PageSize)
	}

	// Server defaults
	if config.Server.Addr != ":8080" {
		t.Errorf("expected Addr ':8080', got '%s'", config.Server.Addr)
	}

	// Session defaults
	if config.Session.TTL != 30*time.Minute {
		t.Errorf("expected Session.TTL 30m, got %v", config.Session.TTL)
	}

	// Logging defaults
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
llm:
  provider: gemini
  api_key: test-key
  model: gemini-2.5-pro
  timeout: 10s

catalog:
  path: /var/lib/makanbot/places.db
  page_size: 25

server:
  addr: ":9090"

session:
  ttl: 1h
  max_turns: 50
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.LLM.Provider != "gemini" {
		t.Errorf("expected Provider 'gemini', got '%s'", config.LLM.Provider)
	}
	if config.LLM.APIKey != "test-key" {
		t.Errorf("expected APIKey 'test-key', got '%s'", config.LLM.APIKey)
	}
	if config.LLM.Model != "gemini-2.5-pro" {
		t.Errorf("expected Model 'gemini-2.5-pro', got '%s'", config.LLM.Model)
	}
	if config.Catalog.Path != "/var/lib/makanbot/places.db" {
		t.Errorf("expected Catalog.Path '/var/lib/makanbot/places.db', got '%s'", config.Catalog.Path)
	}
	if config.Catalog.PageSize != 25 {
		t.Errorf("expected PageSize 25, got %d", config.Catalog.PageSize)
	}
	if config.Server.Addr != ":9090" {
		t.Errorf("expected Addr ':9090', got '%s'", config.Server.Addr)
	}
	if config.Session.TTL != time.Hour {
		t.Errorf("expected Session.TTL 1h, got %v", config.Session.TTL)
	}
	if config.Session.MaxTurns != 50 {
		t.Errorf("expected Session.MaxTurns 50, got %d", config.Session.MaxTurns)
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
llm:
  provider: gemini
  api_key: ${TEST_API_KEY}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set the env var
	os.Setenv("TEST_API_KEY", "expanded-key-value")
	defer os.Unsetenv("TEST_API_KEY")

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.LLM.APIKey != "expanded-key-value" {
		t.Errorf("expected APIKey 'expanded-key-value', got '%s'", config.LLM.APIKey)
	}
}

func TestEnvOverrides(t *testing.T) {
	// Save and restore env vars
	origProvider := os.Getenv("MAKANBOT_LLM_PROVIDER")
	origKey := os.Getenv("OPENAI_API_KEY")
	origPath := os.Getenv("MAKANBOT_DB_PATH")
	origAddr := os.Getenv("MAKANBOT_ADDR")
	defer func() {
		os.Setenv("MAKANBOT_LLM_PROVIDER", origProvider)
		os.Setenv("OPENAI_API_KEY", origKey)
		os.Setenv("MAKANBOT_DB_PATH", origPath)
		os.Setenv("MAKANBOT_ADDR", origAddr)
	}()

	// Set env vars
	os.Setenv("MAKANBOT_LLM_PROVIDER", "openai")
	os.Setenv("OPENAI_API_KEY", "env-openai-key")
	os.Setenv("MAKANBOT_DB_PATH", "/tmp/places.db")
	os.Setenv("MAKANBOT_ADDR", ":7070")

	config := Default()
	applyEnvOverrides(config)

	if config.LLM.Provider != "openai" {
		t.Errorf("expected Provider 'openai', got '%s'", config.LLM.Provider)
	}
	if config.LLM.APIKey != "env-openai-key" {
		t.Errorf("expected APIKey from env, got '%s'", config.LLM.APIKey)
	}
	if config.Catalog.Path != "/tmp/places.db" {
		t.Errorf("expected Catalog.Path '/tmp/places.db', got '%s'", config.Catalog.Path)
	}
	if config.Server.Addr != ":7070" {
		t.Errorf("expected Addr ':7070', got '%s'", config.Server.Addr)
	}
}

func TestValidate_Valid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_InvalidProvider(t *testing.T) {
	config := Default()
	config.LLM.Provider = "invalid-provider"
	if err := config.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}
}

func TestValidate_ValidProviders(t *testing.T) {
	validProviders := []string{"", "gemini", "openai"}

	for _, provider := range validProviders {
		t.Run(provider, func(t *testing.T) {
			config := Default()
			config.LLM.Provider = provider
			if err := config.Validate(); err != nil {
				t.Errorf("expected provider '%s' to be valid, got error: %v", provider, err)
			}
		})
	}
}

func TestValidate_NegativeTimeout(t *testing.T) {
	config := Default()
	config.LLM.Timeout = -time.Second
	if err := config.Validate(); err == nil {
		t.Error("expected validation error for negative timeout")
	}
}

func TestRedactedAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"empty", "", ""},
		{"short", "abc", "(set)"},
		{"exactly 11 chars", "abcdefghijk", "(set)"},
		{"exactly 12 chars", "abcdefghijkl", "abcd...ijkl"},
		{"normal", "AIzaSyAbcdefghijklmnop", "AIza...mnop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LLMConfig{APIKey: tt.key}
			got := cfg.RedactedAPIKey()
			if got != tt.want {
				t.Errorf("RedactedAPIKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLLMConfigString(t *testing.T) {
	cfg := LLMConfig{
		Provider: "gemini",
		APIKey:   "AIzaSySecretKey1234567890",
		Model:    "gemini-2.5-flash-lite",
	}

	s := cfg.String()

	// Must not contain the full API key
	if strings.Contains(s, cfg.APIKey) {
		t.Errorf("String() must not contain full API key, got: %s", s)
	}

	// Must contain the redacted version
	if !strings.Contains(s, cfg.RedactedAPIKey()) {
		t.Errorf("String() should contain redacted key %q, got: %s", cfg.RedactedAPIKey(), s)
	}

	// Must contain provider and model info
	if !strings.Contains(s, "gemini") {
		t.Errorf("String() should contain provider, got: %s", s)
	}
	if !strings.Contains(s, "gemini-2.5-flash-lite") {
		t.Errorf("String() should contain model, got: %s", s)
	}
}

func TestEnvOverrides_LogLevel(t *testing.T) {
	origLogLevel := os.Getenv("MAKANBOT_LOG_LEVEL")
	defer os.Setenv("MAKANBOT_LOG_LEVEL", origLogLevel)

	os.Setenv("MAKANBOT_LOG_LEVEL", "debug")

	config := Default()
	applyEnvOverrides(config)

	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile_LoggingConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: trace
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Logging.Level != "trace" {
		t.Errorf("expected Logging.Level 'trace', got '%s'", config.Logging.Level)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	config := Default()
	config.Logging.Level = "verbose"
	if err := config.Validate(); err == nil {
		t.Error("expected validation error for invalid log level")
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	validLevels := []string{"", "info", "debug", "trace"}

	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			config := Default()
			config.Logging.Level = level
			if err := config.Validate(); err != nil {
				t.Errorf("expected log level '%s' to be valid, got error: %v", level, err)
			}
		})
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
llm:
  provider: [invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
