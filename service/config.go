package service

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration.
type Config struct {
	Listen      string     `yaml:"listen"`
	DBPath      string     `yaml:"db_path"`
	MaxUploadMB int        `yaml:"max_upload_mb"`
	ChunkChars  int        `yaml:"chunk_chars"`
	LLM         LLMConfig  `yaml:"llm"`
	Auth        AuthConfig `yaml:"auth"`
}

// LLMConfig configures the extraction model client. An empty endpoint
// selects the noop client (extraction returns zero questions).
type LLMConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// AuthConfig configures HTTP basic auth. With an empty PasswordHash the
// API is open (local tooling mode).
type AuthConfig struct {
	User         string `yaml:"user"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:      ":8086",
		DBPath:      "surveypipe.db",
		MaxUploadMB: 50,
		ChunkChars:  200_000,
		LLM: LLMConfig{
			Model:      "gemini-2.5-pro",
			TimeoutSec: 300,
		},
		Auth: AuthConfig{User: "admin"},
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig
// merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be > 0")
	}
	if c.ChunkChars <= 0 {
		return fmt.Errorf("chunk_chars must be > 0")
	}
	if c.Auth.PasswordHash != "" && c.Auth.User == "" {
		return fmt.Errorf("auth.user is required when auth.password_hash is set")
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) * 1024 * 1024 }

// LLMTimeout returns the model call timeout as a duration.
func (c *Config) LLMTimeout() time.Duration { return time.Duration(c.LLM.TimeoutSec) * time.Second }
