package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models newsdesk.yml.
type Config struct {
	Server struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret       string `yaml:"jwt_secret"`
		TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
	} `yaml:"auth"`
	Index struct {
		Enabled   bool   `yaml:"enabled"`
		RedisAddr string `yaml:"redis_addr"`
		RedisDB   int    `yaml:"redis_db"`
		Prefix    string `yaml:"prefix"`
	} `yaml:"index"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("config.auth.token_ttl_minutes must be positive")
	}
	if c.Index.Enabled && c.Index.RedisAddr == "" {
		return fmt.Errorf("config.index.redis_addr is required when the index is enabled")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "newsdesk.yml")
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; generate one with nd config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.Server.BasePath = "/v1"
	cfg.Auth.TokenTTLMinutes = 60
	cfg.Index.Prefix = "newsdesk:articles"
	return &cfg
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

const defaultTemplate = `server:
  addr: ":8080"
  base_path: /v1

auth:
  # HS256 signing secret for access tokens. Required for nd serve.
  jwt_secret: ""
  token_ttl_minutes: 60

index:
  # Best-effort search index. Failures never fail a write.
  enabled: false
  redis_addr: "localhost:6379"
  redis_db: 0
  prefix: "newsdesk:articles"
`
