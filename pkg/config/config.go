package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig                 `yaml:"app"`
	Server     ServerConfig              `yaml:"server"`
	Providers  map[string]ProviderConfig `yaml:"providers"`
	Engine     EngineConfig              `yaml:"engine"`
	Tools      ToolsConfig               `yaml:"tools"`
	Store      StoreConfig               `yaml:"store"`
	Governance GovernanceConfig          `yaml:"governance"`
}

type AppConfig struct {
	Name      string `yaml:"name"`
	PromptDir string `yaml:"prompt_dir"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type EngineConfig struct {
	MaxIterations int  `yaml:"max_iterations"`
	Streaming     bool `yaml:"streaming"`
}

type ToolsConfig struct {
	Search     *bool `yaml:"search"`
	Wikipedia  *bool `yaml:"wikipedia"`
	Calculator *bool `yaml:"calculator"`
}

type StoreConfig struct {
	Path       string `yaml:"path"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type GovernanceConfig struct {
	DeniedTools    []string `yaml:"denied_tools"`
	DeniedPatterns []string `yaml:"denied_patterns"`
}

// Load reads a YAML config file and applies defaults for anything unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with all defaults applied, for running without a
// config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "rewoo"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Engine.MaxIterations == 0 {
		c.Engine.MaxIterations = 10
	}
	if c.Store.Path == "" {
		c.Store.Path = "rewoo.db"
	}
	if c.Store.TTLSeconds == 0 {
		c.Store.TTLSeconds = 3600
	}
}

// GetDefaultProvider returns the first enabled provider.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// ToolEnabled reports whether a tool is enabled; tools default to enabled.
func (c *Config) ToolEnabled(name string) bool {
	var flag *bool
	switch name {
	case "search":
		flag = c.Tools.Search
	case "wikipedia":
		flag = c.Tools.Wikipedia
	case "calculator":
		flag = c.Tools.Calculator
	}
	return flag == nil || *flag
}
