package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// MaskToken replaces secrets in any configuration copy that gets embedded
// in a persisted artifact.
const MaskToken = "******"

// Config holds the run configuration for the executor and reporter.
type Config struct {
	BaseURL               string            `yaml:"base_url"`
	Token                 string            `yaml:"token"`
	Headers               map[string]string `yaml:"headers"`
	TimeoutMs             int               `yaml:"timeout_ms"`
	Concurrency           int               `yaml:"concurrency"`
	PerformanceIterations int               `yaml:"performance_iterations"`
	ReportDir             string            `yaml:"report_dir"`
	LogDir                string            `yaml:"log_dir"`
	Database              DatabaseConfig    `yaml:"database"`
	LLM                   LLMConfig         `yaml:"llm"`
}

// DatabaseConfig holds the optional backing-store connection used for
// setup statements and data assertions.
type DatabaseConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// LLMConfig holds the optional LLM-assisted value generation settings.
type LLMConfig struct {
	Enabled     bool    `yaml:"enabled"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	if c.TimeoutMs == 0 {
		c.TimeoutMs = 30000
	}
	if c.Concurrency == 0 {
		c.Concurrency = 10
	}
	if c.PerformanceIterations == 0 {
		c.PerformanceIterations = 100
	}
	if c.ReportDir == "" {
		c.ReportDir = "reports"
	}
	if c.LogDir == "" {
		c.LogDir = "logs"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
}

// Load reads the configuration from the given path. A missing file is not
// an error: defaults apply. The AUTH_TOKEN environment variable overrides
// the file token when set.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %v", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %v", path, err)
	}

	if token := os.Getenv("AUTH_TOKEN"); token != "" {
		cfg.Token = token
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration back to the given path.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %v", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Sanitized returns a copy with every secret replaced by the mask token.
func (c Config) Sanitized() Config {
	out := c
	if out.Token != "" {
		out.Token = MaskToken
	}
	if out.Database.Password != "" {
		out.Database.Password = MaskToken
	}
	if out.LLM.APIKey != "" {
		out.LLM.APIKey = MaskToken
	}
	if c.Headers != nil {
		out.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			out.Headers[k] = v
		}
	}
	return out
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
