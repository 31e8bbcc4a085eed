package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/gorhill/cronexpr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRegion   = "us-east-1"
	DefaultAddr     = ":8000"
	DefaultTimeout  = 60 * time.Second
	DefaultCacheTTL = 5 * time.Minute

	configDirName  = ".aws-analyzer"
	configFileName = "config.yaml"
)

// AWS holds the upstream session settings. Empty credentials fall back to
// the SDK default chain (environment, shared profile, instance role).
type AWS struct {
	Region          string `yaml:"region" env:"AWS_DEFAULT_REGION"`
	Profile         string `yaml:"profile,omitempty" env:"AWS_PROFILE"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" env:"AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `yaml:"session_token,omitempty" env:"AWS_SESSION_TOKEN"`
	Endpoint        string `yaml:"endpoint,omitempty" env:"ANALYZER_AWS_ENDPOINT"`
	MaxAttempts     int    `yaml:"max_attempts,omitempty" env:"ANALYZER_AWS_MAX_ATTEMPTS"`
}

type Scan struct {
	Timeout time.Duration `yaml:"timeout" env:"ANALYZER_SCAN_TIMEOUT"`
}

type Server struct {
	Addr           string `yaml:"addr" env:"ANALYZER_ADDR"`
	RescanSchedule string `yaml:"rescan_schedule,omitempty" env:"ANALYZER_RESCAN_SCHEDULE"`
}

type Cache struct {
	RedisURL string        `yaml:"redis_url,omitempty" env:"ANALYZER_REDIS_URL"`
	TTL      time.Duration `yaml:"ttl" env:"ANALYZER_CACHE_TTL"`
}

type Compliance struct {
	ProfilesDir  string `yaml:"profiles_dir,omitempty" env:"ANALYZER_PROFILES_DIR"`
	TemplatesDir string `yaml:"templates_dir,omitempty" env:"ANALYZER_TEMPLATES_DIR"`
}

type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
}

type Advisor struct {
	Provider  string                    `yaml:"provider" env:"ANALYZER_ADVISOR_PROVIDER"`
	Model     string                    `yaml:"model,omitempty" env:"ANALYZER_ADVISOR_MODEL"`
	Providers map[string]ProviderConfig `yaml:"providers,omitempty"`
}

type Log struct {
	Development bool `yaml:"development" env:"ANALYZER_LOG_DEV_MODE"`
}

// Config is the merged runtime configuration.
type Config struct {
	AWS        AWS        `yaml:"aws"`
	Scan       Scan       `yaml:"scan"`
	Server     Server     `yaml:"server"`
	Cache      Cache      `yaml:"cache"`
	Compliance Compliance `yaml:"compliance"`
	Advisor    Advisor    `yaml:"advisor"`
	Log        Log        `yaml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		AWS:     AWS{Region: DefaultRegion},
		Scan:    Scan{Timeout: DefaultTimeout},
		Server:  Server{Addr: DefaultAddr},
		Cache:   Cache{TTL: DefaultCacheTTL},
		Advisor: Advisor{Provider: "offline", Providers: make(map[string]ProviderConfig)},
	}
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, configDirName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the YAML file at path (the default location when empty),
// falls back to defaults when it does not exist, then applies environment
// overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Advisor.Providers == nil {
		cfg.Advisor.Providers = make(map[string]ProviderConfig)
	}
	return cfg, nil
}

// Save writes the configuration to path (the default location when empty).
func Save(path string, cfg *Config) error {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// 0600 permissions: the file may hold AWS and provider keys
	return os.WriteFile(path, data, 0600)
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	if c.AWS.Region == "" {
		return errors.New("aws region must be set (config aws.region or AWS_DEFAULT_REGION)")
	}
	if c.AWS.MaxAttempts < 0 {
		return fmt.Errorf("aws max_attempts must not be negative (got %d)", c.AWS.MaxAttempts)
	}
	if c.Scan.Timeout <= 0 {
		return fmt.Errorf("scan timeout must be positive (got %s)", c.Scan.Timeout)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive (got %s)", c.Cache.TTL)
	}
	if c.Server.RescanSchedule != "" {
		if _, err := cronexpr.Parse(c.Server.RescanSchedule); err != nil {
			return fmt.Errorf("invalid rescan schedule %q: %w", c.Server.RescanSchedule, err)
		}
	}
	return nil
}

func (c *Config) SetAPIKey(provider, key string) {
	p := c.Advisor.Providers[provider]
	p.APIKey = key
	c.Advisor.Providers[provider] = p
}

// GetAPIKey returns the advisor key for provider. Gemini falls back to
// GOOGLE_API_KEY.
func (c *Config) GetAPIKey(provider string) string {
	if key := c.Advisor.Providers[provider].APIKey; key != "" {
		return key
	}
	if provider == "gemini" {
		return os.Getenv("GOOGLE_API_KEY")
	}
	return ""
}
