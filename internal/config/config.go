// Package config loads optional defaults for the resumer CLI from a YAML
// file. Command-line flags that are set explicitly win over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tanq16/resumer/internal/utils"
	"gopkg.in/yaml.v3"
)

type Config struct {
	UserAgent        string
	Headers          [][2]string
	Timeout          time.Duration
	KATimeout        time.Duration
	ProxyURL         string
	ProxyUsername    string
	ProxyPassword    string
	ProgressInterval time.Duration
	Retries          int
	RetryBackoff     time.Duration
}

func Default() Config {
	return Config{
		UserAgent:        utils.DefaultUserAgent,
		Timeout:          3 * time.Minute,
		KATimeout:        90 * time.Second,
		ProgressInterval: utils.DefaultProgressInterval,
		Retries:          0,
		RetryBackoff:     5 * time.Second,
	}
}

// yamlConfig keeps durations as strings so "90s" style values work.
type yamlConfig struct {
	UserAgent        string            `yaml:"user_agent"`
	Headers          map[string]string `yaml:"headers"`
	Timeout          string            `yaml:"timeout"`
	KATimeout        string            `yaml:"keep_alive_timeout"`
	Proxy            yamlProxy         `yaml:"proxy"`
	ProgressInterval string            `yaml:"progress_interval"`
	Retry            yamlRetry         `yaml:"retry"`
}

type yamlProxy struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type yamlRetry struct {
	Attempts int    `yaml:"attempts"`
	Backoff  string `yaml:"backoff"`
}

// DefaultPath is $XDG_CONFIG_HOME/resumer/config.yaml or its platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "resumer", "config.yaml")
}

// Load reads path if it exists. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromFile(path)
}

func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	for name, value := range yc.Headers {
		cfg.Headers = append(cfg.Headers, [2]string{name, value})
	}
	// validate early so a bad file fails before any download starts
	if _, err := utils.BuildHeaders(cfg.UserAgent, cfg.Headers); err != nil {
		return Config{}, fmt.Errorf("parse headers: %w", err)
	}
	cfg.ProxyURL = yc.Proxy.URL
	cfg.ProxyUsername = yc.Proxy.Username
	cfg.ProxyPassword = yc.Proxy.Password
	if yc.Retry.Attempts < 0 {
		return Config{}, fmt.Errorf("retry.attempts must not be negative")
	}
	cfg.Retries = yc.Retry.Attempts

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"timeout", yc.Timeout, &cfg.Timeout},
		{"keep_alive_timeout", yc.KATimeout, &cfg.KATimeout},
		{"progress_interval", yc.ProgressInterval, &cfg.ProgressInterval},
		{"retry.backoff", yc.Retry.Backoff, &cfg.RetryBackoff},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.dst = parsed
	}
	return cfg, nil
}

func (c Config) HTTPClientConfig() utils.HTTPClientConfig {
	return utils.HTTPClientConfig{
		Timeout:       c.Timeout,
		KATimeout:     c.KATimeout,
		ProxyURL:      c.ProxyURL,
		ProxyUsername: c.ProxyUsername,
		ProxyPassword: c.ProxyPassword,
		UserAgent:     c.UserAgent,
		Headers:       c.Headers,
	}
}
