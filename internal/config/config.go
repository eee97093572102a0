// Package config handles configuration loading for tally.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ProjectFile is the per-project configuration file name.
const ProjectFile = ".tally.yaml"

// Config holds all configuration for tally.
type Config struct {
	Scan      ScanConfig      `mapstructure:"scan"      yaml:"scan"`
	Habits    []string        `mapstructure:"habits"    yaml:"habits"`
	Anthropic AnthropicConfig `mapstructure:"anthropic" yaml:"anthropic"`
	History   HistoryConfig   `mapstructure:"history"   yaml:"history"`
	Watch     WatchConfig     `mapstructure:"watch"     yaml:"watch"`
}

// ScanConfig controls file discovery.
type ScanConfig struct {
	Extensions  []string `mapstructure:"extensions"    yaml:"extensions"`
	Exclude     []string `mapstructure:"exclude"       yaml:"exclude"`
	MaxFileSize int64    `mapstructure:"max_file_size" yaml:"max_file_size"`
	Workers     int      `mapstructure:"workers"       yaml:"workers"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"    yaml:"api_key"`
	Model     string `mapstructure:"model"      yaml:"model"`
	MaxTokens int64  `mapstructure:"max_tokens" yaml:"max_tokens"`
	BaseURL   string `mapstructure:"base_url"   yaml:"base_url,omitempty"`
	// Bedrock routes requests through AWS Bedrock using the default AWS
	// credential chain instead of an API key.
	Bedrock    bool   `mapstructure:"bedrock"     yaml:"bedrock"`
	AWSRegion  string `mapstructure:"aws_region"  yaml:"aws_region,omitempty"`
	AWSProfile string `mapstructure:"aws_profile" yaml:"aws_profile,omitempty"`
}

// HistoryConfig locates saved reports.
type HistoryConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Anthropic.APIKey != "" {
		c.Anthropic.APIKey = "********"
	}
	return c
}

// Render serializes c as YAML, or as JSON with the same keys.
func Render(c Config, asJSON bool) (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	if !asJSON {
		return string(data), nil
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (TALLY_*, ANTHROPIC_API_KEY)
// 2. The explicit file, or project config (.tally.yaml in current directory or parent)
// 3. User config (~/.config/tally/config.yaml)
// 4. Built-in defaults
func Load(explicit string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(UserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	overlay := explicit
	if overlay == "" {
		overlay = FindProjectConfig()
	}
	if overlay != "" {
		pv := viper.New()
		pv.SetConfigFile(overlay)
		pv.SetConfigType("yaml")
		if err := pv.ReadInConfig(); err != nil {
			if explicit != "" || !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config %s: %w", overlay, err)
			}
		} else if err := v.MergeConfigMap(pv.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging config %s: %w", overlay, err)
		}
	}

	bindEnv(v)

	return decode(v)
}

// LoadFromPath loads configuration from a single file on top of the defaults.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return decode(v)
}

// Default returns a Config with default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("decoding defaults: %v", err))
	}
	return cfg
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("anthropic.api_key", "TALLY_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("anthropic.base_url", "TALLY_ANTHROPIC_BASE_URL", "ANTHROPIC_BASE_URL")
	_ = v.BindEnv("anthropic.aws_region", "TALLY_ANTHROPIC_AWS_REGION", "AWS_REGION")
	_ = v.BindEnv("anthropic.aws_profile", "TALLY_ANTHROPIC_AWS_PROFILE", "AWS_PROFILE")
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	cfg.History.Dir = expandHome(cfg.History.Dir)
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.extensions", []string{"md", "markdown", "txt"})
	v.SetDefault("scan.exclude", []string{".git", "node_modules"})
	v.SetDefault("scan.max_file_size", 1<<20)
	v.SetDefault("scan.workers", 8)

	v.SetDefault("habits", []string{})

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("history.dir", "~/.tally")

	v.SetDefault("watch.debounce", "500ms")
}

// UserConfigDir returns the XDG config directory for tally.
func UserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "tally")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "tally")
	}
	return filepath.Join(home, ".config", "tally")
}

// UserConfigPath returns the path to the user config file.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}

// FindProjectConfig searches for .tally.yaml in the current directory and parents.
func FindProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
