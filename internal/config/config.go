// Package config manages Twig's configuration using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root of a parsed twig.toml.
type Config struct {
	Time     TimeConfig     `mapstructure:"time"`
	Hostname HostnameConfig `mapstructure:"hostname"`
	Cwd      CwdConfig      `mapstructure:"cwd"`
	IP       IPConfig       `mapstructure:"ip"`
	Git      GitConfig      `mapstructure:"git"`
	Battery  BatteryConfig  `mapstructure:"battery"`
	Prompt   PromptConfig   `mapstructure:"prompt"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
}

// TimeConfig configures the builtin time provider.
type TimeConfig struct {
	Name   string `mapstructure:"name"`
	Format string `mapstructure:"format"`
}

// HostnameConfig configures the hostname provider.
type HostnameConfig struct {
	Name string `mapstructure:"name"`
}

// CwdConfig configures the cwd provider.
type CwdConfig struct {
	Name    string `mapstructure:"name"`
	Shorten bool   `mapstructure:"shorten"`
}

// IPConfig configures the ip provider.
type IPConfig struct {
	Name       string `mapstructure:"name"`
	Interface  string `mapstructure:"interface"`
	PreferIPv6 bool   `mapstructure:"prefer_ipv6"`
}

// GitConfig configures the git provider.
type GitConfig struct {
	Name string `mapstructure:"name"`
}

// BatteryConfig configures the battery provider.
type BatteryConfig struct {
	Name string `mapstructure:"name"`
}

// PromptConfig drives the responsive selector.
type PromptConfig struct {
	Format         string  `mapstructure:"format"`
	FormatWide     string  `mapstructure:"format_wide"`
	FormatNarrow   string  `mapstructure:"format_narrow"`
	WidthThreshold *uint16 `mapstructure:"width_threshold"`
	Padding        uint16  `mapstructure:"padding"`
}

// DaemonConfig governs the resident collector.
type DaemonConfig struct {
	FrequencySeconds  uint32   `mapstructure:"frequency_seconds"`
	StaleAfterSeconds uint32   `mapstructure:"stale_after_seconds"`
	Deferred          []string `mapstructure:"deferred"`
}

// Load loads configuration from files and environment variables.
// It searches for config files in the following order:
// 1. /etc/twig/config.{toml,yaml,yml}
// 2. $XDG_CONFIG_HOME/twig/config.{toml,yaml,yml} (or ~/.config/twig/)
// 3. ./config.{toml,yaml,yml}
//
// Environment variables override file settings using the prefix TWIG_.
// For example: TWIG_PROMPT_FORMAT
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")

	v.AddConfigPath("/etc/twig/")
	v.AddConfigPath(getXDGConfigPath())
	v.AddConfigPath(".")

	v.SetEnvPrefix("TWIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return LoadWithViper(v)
}

// LoadFromFile loads configuration from an explicit path, bypassing the
// XDG search path. Used by `twig --config PATH`.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("TWIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	return LoadWithViper(v)
}

// LoadWithViper loads configuration using a provided Viper instance.
// This is useful for testing or when you want to configure Viper differently.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	configFileUsed = v.ConfigFileUsed()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("time.format", "%H:%M:%S")
	v.SetDefault("cwd.shorten", false)
	v.SetDefault("prompt.padding", 5)
	v.SetDefault("daemon.frequency_seconds", 1)
	v.SetDefault("daemon.stale_after_seconds", 5)
}

// getXDGConfigPath returns the XDG config directory for twig.
func getXDGConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "twig")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(homeDir, ".config", "twig")
}

// DataDir returns the XDG data directory for twig's state (cache, lock, pid).
func DataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "twig")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".twig")
	}

	return filepath.Join(homeDir, ".local", "share", "twig")
}

// configFileUsed records the config file of the most recent successful load.
var configFileUsed string

// ConfigFileUsed returns the path of the config file that was loaded, if any.
func ConfigFileUsed() string {
	return configFileUsed
}
