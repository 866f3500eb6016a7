package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadWithTOML(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.toml")

	tomlContent := `
[prompt]
format = "{cwd} $ "

[time]
format = "%H:%M"
`
	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Prompt.Format != "{cwd} $ " {
		t.Errorf("expected prompt.format '{cwd} $ ', got %q", cfg.Prompt.Format)
	}
	if cfg.Time.Format != "%H:%M" {
		t.Errorf("expected time.format '%%H:%%M', got %q", cfg.Time.Format)
	}
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envKey := "TWIG_PROMPT_FORMAT"
	envValue := "{hostname} % "

	t.Setenv(envKey, envValue)

	v := viper.New()
	v.SetEnvPrefix("TWIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("prompt.format")

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Prompt.Format != envValue {
		t.Errorf("expected prompt.format %q from env, got %q", envValue, cfg.Prompt.Format)
	}
}

func TestLoadWithTOMLAndEnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.toml")

	tomlContent := `
[prompt]
format = "from-toml"
`
	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("TWIG_PROMPT_FORMAT", "from-env-override")

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetEnvPrefix("TWIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Prompt.Format != "from-env-override" {
		t.Errorf("expected env override to win, got %q", cfg.Prompt.Format)
	}
}

func TestLoadWithNoConfig(t *testing.T) {
	v := viper.New()
	v.SetEnvPrefix("TWIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Prompt.Format != "" {
		t.Errorf("expected empty prompt.format, got %q", cfg.Prompt.Format)
	}
}

func TestGetXDGConfigPath(t *testing.T) {
	tests := []struct {
		name         string
		xdgConfig    string
		wantContains string
	}{
		{
			name:         "with XDG_CONFIG_HOME set",
			xdgConfig:    "/custom/config",
			wantContains: "/custom/config/twig",
		},
		{
			name:         "without XDG_CONFIG_HOME",
			xdgConfig:    "",
			wantContains: ".config/twig",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.xdgConfig != "" {
				t.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			} else {
				t.Setenv("XDG_CONFIG_HOME", "")
			}

			path := getXDGConfigPath()
			if !filepath.IsAbs(path) && tt.xdgConfig == "" {
				if path != "." {
					t.Errorf("expected '.', got %q", path)
				}
			} else if !strings.Contains(path, tt.wantContains) {
				t.Errorf("expected path to contain %q, got %q", tt.wantContains, path)
			}
		})
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	dir := DataDir()
	if !strings.Contains(dir, "/custom/data/twig") {
		t.Errorf("expected data dir to contain '/custom/data/twig', got %q", dir)
	}
}
