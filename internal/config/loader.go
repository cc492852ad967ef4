package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "TWODO"

// envKeys are the settings that can be overridden as TWODO_<KEY> with dots
// replaced by underscores, e.g. TWODO_API_BASE_URL.
var envKeys = []string{
	"mode",
	"api.base_url", "api.timeout",
	"storage.path",
	"categories.preset",
	"ui.default_filter", "ui.timezone", "ui.show_timezone",
	"scheduler.buffer",
	"telemetry.enabled", "telemetry.buffer",
	"log.level", "log.file",
}

// Load merges defaults, the global config, the project config and the
// environment, in that order.
func Load() (*Config, error) {
	return LoadFrom(GlobalConfigPath(), ProjectConfigPath())
}

// LoadFrom is Load with explicit file paths. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	cfg := DefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := loadFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
	cfg.Log.File = ExpandPath(cfg.Log.File)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

func applyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	return v.Unmarshal(cfg)
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

func (c *Config) Validate() error {
	if c.Mode != ModeLocal && c.Mode != ModeRemote {
		return fmt.Errorf("config: mode must be local or remote, got %q", c.Mode)
	}
	if c.Mode == ModeRemote && strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("config: api.base_url is required in remote mode")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive, got %s", c.API.Timeout)
	}
	if !model.CategoryPreset(c.Categories.Preset).IsValid() {
		return fmt.Errorf("config: categories.preset must be colors or areas, got %q", c.Categories.Preset)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if !logLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	return nil
}

// Location resolves ui.timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.UI.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: ui.timezone: %w", err)
	}
	return loc, nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// GlobalDir returns the global twodo directory
func GlobalDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".twodo")
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	return filepath.Join(GlobalDir(), "config.yaml")
}

// ProjectConfigPath returns the path to the project config file
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".twodo", "config.yaml")
}
