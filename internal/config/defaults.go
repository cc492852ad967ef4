package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := GlobalDir()
	return &Config{
		Mode: ModeLocal,
		API: APIConfig{
			BaseURL: "http://localhost:5000/api",
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Path: filepath.Join(dir, "twodo.db"),
		},
		Categories: CategoriesConfig{
			Preset: "colors",
		},
		UI: UIConfig{
			DefaultFilter: "Today",
		},
		Scheduler: SchedulerConfig{
			Buffer: 64,
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
			Buffer:  32,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "twodo.log"),
		},
	}
}

const defaultTemplate = `# twodo configuration

# local: tasks live in the SQLite file below
# remote: tasks live on the API server
mode: local

api:
  base_url: http://localhost:5000/api
  timeout: 30s

storage:
  path: ~/.twodo/twodo.db

categories:
  preset: colors  # "colors" or "areas"

ui:
  default_filter: Today  # Today, Important, Planned, Completed, All, Active or a category key
  timezone: ""           # e.g. Europe/Berlin; empty uses the system zone
  show_timezone: false

scheduler:
  buffer: 64

telemetry:
  enabled: true
  buffer: 32

log:
  level: info  # debug, info, warn, error
  file: ~/.twodo/twodo.log
`

// WriteDefault writes the commented default configuration to path
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultTemplate), 0o644)
}
