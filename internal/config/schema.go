package config

import "time"

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// Config is the full client configuration.
type Config struct {
	// local keeps tasks in the SQLite blob store; remote goes through the API
	Mode Mode `yaml:"mode" mapstructure:"mode"`

	API        APIConfig        `yaml:"api" mapstructure:"api"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Categories CategoriesConfig `yaml:"categories" mapstructure:"categories"`
	UI         UIConfig         `yaml:"ui" mapstructure:"ui"`
	Scheduler  SchedulerConfig  `yaml:"scheduler" mapstructure:"scheduler"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" mapstructure:"telemetry"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type StorageConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

type CategoriesConfig struct {
	// colors or areas
	Preset string `yaml:"preset" mapstructure:"preset"`
}

type UIConfig struct {
	DefaultFilter string `yaml:"default_filter" mapstructure:"default_filter"`
	// IANA zone name; empty means the system zone
	Timezone     string `yaml:"timezone" mapstructure:"timezone"`
	ShowTimezone bool   `yaml:"show_timezone" mapstructure:"show_timezone"`
}

type SchedulerConfig struct {
	Buffer int `yaml:"buffer" mapstructure:"buffer"`
}

type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	Buffer  int  `yaml:"buffer" mapstructure:"buffer"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}
