// Package config loads saidan's runtime configuration from SAIDAN_*
// environment variables, optionally seeded from a .env file.
package config

import (
	"os"
	"path/filepath"
	"time"
)

const appName = "saidan"

type Config struct {
	Logging  LoggingConfig
	Settings SettingsConfig
	Export   ExportConfig
	Preview  PreviewConfig
	Load     LoadConfig
}

type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"SAIDAN_LOG_LEVEL" default:"info"`

	// File receives TUI logs. Empty means the user cache directory.
	File string `env:"SAIDAN_LOG_FILE"`
}

type SettingsConfig struct {
	// Path of the YAML settings file. Empty means the user config directory.
	Path string `env:"SAIDAN_SETTINGS_PATH"`

	// Watch reloads the settings file when it is edited outside saidan (default: true)
	Watch bool `env:"SAIDAN_SETTINGS_WATCH" default:"true"`
}

type ExportConfig struct {
	// Dir is where exports are written (default: current directory)
	Dir string `env:"SAIDAN_OUTPUT_DIR" default:"."`

	// Format is csv or xlsx (default: csv)
	Format string `env:"SAIDAN_FORMAT" default:"csv"`
}

type PreviewConfig struct {
	// Rows is how many data rows the preview shows at once (default: 15)
	Rows int `env:"SAIDAN_PREVIEW_ROWS" default:"15"`

	// Columns caps the number of columns rendered (default: 12)
	Columns int `env:"SAIDAN_PREVIEW_COLUMNS" default:"12"`
}

type LoadConfig struct {
	// Timeout bounds a batch load (default: 2m)
	Timeout time.Duration `env:"SAIDAN_LOAD_TIMEOUT" default:"2m"`
}

// SettingsPath returns the configured settings file or the default under
// the user config directory.
func (c *Config) SettingsPath() string {
	if c.Settings.Path != "" {
		return c.Settings.Path
	}
	return defaultPath(os.UserConfigDir, "settings.yaml")
}

// LogPath returns the configured log file or the default under the user
// cache directory.
func (c *Config) LogPath() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return defaultPath(os.UserCacheDir, appName+".log")
}

func defaultPath(base func() (string, error), name string) string {
	dir, err := base()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appName, name)
}
