// Package config loads habit-tracker settings.
//
// Values are layered the usual viper way: built-in defaults, then
// config.yaml (in the data directory, or the file passed with --config),
// then HABIT_TRACKER_* environment variables, then command-line flags bound
// by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/HendryAvila/habit-tracker/internal/store"
	"github.com/spf13/viper"
)

const (
	// AppName names the per-user data directory.
	AppName = "habit-tracker"
	// EnvPrefix prefixes environment overrides (HABIT_TRACKER_STORE_BACKEND).
	EnvPrefix = "HABIT_TRACKER"
	// ConfigName is the config file name looked up in the data directory.
	ConfigName = "config"
)

// Config is the root configuration.
type Config struct {
	DataDir string      `mapstructure:"data_dir"`
	Store   StoreConfig `mapstructure:"store"`
	View    ViewConfig  `mapstructure:"view"`
	Log     LogConfig   `mapstructure:"log"`
}

// StoreConfig selects and tunes the persistence backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // json, sqlite
	Strict  bool   `mapstructure:"strict"`  // malformed data is an error instead of recovered
}

// ViewConfig holds dashboard defaults.
type ViewConfig struct {
	Days int `mapstructure:"days"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console, json
}

// New returns a viper instance with defaults and environment binding set
// up. The CLI binds its flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("store.backend", string(store.BackendJSON))
	v.SetDefault("store.strict", false)
	v.SetDefault("view.days", 365)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Load reads configFile if given, otherwise config.yaml from the data
// directory when it exists, and decodes the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("data_dir"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if _, err := store.ParseBackend(c.Store.Backend); err != nil {
		return err
	}
	if c.View.Days < 0 {
		return fmt.Errorf("view.days cannot be negative, got %d", c.View.Days)
	}
	return nil
}

// Backend returns the parsed store backend.
func (c *Config) Backend() store.Backend {
	b, _ := store.ParseBackend(c.Store.Backend)
	return b
}

// DefaultDataDir returns the per-user application data directory joined
// with AppName, or a relative AppName directory when none can be found.
func DefaultDataDir() string {
	base, err := userDataDir()
	if err != nil || base == "" {
		return AppName
	}
	return filepath.Join(base, AppName)
}

// userDataDir mirrors the platform conventions: %AppData% on Windows,
// ~/Library/Application Support on macOS, XDG_DATA_HOME or ~/.local/share
// elsewhere.
func userDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows", "darwin", "ios", "plan9":
		return os.UserConfigDir()
	}

	if dir := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}
