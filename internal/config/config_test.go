package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/HendryAvila/habit-tracker/internal/store"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("HABIT_TRACKER_DATA_DIR", dataDir)

	cfg, err := Load(New(), "")

	require.NoError(t, err)
	require.Equal(t, dataDir, cfg.DataDir)
	require.Equal(t, "json", cfg.Store.Backend)
	require.False(t, cfg.Store.Strict)
	require.Equal(t, 365, cfg.View.Days)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "console", cfg.Log.Format)
	require.Equal(t, store.BackendJSON, cfg.Backend())
}

func TestLoad_ReadsConfigFromDataDir(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("HABIT_TRACKER_DATA_DIR", dataDir)
	yaml := "store:\n  backend: sqlite\n  strict: true\nview:\n  days: 30\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(New(), "")

	require.NoError(t, err)
	require.Equal(t, store.BackendSQLite, cfg.Backend())
	require.True(t, cfg.Store.Strict)
	require.Equal(t, 30, cfg.View.Days)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("HABIT_TRACKER_DATA_DIR", dataDir)
	t.Setenv("HABIT_TRACKER_VIEW_DAYS", "90")
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte("view:\n  days: 30\n"), 0o644))

	cfg, err := Load(New(), "")

	require.NoError(t, err)
	require.Equal(t, 90, cfg.View.Days)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	dataDir := t.TempDir()
	content := "data_dir: " + dataDir + "\nlog:\n  level: debug\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(New(), path)

	require.NoError(t, err)
	require.Equal(t, dataDir, cfg.DataDir)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("HABIT_TRACKER_DATA_DIR", dataDir)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte("store: [oops"), 0o644))

	_, err := Load(New(), "")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{DataDir: "/tmp/x", Store: StoreConfig{Backend: "json"}, View: ViewConfig{Days: 0}}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = " " }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "mongo" }},
		{"negative days", func(c *Config) { c.View.Days = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestDefaultDataDir_UsesXDGDataHome(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_DATA_HOME only applies on unix-like systems")
	}
	base := t.TempDir()
	t.Setenv("XDG_DATA_HOME", base)

	require.Equal(t, filepath.Join(base, AppName), DefaultDataDir())
}

func TestDefaultDataDir_FallsBackToLocalShare(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG layout only applies on unix-like systems")
	}
	home := t.TempDir()
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", home)

	require.Equal(t, filepath.Join(home, ".local", "share", AppName), DefaultDataDir())
}
