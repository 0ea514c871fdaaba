package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "launcher.db", cfg.Storage.Path)
	assert.Equal(t, int64(50*1024*1024), cfg.Import.MaxArchiveBytes)
	assert.Equal(t, 5*time.Second, cfg.Import.ProbeTimeout)
	assert.Equal(t, "https://api.github.com", cfg.Import.GitHubAPI)
	assert.Equal(t, "en", cfg.Catalog.Locale)
	assert.Equal(t, 720*time.Hour, cfg.Catalog.RecentWindow)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "127.0.0.1:8000", cfg.Addr())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default().Import, cfg.Import)
	assert.Equal(t, Default().Catalog, cfg.Catalog)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                     "9000",
		"LAUNCHER_DB_PATH":         "/tmp/apps.db",
		"IMPORT_MAX_ARCHIVE_BYTES": "1024",
		"IMPORT_PROBE_TIMEOUT":     "2s",
		"CATALOG_LOCALE":           "it",
		"LOG_LEVEL":                "debug",
		"RATE_LIMIT_ENABLED":       "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/tmp/apps.db", cfg.Storage.Path)
	assert.Equal(t, int64(1024), cfg.Import.MaxArchiveBytes)
	assert.Equal(t, 2*time.Second, cfg.Import.ProbeTimeout)
	assert.Equal(t, "it", cfg.Catalog.Locale)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("IMPORT_MAX_ARCHIVE_BYTES", "lots")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, int64(50*1024*1024), cfg.Import.MaxArchiveBytes)
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher.yaml")
	content := "server:\n  port: \"9100\"\nstorage:\n  path: /data/launcher.db\ncatalog:\n  locale: fr\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "/data/launcher.db", cfg.Storage.Path)
	assert.Equal(t, "fr", cfg.Catalog.Locale)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestLoadFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher.toml")
	content := "[import]\nmax_archive_bytes = 2048\ngithub_api = \"http://localhost:9999\"\n\n[rate_limit]\nenabled = false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, int64(2048), cfg.Import.MaxArchiveBytes)
	assert.Equal(t, "http://localhost:9999", cfg.Import.GitHubAPI)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Import.ProbeTimeout)
}

func TestLoadFileTOMLDurations(t *testing.T) {
	dir := t.TempDir()
	content := "[import]\nprobe_timeout = \"750ms\"\n\n[catalog]\nrecent_window = \"48h\"\n"
	path := filepath.Join(dir, "launcher.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.Import.ProbeTimeout)
	assert.Equal(t, 48*time.Hour, cfg.Catalog.RecentWindow)

	yamlPath := filepath.Join(dir, "launcher.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("import:\n  probe_timeout: 750ms\ncatalog:\n  recent_window: 48h\n"), 0o644))
	fromYAML, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Import.ProbeTimeout, fromYAML.Import.ProbeTimeout)
	assert.Equal(t, cfg.Catalog.RecentWindow, fromYAML.Catalog.RecentWindow)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[import]\nprobe_timeout = \"soon\"\n"), 0o644))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

func TestLoadFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher.ini")
	require.NoError(t, os.WriteFile(path, []byte("x=1"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
