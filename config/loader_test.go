package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, home, cwd string) *Loader {
	t.Helper()
	l := NewLoader(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	l.homeDir = func() (string, error) { return home, nil }
	l.workDir = func() (string, error) { return cwd, nil }
	return l
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoader_Defaults(t *testing.T) {
	l := newTestLoader(t, t.TempDir(), t.TempDir())
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_Layering(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	nested := filepath.Join(project, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	writeConfig(t, filepath.Join(home, UserConfigDir, UserConfigFile),
		"http:\n  addr: \":7000\"\nlog:\n  level: warn\n")
	writeConfig(t, filepath.Join(project, ProjectConfigFile),
		"vocabulary:\n  paths: [\"glossary/*.yaml\"]\nhttp:\n  addr: \":7100\"\n")

	l := newTestLoader(t, home, nested)
	cfg, err := l.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7100", cfg.HTTP.Addr, "project config overrides user config")
	assert.Equal(t, "warn", cfg.Log.Level, "user config survives where project is silent")
	assert.Equal(t, []string{filepath.Join(project, "glossary/*.yaml")}, cfg.Vocabulary.Paths,
		"relative paths resolve against the config file")

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	writeConfig(t, explicit, "http:\n  addr: \":7200\"\n")
	cfg, err = l.Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, ":7200", cfg.HTTP.Addr)
}

func TestLoader_SilentLayersKeepEarlierValues(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()

	writeConfig(t, filepath.Join(home, UserConfigDir, UserConfigFile), `vocabulary:
  malformed: skip
watch:
  debounce_delay: 2s
http:
  prefix: glossary/v2
nats:
  subject: terms.rebuilt
log:
  level: warn
`)
	writeConfig(t, filepath.Join(project, ProjectConfigFile), "http:\n  addr: \":7100\"\n")
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	writeConfig(t, explicit, "nats:\n  url: nats://localhost:4222\n")

	cfg, err := newTestLoader(t, home, project).Load(explicit)
	require.NoError(t, err)

	assert.Equal(t, "skip", cfg.Vocabulary.Malformed)
	assert.Equal(t, 2*time.Second, cfg.Watch.DebounceDelay)
	assert.Equal(t, "glossary/v2", cfg.HTTP.Prefix)
	assert.Equal(t, "terms.rebuilt", cfg.NATS.Subject)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":7100", cfg.HTTP.Addr)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	// Keys nobody set keep their defaults.
	assert.Equal(t, DefaultConfig().NATS.SnapshotBucket, cfg.NATS.SnapshotBucket)
}

func TestLoader_Errors(t *testing.T) {
	l := newTestLoader(t, t.TempDir(), t.TempDir())

	_, err := l.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "explicit config must exist")

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	writeConfig(t, invalid, "log:\n  level: loud\n")
	_, err = l.Load(invalid)
	assert.Error(t, err)
}

func TestLoader_EnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	l := newTestLoader(t, home, t.TempDir())

	path, created, err := l.EnsureUserConfig()
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, filepath.Join(home, UserConfigDir, UserConfigFile), path)

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)

	// Second call leaves the file alone
	writeConfig(t, path, "log:\n  level: debug\n")
	_, created, err = l.EnsureUserConfig()
	require.NoError(t, err)
	assert.False(t, created)
	loaded, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.Log.Level)
}

func TestLoader_EnsureUserConfig_NoHome(t *testing.T) {
	l := newTestLoader(t, "", t.TempDir())
	l.homeDir = func() (string, error) { return "", errors.New("no home") }

	_, _, err := l.EnsureUserConfig()
	assert.Error(t, err)
}
