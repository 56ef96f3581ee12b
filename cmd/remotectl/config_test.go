package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"remote-tools/pkg/protocol"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveConfigDir(t *testing.T) {
	t.Run("explicit dir wins", func(t *testing.T) {
		t.Setenv(envConfigDir, "/opt/remotectl")
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		dir, err := resolveConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/opt/remotectl", dir)
	})

	t.Run("xdg", func(t *testing.T) {
		t.Setenv(envConfigDir, "")
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		dir, err := resolveConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/xdg", appName), dir)
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv(envConfigDir, "")
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "/home/alice")
		dir, err := resolveConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/home/alice", ".config", appName), dir)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing default file", func(t *testing.T) {
		cfg, err := loadConfig(t.TempDir(), "")
		require.NoError(t, err)
		assert.Equal(t, Config{}, cfg)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := loadConfig(t.TempDir(), filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
	})

	t.Run("all keys", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "config.toml"), `
log_level = "debug"
output = "json"
catalogs = ["extra.yml", "/etc/remotectl/site.yml"]
no_default = true
`)
		cfg, err := loadConfig(dir, "")
		require.NoError(t, err)
		assert.Equal(t, Config{
			LogLevel:  "debug",
			Output:    "json",
			Catalogs:  []string{"extra.yml", "/etc/remotectl/site.yml"},
			NoDefault: true,
		}, cfg)
	})

	t.Run("unknown key", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "config.toml"), "log_level = \"info\"\ncolour = true\n")
		_, err := loadConfig(dir, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown key "colour"`)
	})

	t.Run("syntax error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "config.toml"), "log_level = \n")
		_, err := loadConfig(dir, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config.toml")
	})
}

func TestResolveCatalogFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "catalogs", "b.yml"), "")
	writeFile(t, filepath.Join(dir, "catalogs", "a.yaml"), "")
	writeFile(t, filepath.Join(dir, "catalogs", "notes.txt"), "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "catalogs", "sub.yml"), 0o755))

	t.Setenv(envCatalogs, "env1.yml::env2.yml")
	cfg := Config{Catalogs: []string{"extra.yml", "/abs/site.yml"}}

	files, err := resolveCatalogFiles(dir, cfg, []string{"flag.yml"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "catalogs", "a.yaml"),
		filepath.Join(dir, "catalogs", "b.yml"),
		filepath.Join(dir, "extra.yml"),
		"/abs/site.yml",
		"env1.yml",
		"env2.yml",
		"flag.yml",
	}, files)
}

func TestGlobYAMLMissingDir(t *testing.T) {
	files, err := globYAML(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestSplitColon(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a.yml", []string{"a.yml"}},
		{"a.yml:b.yml", []string{"a.yml", "b.yml"}},
		{":a.yml::b.yml:", []string{"a.yml", "b.yml"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitColon(tt.in))
		})
	}
}

const beepCatalog = `
beep:
  desc: Test buzzer
  type: IR
  args:
    - name: freq
      type: uint16_t
      desc: Frequency in Hz
      example: "440"
`

func TestLoadSources(t *testing.T) {
	t.Run("built-in plus file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "beep.yml")
		writeFile(t, path, beepCatalog)

		reg, err := loadSources(zerolog.Nop(), false, []string{path})
		require.NoError(t, err)
		_, err = reg.Definition("nec")
		assert.NoError(t, err)
		_, err = reg.Definition("beep")
		assert.NoError(t, err)
	})

	t.Run("file only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "beep.yml")
		writeFile(t, path, beepCatalog)

		reg, err := loadSources(zerolog.Nop(), true, []string{path})
		require.NoError(t, err)
		assert.Equal(t, []string{"beep"}, reg.ValidProtocols())
	})

	t.Run("redefining a built-in protocol", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nec.yml")
		writeFile(t, path, "NEC:\n  desc: x\n  type: IR\n  args:\n    - name: a\n      type: int\n      desc: a\n")

		_, err := loadSources(zerolog.Nop(), false, []string{path})
		require.Error(t, err)
		assert.True(t, errors.Is(err, protocol.ErrInvalidDefinition), "got %v", err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadSources(zerolog.Nop(), false, []string{filepath.Join(t.TempDir(), "nope.yml")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "catalog file")
	})

	t.Run("nothing to load", func(t *testing.T) {
		_, err := loadSources(zerolog.Nop(), true, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no catalogs to load")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.WarnLevel, true},
		{"trace", zerolog.TraceLevel, true},
		{"DEBUG", zerolog.DebugLevel, true},
		{" info ", zerolog.InfoLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"off", zerolog.Disabled, true},
		{"verbose", zerolog.WarnLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseLevel(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := newLogger(os.Stderr, "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", " "))
}
