package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"remote-tools/pkg/protocol"
	"remote-tools/pkg/protocolyaml"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// appName is the single source of truth for the application name.
// All derived identifiers (env vars, config paths, error messages) are computed from it.
const appName = "remotectl"

var (
	envConfigDir = strings.ToUpper(appName) + "_CONFIG_DIR"
	envCatalogs  = strings.ToUpper(appName) + "_CATALOGS"
	envLogLevel  = strings.ToUpper(appName) + "_LOG_LEVEL"
)

// Config is the optional config.toml in the config directory.
type Config struct {
	LogLevel  string   `toml:"log_level"`
	Output    string   `toml:"output"`
	Catalogs  []string `toml:"catalogs"`
	NoDefault bool     `toml:"no_default"`
}

// resolveConfigDir returns the base config directory for the application.
// Priority: $REMOTECTL_CONFIG_DIR > $XDG_CONFIG_HOME/remotectl > ~/.config/remotectl
func resolveConfigDir() (string, error) {
	if v := os.Getenv(envConfigDir); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// loadConfig reads path, or configDir/config.toml when path is empty. A
// missing default file yields the zero Config; a missing explicit file is an
// error.
func loadConfig(configDir, path string) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		path = filepath.Join(configDir, "config.toml")
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// resolveCatalogFiles returns the extra catalog files to load, in order:
// configDir/catalogs/*.yml → config.toml catalogs → $REMOTECTL_CATALOGS → flagFiles.
// Relative paths from config.toml are resolved against configDir.
func resolveCatalogFiles(configDir string, cfg Config, flagFiles []string) ([]string, error) {
	files, err := globYAML(filepath.Join(configDir, "catalogs"))
	if err != nil {
		return nil, err
	}
	for _, c := range cfg.Catalogs {
		if !filepath.IsAbs(c) {
			c = filepath.Join(configDir, c)
		}
		files = append(files, c)
	}
	files = append(files, splitColon(os.Getenv(envCatalogs))...)
	files = append(files, flagFiles...)
	return files, nil
}

// globYAML returns sorted *.yml / *.yaml files in dir.
// Returns nil without error if dir does not exist.
func globYAML(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}

// splitColon splits a colon-separated string, filtering empty parts.
func splitColon(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ":")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadSources builds the registry from the embedded catalog (unless
// noDefault) followed by every catalog file.
func loadSources(logger zerolog.Logger, noDefault bool, files []string) (*protocol.Registry, error) {
	var sources []protocolyaml.Source
	if !noDefault {
		sources = append(sources, protocolyaml.Source{Name: "protocols.yaml (built-in)", Data: protocolyaml.DefaultCatalog})
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("catalog file %s: %w", f, err)
		}
		sources = append(sources, protocolyaml.Source{Name: f, Data: data})
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf(
			"no catalogs to load: drop the --no-default flag, add *.yml files to ~/.config/%s/catalogs/, "+
				"set $%s, or use --catalog",
			appName, envCatalogs,
		)
	}
	return protocolyaml.New(protocolyaml.WithLogger(logger)).BuildSources(sources...)
}
