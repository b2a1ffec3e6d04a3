// Package config loads purr.yaml project files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zyla/purr/rename"
)

// DefaultFile is the project file looked up when no path is given.
const DefaultFile = "purr.yaml"

// Config is the project configuration. Command line flags override it.
type Config struct {
	Path     string   `yaml:"-"`
	Sources  []string `yaml:"sources"`
	Lookup   string   `yaml:"lookup"`
	Color    string   `yaml:"color"`
	LogLevel string   `yaml:"log_level"`
}

// Default returns the configuration used without a project file.
func Default() *Config {
	return &Config{
		Sources:  []string{"src"},
		Lookup:   rename.LookupAllScopes.String(),
		Color:    "auto",
		LogLevel: "warn",
	}
}

// Load reads the project file at path. With an empty path DefaultFile is
// tried, and its absence yields Default. Unset fields keep their defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	cfg := Default()
	file, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Write stores cfg at path in YAML form.
func Write(cfg *Config, path string) error {
	if path == "" {
		path = DefaultFile
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config: marshal %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("config: encoder close: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Lookup = strings.ToLower(strings.TrimSpace(c.Lookup))
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	c.LogLevel = strings.TrimSpace(c.LogLevel)
	if c.Path == "" {
		return
	}
	// Sources are relative to the project file.
	dir := filepath.Dir(c.Path)
	for i, s := range c.Sources {
		if !filepath.IsAbs(s) {
			c.Sources[i] = filepath.Join(dir, s)
		}
	}
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	if _, err := c.LookupMode(); err != nil {
		return err
	}
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", c.Color)
	}
	_, err := c.Level()
	return err
}

// LookupMode returns the renamer's local lookup mode.
func (c *Config) LookupMode() (rename.LookupMode, error) {
	return rename.ParseLookupMode(c.Lookup)
}

// Level returns the configured log level. Empty means warn.
func (c *Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
