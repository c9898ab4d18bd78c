// Package config reads the configuration file of the console.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the content of the configuration file.
type Config struct {
	// Prompt for the first line of input.
	Prompt string `yaml:"prompt"`
	// Prompt for continuation lines.
	Continuation string `yaml:"continuation"`
	// Values injected into the base environment of every session.
	Globals map[string]any `yaml:"globals"`
	// Code transferred into each new interactive session.
	Prelude string `yaml:"prelude"`
	// Path of the history database. Empty means the default path.
	History string `yaml:"history"`
	// Maximum width of printed values. 0 means the terminal width.
	MaxRepr int `yaml:"maxrepr"`
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{Prompt: "› ", Continuation: "… "}
}

// Read reads configuration from r, filling in defaults for missing fields.
// Unknown fields are errors.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if cfg.MaxRepr < 0 {
		return nil, fmt.Errorf("maxrepr must not be negative, got %d", cfg.MaxRepr)
	}
	return cfg, nil
}

// Load reads the configuration file at path. When path is empty, the default
// path is used, and a missing file yields the default configuration.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Default(), nil
		}
	}
	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	defer f.Close()
	cfg, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the default path of the configuration file.
func DefaultPath() (string, error) {
	dir, err := configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "livedoc", "rc.yaml"), nil
}

// DefaultHistoryPath returns the default path of the history database.
func DefaultHistoryPath() (string, error) {
	dir, err := stateHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "livedoc", "history.db"), nil
}

func configHome() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

func stateHome() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state"), nil
}
