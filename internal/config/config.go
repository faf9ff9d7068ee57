// Package config loads optional defaults for sqlite-fuse from a YAML
// file and the environment. The CLI flags defined in internal/cmd
// always take precedence over whatever this package resolves.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mount MountConfig `yaml:"mount"`
	Owner OwnerConfig `yaml:"owner"`
	Log   LogConfig   `yaml:"log"`
}

type MountConfig struct {
	DefaultDatabase string `yaml:"default_database"`
	AllowRoot       bool   `yaml:"allow_root"`
	AutoUnmount     bool   `yaml:"auto_unmount"`
}

// OwnerConfig holds the file's owner section. Nothing reads it: the
// attribute builder always reports its fixed uid/gid constants.
type OwnerConfig struct {
	UID uint32 `yaml:"uid"`
	GID uint32 `yaml:"gid"`
}

type LogConfig struct {
	Debug bool `yaml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		Mount: MountConfig{
			DefaultDatabase: "",
			AllowRoot:       false,
			AutoUnmount:     false,
		},
		Log: LogConfig{
			Debug: false,
		},
	}
}

// Load loads configuration using the real environment.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using the provided environment
// lookup function, letting tests supply isolated values.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPathWithEnv(getenv)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if debug := getenv("SQLITE_FUSE_DEBUG"); debug != "" {
		cfg.Log.Debug = true
	}

	return cfg, nil
}

func getConfigPath() string {
	return getConfigPathWithEnv(os.Getenv)
}

func getConfigPathWithEnv(getenv func(string) string) string {
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "sqlite-fuse", "config.yaml")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sqlite-fuse", "config.yaml")
}
