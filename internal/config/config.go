// Package config reads and writes the mure configuration file, usually
// located at ~/.mure.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config models the configuration file.
type Config struct {
	Core   Core   `toml:"core"`
	GitHub GitHub `toml:"github"`
	Shell  *Shell `toml:"shell,omitempty"`
}

// Core holds the workspace settings.
type Core struct {
	BaseDir string `toml:"base_dir"`
	Editor  string `toml:"editor,omitempty"`
}

// GitHub holds the account and search settings for the issues overview.
type GitHub struct {
	Username  string   `toml:"username"`
	Query     string   `toml:"query,omitempty"`
	QueryList []string `toml:"queries,omitempty"`
}

// Shell holds the shell integration settings.
type Shell struct {
	CDShims string `toml:"cd_shims,omitempty"`
}

// Default returns the configuration written by Init.
func Default() *Config {
	return &Config{
		Core:   Core{BaseDir: "~/.dev"},
		GitHub: GitHub{Username: ""},
		Shell:  &Shell{CDShims: "mucd"},
	}
}

// Path returns the configuration file location: $MURE_CONFIG_PATH when set,
// otherwise ~/.mure.toml.
func Path() (string, error) {
	if path := os.Getenv("MURE_CONFIG_PATH"); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home dir: %w", err)
	}
	return filepath.Join(home, ".mure.toml"), nil
}

// Load reads and parses the configuration file.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Core.BaseDir == "" {
		return nil, fmt.Errorf("config %s is missing core.base_dir", path)
	}
	return &cfg, nil
}

// Init writes the default configuration, refusing to overwrite an existing
// file.
func Init() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, errors.New("config file already exists")
	}

	cfg := Default()
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrInit loads the configuration, creating the default file first when
// none exists yet. Parse failures are reported rather than clobbered.
func LoadOrInit() (*Config, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Init()
	}
	return nil, err
}

// BasePath returns the workspace base directory with ~ expanded.
func (c *Config) BasePath() string {
	return expandTilde(c.Core.BaseDir)
}

// CDShims returns the name of the generated cd helper function, defaulting
// to mucd.
func (c *Config) CDShims() string {
	if c.Shell != nil && c.Shell.CDShims != "" {
		return c.Shell.CDShims
	}
	return "mucd"
}

// Queries returns the GitHub search queries for the issues overview. An
// explicit list wins over the single query form; setting both is rejected.
// With neither set, the user's own public non-fork repositories are searched.
func (g GitHub) Queries() ([]string, error) {
	if g.Query != "" && len(g.QueryList) > 0 {
		return nil, errors.New("Both query and queries are set. Please set only one of them.")
	}
	if len(g.QueryList) > 0 {
		return g.QueryList, nil
	}
	if g.Query != "" {
		return []string{g.Query}, nil
	}
	return []string{fmt.Sprintf("user:%s is:public fork:false archived:false", g.Username)}, nil
}

func expandTilde(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
