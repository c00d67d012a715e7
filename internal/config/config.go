// Package config loads the session settings, color-scheme, OSK
// layout, and key-set files that drive a raventerm session.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// KeySetRef names an OSK special-key-set file and whether it should
// be attached at startup or merely registered as available to load later.
type KeySetRef struct {
	Path             string `yaml:"path"`
	LoadAtStartup    bool   `yaml:"load_at_startup"`
	AvailableOnly    bool   `yaml:"available_only"`
}

// SessionConfig is the top-level settings file for a raventerm session.
type SessionConfig struct {
	Cols            int         `yaml:"cols"`
	Rows            int         `yaml:"rows"`
	ScrollbackLines int         `yaml:"scrollback_lines"`
	ShellPath       string      `yaml:"shell_path"`
	SourceRC        bool        `yaml:"source_rc"`
	ColorSchemePath string      `yaml:"color_scheme_path"`
	LayoutPath      string      `yaml:"layout_path"`
	KeySets         []KeySetRef `yaml:"key_sets"`
	AdditionalEnv   map[string]string `yaml:"additional_env"`
}

// DefaultSessionConfig returns sane defaults used when no config file
// exists, or a loaded file omits a field.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		Cols:            80,
		Rows:            24,
		ScrollbackLines: 1000,
		SourceRC:        true,
		AdditionalEnv:   make(map[string]string),
	}
}

// PathFor returns the default on-disk location of the session config
// file, creating its parent directory if necessary.
func PathFor() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".raventerm.yaml"
	}
	dir := filepath.Join(home, ".config", "raventerm")
	os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "config.yaml")
}

// Load reads and parses a SessionConfig from path, falling back to
// DefaultSessionConfig when the file does not exist. A present but
// malformed file is a reportable error to the caller, not silently
// swallowed, since it likely reflects a user typo worth surfacing.
func Load(path string) (*SessionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSessionConfig(), nil
		}
		return nil, err
	}
	cfg := DefaultSessionConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Cols <= 0 {
		cfg.Cols = 80
	}
	if cfg.Rows <= 0 {
		cfg.Rows = 24
	}
	if cfg.ScrollbackLines < 0 {
		cfg.ScrollbackLines = 0
	}
	return cfg, nil
}

// Save writes the config back to path as YAML.
func (c *SessionConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveShell picks the shell to launch: the configured path if it
// exists, otherwise the user's /etc/passwd shell, otherwise the first
// common shell found on disk.
func (c *SessionConfig) ResolveShell(passwdShell string) string {
	if c.ShellPath != "" {
		if _, err := os.Stat(c.ShellPath); err == nil {
			return c.ShellPath
		}
	}
	if passwdShell != "" {
		if _, err := os.Stat(passwdShell); err == nil {
			return passwdShell
		}
	}
	for _, candidate := range []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/usr/bin/zsh", "/bin/sh"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "/bin/sh"
}
