// Package config loads gira's configuration: a YAML file layered under
// environment variables. The file lives at $XDG_CONFIG_HOME/gira/config.yml
// (or ~/.config/gira/config.yml), overridable via GIRA_CONFIG.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape.
type Config struct {
	// URL is the base URL of the tracking service.
	URL string `yaml:"url"`
	// Mode selects the transport: "rest" (default) or "legacy".
	Mode string `yaml:"mode"`
	// LegacyPath overrides the legacy RPC endpoint path.
	LegacyPath string `yaml:"legacy_path"`
	// CredentialHost overrides the host used for credential lookup.
	// It never affects request routing.
	CredentialHost string `yaml:"credential_host"`
	// Username is the login name. The secret is never stored here; it
	// comes from GIRA_SECRET or an interactive prompt.
	Username string `yaml:"username"`
	// Project is the default project key for create/search commands.
	Project string `yaml:"project"`
}

// Path returns the config file location.
func Path() string {
	if p := os.Getenv("GIRA_CONFIG"); p != "" {
		return p
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "gira", "config.yml")
}

// Load reads the config file and applies environment overrides. A missing
// file is not an error; env vars alone are a valid configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	path := Path()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// Save writes the config file, creating the directory as needed.
func Save(cfg *Config) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("config: cannot determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create %s: %w", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GIRA_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("GIRA_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("GIRA_LEGACY_PATH"); v != "" {
		cfg.LegacyPath = v
	}
	if v := os.Getenv("GIRA_CREDENTIAL_HOST"); v != "" {
		cfg.CredentialHost = v
	}
	if v := os.Getenv("GIRA_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("GIRA_PROJECT"); v != "" {
		cfg.Project = v
	}
}
