package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultServer = "http://localhost:8080"

type cliConfig struct {
	Server string `yaml:"server"`
	Token  string `yaml:"token,omitempty"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".collagery", "config.yaml")
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return defaultConfigPath()
}

func loadConfigFile(path string) (*cliConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg cliConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *cliConfig) save(path string) error {
	if path == "" {
		return errors.New("no config path available")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// The file holds the admin token, keep it private.
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// buildConfig merges config from file, env vars, and flags (flags take precedence).
func buildConfig() (*cliConfig, error) {
	cfg := &cliConfig{Server: defaultServer}

	path := configPath()
	if path != "" {
		fileCfg, err := loadConfigFile(path)
		switch {
		case err == nil:
			if fileCfg.Server != "" {
				cfg.Server = fileCfg.Server
			}
			cfg.Token = fileCfg.Token
		case cfgFile != "" || !errors.Is(err, fs.ErrNotExist):
			// Only surface the error when the user named the file explicitly
			// or it exists but is unreadable.
			if cfgFile != "" {
				return nil, err
			}
		}
	}

	if v := os.Getenv("COLLAGERY_SERVER"); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv("COLLAGERY_TOKEN"); v != "" {
		cfg.Token = v
	}

	if serverFlag != "" {
		cfg.Server = serverFlag
	}
	if tokenFlag != "" {
		cfg.Token = tokenFlag
	}

	return cfg, nil
}
