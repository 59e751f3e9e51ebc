package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Backend
	APIBaseURL     string `env:"REFDESK_API_URL" envDefault:"http://localhost:4000"`
	RequestTimeout int    `env:"REFDESK_TIMEOUT_SECONDS" envDefault:"15"`

	// Local state
	DataDir string `env:"REFDESK_DATA_DIR"`

	// Logging
	Debug bool `env:"REFDESK_DEBUG" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}
	return cfg, nil
}

// defaultDataDir resolves XDG data dir or ~/.local/share
func defaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "refdesk"), nil
}
