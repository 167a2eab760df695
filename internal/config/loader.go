package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{Path: defaultStorePath()},
	}
}

// Load loads config from the default path (~/.postbot/config.json).
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return LoadFromFile(filepath.Join(home, ".postbot", "config.json"))
}

// LoadFromFile loads config from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader loads config from an io.Reader, applying defaults and env
// overrides.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	if err := json.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate checks that everything the service cannot run without is set.
// A missing token is the startup failure the process must die on.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is not set (set TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChannelID == 0 {
		return fmt.Errorf("telegram channel id is not set")
	}
	if len(c.Telegram.AllowedUserIDs) == 0 {
		return fmt.Errorf("no allowed user ids configured")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store path is not set")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	envMap := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.Token,
		"POSTBOT_STORE_PATH": &cfg.Store.Path,
	}
	for env, ptr := range envMap {
		if val := os.Getenv(env); val != "" {
			*ptr = val
		}
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "posts.db"
	}
	return filepath.Join(home, ".postbot", "posts.db")
}
