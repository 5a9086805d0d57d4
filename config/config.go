package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config carries the node settings loaded from the TOML file.
type Config struct {
	RPCAddress        string  `toml:"RPCAddress"`
	DataDir           string  `toml:"DataDir"`
	NetworkName       string  `toml:"NetworkName"`
	Environment       string  `toml:"Environment"`
	AdminAddress      string  `toml:"AdminAddress"`
	FeeRecipient      string  `toml:"FeeRecipient"`
	LaunchFee         string  `toml:"LaunchFee"`
	RequestsPerMinute float64 `toml:"RequestsPerMinute"`
	RequestBurst      int     `toml:"RequestBurst"`
}

// Load reads the configuration at path, creating a default file when none
// exists yet. Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./sendor-data"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "sendor-local"
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 600
	}
	if cfg.RequestBurst <= 0 {
		cfg.RequestBurst = 20
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("config: create directory %s: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("config: create %s: %w", path, err)
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: write defaults to %s: %w", path, err)
	}
	return cfg, nil
}
