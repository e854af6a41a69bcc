package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds process settings. Defaults apply first, then PATHFINDER_*
// environment variables, then command-line flags in main.
type Config struct {
	ListenAddr string `env:"PATHFINDER_ADDR" json:"listen_addr"`
	// DataDir holds universe.json and risk_config.json.
	DataDir string `env:"PATHFINDER_DATA_DIR" json:"data_dir"`
	// DBPath is the SQLite file; empty picks a default next to the
	// working directory.
	DBPath string `env:"PATHFINDER_DB_PATH" json:"db_path"`

	// Zkillboard polling. When disabled, risk scoring runs on the static
	// security weights alone.
	ZKillEnabled   bool          `env:"PATHFINDER_ZKILL_ENABLED" json:"zkill_enabled"`
	ZKillUserAgent string        `env:"PATHFINDER_ZKILL_USER_AGENT" json:"zkill_user_agent"`
	ZKillWindow    time.Duration `env:"PATHFINDER_ZKILL_WINDOW" json:"zkill_window"`
	ZKillTTL       time.Duration `env:"PATHFINDER_ZKILL_TTL" json:"zkill_ttl"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		ListenAddr:   "127.0.0.1:8000",
		DataDir:      "data",
		ZKillEnabled: true,
		ZKillWindow:  24 * time.Hour,
		ZKillTTL:     10 * time.Minute,
	}
}

// FromEnv overlays PATHFINDER_* environment variables onto Default.
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment config: %w", err)
	}
	return cfg, nil
}
