// Package config loads the server's TOML configuration file into a typed
// struct, overlaying it on top of hardcoded defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"Server"`
	Database DatabaseConfig `toml:"Database"`
	Logging  LoggingConfig  `toml:"Logging"`
	World    WorldConfig    `toml:"World"`
}

type ServerConfig struct {
	Port           int `toml:"Port"`
	MaxConnections int `toml:"MaxConnections"`
}

type DatabaseConfig struct {
	GameDbPath   string `toml:"GameDbPath"`
	MapsPath     string `toml:"MapsPath"`
	ServerDbPath string `toml:"ServerDbPath"`
}

// WorldConfig governs the tick loop and map grid geometry.
type WorldConfig struct {
	TickMillis     int     `toml:"TickMillis"`
	ViewDistance   float64 `toml:"ViewDistance"`
	CellWidth      float64 `toml:"CellWidth"`
	CellHeight     float64 `toml:"CellHeight"`
	AutoSaveTicks  int     `toml:"AutoSaveTicks"`
}

type LoggingConfig struct {
	Level string `toml:"Level"` // debug, info, warning, error
}

// Load reads path, overlays it on top of defaults, and validates the
// result (logging level, port, connection limit, both database paths,
// tick interval). A missing or unreadable file is a fatal start-up error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warning", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxConnections <= 0 {
		return fmt.Errorf("invalid max connections %d", c.Server.MaxConnections)
	}
	if c.Database.GameDbPath == "" {
		return fmt.Errorf("database.GameDbPath is required")
	}
	if c.Database.ServerDbPath == "" {
		return fmt.Errorf("database.ServerDbPath is required")
	}
	if c.World.TickMillis <= 0 {
		return fmt.Errorf("invalid world tick interval %d", c.World.TickMillis)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			MaxConnections: 100,
		},
		Database: DatabaseConfig{
			MapsPath: "data/maps",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		World: WorldConfig{
			TickMillis:    200,
			ViewDistance:  0,
			CellWidth:     8,
			CellHeight:    8,
			AutoSaveTicks: 1500, // 200ms ticks: ~5 minutes between sweeps
		},
	}
}
