package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Network   NetworkConfig   `toml:"network"`
	Lobby     LobbyConfig     `toml:"lobby"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Name           string `toml:"name"`
	EntityCapacity int    `toml:"entity_capacity"`
	StartTime      int64  // set at boot, not from config
}

type NetworkConfig struct {
	BindAddress string        `toml:"bind_address"`
	TickRate    time.Duration `toml:"tick_rate"`
	IdleTimeout time.Duration `toml:"idle_timeout"`
}

type LobbyConfig struct {
	MaxLobbies      int `toml:"max_lobbies"`
	DefaultCapacity int `toml:"default_capacity"`
}

type ScriptingConfig struct {
	ScriptsDir string `toml:"scripts_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:           "r-type-server",
			EntityCapacity: 5000,
		},
		Network: NetworkConfig{
			BindAddress: "127.0.0.1:4242",
			TickRate:    time.Second / 60,
			IdleTimeout: 10 * time.Second,
		},
		Lobby: LobbyConfig{
			MaxLobbies:      32,
			DefaultCapacity: 4,
		},
		Scripting: ScriptingConfig{
			ScriptsDir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
