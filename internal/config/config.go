package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"netpong/internal/game"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Match  MatchConfig  `yaml:"match"`
	Game   game.Config  `yaml:"game"`
	API    APIConfig    `yaml:"api"`
	Client ClientConfig `yaml:"client"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// PollInterval bounds how long a socket read waits before reporting nothing pending.
	PollInterval time.Duration `yaml:"poll_interval"`
	// InboxSize is the number of buffered messages per match.
	InboxSize int `yaml:"inbox_size"`
}

type MatchConfig struct {
	TickRate       int `yaml:"tick_rate"`
	RedundantSends int `yaml:"redundant_sends"`
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type ClientConfig struct {
	JoinRetry time.Duration `yaml:"join_retry"`
	FPS       int           `yaml:"fps"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":9999",
			PollInterval: 5 * time.Millisecond,
			InboxSize:    64,
		},
		Match: MatchConfig{
			TickRate:       30,
			RedundantSends: 2,
		},
		Game: game.DefaultConfig(),
		API: APIConfig{
			Enabled: true,
			Addr:    ":8080",
		},
		Client: ClientConfig{
			JoinRetry: 500 * time.Millisecond,
			FPS:       20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("server.poll_interval must be positive, got %s", c.Server.PollInterval))
	}
	if c.Server.InboxSize <= 0 {
		errs = append(errs, fmt.Errorf("server.inbox_size must be positive, got %d", c.Server.InboxSize))
	}
	if c.Match.TickRate <= 0 || c.Match.TickRate > 1000 {
		errs = append(errs, fmt.Errorf("match.tick_rate %d out of (0, 1000]", c.Match.TickRate))
	}
	if c.Match.RedundantSends < 1 {
		errs = append(errs, fmt.Errorf("match.redundant_sends must be at least 1, got %d", c.Match.RedundantSends))
	}
	if c.API.Enabled && c.API.Addr == "" {
		errs = append(errs, errors.New("api.addr is required when the api is enabled"))
	}
	if c.Client.JoinRetry <= 0 {
		errs = append(errs, fmt.Errorf("client.join_retry must be positive, got %s", c.Client.JoinRetry))
	}
	if c.Client.FPS <= 0 {
		errs = append(errs, fmt.Errorf("client.fps must be positive, got %d", c.Client.FPS))
	}
	if err := c.Game.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("game: %w", err))
	}
	return errors.Join(errs...)
}
