// Package config loads the server configuration from an optional YAML file.
// Anything the file leaves out keeps its default.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/game"
	"github.com/cbodonnell/dirtydishes/pkg/game/constants"
	"github.com/cbodonnell/dirtydishes/pkg/game/types"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "DISHES_CONFIG"

const defaultConfigYAML = `# dirty dishes server configuration
server:
  port: 8080
  log_level: info
  # Extra hosts allowed to open a WebSocket, e.g. "localhost:5173".
  origin_patterns: []

kitchen:
  spawn_base_delay: 5s
  wash_time: 5s
  notice_delay: 5s
  rack_capacity: 10
  initial_dishes: 1
  loop_interval: 50ms

sessions:
  idle_timeout: 30m
  reap_interval: 1m
  # 0 means no limit
  max_sessions: 1000
`

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Kitchen  KitchenConfig  `yaml:"kitchen"`
	Sessions SessionsConfig `yaml:"sessions"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	LogLevel       string   `yaml:"log_level"`
	OriginPatterns []string `yaml:"origin_patterns"`
}

type KitchenConfig struct {
	SpawnBaseDelay Duration `yaml:"spawn_base_delay"`
	WashTime       Duration `yaml:"wash_time"`
	NoticeDelay    Duration `yaml:"notice_delay"`
	RackCapacity   int      `yaml:"rack_capacity"`
	InitialDishes  int      `yaml:"initial_dishes"`
	LoopInterval   Duration `yaml:"loop_interval"`
}

type SessionsConfig struct {
	IdleTimeout  Duration `yaml:"idle_timeout"`
	ReapInterval Duration `yaml:"reap_interval"`
	MaxSessions  int      `yaml:"max_sessions"`
}

// Duration is a time.Duration written as a string like "5s" in YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string: %v", node.Line, err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %v", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Kitchen: KitchenConfig{
			SpawnBaseDelay: Duration(constants.SpawnBaseDelay),
			WashTime:       Duration(constants.WashTime),
			NoticeDelay:    Duration(constants.NoticeDelay),
			RackCapacity:   constants.RackCapacity,
			InitialDishes:  constants.InitialDishes,
			LoopInterval:   Duration(constants.GameLoopInterval),
		},
		Sessions: SessionsConfig{
			IdleTimeout:  Duration(30 * time.Minute),
			ReapInterval: Duration(time.Minute),
			MaxSessions:  1000,
		},
	}
}

// DefaultYAML returns a commented config file holding the defaults.
func DefaultYAML() string {
	return defaultConfigYAML
}

// Path returns the config file to load: the given path if set, otherwise
// the one named by DISHES_CONFIG. An empty result means defaults only.
func Path(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(EnvConfigPath)
}

// Load reads the config file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := Parse(b, c); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	return c, nil
}

// Parse decodes YAML into c and validates the result.
func Parse(b []byte, c *Config) error {
	if err := yaml.Unmarshal(b, c); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	for _, d := range []struct {
		name  string
		value Duration
	}{
		{"kitchen.spawn_base_delay", c.Kitchen.SpawnBaseDelay},
		{"kitchen.wash_time", c.Kitchen.WashTime},
		{"kitchen.notice_delay", c.Kitchen.NoticeDelay},
		{"kitchen.loop_interval", c.Kitchen.LoopInterval},
		{"sessions.idle_timeout", c.Sessions.IdleTimeout},
		{"sessions.reap_interval", c.Sessions.ReapInterval},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", d.name))
		}
	}
	if c.Kitchen.RackCapacity < 1 {
		errs = append(errs, fmt.Errorf("kitchen.rack_capacity must be at least 1"))
	}
	if c.Kitchen.InitialDishes < 0 {
		errs = append(errs, fmt.Errorf("kitchen.initial_dishes must not be negative"))
	}
	if c.Sessions.MaxSessions < 0 {
		errs = append(errs, fmt.Errorf("sessions.max_sessions must not be negative"))
	}
	return errors.Join(errs...)
}

// KitchenSettings converts the kitchen section for game.NewKitchenManager.
func (c *Config) KitchenSettings() game.Settings {
	return game.Settings{
		SpawnBaseDelay: c.Kitchen.SpawnBaseDelay.Std(),
		WashTime:       c.Kitchen.WashTime.Std(),
		NoticeDelay:    c.Kitchen.NoticeDelay.Std(),
		InitialDishes:  c.Kitchen.InitialDishes,
		Rules:          types.Rules{RackCapacity: c.Kitchen.RackCapacity},
	}
}
