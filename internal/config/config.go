// Package config reads the bridge configuration: defaults, then a .env file
// and GAMESYNC_* environment variables, then an optional YAML file named by
// GAMESYNC_CONFIG.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/gamesync/internal/session"
	"github.com/DoyleJ11/gamesync/internal/store"
)

type Config struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	ListenAddr     string        `yaml:"listen_addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Store struct {
		Backend  store.Backend `yaml:"backend"`
		Path     string        `yaml:"path"`
		DSN      string        `yaml:"dsn"`
		RedisURL string        `yaml:"redis_url"`
	} `yaml:"store"`

	Poll struct {
		Lobby     time.Duration `yaml:"lobby"`
		Game      time.Duration `yaml:"game"`
		Heartbeat time.Duration `yaml:"heartbeat"`
	} `yaml:"poll"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
	AnimationStep time.Duration `yaml:"animation_step"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | console
	} `yaml:"log"`

	// Tokens seed the store on start; a login flow normally writes them.
	AccessToken  string `yaml:"access_token"`
	RefreshToken string `yaml:"refresh_token"`
}

func Default() *Config {
	d := session.DefaultConfig()
	c := &Config{
		APIBaseURL:     "http://localhost:3000/api",
		ListenAddr:     ":8080",
		RequestTimeout: 10 * time.Second,
		SettleDelay:    d.SettleDelay,
		AnimationStep:  d.AnimationStep,
	}
	c.Store.Backend = store.BackendFile
	c.Store.Path = "gamesync-store.json"
	c.Poll.Lobby = d.LobbyInterval
	c.Poll.Game = d.GameInterval
	c.Poll.Heartbeat = d.HeartbeatInterval
	c.Log.Level = "info"
	c.Log.Format = "json"
	return c
}

// Load builds the configuration. A missing .env is fine; a YAML file that is
// named but unreadable is not.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	c := Default()
	if err := c.fromEnv(); err != nil {
		return nil, err
	}
	if path := os.Getenv("GAMESYNC_CONFIG"); path != "" {
		if err := c.fromFile(path); err != nil {
			return nil, err
		}
	}
	return c, c.Validate()
}

func (c *Config) fromEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("GAMESYNC_API_BASE_URL", &c.APIBaseURL)
	str("GAMESYNC_LISTEN_ADDR", &c.ListenAddr)
	str("GAMESYNC_STORE_PATH", &c.Store.Path)
	str("GAMESYNC_STORE_DSN", &c.Store.DSN)
	str("GAMESYNC_REDIS_URL", &c.Store.RedisURL)
	str("GAMESYNC_LOG_LEVEL", &c.Log.Level)
	str("GAMESYNC_LOG_FORMAT", &c.Log.Format)
	str("GAMESYNC_ACCESS_TOKEN", &c.AccessToken)
	str("GAMESYNC_REFRESH_TOKEN", &c.RefreshToken)
	if v := os.Getenv("GAMESYNC_STORE"); v != "" {
		c.Store.Backend = store.Backend(v)
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"GAMESYNC_REQUEST_TIMEOUT", &c.RequestTimeout},
		{"GAMESYNC_POLL_LOBBY", &c.Poll.Lobby},
		{"GAMESYNC_POLL_GAME", &c.Poll.Game},
		{"GAMESYNC_POLL_HEARTBEAT", &c.Poll.Heartbeat},
		{"GAMESYNC_SETTLE_DELAY", &c.SettleDelay},
		{"GAMESYNC_ANIMATION_STEP", &c.AnimationStep},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// parseDuration accepts Go durations and bare milliseconds.
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

func (c *Config) fromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("api base url is required")
	}
	if c.Poll.Lobby <= 0 || c.Poll.Game <= 0 || c.Poll.Heartbeat <= 0 {
		return errors.New("poll intervals must be positive")
	}
	if c.SettleDelay < 0 || c.AnimationStep < 0 {
		return errors.New("delays must not be negative")
	}
	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendFile:
		if c.Store.Path == "" {
			return errors.New("file store needs a path")
		}
	case store.BackendPostgres:
		if c.Store.DSN == "" {
			return errors.New("postgres store needs a dsn")
		}
	case store.BackendRedis:
		if c.Store.RedisURL == "" {
			return errors.New("redis store needs a url")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) Session() session.Config {
	return session.Config{
		LobbyInterval:     c.Poll.Lobby,
		GameInterval:      c.Poll.Game,
		HeartbeatInterval: c.Poll.Heartbeat,
		SettleDelay:       c.SettleDelay,
		AnimationStep:     c.AnimationStep,
	}
}

func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:  c.Store.Backend,
		Path:     c.Store.Path,
		DSN:      c.Store.DSN,
		RedisURL: c.Store.RedisURL,
	}
}
