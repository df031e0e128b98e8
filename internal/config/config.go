package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
// Precedence: built-in defaults, then the YAML file, then environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logger    LoggerConfig    `yaml:"logger"`
	Line      LineConfig      `yaml:"line"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Signup    SignupConfig    `yaml:"signup"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT"`
	Mode            string        `yaml:"mode" env:"SERVER_MODE"`
	BasePath        string        `yaml:"base_path" env:"SERVER_BASE_PATH"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	Path            string        `yaml:"path" env:"DB_PATH"`
	BusyTimeout     time.Duration `yaml:"busy_timeout" env:"DB_BUSY_TIMEOUT"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
}

type LoggerConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

type LineConfig struct {
	ChannelSecret      string        `yaml:"channel_secret" env:"LINE_CHANNEL_SECRET"`
	ChannelAccessToken string        `yaml:"channel_access_token" env:"LINE_CHANNEL_ACCESS_TOKEN"`
	APIBaseURL         string        `yaml:"api_base_url" env:"LINE_API_BASE_URL"`
	Timeout            time.Duration `yaml:"timeout" env:"LINE_API_TIMEOUT"`
}

type BroadcastConfig struct {
	Enabled     bool          `yaml:"enabled" env:"BROADCAST_ENABLED"`
	Schedule    string        `yaml:"schedule" env:"BROADCAST_SCHEDULE"`
	Timezone    string        `yaml:"timezone" env:"BROADCAST_TIMEZONE"`
	SkipEmpty   bool          `yaml:"skip_empty" env:"BROADCAST_SKIP_EMPTY"`
	PushTimeout time.Duration `yaml:"push_timeout" env:"BROADCAST_PUSH_TIMEOUT"`
}

type SignupConfig struct {
	// RequireJoinName rejects a bare "+1" instead of falling back to the LINE display name
	RequireJoinName bool `yaml:"require_join_name" env:"SIGNUP_REQUIRE_JOIN_NAME"`
}

type MetricsConfig struct {
	CollectInterval time.Duration `yaml:"collect_interval" env:"METRICS_COLLECT_INTERVAL"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "debug",
			BasePath:        "",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:         "data/jielong.db",
			BusyTimeout:  5 * time.Second,
			MaxOpenConns: 4,
			MaxIdleConns: 4,
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Line: LineConfig{
			APIBaseURL: "https://api.line.me",
			Timeout:    10 * time.Second,
		},
		Broadcast: BroadcastConfig{
			Enabled:     true,
			Schedule:    "0 7 * * *",
			Timezone:    "Asia/Taipei",
			PushTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			CollectInterval: 60 * time.Second,
		},
	}
}

// Load reads configuration from path, if it exists, and the environment
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Server.BasePath = strings.TrimRight(cfg.Server.BasePath, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the application cannot start without
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" && c.Server.Mode != "test" {
		errs = append(errs, fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode))
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		errs = append(errs, fmt.Errorf("server.base_path must start with /, got %q", c.Server.BasePath))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	switch c.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logger.level must be debug, info, warn or error, got %q", c.Logger.Level))
	}
	if _, err := time.LoadLocation(c.Broadcast.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("broadcast.timezone: %w", err))
	}
	if _, err := cron.ParseStandard(c.Broadcast.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("broadcast.schedule: %w", err))
	}
	if c.Metrics.CollectInterval <= 0 {
		errs = append(errs, errors.New("metrics.collect_interval must be positive"))
	}
	if c.Server.Mode == "release" {
		if c.Line.ChannelSecret == "" {
			errs = append(errs, errors.New("line.channel_secret is required in release mode"))
		}
		if c.Line.ChannelAccessToken == "" {
			errs = append(errs, errors.New("line.channel_access_token is required in release mode"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Location returns the broadcast time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Broadcast.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// BroadcastNotice describes when lists are announced, e.g. "每天 07:00".
// It is empty when the broadcast is disabled.
func (c *Config) BroadcastNotice() string {
	if !c.Broadcast.Enabled {
		return ""
	}
	fields := strings.Fields(c.Broadcast.Schedule)
	if len(fields) == 5 && fields[2] == "*" && fields[3] == "*" && fields[4] == "*" {
		minute, errM := strconv.Atoi(fields[0])
		hour, errH := strconv.Atoi(fields[1])
		if errM == nil && errH == nil {
			return fmt.Sprintf("每天 %02d:%02d", hour, minute)
		}
	}
	return "每天定時"
}
