// Package config loads server settings from defaults, an optional TOML file,
// an optional .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultPort            = 8000
	DefaultDBFile          = "tasks.json"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultConfigFile      = "todo.toml"
	DefaultEnvFile         = ".env"
)

// DefaultCORSOrigins are the local frontend dev servers.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

type Config struct {
	Port            int           `toml:"port" validate:"min=1,max=65535"`
	DBFile          string        `toml:"db_file" validate:"required"`
	CORSOrigins     []string      `toml:"cors_origins" validate:"dive,required,url|eq=*"`
	LogLevel        string        `toml:"log_level" validate:"oneof=debug info warn error"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" validate:"gt=0"`
}

// Load builds the configuration. The TOML file is TODO_CONFIG when set,
// otherwise todo.toml in the working directory if it exists.
func Load() (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path, explicit := configFile(); path != "" {
		if err := loadConfigFile(cfg, path, explicit); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", DefaultEnvFile, err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Port = DefaultPort
	cfg.DBFile = DefaultDBFile
	cfg.CORSOrigins = append([]string(nil), DefaultCORSOrigins...)
	cfg.LogLevel = DefaultLogLevel
	cfg.ShutdownTimeout = DefaultShutdownTimeout
}

func configFile() (path string, explicit bool) {
	if p := os.Getenv("TODO_CONFIG"); p != "" {
		return p, true
	}
	return DefaultConfigFile, false
}

// loadConfigFile decodes path over cfg. A missing default file is skipped;
// a missing file named by TODO_CONFIG is an error.
func loadConfigFile(cfg *Config, path string, explicit bool) error {
	_, err := toml.DecodeFile(path, cfg)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("API_PORT"); v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("API_PORT %q is not a number", v)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_FILE"); v != "" {
		cfg.DBFile = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		cfg.ShutdownTimeout = d
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
