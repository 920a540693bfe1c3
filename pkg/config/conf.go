package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	EnvWorkers  = "SPRIO_WORKERS"
	EnvPort     = "SPRIO_PORT"
	EnvFormat   = "SPRIO_FORMAT"
	EnvLogLevel = "SPRIO_LOG_LEVEL"
	EnvDB       = "SPRIO_DB"

	WorkersDefault  = 4
	PortDefault     = 8080
	FormatDefault   = "json"
	LogLevelDefault = "info"
)

// Config represents app config object.
type Config struct {
	Workers  int    `yaml:"workers"`
	Port     int    `yaml:"port"`
	Format   string `yaml:"format"`
	LogLevel string `yaml:"logLevel"`
	DB       string `yaml:"db,omitempty"`
}

// Default returns the config used when no file exists.
func Default() *Config {
	return &Config{
		Workers:  WorkersDefault,
		Port:     PortDefault,
		Format:   FormatDefault,
		LogLevel: LogLevelDefault,
	}
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
// Missing fields fall back to defaults.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if err := os.MkdirAll(dirPath, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create dir %s: %w", dirPath, err)
	}

	path := filepath.Join(dirPath, configFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, Default()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}
	c.fill()
	return c, nil
}

// ApplyEnv overlays SPRIO_* variables, loading a .env file from the working
// directory first when one exists. Malformed numbers are ignored.
func (c *Config) ApplyEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("error loading .env file", "error", err)
	}

	if v, ok := envInt(EnvWorkers); ok {
		c.Workers = v
	}
	if v, ok := envInt(EnvPort); ok {
		c.Port = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		c.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		c.DB = v
	}
	c.fill()
}

func (c *Config) fill() {
	d := Default()
	if c.Workers < 1 {
		c.Workers = d.Workers
	}
	if c.Port < 1 || c.Port > 65535 {
		c.Port = d.Port
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Debug("ignoring invalid env value", "key", key, "value", v)
		return 0, false
	}
	return n, true
}

// GetOrCreateHomeDir returns the app directory under the user's home.
// The created flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
