// Package config loads the foxconf application configuration from
// ~/.foxconf/config.yaml and builds the adapters it selects.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the application configuration.
type Config struct {
	// Where applied settings are persisted
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Where generated user.js files go
	Output OutputConfig `yaml:"output" json:"output"`

	// Gateway behaviour
	Gateway GatewayConfig `yaml:"gateway" json:"gateway"`

	// Firefox profile discovery
	Firefox FirefoxConfig `yaml:"firefox,omitempty" json:"firefox,omitempty"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// StorageBackend selects a storage adapter.
type StorageBackend string

const (
	BackendMemory StorageBackend = "memory"
	BackendFile   StorageBackend = "file"
	BackendSQLite StorageBackend = "sqlite"
	BackendRedis  StorageBackend = "redis"
)

// StorageConfig configures the storage adapter.
type StorageConfig struct {
	Backend StorageBackend `yaml:"backend" json:"backend"`
	// Path of the JSON file or SQLite database. Empty selects a default
	// under ~/.foxconf.
	Path  string      `yaml:"path,omitempty" json:"path,omitempty"`
	Redis RedisConfig `yaml:"redis,omitempty" json:"redis,omitempty"`
}

// RedisConfig configures the redis backend. Addr may be host:port or a
// redis:// URL.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty" json:"addr,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	DB       int    `yaml:"db,omitempty" json:"db,omitempty"`
	Key      string `yaml:"key,omitempty" json:"key,omitempty"`
}

// OutputTarget selects a download adapter.
type OutputTarget string

const (
	TargetDir       OutputTarget = "dir"
	TargetProfile   OutputTarget = "profile"
	TargetClipboard OutputTarget = "clipboard"
)

// OutputConfig configures where user.js is delivered.
type OutputConfig struct {
	Target   OutputTarget `yaml:"target" json:"target"`
	Dir      string       `yaml:"dir,omitempty" json:"dir,omitempty"`
	Filename string       `yaml:"filename" json:"filename"`
	Comments bool         `yaml:"comments" json:"comments"`
}

// GatewayConfig configures request handling.
type GatewayConfig struct {
	BackupTimeout time.Duration `yaml:"backup_timeout" json:"backup_timeout"`
}

// FirefoxConfig configures profile discovery.
type FirefoxConfig struct {
	// DataDir is the directory holding profiles.ini. Empty selects the
	// platform default.
	DataDir string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
	// Dir overrides ~/.foxconf/logs
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
		},
		Output: OutputConfig{
			Target:   TargetDir,
			Dir:      ".",
			Filename: "user.js",
			Comments: true,
		},
		Gateway: GatewayConfig{
			BackupTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// Validate checks the configuration and fills empty optional fields.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for the redis backend")
		}
	case "":
		c.Storage.Backend = BackendFile
	default:
		return fmt.Errorf("invalid storage backend: %s (must be 'memory', 'file', 'sqlite' or 'redis')", c.Storage.Backend)
	}

	switch c.Output.Target {
	case TargetDir:
		if c.Output.Dir == "" {
			c.Output.Dir = "."
		}
	case TargetProfile, TargetClipboard:
	case "":
		c.Output.Target = TargetDir
		if c.Output.Dir == "" {
			c.Output.Dir = "."
		}
	default:
		return fmt.Errorf("invalid output target: %s (must be 'dir', 'profile' or 'clipboard')", c.Output.Target)
	}

	if c.Output.Filename == "" {
		c.Output.Filename = "user.js"
	}
	if filepath.Base(c.Output.Filename) != c.Output.Filename || strings.ContainsAny(c.Output.Filename, `/\`) {
		return fmt.Errorf("output.filename must be a bare file name, got %q", c.Output.Filename)
	}

	if c.Gateway.BackupTimeout < 0 {
		return fmt.Errorf("gateway.backup_timeout cannot be negative")
	}
	if c.Gateway.BackupTimeout == 0 {
		c.Gateway.BackupTimeout = 5 * time.Second
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// Dir returns ~/.foxconf.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".foxconf"), nil
}

// DefaultPath returns ~/.foxconf/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
