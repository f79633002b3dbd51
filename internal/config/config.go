// ABOUTME: Plantfit configuration management with backend selection.
// ABOUTME: Layers defaults, the config file and PLANTFIT_* env vars with viper.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/harperreed/plantfit/internal/storage"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	keyBackend  = "backend"
	keyDataDir  = "data_dir"
	keyLogLevel = "log_level"

	envPrefix = "PLANTFIT"

	defaultBackend  = "csv"
	defaultLogLevel = "warn"
)

// Config stores plantfit configuration.
type Config struct {
	// Backend selects the storage backend: "csv" (default) or "sqlite".
	Backend string `json:"backend,omitempty" mapstructure:"backend"`

	// DataDir is the root directory for data storage.
	// CSV tables, documents and attachments live here; SQLite puts plantfit.db here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/plantfit.
	DataDir string `json:"data_dir,omitempty" mapstructure:"data_dir"`

	// LogLevel is the zap level name for diagnostics on stderr.
	LogLevel string `json:"log_level,omitempty" mapstructure:"log_level"`
}

// GetBackend returns the configured backend, defaulting to "csv".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return defaultBackend
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetLogLevel returns the configured log level, defaulting to "warn".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return defaultLogLevel
	}
	return c.LogLevel
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenBackend opens the named table backend rooted at dataDir.
func OpenBackend(name, dataDir string) (storage.Backend, error) {
	switch strings.ToLower(name) {
	case "csv":
		b, err := storage.NewCSVStore(dataDir)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "sqlite":
		b, err := storage.Open(storage.DBPath(dataDir))
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", name)
	}
}

// OpenStorage creates a Store over the configured backend.
func (c *Config) OpenStorage(logger *zap.Logger) (*storage.Store, error) {
	dataDir := c.GetDataDir()
	backend, err := OpenBackend(c.GetBackend(), dataDir)
	if err != nil {
		return nil, err
	}
	return storage.NewStore(backend, dataDir, storage.WithLogger(logger)), nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "plantfit", "config.json")
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetDefault(keyBackend, defaultBackend)
	v.SetDefault(keyDataDir, "")
	v.SetDefault(keyLogLevel, defaultLogLevel)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads config from disk and applies environment overrides.
// A missing config file is not an error.
func Load() (*Config, error) {
	v := newViper(GetConfigPath())
	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
