package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Browsing BrowsingConfig `mapstructure:"browsing" yaml:"browsing"`
	Tabs     TabsConfig     `mapstructure:"tabs" yaml:"tabs"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// BrowsingConfig holds navigation defaults.
type BrowsingConfig struct {
	Homepage     string `mapstructure:"homepage" yaml:"homepage"`
	SearchEngine string `mapstructure:"search_engine" yaml:"search_engine"`
}

// TabsConfig holds tab lifecycle tuning.
type TabsConfig struct {
	// FreezeAfterMinutes suspends background tabs after this idle time;
	// zero disables automatic freezing.
	FreezeAfterMinutes int `mapstructure:"freeze_after_minutes" yaml:"freeze_after_minutes"`

	// DiscardAfterMinutes discards frozen tabs after this idle time;
	// zero disables automatic discarding.
	DiscardAfterMinutes int `mapstructure:"discard_after_minutes" yaml:"discard_after_minutes"`
}

// HistoryConfig holds history retention settings.
type HistoryConfig struct {
	MaxEntries    int `mapstructure:"max_entries" yaml:"max_entries"`
	RetentionDays int `mapstructure:"retention_days" yaml:"retention_days"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Manager handles configuration loading.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	viper  *viper.Viper
}

// NewManager creates a configuration manager. Files named config.yaml,
// config.json or config.toml are discovered in the XDG config directory
// and the current directory.
func NewManager() (*Manager, error) {
	v := viper.New()
	v.SetConfigName("config")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("SABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"database.path":              "DATABASE_PATH",
		"browsing.homepage":          "HOMEPAGE",
		"browsing.search_engine":     "SEARCH_ENGINE",
		"tabs.freeze_after_minutes":  "TABS_FREEZE_AFTER_MINUTES",
		"tabs.discard_after_minutes": "TABS_DISCARD_AFTER_MINUTES",
		"history.max_entries":        "HISTORY_MAX_ENTRIES",
		"history.retention_days":     "HISTORY_RETENTION_DAYS",
		"logging.level":              "LOG_LEVEL",
		"logging.format":             "LOG_FORMAT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "SABLE_"+env); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	return &Manager{viper: v}, nil
}

// Load reads the configuration from file and environment. A missing
// config file is not an error; defaults apply.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Database.Path == "" {
		dbPath, err := GetDatabaseFile()
		if err != nil {
			return fmt.Errorf("failed to get database path: %w", err)
		}
		config.Database.Path = dbPath
	}

	if err := config.Validate(); err != nil {
		return err
	}

	m.config = config
	return nil
}

// Get returns the loaded configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Load is the one-shot convenience used by the CLI.
func Load() (*Config, error) {
	mgr, err := NewManager()
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	return mgr.Get(), nil
}

// WriteDefaultConfig writes a commented default config.yaml unless one
// already exists, returning its path.
func WriteDefaultConfig() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o600); err != nil {
		return "", err
	}
	return path, nil
}
