package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Manager handles configuration loading.
type Manager struct {
	config *Config
	viper  *viper.Viper
	mu     sync.RWMutex
}

// NewManager creates a configuration manager. An explicit configFile
// replaces the XDG lookup.
func NewManager(configFile string) (*Manager, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Configure Viper for TOML as default format
		v.SetConfigName("config")
		v.SetConfigType("toml")

		configDir, err := GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
		}
		v.AddConfigPath(configDir)
		v.AddConfigPath(".") // Current directory for development
	}

	// Environment variables use the SCRIPTLETS_ prefix, e.g. SCRIPTLETS_COMPILER_WORKERS.
	v.SetEnvPrefix("SCRIPTLETS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short names for the logging settings
	if err := v.BindEnv("logging.level", "SCRIPTLETS_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind SCRIPTLETS_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "SCRIPTLETS_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind SCRIPTLETS_LOG_FORMAT: %w", err)
	}

	return &Manager{viper: v}, nil
}

// Load loads the configuration from file and environment variables. A
// missing config file is not an error; defaults apply.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	setDefaults(m.viper)

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configFile := m.viper.ConfigFileUsed()
			return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format and permissions", configFile, err)
		}
	}

	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.viper.ConfigFileUsed(),
			err,
		)
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	return nil
}

func normalizeConfig(config *Config) {
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
	config.Compiler.CacheDir = strings.TrimSpace(config.Compiler.CacheDir)
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	// Return a copy to prevent external modification
	configCopy := *m.config
	return &configCopy
}

// GetConfigFile returns the path to the configuration file being used.
func (m *Manager) GetConfigFile() string {
	return m.viper.ConfigFileUsed()
}
