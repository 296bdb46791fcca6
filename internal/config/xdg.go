package config

import (
	"os"
	"path/filepath"
)

const appName = "scriptlets"

// XDGDirs holds the XDG Base Directory paths for the application.
type XDGDirs struct {
	ConfigHome string
	CacheHome  string
}

// GetXDGDirs returns the XDG Base Directory paths for scriptlets.
// It follows the XDG Base Directory specification:
// - $XDG_CONFIG_HOME/scriptlets (default: ~/.config/scriptlets)
// - $XDG_CACHE_HOME/scriptlets (default: ~/.cache/scriptlets)
func GetXDGDirs() (*XDGDirs, error) {
	// Development mode: use .dev directory in current working directory
	if os.Getenv("ENV") == "dev" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		devDir := filepath.Join(cwd, ".dev", appName)
		return &XDGDirs{ConfigHome: devDir, CacheHome: devDir}, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(homeDir, ".config")
	}

	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		cacheHome = filepath.Join(homeDir, ".cache")
	}

	return &XDGDirs{
		ConfigHome: filepath.Join(configHome, appName),
		CacheHome:  filepath.Join(cacheHome, appName),
	}, nil
}

// GetConfigDir returns the XDG config directory for scriptlets.
func GetConfigDir() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return dirs.ConfigHome, nil
}

// GetConfigFile returns the path to the main configuration file.
func GetConfigFile() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// GetCacheDir returns where compiled filter lists are cached.
// Compiled lists are transient and can be regenerated, so they live in XDG_CACHE_HOME.
func GetCacheDir() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return filepath.Join(dirs.CacheHome, "compiled"), nil
}
