package config

import "github.com/spf13/viper"

// Default configuration constants
const (
	defaultCacheSize = 4096 // converted rules kept in memory
	defaultEngine    = "extension"
	defaultVersion   = "1.0.0"
)

// DefaultConfig returns the default configuration values for scriptlets.
func DefaultConfig() *Config {
	cacheDir, err := GetCacheDir()
	if err != nil {
		cacheDir = ""
	}
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Compiler: CompilerConfig{
			Workers:   0,
			CacheSize: defaultCacheSize,
			Strict:    false,
			CacheDir:  cacheDir,
		},
		Codegen: CodegenConfig{
			Engine:  defaultEngine,
			Version: defaultVersion,
			Verbose: false,
			Verify:  false,
		},
	}
}

// setDefaults registers every default with Viper so env overrides and
// partial config files fall back to them.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	// Logging defaults
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	// Compiler defaults
	v.SetDefault("compiler.workers", defaults.Compiler.Workers)
	v.SetDefault("compiler.cache_size", defaults.Compiler.CacheSize)
	v.SetDefault("compiler.strict", defaults.Compiler.Strict)
	v.SetDefault("compiler.cache_dir", defaults.Compiler.CacheDir)

	// Codegen defaults
	v.SetDefault("codegen.engine", defaults.Codegen.Engine)
	v.SetDefault("codegen.version", defaults.Codegen.Version)
	v.SetDefault("codegen.verbose", defaults.Codegen.Verbose)
	v.SetDefault("codegen.verify", defaults.Codegen.Verify)
}
