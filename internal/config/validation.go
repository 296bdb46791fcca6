package config

import (
	"fmt"
	"slices"
	"strings"
)

var (
	validLogLevels  = []string{"trace", "debug", "info", "warn", "error", "off"}
	validLogFormats = []string{"console", "json"}
)

// validateConfig performs comprehensive validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateLogging(config)...)
	validationErrors = append(validationErrors, validateCompiler(config)...)
	validationErrors = append(validationErrors, validateCodegen(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}
	return nil
}

func validateLogging(config *Config) []string {
	var validationErrors []string
	if !slices.Contains(validLogLevels, config.Logging.Level) {
		validationErrors = append(validationErrors,
			fmt.Sprintf("logging.level must be one of %s", strings.Join(validLogLevels, ", ")))
	}
	if !slices.Contains(validLogFormats, config.Logging.Format) {
		validationErrors = append(validationErrors,
			fmt.Sprintf("logging.format must be one of %s", strings.Join(validLogFormats, ", ")))
	}
	return validationErrors
}

func validateCompiler(config *Config) []string {
	var validationErrors []string
	if config.Compiler.Workers < 0 {
		validationErrors = append(validationErrors, "compiler.workers must be non-negative")
	}
	if config.Compiler.CacheSize < 1 {
		validationErrors = append(validationErrors, "compiler.cache_size must be at least 1")
	}
	return validationErrors
}

func validateCodegen(config *Config) []string {
	if strings.TrimSpace(config.Codegen.Engine) == "" {
		return []string{"codegen.engine must not be empty"}
	}
	return nil
}
